package ports

import (
	"context"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
)

// AccountStore is one account collection. Implementations return
// domain.ErrNotFound for a missing record and domain.ErrConflict when an
// insert hits the email uniqueness constraint.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Insert(ctx context.Context, account domain.Account) error
}

// AccountStores maps each role to the collection it lives in.
type AccountStores map[domain.Role]AccountStore

// AppointmentLedger holds confirmed appointments. InsertAppointment returns
// domain.ErrSlotTaken when (doctor, date, time) is already booked and writes
// outboxPayload atomically with the appointment.
type AppointmentLedger interface {
	FindAppointments(ctx context.Context, doctorID, date string) ([]domain.Appointment, error)
	InsertAppointment(ctx context.Context, appt domain.Appointment, outboxPayload []byte) error
}

// TemplateStore returns domain.ErrNotFound when a doctor has no template.
type TemplateStore interface {
	FindTemplate(ctx context.Context, doctorID string) (*domain.DaySlotTemplate, error)
	SaveTemplate(ctx context.Context, tmpl domain.DaySlotTemplate) error
}
