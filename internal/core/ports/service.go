package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
)

type LoginRequest struct {
	Role     string
	Email    string
	Password string
	Profile  domain.Profile
}

type Session struct {
	Token     string
	AccountID string
	Role      domain.Role
	ExpiresAt time.Time
}

type SignUpRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type BookingRequest struct {
	PatientID string
	DoctorID  string
	Date      string
	Time      string
	Reason    string
}

// Caller is the verified identity behind a request.
type Caller struct {
	AccountID string
	Role      domain.Role
}

type AuthService interface {
	Authenticate(ctx context.Context, req LoginRequest) (*Session, error)
}

type RegistrationService interface {
	RegisterPatient(ctx context.Context, req SignUpRequest) (*domain.Account, error)
}

type SlotService interface {
	AvailableSlots(ctx context.Context, doctorID, date string) ([]domain.TimeOfDay, error)
}

type BookingService interface {
	Book(ctx context.Context, req BookingRequest) (*domain.Appointment, error)
}

type TemplateService interface {
	SaveTemplate(ctx context.Context, caller Caller, tmpl domain.DaySlotTemplate) (*domain.DaySlotTemplate, error)
}
