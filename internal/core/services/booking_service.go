package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/google/uuid"
)

const maxReasonLength = 500

type BookingService struct {
	slots     *SlotService
	templates ports.TemplateStore
	ledger    ports.AppointmentLedger
}

var _ ports.BookingService = (*BookingService)(nil)

func NewBookingService(slots *SlotService) *BookingService {
	return &BookingService{
		slots:     slots,
		templates: slots.templates,
		ledger:    slots.ledger,
	}
}

// Book reserves one template slot for a patient. The ledger's uniqueness
// constraint decides concurrent bookings; the loser gets domain.ErrSlotTaken.
func (s *BookingService) Book(ctx context.Context, req ports.BookingRequest) (*domain.Appointment, error) {
	if strings.TrimSpace(req.PatientID) == "" {
		return nil, invalid("patient is required")
	}
	reason := strings.TrimSpace(req.Reason)
	if len(reason) > maxReasonLength {
		return nil, invalid("reason is longer than %d characters", maxReasonLength)
	}

	doctorID, date, err := s.slots.validate(ctx, req.DoctorID, req.Date)
	if err != nil {
		return nil, err
	}
	slot, err := domain.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.templates.FindTemplate(ctx, doctorID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, invalid("doctor %s has no bookable hours", doctorID)
	}
	if err != nil {
		return nil, storeFailure("find template", err)
	}
	if !isCandidate(tmpl, slot) {
		return nil, invalid("%s is not a slot in the doctor's working hours", slot)
	}

	appt := domain.Appointment{
		ID:        uuid.NewString(),
		DoctorID:  doctorID,
		PatientID: req.PatientID,
		Date:      date,
		Time:      slot.String(),
		Reason:    reason,
		Status:    domain.StatusScheduled,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(ports.AppointmentBooked{
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		Date:          appt.Date,
		Time:          appt.Time,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ledger.InsertAppointment(ctx, appt, payload); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			log.Printf("booking: slot %s %s for doctor %s already taken", appt.Date, appt.Time, appt.DoctorID)
			return nil, err
		}
		return nil, storeFailure("insert appointment", err)
	}
	return &appt, nil
}

func isCandidate(tmpl *domain.DaySlotTemplate, slot domain.TimeOfDay) bool {
	for _, c := range tmpl.Candidates() {
		if c == slot {
			return true
		}
	}
	return false
}
