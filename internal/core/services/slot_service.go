package services

import (
	"context"
	"errors"
	"strings"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/google/uuid"
)

type SlotService struct {
	doctors   ports.AccountStore
	templates ports.TemplateStore
	ledger    ports.AppointmentLedger
}

var _ ports.SlotService = (*SlotService)(nil)

func NewSlotService(
	doctors ports.AccountStore,
	templates ports.TemplateStore,
	ledger ports.AppointmentLedger,
) *SlotService {
	return &SlotService{
		doctors:   doctors,
		templates: templates,
		ledger:    ledger,
	}
}

// AvailableSlots lists the doctor's template slots for date that no
// appointment occupies. A doctor without a template has no slots.
func (s *SlotService) AvailableSlots(ctx context.Context, doctorID, date string) ([]domain.TimeOfDay, error) {
	doctorID, date, err := s.validate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.templates.FindTemplate(ctx, doctorID)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.TimeOfDay{}, nil
	}
	if err != nil {
		return nil, storeFailure("find template", err)
	}

	booked, err := s.ledger.FindAppointments(ctx, doctorID, date)
	if err != nil {
		return nil, storeFailure("find appointments", err)
	}

	return subtractBooked(tmpl.Candidates(), booked), nil
}

// validate checks the identifiers and that the doctor exists.
func (s *SlotService) validate(ctx context.Context, doctorID, date string) (string, string, error) {
	date, err := domain.ParseDate(date)
	if err != nil {
		return "", "", err
	}
	doctorID, err = s.resolveDoctor(ctx, doctorID)
	if err != nil {
		return "", "", err
	}
	return doctorID, date, nil
}

func (s *SlotService) resolveDoctor(ctx context.Context, doctorID string) (string, error) {
	doctorID = strings.TrimSpace(doctorID)
	if _, err := uuid.Parse(doctorID); err != nil {
		return "", invalid("doctorId %q is not a valid id", doctorID)
	}
	if _, err := s.doctors.FindByID(ctx, doctorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", invalid("unknown doctor %s", doctorID)
		}
		return "", storeFailure("find doctor", err)
	}
	return doctorID, nil
}

// subtractBooked drops candidates whose HH:MM form equals a booked time.
// Appointments at any other time string are ignored.
func subtractBooked(candidates []domain.TimeOfDay, booked []domain.Appointment) []domain.TimeOfDay {
	taken := make(map[string]struct{}, len(booked))
	for _, appt := range booked {
		taken[appt.Time] = struct{}{}
	}

	free := make([]domain.TimeOfDay, 0, len(candidates))
	for _, slot := range candidates {
		if _, ok := taken[slot.String()]; ok {
			continue
		}
		free = append(free, slot)
	}
	return free
}
