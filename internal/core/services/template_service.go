package services

import (
	"context"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type TemplateService struct {
	slots     *SlotService
	templates ports.TemplateStore
}

var _ ports.TemplateService = (*TemplateService)(nil)

func NewTemplateService(slots *SlotService) *TemplateService {
	return &TemplateService{slots: slots, templates: slots.templates}
}

// SaveTemplate replaces a doctor's working hours. Admins may edit any doctor,
// doctors only themselves.
func (s *TemplateService) SaveTemplate(
	ctx context.Context,
	caller ports.Caller,
	tmpl domain.DaySlotTemplate,
) (*domain.DaySlotTemplate, error) {
	switch caller.Role {
	case domain.RoleAdmin:
	case domain.RoleDoctor:
		if caller.AccountID != tmpl.DoctorID {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.ErrForbidden
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	doctorID, err := s.slots.resolveDoctor(ctx, tmpl.DoctorID)
	if err != nil {
		return nil, err
	}
	tmpl.DoctorID = doctorID

	if err := s.templates.SaveTemplate(ctx, tmpl); err != nil {
		return nil, storeFailure("save template", err)
	}
	return &tmpl, nil
}
