package services_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/google/uuid"
)

func TestTemplateService_SaveTemplate(t *testing.T) {
	f := newFixture(t)
	doctor := f.seedAccount(t, domain.RoleDoctor, "d@clinic.test", "pass")
	otherDoctor := f.seedAccount(t, domain.RoleDoctor, "d2@clinic.test", "pass")
	admin := f.seedAccount(t, domain.RoleAdmin, "a@clinic.test", "pass")

	hours := domain.DaySlotTemplate{DoctorID: doctor.ID, Start: 8 * 60, End: 9 * 60, Granularity: 15}

	tests := []struct {
		name        string
		caller      ports.Caller
		tmpl        domain.DaySlotTemplate
		expectedErr error
	}{
		{name: "admin_sets_any_doctor", caller: ports.Caller{AccountID: admin.ID, Role: domain.RoleAdmin}, tmpl: hours},
		{name: "doctor_sets_own_hours", caller: ports.Caller{AccountID: doctor.ID, Role: domain.RoleDoctor}, tmpl: hours},
		{
			name:        "doctor_cannot_set_colleague",
			caller:      ports.Caller{AccountID: otherDoctor.ID, Role: domain.RoleDoctor},
			tmpl:        hours,
			expectedErr: domain.ErrForbidden,
		},
		{
			name:        "patient_cannot_set_hours",
			caller:      ports.Caller{AccountID: "p", Role: domain.RolePatient},
			tmpl:        hours,
			expectedErr: domain.ErrForbidden,
		},
		{
			name:        "zero_granularity",
			caller:      ports.Caller{AccountID: admin.ID, Role: domain.RoleAdmin},
			tmpl:        domain.DaySlotTemplate{DoctorID: doctor.ID, Start: 8 * 60, End: 9 * 60},
			expectedErr: domain.ErrValidation,
		},
		{
			name:        "end_before_start",
			caller:      ports.Caller{AccountID: admin.ID, Role: domain.RoleAdmin},
			tmpl:        domain.DaySlotTemplate{DoctorID: doctor.ID, Start: 9 * 60, End: 8 * 60, Granularity: 15},
			expectedErr: domain.ErrValidation,
		},
		{
			name:        "unknown_doctor",
			caller:      ports.Caller{AccountID: admin.ID, Role: domain.RoleAdmin},
			tmpl:        domain.DaySlotTemplate{DoctorID: uuid.NewString(), Start: 8 * 60, End: 9 * 60, Granularity: 15},
			expectedErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.templateSvc.SaveTemplate(context.Background(), tt.caller, tt.tmpl)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			slots, err := f.slots.AvailableSlots(context.Background(), doctor.ID, testDate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			expected := []string{"08:00", "08:15", "08:30", "08:45"}
			if got := slotStrings(slots); !reflect.DeepEqual(got, expected) {
				t.Errorf("expected %v, got %v", expected, got)
			}
		})
	}
}
