package services_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/google/uuid"
)

const testDate = "2025-03-14"

func TestSlotService_SubtractsBookedTimes(t *testing.T) {
	f := newFixture(t)
	doctorID := f.seedDoctor(t)
	otherDoctor := f.seedDoctor(t)

	f.ledger.Seed(domain.Appointment{ID: "a1", DoctorID: doctorID, Date: testDate, Time: "09:30"})
	// Neither of these matches a candidate string exactly.
	f.ledger.Seed(domain.Appointment{ID: "a2", DoctorID: doctorID, Date: testDate, Time: "09:15"})
	f.ledger.Seed(domain.Appointment{ID: "a3", DoctorID: doctorID, Date: testDate, Time: "9:00"})
	// Other day, other doctor.
	f.ledger.Seed(domain.Appointment{ID: "a4", DoctorID: doctorID, Date: "2025-03-15", Time: "10:00"})
	f.ledger.Seed(domain.Appointment{ID: "a5", DoctorID: otherDoctor, Date: testDate, Time: "10:30"})

	slots, err := f.slots.AvailableSlots(context.Background(), doctorID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"09:00", "10:00", "10:30"}
	if got := slotStrings(slots); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestSlotService_ResultIsStrictlyIncreasing(t *testing.T) {
	f := newFixture(t)
	doctor := f.seedAccount(t, domain.RoleDoctor, "early@clinic.test", "pass")
	_ = f.templates.SaveTemplate(context.Background(), domain.DaySlotTemplate{
		DoctorID: doctor.ID, Start: 7 * 60, End: 19*60 + 10, Granularity: 20,
	})
	for _, tm := range []string{"07:40", "12:00", "18:40", "13:00"} {
		f.ledger.Seed(domain.Appointment{DoctorID: doctor.ID, Date: testDate, Time: tm})
	}

	slots, err := f.slots.AvailableSlots(context.Background(), doctor.ID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			t.Fatalf("slots not strictly increasing at %d: %v", i, slotStrings(slots))
		}
	}
	for _, s := range slotStrings(slots) {
		switch s {
		case "07:40", "12:00", "18:40":
			t.Errorf("booked time %s listed as available", s)
		}
	}
	// 18:40 is the last slot that ends by 19:10 and it is booked.
	if last := slots[len(slots)-1].String(); last != "18:20" {
		t.Errorf("expected last slot 18:20, got %s", last)
	}
}

func TestSlotService_NoTemplateMeansNoSlots(t *testing.T) {
	f := newFixture(t)
	doctor := f.seedAccount(t, domain.RoleDoctor, "no.hours@clinic.test", "pass")

	slots, err := f.slots.AvailableSlots(context.Background(), doctor.ID, testDate)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Errorf("expected an empty non-nil result, got %#v", slots)
	}
}

func TestSlotService_PastDatesAreAllowed(t *testing.T) {
	f := newFixture(t)
	doctorID := f.seedDoctor(t)

	slots, err := f.slots.AvailableSlots(context.Background(), doctorID, "1999-12-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 4 {
		t.Errorf("expected 4 slots, got %v", slotStrings(slots))
	}
}

func TestSlotService_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	doctorID := f.seedDoctor(t)
	f.ledger.Seed(domain.Appointment{DoctorID: doctorID, Date: testDate, Time: "10:00"})

	first, err := f.slots.AvailableSlots(context.Background(), doctorID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.slots.AvailableSlots(context.Background(), doctorID, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
}

func TestSlotService_Validation(t *testing.T) {
	f := newFixture(t)
	doctorID := f.seedDoctor(t)
	patient := f.seedAccount(t, domain.RolePatient, "p@example.com", "pass")

	tests := []struct {
		name     string
		doctorID string
		date     string
	}{
		{name: "missing_doctor", doctorID: "", date: testDate},
		{name: "malformed_doctor", doctorID: "D1", date: testDate},
		{name: "unknown_doctor", doctorID: uuid.NewString(), date: testDate},
		{name: "patient_is_not_a_doctor", doctorID: patient.ID, date: testDate},
		{name: "missing_date", doctorID: doctorID, date: ""},
		{name: "malformed_date", doctorID: doctorID, date: "14/03/2025"},
		{name: "impossible_date", doctorID: doctorID, date: "2025-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.slots.AvailableSlots(context.Background(), tt.doctorID, tt.date)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSlotService_DoctorLookupFailure(t *testing.T) {
	f := newFixture(t)
	stores := f.accounts
	stores[domain.RoleDoctor] = &failingAccountStore{FindByIDError: errors.New("timeout")}
	f = newFixtureWithStores(t, stores)

	_, err := f.slots.AvailableSlots(context.Background(), uuid.NewString(), testDate)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected store unavailable, got %v", err)
	}
}
