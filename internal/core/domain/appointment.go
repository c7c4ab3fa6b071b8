package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

const StatusScheduled = "scheduled"

type Appointment struct {
	ID        string    `json:"id"`
	DoctorID  string    `json:"doctor_id"`
	PatientID string    `json:"patient_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeOfDay is a wall-clock time in minutes after midnight. "24:00" parses
// to the end of the day and is only meaningful as a template end.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("%w: time %q has an invalid hour", ErrValidation, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: time %q has an invalid minute", ErrValidation, s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseDate validates a calendar date and returns it in canonical form.
func ParseDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, s)
	}
	return d.Format(DateLayout), nil
}

// DaySlotTemplate is a doctor's working day: bookable slots start at Start and
// every Granularity minutes after it, the last one ending no later than End.
type DaySlotTemplate struct {
	DoctorID    string    `json:"doctor_id"`
	Start       TimeOfDay `json:"start"`
	End         TimeOfDay `json:"end"`
	Granularity int       `json:"granularity_minutes"`
}

func (t DaySlotTemplate) Validate() error {
	if t.Granularity <= 0 {
		return fmt.Errorf("%w: granularity must be positive", ErrValidation)
	}
	if t.Start < 0 || t.End > 24*60 || t.Start >= t.End {
		return fmt.Errorf("%w: working hours must start before they end", ErrValidation)
	}
	return nil
}

// Candidates returns every slot of the template in chronological order.
func (t DaySlotTemplate) Candidates() []TimeOfDay {
	slots := make([]TimeOfDay, 0)
	if t.Validate() != nil {
		return slots
	}
	g := TimeOfDay(t.Granularity)
	for s := t.Start; s+g <= t.End; s += g {
		slots = append(slots, s)
	}
	return slots
}
