package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type slotKey struct {
	doctorID string
	date     string
	time     string
}

type Ledger struct {
	mu           sync.RWMutex
	appointments map[slotKey]domain.Appointment
	outbox       [][]byte
}

var _ ports.AppointmentLedger = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{appointments: make(map[slotKey]domain.Appointment)}
}

func (l *Ledger) FindAppointments(ctx context.Context, doctorID, date string) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Appointment, 0)
	for key, appt := range l.appointments {
		if key.doctorID == doctorID && key.date == date {
			out = append(out, appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (l *Ledger) InsertAppointment(ctx context.Context, appt domain.Appointment, outboxPayload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := slotKey{doctorID: appt.DoctorID, date: appt.Date, time: appt.Time}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.appointments[key]; taken {
		return domain.ErrSlotTaken
	}
	l.appointments[key] = appt
	if outboxPayload != nil {
		l.outbox = append(l.outbox, outboxPayload)
	}
	return nil
}

// Seed stores an appointment as-is, without the uniqueness check or an
// outbox entry. Used to load fixtures, including malformed ones.
func (l *Ledger) Seed(appt domain.Appointment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appointments[slotKey{doctorID: appt.DoctorID, date: appt.Date, time: appt.Time}] = appt
}

// Outbox returns a copy of the event payloads written with appointments.
func (l *Ledger) Outbox() [][]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([][]byte, len(l.outbox))
	copy(out, l.outbox)
	return out
}

type TemplateStore struct {
	mu        sync.RWMutex
	templates map[string]domain.DaySlotTemplate
}

var _ ports.TemplateStore = (*TemplateStore)(nil)

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[string]domain.DaySlotTemplate)}
}

func (s *TemplateStore) FindTemplate(ctx context.Context, doctorID string) (*domain.DaySlotTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[doctorID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tmpl, nil
}

func (s *TemplateStore) SaveTemplate(ctx context.Context, tmpl domain.DaySlotTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tmpl.DoctorID] = tmpl
	return nil
}
