package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/memory"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/services"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret-that-is-at-least-32-bytes-long")

// fixture wires every service over the in-memory stores.
type fixture struct {
	accounts  ports.AccountStores
	templates *memory.TemplateStore
	ledger    *memory.Ledger
	hasher    *services.PasswordHasher
	tokens    *services.TokenIssuer

	auth         *services.AuthService
	registration *services.RegistrationService
	slots        *services.SlotService
	booking      *services.BookingService
	templateSvc  *services.TemplateService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStores(t, memory.NewAccountStores())
}

func newFixtureWithStores(t *testing.T, accounts ports.AccountStores) *fixture {
	t.Helper()

	f := &fixture{
		accounts:  accounts,
		templates: memory.NewTemplateStore(),
		ledger:    memory.NewLedger(),
		hasher:    services.NewPasswordHasher(bcrypt.MinCost),
		tokens:    services.NewTokenIssuer(testSecret),
	}
	f.auth = services.NewAuthService(f.accounts, f.hasher, f.tokens)
	f.registration = services.NewRegistrationService(f.accounts[domain.RolePatient], f.hasher)
	f.slots = services.NewSlotService(f.accounts[domain.RoleDoctor], f.templates, f.ledger)
	f.booking = services.NewBookingService(f.slots)
	f.templateSvc = services.NewTemplateService(f.slots)
	return f
}

func (f *fixture) seedAccount(t *testing.T, role domain.Role, email, password string) domain.Account {
	t.Helper()

	digest, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	account := domain.Account{
		ID:             uuid.NewString(),
		Email:          email,
		Role:           role,
		PasswordDigest: digest,
		CreatedAt:      time.Now(),
	}
	if err := f.accounts[role].Insert(context.Background(), account); err != nil {
		t.Fatalf("failed to seed %s account: %v", role, err)
	}
	return account
}

// seedDoctor creates a doctor working 09:00-11:00 in 30 minute slots.
func (f *fixture) seedDoctor(t *testing.T) string {
	t.Helper()

	doctor := f.seedAccount(t, domain.RoleDoctor, uuid.NewString()+"@clinic.test", "doctor-pass")
	err := f.templates.SaveTemplate(context.Background(), domain.DaySlotTemplate{
		DoctorID:    doctor.ID,
		Start:       9 * 60,
		End:         11 * 60,
		Granularity: 30,
	})
	if err != nil {
		t.Fatalf("failed to seed template: %v", err)
	}
	return doctor.ID
}

func slotStrings(slots []domain.TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

// failingAccountStore returns injected errors and records calls.
type failingAccountStore struct {
	mu sync.Mutex

	FindByEmailError error
	FindByIDError    error
	InsertError      error

	FindByEmailCalls int
	InsertCalls      int
}

var _ ports.AccountStore = (*failingAccountStore)(nil)

func (s *failingAccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindByEmailCalls++
	return nil, s.FindByEmailError
}

func (s *failingAccountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return nil, s.FindByIDError
}

func (s *failingAccountStore) Insert(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InsertCalls++
	return s.InsertError
}

// racingAccountStore lets a competing first login win every insert: the
// winner's record lands, then the caller's insert reports a conflict.
type racingAccountStore struct {
	*memory.AccountStore
	winner      domain.Account
	InsertCalls int
}

func (s *racingAccountStore) Insert(ctx context.Context, account domain.Account) error {
	s.InsertCalls++
	_ = s.AccountStore.Insert(ctx, s.winner)
	return domain.ErrConflict
}
