package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/memory"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/google/uuid"
)

func TestAuthService_PatientLogin(t *testing.T) {
	f := newFixture(t)
	patient := f.seedAccount(t, domain.RolePatient, "jane@example.com", "correct-horse")

	tests := []struct {
		name        string
		req         ports.LoginRequest
		expectedErr error
	}{
		{
			name: "valid_credentials",
			req:  ports.LoginRequest{Role: "patient", Email: "jane@example.com", Password: "correct-horse"},
		},
		{
			name: "email_is_case_insensitive",
			req:  ports.LoginRequest{Role: "patient", Email: "  Jane@Example.com ", Password: "correct-horse"},
		},
		{
			name:        "wrong_password",
			req:         ports.LoginRequest{Role: "patient", Email: "jane@example.com", Password: "battery-staple"},
			expectedErr: domain.ErrInvalidCredentials,
		},
		{
			name:        "unknown_patient_is_not_provisioned",
			req:         ports.LoginRequest{Role: "patient", Email: "nobody@example.com", Password: "whatever"},
			expectedErr: domain.ErrInvalidCredentials,
		},
		{
			name:        "patient_email_under_admin_role_is_a_separate_account",
			req:         ports.LoginRequest{Role: "admin", Email: "jane@example.com", Password: "battery-staple"},
			expectedErr: nil,
		},
		{
			name:        "unknown_role",
			req:         ports.LoginRequest{Role: "nurse", Email: "jane@example.com", Password: "correct-horse"},
			expectedErr: domain.ErrValidation,
		},
		{
			name:        "missing_password",
			req:         ports.LoginRequest{Role: "patient", Email: "jane@example.com"},
			expectedErr: domain.ErrValidation,
		},
		{
			name:        "missing_email",
			req:         ports.LoginRequest{Role: "patient", Password: "correct-horse"},
			expectedErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := f.auth.Authenticate(context.Background(), tt.req)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				if session != nil {
					t.Error("expected no session on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			claims, err := f.tokens.Verify(session.Token)
			if err != nil {
				t.Fatalf("issued token does not verify: %v", err)
			}
			role, _ := domain.ParseRole(tt.req.Role)
			if claims.Role != role {
				t.Errorf("expected role %s, got %s", role, claims.Role)
			}
			if role == domain.RolePatient && claims.AccountID != patient.ID {
				t.Errorf("expected account %s, got %s", patient.ID, claims.AccountID)
			}
		})
	}
}

func TestAuthService_PatientLoginNeverCreatesAccounts(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Authenticate(context.Background(), ports.LoginRequest{
		Role: "patient", Email: "new@example.com", Password: "secret",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if n := f.accounts[domain.RolePatient].(*memory.AccountStore).Len(); n != 0 {
		t.Errorf("expected no patient accounts, got %d", n)
	}
}

// Doctors and admins share the lookup-or-provision-then-verify path.
func TestAuthService_ProvisionsDoctorsAndAdmins(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleDoctor, domain.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			profile := domain.Profile{FirstName: "Greg", LastName: "House", Specialty: "Diagnostics"}

			account, created, err := f.auth.FindOrProvision(ctx, role, "house@ppth.org", "vicodin", profile)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !created {
				t.Error("expected the first call to provision the account")
			}
			if account.Role != role {
				t.Errorf("expected role %s, got %s", role, account.Role)
			}
			if account.PasswordDigest == "vicodin" || account.PasswordDigest == "" {
				t.Error("expected a hashed password digest")
			}
			if account.Specialty != "Diagnostics" {
				t.Errorf("expected profile to be stored, got %+v", account.Profile)
			}

			again, created, err := f.auth.FindOrProvision(ctx, role, "house@ppth.org", "other", profile)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created {
				t.Error("expected the second call to find the existing account")
			}
			if again.ID != account.ID {
				t.Errorf("expected account %s, got %s", account.ID, again.ID)
			}

			session, err := f.auth.Authenticate(ctx, ports.LoginRequest{Role: string(role), Email: "house@ppth.org", Password: "vicodin"})
			if err != nil {
				t.Fatalf("expected login to succeed: %v", err)
			}
			if session.AccountID != account.ID || session.Role != role {
				t.Errorf("unexpected session %+v", session)
			}

			_, err = f.auth.Authenticate(ctx, ports.LoginRequest{Role: string(role), Email: "house@ppth.org", Password: "wrong"})
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("expected invalid credentials, got %v", err)
			}
		})
	}
}

func TestAuthService_SessionExpiresAfter24Hours(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, domain.RolePatient, "jane@example.com", "correct-horse")

	before := time.Now()
	session, err := f.auth.Authenticate(context.Background(), ports.LoginRequest{
		Role: "PATIENT", Email: "jane@example.com", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lifetime := session.ExpiresAt.Sub(before)
	if lifetime < 24*time.Hour-time.Minute || lifetime > 24*time.Hour+time.Minute {
		t.Errorf("expected a 24h session, got %v", lifetime)
	}
}

// Concurrent first logins for one new doctor email must leave one account,
// and only the password that won the insert can log in.
func TestAuthService_ConcurrentProvisioningCreatesOneAccount(t *testing.T) {
	f := newFixture(t)
	const workers = 16

	passwords := make([]string, workers)
	for i := range passwords {
		passwords[i] = "password-" + uuid.NewString()[:8]
	}

	errs := make([]error, workers)
	sessions := make([]*ports.Session, workers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			sessions[i], errs[i] = f.auth.Authenticate(context.Background(), ports.LoginRequest{
				Role: "doctor", Email: "new.doctor@clinic.test", Password: passwords[i],
			})
		}(i)
	}
	close(start)
	wg.Wait()

	store := f.accounts[domain.RoleDoctor].(*memory.AccountStore)
	if n := store.Len(); n != 1 {
		t.Fatalf("expected exactly one doctor account, got %d", n)
	}
	stored, err := store.FindByEmail(context.Background(), "new.doctor@clinic.test")
	if err != nil {
		t.Fatalf("failed to read stored account: %v", err)
	}

	successes := 0
	for i := 0; i < workers; i++ {
		matches, _ := f.hasher.Matches(stored.PasswordDigest, passwords[i])
		switch {
		case errs[i] == nil:
			successes++
			if !matches {
				t.Errorf("worker %d logged in with a password that is not stored", i)
			}
			if sessions[i].AccountID != stored.ID {
				t.Errorf("worker %d got account %s, expected %s", i, sessions[i].AccountID, stored.ID)
			}
		case errors.Is(errs[i], domain.ErrInvalidCredentials):
			if matches {
				t.Errorf("worker %d was rejected with the stored password", i)
			}
		default:
			t.Errorf("worker %d: unexpected error %v", i, errs[i])
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly one successful login, got %d", successes)
	}
}

func TestAuthService_ProvisioningConflictIsRetriedOnce(t *testing.T) {
	base := newFixture(t)
	winnerDigest, _ := base.hasher.Hash("winner-pass")
	winner := domain.Account{
		ID:             uuid.NewString(),
		Email:          "racy@clinic.test",
		Role:           domain.RoleDoctor,
		PasswordDigest: winnerDigest,
	}

	tests := []struct {
		name        string
		password    string
		expectedErr error
	}{
		{name: "winner_password_logs_in", password: "winner-pass"},
		{name: "loser_password_is_rejected", password: "loser-pass", expectedErr: domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			racing := &racingAccountStore{AccountStore: memory.NewAccountStore(domain.RoleDoctor), winner: winner}
			stores := memory.NewAccountStores()
			stores[domain.RoleDoctor] = racing
			f := newFixtureWithStores(t, stores)

			session, err := f.auth.Authenticate(context.Background(), ports.LoginRequest{
				Role: "doctor", Email: "racy@clinic.test", Password: tt.password,
			})

			if racing.InsertCalls != 1 {
				t.Errorf("expected 1 insert attempt, got %d", racing.InsertCalls)
			}
			if racing.Len() != 1 {
				t.Errorf("expected one stored account, got %d", racing.Len())
			}
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if session.AccountID != winner.ID {
				t.Errorf("expected winner account %s, got %s", winner.ID, session.AccountID)
			}
		})
	}
}

func TestAuthService_StoreFailures(t *testing.T) {
	tests := []struct {
		name        string
		store       *failingAccountStore
		role        string
		expectedErr error
	}{
		{
			name:        "lookup_failure",
			store:       &failingAccountStore{FindByEmailError: errors.New("connection refused")},
			role:        "patient",
			expectedErr: domain.ErrStoreUnavailable,
		},
		{
			name:        "insert_failure",
			store:       &failingAccountStore{FindByEmailError: domain.ErrNotFound, InsertError: errors.New("disk full")},
			role:        "doctor",
			expectedErr: domain.ErrStoreUnavailable,
		},
		{
			name:        "conflict_then_record_still_missing",
			store:       &failingAccountStore{FindByEmailError: domain.ErrNotFound, InsertError: domain.ErrConflict},
			role:        "admin",
			expectedErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, _ := domain.ParseRole(tt.role)
			stores := memory.NewAccountStores()
			stores[role] = tt.store
			f := newFixtureWithStores(t, stores)

			_, err := f.auth.Authenticate(context.Background(), ports.LoginRequest{
				Role: tt.role, Email: "someone@example.com", Password: "secret",
			})
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
			if errors.Is(err, domain.ErrInvalidCredentials) {
				t.Error("store failures must not look like bad credentials")
			}
		})
	}

	t.Run("conflict_is_retried_only_once", func(t *testing.T) {
		store := &failingAccountStore{FindByEmailError: domain.ErrNotFound, InsertError: domain.ErrConflict}
		stores := memory.NewAccountStores()
		stores[domain.RoleDoctor] = store
		f := newFixtureWithStores(t, stores)

		_, _ = f.auth.Authenticate(context.Background(), ports.LoginRequest{
			Role: "doctor", Email: "someone@example.com", Password: "secret",
		})
		if store.InsertCalls != 1 {
			t.Errorf("expected 1 insert, got %d", store.InsertCalls)
		}
		if store.FindByEmailCalls != 2 {
			t.Errorf("expected 2 lookups, got %d", store.FindByEmailCalls)
		}
	})
}
