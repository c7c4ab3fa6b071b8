package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/google/uuid"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

type AuthService struct {
	stores ports.AccountStores
	hasher *PasswordHasher
	tokens *TokenIssuer
	now    func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	stores ports.AccountStores,
	hasher *PasswordHasher,
	tokens *TokenIssuer,
) *AuthService {
	return &AuthService{
		stores: stores,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// Authenticate verifies role, email and password and returns a fresh session.
// Unknown patients, wrong passwords and role mismatches are all reported as
// domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, req ports.LoginRequest) (*ports.Session, error) {
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, invalid("unknown role %q", req.Role)
	}
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("email and password are required")
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, invalid("password is longer than %d bytes", maxPasswordBytes)
	}

	account, provisioned, err := s.FindOrProvision(ctx, role, email, req.Password, req.Profile)
	if err != nil {
		return nil, err
	}
	if provisioned {
		log.Printf("auth: provisioned %s account %s on first login", role, account.ID)
	}

	ok, err = s.hasher.Matches(account.PasswordDigest, req.Password)
	if err != nil {
		log.Printf("auth: unreadable password digest for %s account %s: %v", role, account.ID, err)
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return session, nil
}

// FindOrProvision resolves the account for (role, email). Doctors and admins
// are created with the supplied password when absent; the bool result is true
// only when this call created the record.
func (s *AuthService) FindOrProvision(
	ctx context.Context,
	role domain.Role,
	email, password string,
	profile domain.Profile,
) (*domain.Account, bool, error) {
	store, ok := s.stores[role]
	if !ok {
		return nil, false, invalid("no account store for role %s", role)
	}

	account, err := store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return account, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, storeFailure("find account", err)
	case !role.ProvisionsOnLogin():
		return nil, false, domain.ErrInvalidCredentials
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	fresh := domain.Account{
		ID:             uuid.NewString(),
		Email:          email,
		Role:           role,
		PasswordDigest: digest,
		CreatedAt:      s.now().UTC(),
		Profile:        profile,
	}
	err = store.Insert(ctx, fresh)
	if err == nil {
		return &fresh, true, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, false, storeFailure("insert account", err)
	}

	// Lost a concurrent first login: the winner's record is authoritative.
	account, err = store.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("%w: re-read after provisioning conflict: %v", domain.ErrStoreUnavailable, err)
	}
	return account, false, nil
}
