// Package memory holds in-process implementations of the store ports. They
// enforce the same uniqueness rules as the Postgres tables and back the
// STORE_DRIVER=memory mode and the service tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type AccountStore struct {
	mu      sync.RWMutex
	role    domain.Role
	byEmail map[string]domain.Account
	emailOf map[string]string
}

var _ ports.AccountStore = (*AccountStore)(nil)

func NewAccountStore(role domain.Role) *AccountStore {
	return &AccountStore{
		role:    role,
		byEmail: make(map[string]domain.Account),
		emailOf: make(map[string]string),
	}
}

// NewAccountStores returns one empty collection per role.
func NewAccountStores() ports.AccountStores {
	stores := make(ports.AccountStores, len(domain.Roles))
	for _, role := range domain.Roles {
		stores[role] = NewAccountStore(role)
	}
	return stores
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &account, nil
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.emailOf[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	account := s.byEmail[email]
	return &account, nil
}

// Insert is an atomic check-then-insert on the email.
func (s *AccountStore) Insert(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account.Role != s.role {
		return fmt.Errorf("%s account cannot be stored in %s", account.Role, s.role.Collection())
	}
	account.Email = domain.NormalizeEmail(account.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return domain.ErrConflict
	}
	if _, exists := s.emailOf[account.ID]; exists {
		return domain.ErrConflict
	}
	s.byEmail[account.Email] = account
	s.emailOf[account.ID] = account.Email
	return nil
}

// Len reports how many accounts the collection holds.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byEmail)
}
