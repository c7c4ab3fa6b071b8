package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/sony/gobreaker"
)

// AccountRepository is one role's account table. The table name comes from
// domain.Role.Collection, never from user input.
type AccountRepository struct {
	db    *sql.DB
	role  domain.Role
	table string
	cb    *gobreaker.CircuitBreaker
}

var _ ports.AccountStore = (*AccountRepository)(nil)

func NewAccountRepository(db *sql.DB, role domain.Role, cb *gobreaker.CircuitBreaker) *AccountRepository {
	return &AccountRepository{
		db:    db,
		role:  role,
		table: role.Collection(),
		cb:    cb,
	}
}

// NewAccountRepositories wires one repository per role.
func NewAccountRepositories(db *sql.DB, cb *gobreaker.CircuitBreaker) ports.AccountStores {
	stores := make(ports.AccountStores, len(domain.Roles))
	for _, role := range domain.Roles {
		stores[role] = NewAccountRepository(db, role, cb)
	}
	return stores
}

func (r *AccountRepository) selectColumns() string {
	return "SELECT id, email, role, password_digest, first_name, last_name, phone, specialty, created_at FROM " + r.table
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, r.selectColumns()+" WHERE email = $1", domain.NormalizeEmail(email))
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, r.selectColumns()+" WHERE id = $1", id)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg string) (*domain.Account, error) {
	return guarded(r.cb, func() (*domain.Account, error) {
		var account domain.Account
		err := r.db.QueryRowContext(ctx, query, arg).Scan(
			&account.ID,
			&account.Email,
			&account.Role,
			&account.PasswordDigest,
			&account.FirstName,
			&account.LastName,
			&account.Phone,
			&account.Specialty,
			&account.CreatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &account, nil
	})
}

func (r *AccountRepository) Insert(ctx context.Context, account domain.Account) error {
	if account.Role != r.role {
		return fmt.Errorf("%s account cannot be stored in %s", account.Role, r.table)
	}

	_, err := guarded(r.cb, func() (struct{}, error) {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO "+r.table+" (id, email, role, password_digest, first_name, last_name, phone, specialty, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
			account.ID,
			domain.NormalizeEmail(account.Email),
			account.Role,
			account.PasswordDigest,
			account.FirstName,
			account.LastName,
			account.Phone,
			account.Specialty,
			account.CreatedAt,
		)
		if isUniqueViolation(err) {
			return struct{}{}, domain.ErrConflict
		}
		return struct{}{}, err
	})
	return err
}
