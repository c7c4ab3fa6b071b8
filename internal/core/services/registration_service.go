package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/google/uuid"
)

const minPasswordLength = 6

type RegistrationService struct {
	patients ports.AccountStore
	hasher   *PasswordHasher
}

var _ ports.RegistrationService = (*RegistrationService)(nil)

func NewRegistrationService(
	patients ports.AccountStore,
	hasher *PasswordHasher,
) *RegistrationService {
	return &RegistrationService{
		patients: patients,
		hasher:   hasher,
	}
}

// RegisterPatient is the only way a patient account comes into existence.
func (s *RegistrationService) RegisterPatient(ctx context.Context, req ports.SignUpRequest) (*domain.Account, error) {
	email := domain.NormalizeEmail(req.Email)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, invalid("a valid email is required")
	case firstName == "" || lastName == "":
		return nil, invalid("first and last name are required")
	case len(req.Password) < minPasswordLength:
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	case len(req.Password) > maxPasswordBytes:
		return nil, invalid("password is longer than %d bytes", maxPasswordBytes)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	patient := domain.Account{
		ID:             uuid.NewString(),
		Email:          email,
		Role:           domain.RolePatient,
		PasswordDigest: digest,
		CreatedAt:      time.Now().UTC(),
		Profile: domain.Profile{
			FirstName: firstName,
			LastName:  lastName,
			Phone:     strings.TrimSpace(req.Phone),
		},
	}

	if err := s.patients.Insert(ctx, patient); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return nil, storeFailure("insert patient", err)
	}
	return &patient, nil
}
