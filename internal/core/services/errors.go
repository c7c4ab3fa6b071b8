package services

import (
	"fmt"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
)

// storeFailure folds infrastructure errors into domain.ErrStoreUnavailable
// and leaves domain outcomes untouched.
func storeFailure(op string, err error) error {
	if err == nil || domain.IsOutcome(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrValidation}, args...)...)
}
