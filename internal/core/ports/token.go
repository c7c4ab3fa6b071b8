package ports

import "github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"

type Claims struct {
	AccountID string
	Role      domain.Role
}

// TokenVerifier is what the HTTP middleware needs from the token issuer.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}
