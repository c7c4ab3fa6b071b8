package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type AuthMiddleware struct {
	tokens ports.TokenVerifier
}

func NewAuthMiddleware(tokens ports.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

type contextKey string

const callerKey contextKey = "caller"

// CallerFromContext returns the identity RequireRole stored on the request.
func CallerFromContext(ctx context.Context) (ports.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(ports.Caller)
	return caller, ok
}

// WithCaller attaches a verified identity to ctx.
func WithCaller(ctx context.Context, caller ports.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// RequireRole rejects requests without a valid, unexpired bearer token (401)
// or whose role is not listed (403). With no roles, any valid token passes.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := m.tokens.Verify(strings.TrimSpace(tokenString))
			if err != nil {
				log.Printf("auth: rejected token: %v", err)
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if len(roles) > 0 && !hasRole(roles, claims.Role) {
				log.Printf("auth: role mismatch: required one of %v, got %s", roles, claims.Role)
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := WithCaller(r.Context(), ports.Caller{AccountID: claims.AccountID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
