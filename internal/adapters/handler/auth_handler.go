package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/metrics"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *metrics.Metrics
}

func NewAuthHandler(auth ports.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: auth, metrics: m}
}

// LoginRequest carries the optional profile fields used when a doctor or
// admin account is created by its first login.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Specialty   string `json:"specialty"`
}

type LoginResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Authenticate(r.Context(), ports.LoginRequest{
		Role:     req.Role,
		Email:    req.Email,
		Password: req.Password,
		Profile: domain.Profile{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.PhoneNumber,
			Specialty: req.Specialty,
		},
	})
	if h.metrics != nil {
		role := "unknown"
		if parsed, ok := domain.ParseRole(req.Role); ok {
			role = string(parsed)
		}
		h.metrics.AuthOutcomes.WithLabelValues(role, outcome(err)).Inc()
	}
	if err != nil {
		writeServiceError(w, "auth", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message:   "Login successful",
		Token:     session.Token,
		Role:      session.Role.Wire(),
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
