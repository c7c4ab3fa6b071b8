package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type RegistrationHandler struct {
	registrationService ports.RegistrationService
}

func NewRegistrationHandler(registration ports.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registration}
}

type SignUpRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type SignUpResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (h *RegistrationHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	patient, err := h.registrationService.RegisterPatient(r.Context(), ports.SignUpRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, "signup", err)
		return
	}

	writeJSON(w, http.StatusCreated, SignUpResponse{
		ID:      patient.ID,
		Message: "Patient registered successfully",
	})
}
