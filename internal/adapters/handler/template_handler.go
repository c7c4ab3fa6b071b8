package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/middleware"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type TemplateHandler struct {
	templates ports.TemplateService
}

func NewTemplateHandler(templates ports.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type SlotTemplateRequest struct {
	Start              domain.TimeOfDay `json:"start"`
	End                domain.TimeOfDay `json:"end"`
	GranularityMinutes int              `json:"granularityMinutes"`
}

// SaveTemplate handles PUT /api/doctors/{doctorId}/slot-template.
func (h *TemplateHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req SlotTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.templates.SaveTemplate(r.Context(), caller, domain.DaySlotTemplate{
		DoctorID:    r.PathValue("doctorId"),
		Start:       req.Start,
		End:         req.End,
		Granularity: req.GranularityMinutes,
	})
	if err != nil {
		writeServiceError(w, "template", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
