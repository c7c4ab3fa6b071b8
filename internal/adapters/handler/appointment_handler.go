package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/metrics"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/middleware"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
)

type AppointmentHandler struct {
	slots   ports.SlotService
	booking ports.BookingService
	metrics *metrics.Metrics
}

func NewAppointmentHandler(slots ports.SlotService, booking ports.BookingService, m *metrics.Metrics) *AppointmentHandler {
	return &AppointmentHandler{slots: slots, booking: booking, metrics: m}
}

// AvailableSlots answers GET ?doctorId=&date= with a JSON array of HH:MM
// times, empty when nothing is bookable.
func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slots, err := h.slots.AvailableSlots(r.Context(), q.Get("doctorId"), q.Get("date"))
	if err != nil {
		writeServiceError(w, "slots", err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

type BookAppointmentRequest struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Reason   string `json:"reason"`
}

// BookAppointment books a slot for the calling patient.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.booking.Book(r.Context(), ports.BookingRequest{
		PatientID: caller.AccountID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
	})
	if h.metrics != nil {
		h.metrics.BookingOutcomes.WithLabelValues(outcome(err)).Inc()
	}
	if err != nil {
		writeServiceError(w, "booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}
