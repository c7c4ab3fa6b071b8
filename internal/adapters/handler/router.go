package handler

import (
	"net/http"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/metrics"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/adapters/middleware"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
)

type Router struct {
	Auth           *AuthHandler
	Registration   *RegistrationHandler
	Appointments   *AppointmentHandler
	Templates      *TemplateHandler
	Health         *HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

// Handler builds the service mux, wrapped in CORS handling.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.Handler) {
		if rt.Metrics != nil {
			h = rt.Metrics.Instrument(pattern, h)
		}
		mux.Handle(pattern, h)
	}
	signedIn := rt.AuthMiddleware.RequireRole()
	patients := rt.AuthMiddleware.RequireRole(domain.RolePatient)
	staff := rt.AuthMiddleware.RequireRole(domain.RoleAdmin, domain.RoleDoctor)

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("/health", rt.Health.Health)
	mux.HandleFunc("/health/ready", rt.Health.Ready)
	mux.HandleFunc("/health/live", rt.Health.Live)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}

	handle("POST /api/login", http.HandlerFunc(rt.Auth.Login))
	handle("POST /api/signup", http.HandlerFunc(rt.Registration.SignUp))
	handle("GET /api/patient/available-slots", signedIn(http.HandlerFunc(rt.Appointments.AvailableSlots)))
	handle("POST /api/patient/book-appointment", patients(http.HandlerFunc(rt.Appointments.BookAppointment)))
	handle("PUT /api/doctors/{doctorId}/slot-template", staff(http.HandlerFunc(rt.Templates.SaveTemplate)))

	return middleware.CORSMiddleware(rt.AllowedOrigins)(mux)
}
