package handler

import (
	"context"
	"log"
	"net/http"
	"os"
	"sort"
	"time"
)

const dependencyCheckTimeout = 5 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	dependencies map[string]Pinger
	degradable   map[string]Pinger
	startTime    time.Time
	version      string
}

// NewHealthHandler checks each named dependency on readiness probes. In
// memory-store mode the map simply has no database entry.
func NewHealthHandler(dependencies map[string]Pinger) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		dependencies: dependencies,
		degradable:   map[string]Pinger{},
		startTime:    time.Now(),
		version:      version,
	}
}

// WithDegradable adds a dependency the service can run without, such as a
// fail-open cache. Its failure marks readiness DEGRADED but keeps 200.
func (h *HealthHandler) WithDegradable(name string, ping Pinger) *HealthHandler {
	h.degradable[name] = ping
	return h
}

// HealthResponse follows Kubernetes/OpenShift health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is a simple liveness check - just confirms the Go process is running
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready checks if the service is ready to accept traffic (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	names := sortedNames(h.dependencies)
	checks := make(map[string]Check, len(names)+len(h.degradable))
	status := "UP"
	httpStatus := http.StatusOK

	for _, name := range names {
		check := h.check(r.Context(), name, h.dependencies[name])
		checks[name] = check
		if check.Status != "UP" {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	for _, name := range sortedNames(h.degradable) {
		check := h.check(r.Context(), name, h.degradable[name])
		checks[name] = check
		if check.Status != "UP" && status == "UP" {
			status = "DEGRADED"
		}
	}

	writeJSON(w, httpStatus, HealthResponse{Status: status, Checks: checks})
}

// Live is an alias for Health - simple liveness check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

func sortedNames(pingers map[string]Pinger) []string {
	names := make([]string, 0, len(pingers))
	for name := range pingers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *HealthHandler) check(ctx context.Context, name string, ping Pinger) Check {
	if ping == nil {
		return Check{Status: "DOWN", Message: name + " is not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		log.Printf("health: %s check failed: %v", name, err)
		return Check{Status: "DOWN", Message: "Cannot connect to " + name}
	}
	return Check{Status: "UP"}
}
