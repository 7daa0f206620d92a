package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	Status        string            `json:"status"`                   // "ok" or "error"
	Timestamp     time.Time         `json:"timestamp"`                // Current server time
	Checks        map[string]string `json:"checks,omitempty"`         // Individual component health
	Database      string            `json:"database,omitempty"`       // Backing store type
	SchemaVersion uint              `json:"schema_version,omitempty"` // Applied migration version
	Uptime        string            `json:"uptime,omitempty"`
}

var startTime = time.Now()

// HealthCheck handles the /health endpoint.
// It always returns 200 OK while the process serves requests and does not
// check dependencies; use /readiness for that.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    formatUptime(time.Since(startTime)),
	})
}

// ReadinessCheck handles the /readiness endpoint.
// Returns 200 when the backing store answers and 503 otherwise.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": h.checkDatabase(r.Context()),
	}

	status, httpStatus := "ok", http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status, httpStatus = "error", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Timestamp:     time.Now().UTC(),
		Checks:        checks,
		Database:      h.container.DBType.String(),
		SchemaVersion: h.container.SchemaVersion,
	})
}

// checkDatabase pings and runs SELECT 1 / Vérifie la BD avec un ping et SELECT 1
func (h *Handler) checkDatabase(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.container.DB.PingContext(ctx); err != nil {
		return "error"
	}

	var result int
	if err := h.container.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return "error"
	}
	return "ok"
}

// formatUptime renders the two most significant units, e.g. "1d 5h", "2h 15m", "45s"
func formatUptime(d time.Duration) string {
	units := []struct {
		value int
		unit  string
	}{
		{int(d.Hours()) / 24, "d"},
		{int(d.Hours()) % 24, "h"},
		{int(d.Minutes()) % 60, "m"},
		{int(d.Seconds()) % 60, "s"},
	}

	var parts []string
	for _, u := range units {
		if len(parts) == 0 && u.value == 0 {
			continue
		}
		if len(parts) == 2 {
			break
		}
		if u.value > 0 {
			parts = append(parts, strconv.Itoa(u.value)+u.unit)
		} else {
			parts = append(parts, "")
		}
	}

	out := strings.TrimSpace(strings.Join(parts, " "))
	if out == "" {
		return "0s"
	}
	return out
}
