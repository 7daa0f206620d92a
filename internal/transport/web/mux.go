package web

import (
	"net/http"

	"github.com/Olprog59/go-crudstarter/internal/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux creates and configures the HTTP router / Crée et configure le routeur HTTP
//
// gatherer serves /metrics; nil uses the Prometheus default gatherer.
// The returned Middleware must be closed on shutdown.
func NewMux(h *Handler, container *app.Container, gatherer prometheus.Gatherer) (http.Handler, *Middleware) {
	conf := container.Config
	mux := http.NewServeMux()
	mw := NewMiddleware(conf, container.Metrics)

	// Health check endpoints for load balancers and probes
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /readiness", h.ReadinessCheck)

	if conf.Metrics.Enabled {
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		path := conf.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	for _, rt := range h.Routes() {
		mux.Handle(rt.String(), rt.Handler)
	}

	// Global middlewares - applied in reverse order / Middlewares globaux appliqués en ordre inverse
	var handler http.Handler = mux
	handler = mw.MetricsMiddleware(handler) // innermost, sees the matched pattern
	handler = mw.RateLimit(handler)
	handler = mw.SecurityHeaders(handler)
	handler = mw.Cors(handler)
	handler = Timeout(conf.Server.RequestTimeout)(handler)
	handler = Logging(handler)   // Logging includes request ID
	handler = RequestID(handler) // RequestID first - generates ID for all middleware

	return handler, mw
}
