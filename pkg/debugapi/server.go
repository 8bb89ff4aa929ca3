// Package debugapi exposes a small HTTP surface for operational visibility
// into a running client: a health check and a Prometheus scrape endpoint.
// Grounded on dittofs's internal/cli/health.Response shape and go-chi/chi
// routing.
package debugapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/curvefs/curvefs-client/internal/cli/health"
	"github.com/curvefs/curvefs-client/pkg/metrics"
)

// HealthResponse is the JSON body returned by /healthz. It is an alias of
// the shared health.Response shape so the status CLI command can decode
// server responses without a second type definition.
type HealthResponse = health.Response

// Server serves /healthz and /metrics.
type Server struct {
	router    chi.Router
	startedAt time.Time
}

// New returns a Server ready to be handed to http.ListenAndServe.
func New() *Server {
	s := &Server{startedAt: time.Now()}
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.startedAt)

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	resp.Data.Service = "curvefs-client"
	resp.Data.StartedAt = s.startedAt.UTC().Format(time.RFC3339)
	resp.Data.Uptime = uptime.String()
	resp.Data.UptimeSec = int64(uptime.Seconds())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
