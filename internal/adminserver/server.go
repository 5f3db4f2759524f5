// Package adminserver exposes the supervisor's health, the tip
// tracker's height, and the Prometheus registry over a small HTTP mux
// (SPEC_FULL.md §4.9 expansion). It is grounded on
// core/system_health_logging.go's StartMetricsServer/
// ShutdownMetricsServer pair, routed with github.com/go-chi/chi/v5
// rather than a bare http.ServeMux, matching the pack's preference for
// a router library over raw ServeMux pattern matching.
package adminserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qtum-project/qtumnode-facade/internal/events"
	"github.com/qtum-project/qtumnode-facade/internal/metrics"
	"github.com/qtum-project/qtumnode-facade/internal/subscription"
)

// StateReporter reports the supervisor's current lifecycle state as a
// plain string, satisfied by (*supervisor.Supervisor).State().String.
type StateReporter func() string

// HeightReporter reports the tip tracker's last applied height,
// satisfied by (*tiptracker.Tracker).TipHeight.
type HeightReporter func() uint64

// Server serves /healthz, /status, and /metrics.
type Server struct {
	http     *http.Server
	metrics  *metrics.Metrics
	registry *subscription.Registry
	state    StateReporter
	height   HeightReporter
}

// New constructs a Server bound to its collaborators. addr is the
// listen address, e.g. ":8090".
func New(addr string, m *metrics.Metrics, registry *subscription.Registry, state StateReporter, height HeightReporter) *Server {
	s := &Server{metrics: m, registry: registry, state: state, height: height}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	s.http = &http.Server{Addr: addr, Handler: r}
	return s
}

// requestID stamps every response with an X-Request-Id header, using a
// random UUID rather than chi's sequential default so ids stay opaque
// and collision-free across restarts.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server within the given deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	SupervisorState string `json:"supervisorState"`
	TipHeight       uint64 `json:"tipHeight"`
	Subscribers     int    `json:"tipSubscribers"`
	Timestamp       int64  `json:"timestamp"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Timestamp: time.Now().Unix()}
	if s.state != nil {
		resp.SupervisorState = s.state()
	}
	if s.height != nil {
		resp.TipHeight = s.height()
	}
	if s.registry != nil {
		resp.Subscribers = s.registry.TopicSubscriberCount(events.TopicTip)
	}
	if s.metrics != nil {
		s.metrics.TipHeight.Set(float64(resp.TipHeight))
		s.metrics.SubscriberCount.WithLabelValues(string(events.TopicTip)).Set(float64(resp.Subscribers))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(resp)
}
