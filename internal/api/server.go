// Package api provides the HTTP surface for the compliance dashboard and
// the enforcement workflow.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/permit-sheriff/sheriff/internal/app/compliance"
	"github.com/permit-sheriff/sheriff/internal/app/enforcer"
	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/statute"
)

// packageRetention bounds how many completed packages stay downloadable.
const packageRetention = 16

// Server is the sheriff HTTP API server.
type Server struct {
	source     domain.PermitSource
	eval       *compliance.Evaluator
	controller *enforcer.Controller
	ledger     domain.Ledger
	renderer   domain.DocumentRenderer
	profile    statute.Profile
	hub        *ProgressHub

	version        string
	timeout        time.Duration
	metricsEnabled bool

	mu       sync.Mutex
	packages map[string]domain.EnforcementPackage
	order    []string
}

// NewServer wires the API over the workflow collaborators. Phase events
// from the controller feed the SSE hub.
func NewServer(source domain.PermitSource, controller *enforcer.Controller,
	led domain.Ledger, renderer domain.DocumentRenderer, profile statute.Profile) *Server {
	s := &Server{
		source:     source,
		eval:       compliance.NewEvaluator(),
		controller: controller,
		ledger:     led,
		renderer:   renderer,
		profile:    profile,
		hub:        NewProgressHub(),
		version:    "1.0.0",
		timeout:    60 * time.Second,
		packages:   make(map[string]domain.EnforcementPackage),
	}
	controller.OnPhase(s.hub.Broadcast)
	return s
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetVersion overrides the version string reported by /api/version.
func (s *Server) SetVersion(v string) { s.version = v }

// SetTimeout overrides the per-request timeout.
func (s *Server) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// The SSE feed holds its connection open; only the JSON routes get
		// the request timeout.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.timeout))

			r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
			})

			r.Get("/permits", s.handlePermits)
			r.Get("/violations", s.handleViolations)
			r.Get("/summary", s.handleSummary)
			r.Get("/statute", s.handleStatute)
			r.Get("/session", s.handleSession)

			r.Post("/enforcement/select", s.handleEnforcementSelect)
			r.Post("/enforcement/trigger", s.handleEnforcementTrigger)
			r.Post("/enforcement/reset", s.handleEnforcementReset)

			r.Get("/ledger", s.handleLedger)
			r.Get("/ledger/verify", s.handleLedgerVerify)
			r.Get("/notices/{cycleID}/document", s.handleNoticeDocument)
		})

		r.Get("/enforcement/events", s.hub.HandleSSE)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Package Retention ──────────────────────────────────────────────────────

// retain keeps a completed package downloadable by cycle id, evicting the
// oldest beyond the retention bound.
func (s *Server) retain(pkg domain.EnforcementPackage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[pkg.Record.CycleID] = pkg
	s.order = append(s.order, pkg.Record.CycleID)
	for len(s.order) > packageRetention {
		delete(s.packages, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *Server) retained(cycleID string) (domain.EnforcementPackage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[cycleID]
	return pkg, ok
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps workflow errors onto the HTTP taxonomy.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	var te *domain.TransitionError
	switch {
	case errors.Is(err, domain.ErrPermitNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoActiveViolations),
		errors.Is(err, domain.ErrPermitNotInViolation),
		errors.Is(err, domain.ErrInvalidPermitData),
		errors.Is(err, domain.ErrTemplateDataMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStaleSelection),
		errors.Is(err, domain.ErrEnforcementInProgress),
		errors.As(err, &te):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware adds CORS headers for the dashboard frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
