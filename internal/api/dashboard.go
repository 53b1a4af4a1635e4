package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/permit-sheriff/sheriff/internal/app/compliance"
	"github.com/permit-sheriff/sheriff/internal/infra/observability"
)

// ─── Dashboard Handlers ─────────────────────────────────────────────────────
// Read-only views over the current snapshot. Every handler re-reads the
// source, so upstream edits show on the next poll.

// handlePermits serves the watchlist with verdicts. The dashboard colors
// rows from the classification field.
func (s *Server) handlePermits(w http.ResponseWriter, r *http.Request) {
	assessments, sum, err := s.assess(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.RecordCompliance(sum.ActivePermits, sum.Violations, sum.AtRisk, int64(sum.RecoverableCents))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"permits": assessments,
		"count":   len(assessments),
	})
}

// handleViolations serves the violating subset only.
func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	assessments, _, err := s.assess(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	violations := make([]compliance.Assessment, 0)
	for _, a := range assessments {
		if a.Violation {
			violations = append(violations, a)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"violations": violations,
		"count":      len(violations),
	})
}

type summaryResponse struct {
	compliance.Summary
	Recoverable string `json:"recoverable"`
}

// handleSummary serves the metric tiles.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, sum, err := s.assess(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.RecordCompliance(sum.ActivePermits, sum.Violations, sum.AtRisk, int64(sum.RecoverableCents))
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:     sum,
		Recoverable: sum.RecoverableCents.String(),
	})
}

// handleStatute serves the active statute profile.
func (s *Server) handleStatute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile)
}

// handleLedger serves all enforcement records in insertion order.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.List()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	observability.SetLedgerEntries(len(records))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// handleLedgerVerify re-walks the hash chain. A broken chain is a verdict,
// not a transport failure, so the status is 200 either way.
func (s *Server) handleLedgerVerify(w http.ResponseWriter, r *http.Request) {
	n, err := s.ledger.Len()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.ledger.Verify(); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      false,
			"entries": n,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"entries": n,
	})
}

// handleNoticeDocument serves the rendered demand document for a completed
// cycle.
func (s *Server) handleNoticeDocument(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	pkg, ok := s.retained(cycleID)
	if !ok {
		writeError(w, http.StatusNotFound, "no document for cycle "+cycleID)
		return
	}
	doc, err := s.renderer.Render(pkg)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.renderer.Filename(pkg.Permit.ID)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) assess(r *http.Request) ([]compliance.Assessment, compliance.Summary, error) {
	permits, err := s.source.Snapshot(r.Context())
	if err != nil {
		return nil, compliance.Summary{}, err
	}
	return s.eval.AssessAll(permits)
}
