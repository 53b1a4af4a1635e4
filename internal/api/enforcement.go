package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

// ─── Enforcement Handlers ───────────────────────────────────────────────────

type enforcementRequest struct {
	PermitID string `json:"permit_id"`
}

// handleEnforcementSelect targets a permit for enforcement.
// POST /api/enforcement/select
func (s *Server) handleEnforcementSelect(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEnforcementRequest(w, r)
	if !ok {
		return
	}
	if err := s.controller.Select(r.Context(), req.PermitID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.Session())
}

type triggerResponse struct {
	domain.EnforcementPackage
	DocumentURL string `json:"document_url"`
}

// handleEnforcementTrigger runs the full cycle against the selected permit
// and returns the sealed package. The document stays downloadable by cycle
// id afterwards.
// POST /api/enforcement/trigger
func (s *Server) handleEnforcementTrigger(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEnforcementRequest(w, r)
	if !ok {
		return
	}
	pkg, err := s.controller.Trigger(r.Context(), req.PermitID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.retain(*pkg)
	writeJSON(w, http.StatusOK, triggerResponse{
		EnforcementPackage: *pkg,
		DocumentURL:        "/api/notices/" + pkg.Record.CycleID + "/document",
	})
}

// handleEnforcementReset abandons the current selection.
// POST /api/enforcement/reset
func (s *Server) handleEnforcementReset(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Reset(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.Session())
}

// handleSession reports the current workflow phase and selection.
// GET /api/session
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Session())
}

func decodeEnforcementRequest(w http.ResponseWriter, r *http.Request) (enforcementRequest, bool) {
	var req enforcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return enforcementRequest{}, false
	}
	if req.PermitID == "" {
		writeError(w, http.StatusBadRequest, "permit_id is required")
		return enforcementRequest{}, false
	}
	return req, true
}

// ─── Progress Feed ──────────────────────────────────────────────────────────

// ProgressHub fans enforcement phase events out to dashboard SSE clients.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewProgressHub creates an empty hub.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: make(map[chan []byte]struct{})}
}

// Broadcast sends a phase event to all connected clients. A slow client
// drops events rather than stalling the cycle.
func (h *ProgressHub) Broadcast(ev domain.PhaseEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
		}
	}
}

// Subscribe registers a new client. Returns the channel and an unsubscribe
// func.
func (h *ProgressHub) Subscribe() (chan []byte, func()) {
	ch := make(chan []byte, 32)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (h *ProgressHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleSSE serves the phase-event feed via Server-Sent Events.
// GET /api/enforcement/events
func (h *ProgressHub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch, unsub := h.Subscribe()
	defer unsub()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
