package domain

import "fmt"

// ─── Enforcement Session ────────────────────────────────────────────────────

// Phase is one state of the enforcement workflow.
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseSelected   Phase = "SELECTED"
	PhaseTriggered  Phase = "TRIGGERED"
	PhaseDrafting   Phase = "DRAFTING"
	PhaseNotarizing Phase = "NOTARIZING"
	PhaseCompleted  Phase = "COMPLETED"
	PhaseFailed     Phase = "FAILED"
)

// legalTransitions enumerates every edge the workflow may take. Any edge
// absent from the table is rejected with a TransitionError; there is no
// silent no-op path.
var legalTransitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseSelected},
	PhaseSelected:   {PhaseSelected, PhaseTriggered, PhaseIdle},
	PhaseTriggered:  {PhaseDrafting, PhaseFailed},
	PhaseDrafting:   {PhaseNotarizing, PhaseFailed},
	PhaseNotarizing: {PhaseCompleted, PhaseFailed},
	PhaseCompleted:  {PhaseIdle},
	PhaseFailed:     {PhaseSelected, PhaseIdle},
}

// CanTransition reports whether the edge from -> to is in the legal table.
func CanTransition(from, to Phase) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EnforcementSession tracks the single in-flight enforcement interaction of
// an operator. It holds the selected permit by id only, never permit data:
// the authoritative snapshot is re-read when the trigger fires.
//
// The session itself is not goroutine-safe; the enforcement controller
// serializes access behind its own lock.
type EnforcementSession struct {
	phase      Phase
	selectedID string
	cycleID    string
}

// NewSession returns a session resting in Idle.
func NewSession() *EnforcementSession {
	return &EnforcementSession{phase: PhaseIdle}
}

// Phase returns the current workflow phase.
func (s *EnforcementSession) Phase() Phase { return s.phase }

// SelectedID returns the id of the currently targeted permit, or "" when
// nothing is selected.
func (s *EnforcementSession) SelectedID() string { return s.selectedID }

// CycleID returns the id of the in-flight or most recent cycle, or "" when
// no cycle has started since the last completion.
func (s *EnforcementSession) CycleID() string { return s.cycleID }

// InFlight reports whether an enforcement cycle is currently being
// processed. Only one cycle may be in flight at a time.
func (s *EnforcementSession) InFlight() bool {
	switch s.phase {
	case PhaseTriggered, PhaseDrafting, PhaseNotarizing:
		return true
	}
	return false
}

// Select targets a permit for enforcement. Legal from Idle, Selected and
// Failed; selecting while already Selected simply moves the target.
func (s *EnforcementSession) Select(permitID string) error {
	if permitID == "" {
		return fmt.Errorf("%w: empty permit id", ErrPermitNotFound)
	}
	if s.InFlight() {
		return ErrEnforcementInProgress
	}
	if err := s.transition(PhaseSelected); err != nil {
		return err
	}
	s.selectedID = permitID
	return nil
}

// Begin moves Selected -> Triggered for the given permit and cycle. A
// trigger aimed at a permit that was swapped out after selection fails with
// ErrStaleSelection and leaves the current selection untouched.
func (s *EnforcementSession) Begin(permitID, cycleID string) error {
	if s.InFlight() {
		return ErrEnforcementInProgress
	}
	if s.phase != PhaseSelected {
		return &TransitionError{From: s.phase, To: PhaseTriggered}
	}
	if s.selectedID != permitID {
		return fmt.Errorf("%w: trigger aimed at %s but selection is %s",
			ErrStaleSelection, permitID, s.selectedID)
	}
	if err := s.transition(PhaseTriggered); err != nil {
		return err
	}
	s.cycleID = cycleID
	return nil
}

// Advance moves the in-flight cycle to the next pipeline phase.
func (s *EnforcementSession) Advance(to Phase) error {
	return s.transition(to)
}

// Complete closes the in-flight cycle and rests the session back in Idle.
// A finished cycle is never re-entered; enforcing the same permit again is
// a brand new cycle with a fresh id.
func (s *EnforcementSession) Complete() error {
	if err := s.transition(PhaseCompleted); err != nil {
		return err
	}
	s.selectedID = ""
	s.cycleID = ""
	return s.transition(PhaseIdle)
}

// Fail aborts the in-flight cycle. The selection is kept so the operator
// can retry the same permit; the cycle id is discarded.
func (s *EnforcementSession) Fail() error {
	if err := s.transition(PhaseFailed); err != nil {
		return err
	}
	s.cycleID = ""
	return nil
}

// Reset abandons any selection and returns to Idle. Rejected while a cycle
// is in flight.
func (s *EnforcementSession) Reset() error {
	if s.InFlight() {
		return ErrEnforcementInProgress
	}
	if s.phase == PhaseIdle {
		return nil
	}
	if err := s.transition(PhaseIdle); err != nil {
		return err
	}
	s.selectedID = ""
	s.cycleID = ""
	return nil
}

func (s *EnforcementSession) transition(to Phase) error {
	if !CanTransition(s.phase, to) {
		return &TransitionError{From: s.phase, To: to}
	}
	s.phase = to
	return nil
}

// SessionSnapshot is a read-only view of the session for operator surfaces.
type SessionSnapshot struct {
	Phase      Phase  `json:"phase"`
	SelectedID string `json:"selected_id,omitempty"`
	CycleID    string `json:"cycle_id,omitempty"`
	InFlight   bool   `json:"in_flight"`
}

// Snapshot copies the observable session state.
func (s *EnforcementSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Phase:      s.phase,
		SelectedID: s.selectedID,
		CycleID:    s.cycleID,
		InFlight:   s.InFlight(),
	}
}
