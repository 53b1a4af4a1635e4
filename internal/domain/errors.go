package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency. Everything here is
// recoverable by the operator retrying selection, except ErrProofGeneration
// which aborts the cycle in flight without touching the ledger.

var (
	// Permit data errors
	ErrInvalidPermitData = errors.New("invalid permit data")
	ErrPermitNotFound    = errors.New("permit not found")

	// Selection errors
	ErrNoActiveViolations   = errors.New("no active statute violations")
	ErrPermitNotInViolation = errors.New("permit is not in violation")

	// Workflow guards
	ErrStaleSelection        = errors.New("selection changed since trigger was fired")
	ErrEnforcementInProgress = errors.New("enforcement cycle already in progress")

	// Pipeline stage errors
	ErrTemplateDataMissing = errors.New("notice template data missing")
	ErrProofGeneration     = errors.New("proof generation failed")

	// Ledger invariants
	ErrLedgerSequence  = errors.New("ledger sequence violation")
	ErrLedgerCorrupted = errors.New("ledger chain integrity check failed")
)

// TransitionError reports an enforcement-session transition that is not in
// the legal transition table. Illegal transitions are rejected loudly, never
// silently ignored.
type TransitionError struct {
	From Phase
	To   Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal session transition %s -> %s", e.From, e.To)
}
