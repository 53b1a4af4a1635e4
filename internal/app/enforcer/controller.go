// Package enforcer drives the enforcement workflow: select a violating
// permit, trigger the cycle, draft the demand notice, notarize it, and seal
// the completed action into the ledger.
//
// The workflow is a single-actor pipeline. One cycle runs at a time;
// triggering while a cycle is in flight is rejected, never queued. A cycle
// that fails at any stage leaves no ledger record and keeps the selection
// so the operator can retry.
package enforcer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/permit-sheriff/sheriff/internal/app/compliance"
	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/observability"
)

// Config controls the per-stage timeouts of the pipeline.
type Config struct {
	DraftTimeout    time.Duration // letter composition budget
	NotarizeTimeout time.Duration // proof generation budget
}

// DefaultConfig returns the stock timeouts.
func DefaultConfig() Config {
	return Config{
		DraftTimeout:    10 * time.Second,
		NotarizeTimeout: 10 * time.Second,
	}
}

// Controller owns the enforcement session and runs cycles against it.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	session   *domain.EnforcementSession
	source    domain.PermitSource
	eval      *compliance.Evaluator
	composer  domain.LetterComposer
	notary    domain.Notarizer
	ledger    domain.Ledger
	observers []func(domain.PhaseEvent)
	log       *slog.Logger
	clock     func() time.Time
	newID     func() string
	completed int64
	failed    int64
	rejected  int64
}

// New creates a controller over the given collaborators.
func New(cfg Config, source domain.PermitSource, composer domain.LetterComposer,
	notary domain.Notarizer, ledger domain.Ledger) *Controller {
	if cfg.DraftTimeout <= 0 {
		cfg.DraftTimeout = DefaultConfig().DraftTimeout
	}
	if cfg.NotarizeTimeout <= 0 {
		cfg.NotarizeTimeout = DefaultConfig().NotarizeTimeout
	}
	return &Controller{
		cfg:      cfg,
		session:  domain.NewSession(),
		source:   source,
		eval:     compliance.NewEvaluator(),
		composer: composer,
		notary:   notary,
		ledger:   ledger,
		log:      slog.With("component", "enforcer"),
		clock:    time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock fixes the controller's clock. Intended for tests.
func (c *Controller) WithClock(clock func() time.Time) *Controller {
	c.clock = clock
	return c
}

// WithIDGenerator replaces the cycle id generator. Intended for tests.
func (c *Controller) WithIDGenerator(newID func() string) *Controller {
	c.newID = newID
	return c
}

// OnPhase registers an observer for pipeline phase events. Observers run
// synchronously on the cycle's goroutine and must not block.
func (c *Controller) OnPhase(fn func(domain.PhaseEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Session returns the current session state.
func (c *Controller) Session() domain.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Snapshot()
}

// ─── Selection ──────────────────────────────────────────────────────────────

// Select targets a permit for enforcement. The permit must appear in the
// current snapshot and be past its statute limit.
func (c *Controller) Select(ctx context.Context, permitID string) error {
	if _, err := c.violatingPermit(ctx, permitID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.session.Select(permitID); err != nil {
		return err
	}
	c.log.Info("permit selected", "permit", permitID)
	return nil
}

// Reset abandons the current selection. Rejected while a cycle is in
// flight.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.session.Reset(); err != nil {
		return err
	}
	c.log.Info("session reset")
	return nil
}

// violatingPermit re-reads the snapshot and returns the permit if and only
// if it is currently in violation. The session stores ids, never permit
// data, so every decision point re-reads the system of record.
func (c *Controller) violatingPermit(ctx context.Context, permitID string) (domain.Permit, error) {
	permits, err := c.source.Snapshot(ctx)
	if err != nil {
		return domain.Permit{}, fmt.Errorf("read permit snapshot: %w", err)
	}
	violations, err := c.eval.Violations(permits)
	if err != nil {
		return domain.Permit{}, err
	}
	if len(violations) == 0 {
		return domain.Permit{}, domain.ErrNoActiveViolations
	}
	for _, p := range violations {
		if p.ID == permitID {
			return p, nil
		}
	}
	for _, p := range permits {
		if p.ID == permitID {
			return domain.Permit{}, fmt.Errorf("%w: %s", domain.ErrPermitNotInViolation, permitID)
		}
	}
	return domain.Permit{}, fmt.Errorf("%w: %s", domain.ErrPermitNotFound, permitID)
}

// ─── Cycle Execution ────────────────────────────────────────────────────────

// Trigger runs the full enforcement cycle against the selected permit and
// returns the sealed package. Synchronous: the call returns when the cycle
// has completed or failed. A trigger aimed at a different permit than the
// current selection is rejected with ErrStaleSelection and changes nothing.
func (c *Controller) Trigger(ctx context.Context, permitID string) (*domain.EnforcementPackage, error) {
	cycleID := c.newID()

	c.mu.Lock()
	if err := c.session.Begin(permitID, cycleID); err != nil {
		c.rejected++
		c.mu.Unlock()
		observability.RecordCycleOutcome(observability.OutcomeRejected)
		return nil, err
	}
	c.mu.Unlock()
	c.log.Info("cycle triggered", "cycle", cycleID, "permit", permitID)

	pkg, err := c.run(ctx, cycleID, permitID)
	if err != nil {
		c.fail(cycleID, permitID, err)
		return nil, err
	}
	c.complete(cycleID, permitID)
	return pkg, nil
}

func (c *Controller) run(ctx context.Context, cycleID, permitID string) (*domain.EnforcementPackage, error) {
	c.publish(cycleID, permitID, domain.PhaseTriggered, "checking statute limits")

	permit, err := c.violatingPermit(ctx, permitID)
	if err != nil {
		return nil, err
	}

	// Drafting
	if err := c.advance(domain.PhaseDrafting); err != nil {
		return nil, err
	}
	c.publish(cycleID, permitID, domain.PhaseDrafting, "drafting demand letter")
	start := time.Now()
	draftCtx, cancelDraft := context.WithTimeout(ctx, c.cfg.DraftTimeout)
	notice, err := c.composer.Compose(draftCtx, permit, c.clock().UTC())
	cancelDraft()
	observability.ObserveStage(observability.StageDraft, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("draft notice for %s: %w", permitID, err)
	}

	// Notarizing
	if err := c.advance(domain.PhaseNotarizing); err != nil {
		return nil, err
	}
	c.publish(cycleID, permitID, domain.PhaseNotarizing, "generating integrity proof")
	start = time.Now()
	nonce := strconv.FormatInt(c.clock().UnixNano(), 10)
	notarizeCtx, cancelNotarize := context.WithTimeout(ctx, c.cfg.NotarizeTimeout)
	proof, err := c.notary.Notarize(notarizeCtx, notice.Text, nonce)
	cancelNotarize()
	observability.ObserveStage(observability.StageNotarize, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("notarize notice for %s: %w", permitID, err)
	}
	observability.NotarizationsTotal.Inc()

	// Ledger append seals the cycle. Nothing is written on any earlier
	// failure, so the ledger only ever holds completed actions.
	start = time.Now()
	record, err := c.ledger.Append(domain.EnforcementRecord{
		CycleID:       cycleID,
		PermitID:      permit.ID,
		Address:       permit.Address,
		CompletedAt:   c.clock().UTC(),
		NoticeSHA256:  notice.SHA256(),
		ProofDigest:   proof.Digest,
		ProofProvider: proof.Provider,
	})
	observability.ObserveStage(observability.StageLedger, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("append enforcement record: %w", err)
	}
	if n, lenErr := c.ledger.Len(); lenErr == nil {
		observability.SetLedgerEntries(n)
	}

	return &domain.EnforcementPackage{
		Permit: permit,
		Notice: notice,
		Proof:  proof,
		Record: record,
	}, nil
}

func (c *Controller) advance(to domain.Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Advance(to)
}

func (c *Controller) complete(cycleID, permitID string) {
	c.mu.Lock()
	if err := c.session.Complete(); err != nil {
		c.log.Error("complete transition", "cycle", cycleID, "error", err)
	}
	c.completed++
	c.mu.Unlock()

	c.publish(cycleID, permitID, domain.PhaseCompleted, "demand package sealed")
	observability.RecordCycleOutcome(observability.OutcomeCompleted)
	c.log.Info("cycle completed", "cycle", cycleID, "permit", permitID)
}

func (c *Controller) fail(cycleID, permitID string, cause error) {
	c.mu.Lock()
	if err := c.session.Fail(); err != nil {
		c.log.Error("fail transition", "cycle", cycleID, "error", err)
	}
	c.failed++
	c.mu.Unlock()

	c.publish(cycleID, permitID, domain.PhaseFailed, cause.Error())
	observability.RecordCycleOutcome(observability.OutcomeFailed)
	c.log.Error("cycle failed", "cycle", cycleID, "permit", permitID, "error", cause)
}

func (c *Controller) publish(cycleID, permitID string, phase domain.Phase, message string) {
	ev := domain.PhaseEvent{
		CycleID:  cycleID,
		PermitID: permitID,
		Phase:    phase,
		Message:  message,
		At:       c.clock().UTC(),
	}
	c.mu.Lock()
	observers := make([]func(domain.PhaseEvent), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(ev)
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────────

// Stats is a point-in-time view of the controller for operator surfaces.
type Stats struct {
	Phase      domain.Phase `json:"phase"`
	SelectedID string       `json:"selected_id,omitempty"`
	Completed  int64        `json:"completed"`
	Failed     int64        `json:"failed"`
	Rejected   int64        `json:"rejected"`
}

// Stats returns current cycle counters and session state.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Phase:      c.session.Phase(),
		SelectedID: c.session.SelectedID(),
		Completed:  c.completed,
		Failed:     c.failed,
		Rejected:   c.rejected,
	}
}
