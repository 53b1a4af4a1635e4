// Package compliance evaluates permit snapshots against the statutory
// review clock and aggregates the dashboard summary.
package compliance

import (
	"github.com/permit-sheriff/sheriff/internal/domain"
)

// Assessment is the compliance verdict for one permit snapshot.
type Assessment struct {
	Permit         domain.Permit         `json:"permit"`
	Classification domain.Classification `json:"classification"`
	Violation      bool                  `json:"violation"`
	Ratio          float64               `json:"ratio"`
	RefundOwed     domain.Cents          `json:"refund_owed_cents"`
}

// Summary aggregates one evaluation pass. RecoverableCents sums the refunds
// of violating permits only; at-risk permits owe nothing yet.
type Summary struct {
	ActivePermits    int          `json:"active_permits"`
	Violations       int          `json:"violations"`
	AtRisk           int          `json:"at_risk"`
	RecoverableCents domain.Cents `json:"recoverable_cents"`
}

// Evaluator classifies permit snapshots. It is stateless and safe for
// concurrent use.
type Evaluator struct{}

// NewEvaluator creates an evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Assess classifies a single permit snapshot. Invalid snapshots are
// rejected before classification; malformed data is a boundary bug, never a
// compliance verdict.
func (e *Evaluator) Assess(p domain.Permit) (Assessment, error) {
	if err := p.Validate(); err != nil {
		return Assessment{}, err
	}
	c := p.Classify()
	return Assessment{
		Permit:         p,
		Classification: c,
		Violation:      c == domain.Violation,
		Ratio:          p.ProximityRatio(),
		RefundOwed:     p.RefundOwed,
	}, nil
}

// AssessAll evaluates a snapshot set in input order and aggregates the
// summary. The pass is all-or-nothing: one invalid permit fails the whole
// pass so a half-evaluated watchlist is never served.
func (e *Evaluator) AssessAll(permits []domain.Permit) ([]Assessment, Summary, error) {
	out := make([]Assessment, 0, len(permits))
	var sum Summary
	for _, p := range permits {
		a, err := e.Assess(p)
		if err != nil {
			return nil, Summary{}, err
		}
		out = append(out, a)
		sum.ActivePermits++
		switch a.Classification {
		case domain.Violation:
			sum.Violations++
			sum.RecoverableCents += a.RefundOwed
		case domain.AtRisk:
			sum.AtRisk++
		}
	}
	return out, sum, nil
}

// Violations returns the violating subset of a snapshot set, preserving
// input order.
func (e *Evaluator) Violations(permits []domain.Permit) ([]domain.Permit, error) {
	var out []domain.Permit
	for _, p := range permits {
		a, err := e.Assess(p)
		if err != nil {
			return nil, err
		}
		if a.Violation {
			out = append(out, p)
		}
	}
	return out, nil
}
