// Package registry supplies permit snapshots to the compliance engine.
// Three sources exist: the built-in demo fixture, a YAML watchlist file,
// and the local store fed by `sheriff permits import`. All of them hand out
// consistent copies; a snapshot never mutates under its caller.
package registry

import (
	"context"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

// Static serves a fixed in-memory watchlist.
type Static struct {
	permits []domain.Permit
}

// NewStatic wraps a fixed permit list as a source.
func NewStatic(permits []domain.Permit) *Static {
	return &Static{permits: permits}
}

// Snapshot returns a fresh copy of the watchlist.
func (s *Static) Snapshot(ctx context.Context) ([]domain.Permit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Permit, len(s.permits))
	copy(out, s.permits)
	return out, nil
}

// Fixture returns the built-in demo watchlist: three South Florida permits
// stuck in municipal review. Submission dates are anchored to now so the
// demo always shows one overdue renovation, one fresh intake and one
// long-overdue new build.
func Fixture(now time.Time) *Static {
	mk := func(id, addr, typ, status string, daysOpen, limit int, refund domain.Cents) domain.Permit {
		return domain.Permit{
			ID:               id,
			Address:          addr,
			Type:             typ,
			Status:           status,
			SubmittedAt:      now.AddDate(0, 0, -daysOpen),
			StatuteLimitDays: limit,
			DaysOpen:         daysOpen,
			RefundOwed:       refund,
		}
	}
	return NewStatic([]domain.Permit{
		mk("MIA-24-001", "120 Ocean Dr, Miami", "Residential Reno", "Under Review", 45, 30, 45000),
		mk("MIA-24-009", "88 Biscayne Blvd", "Commercial HVAC", "In-Take", 5, 10, 0),
		mk("JAX-24-882", "400 Bay St, Jax", "New Construction", "Comments Pending", 62, 45, 120000),
	})
}
