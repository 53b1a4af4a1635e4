package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ─── Permit Snapshot ────────────────────────────────────────────────────────

// Permit is one immutable snapshot of a tracked permit application as seen
// in the municipal system of record. Sources hand out copies; a status
// change upstream produces a new snapshot, never an in-place edit.
type Permit struct {
	ID               string    `json:"id" yaml:"id"`
	Address          string    `json:"address" yaml:"address"`
	Type             string    `json:"type" yaml:"type"`
	Status           string    `json:"status" yaml:"status"`
	SubmittedAt      time.Time `json:"submitted_at" yaml:"submitted_at"`
	StatuteLimitDays int       `json:"statute_limit_days" yaml:"statute_limit_days"`
	DaysOpen         int       `json:"days_open" yaml:"days_open"`
	RefundOwed       Cents     `json:"refund_owed_cents" yaml:"refund_owed_cents"`
}

// InViolation reports whether the review clock has strictly exceeded the
// statute limit. DaysOpen equal to the limit is still lawful; the statute
// grants the full review window.
func (p Permit) InViolation() bool {
	return p.DaysOpen > p.StatuteLimitDays
}

// ProximityRatio returns DaysOpen divided by the statute limit, for display
// only. The violation flag is never derived from this float; InViolation is
// the authority.
func (p Permit) ProximityRatio() float64 {
	if p.StatuteLimitDays <= 0 {
		return 0
	}
	return float64(p.DaysOpen) / float64(p.StatuteLimitDays)
}

// Validate rejects snapshots that cannot be classified or enforced.
func (p Permit) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty permit id", ErrInvalidPermitData)
	case p.Address == "":
		return fmt.Errorf("%w: permit %s has no address", ErrInvalidPermitData, p.ID)
	case p.StatuteLimitDays <= 0:
		return fmt.Errorf("%w: permit %s statute limit %d days", ErrInvalidPermitData, p.ID, p.StatuteLimitDays)
	case p.DaysOpen < 0:
		return fmt.Errorf("%w: permit %s negative days open %d", ErrInvalidPermitData, p.ID, p.DaysOpen)
	case p.RefundOwed < 0:
		return fmt.Errorf("%w: permit %s negative refund owed", ErrInvalidPermitData, p.ID)
	}
	return nil
}

// ─── Classification ─────────────────────────────────────────────────────────

// Classification buckets a permit by how close its review clock is to the
// statute limit.
type Classification string

const (
	Compliant Classification = "COMPLIANT" // clock at or below 80% of the limit
	AtRisk    Classification = "AT_RISK"   // clock past 80% but not past the limit
	Violation Classification = "VIOLATION" // clock strictly past the limit
)

// Classify bands the permit. Violation comes from the strict day comparison,
// never from the ratio. The 80% warning threshold is evaluated in integer
// math (5*days > 4*limit) so a clock at exactly 80% stays Compliant with no
// float rounding at the boundary.
func (p Permit) Classify() Classification {
	switch {
	case p.InViolation():
		return Violation
	case 5*p.DaysOpen > 4*p.StatuteLimitDays:
		return AtRisk
	default:
		return Compliant
	}
}

// ─── Money ──────────────────────────────────────────────────────────────────

// Cents is a US currency amount in integer cents. Refund arithmetic never
// touches floating point.
type Cents int64

// Dollars converts to a float for display-side math only.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// String formats as "$1,234.56".
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := strconv.FormatInt(v/100, 10)
	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), v%100)
}

// ParseUSD parses amounts like "$1,200.00", "450.00" or "$0" into cents.
// At most two decimal places are accepted; permit fee schedules do not
// carry fractional cents.
func ParseUSD(s string) (Cents, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, fmt.Errorf("%w: empty currency amount", ErrInvalidPermitData)
	}
	neg := false
	if strings.HasPrefix(raw, "-") {
		neg = true
		raw = raw[1:]
	}
	whole, frac := raw, "0"
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		whole, frac = raw[:i], raw[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	switch len(frac) {
	case 1:
		frac += "0"
	case 2:
	default:
		if len(frac) > 2 {
			return 0, fmt.Errorf("%w: sub-cent amount %q", ErrInvalidPermitData, s)
		}
		frac = "00"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidPermitData, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidPermitData, s)
	}
	total := w*100 + f
	if neg {
		total = -total
	}
	return Cents(total), nil
}
