// Package statute loads the statutory review profile that drives violation
// detection defaults and demand letter language.
package statute

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

// Profile describes one jurisdiction's permit review statute: the citation
// quoted in demand letters, the refund rate owed on overdue reviews, and the
// per-permit-type review windows.
type Profile struct {
	Jurisdiction string         `yaml:"jurisdiction" json:"jurisdiction"`
	Citation     string         `yaml:"citation" json:"citation"`
	RefundRate   float64        `yaml:"refund_rate" json:"refund_rate"`
	ReviewLimits map[string]int `yaml:"review_limit_days" json:"review_limit_days"`
	DefaultLimit int            `yaml:"default_limit_days" json:"default_limit_days"`
}

// Florida returns the built-in profile used when no file is configured.
func Florida() Profile {
	return Profile{
		Jurisdiction: "Florida",
		Citation:     "Florida Statute 553.79",
		RefundRate:   0.10,
		ReviewLimits: map[string]int{
			"residential":      30,
			"commercial":       45,
			"new construction": 45,
		},
		DefaultLimit: 30,
	}
}

// Load reads a profile from a YAML file. Fields absent from the file keep
// the built-in Florida values.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read statute profile: %w", err)
	}
	p := Florida()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse statute profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("statute profile %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects profiles that would make every permit unclassifiable.
func (p Profile) Validate() error {
	if p.Citation == "" {
		return fmt.Errorf("citation is required")
	}
	if p.RefundRate <= 0 || p.RefundRate > 1 {
		return fmt.Errorf("refund rate %v outside (0, 1]", p.RefundRate)
	}
	if p.DefaultLimit <= 0 {
		return fmt.Errorf("default review limit %d days", p.DefaultLimit)
	}
	for typ, days := range p.ReviewLimits {
		if days <= 0 {
			return fmt.Errorf("review limit for %q is %d days", typ, days)
		}
	}
	return nil
}

// LimitFor returns the review window in days for a permit type. Matching is
// case-insensitive by prefix, so "Residential Renovation" takes the
// residential limit. Unmapped types take the default.
func (p Profile) LimitFor(permitType string) int {
	key := strings.ToLower(strings.TrimSpace(permitType))
	if days, ok := p.ReviewLimits[key]; ok {
		return days
	}
	for typ, days := range p.ReviewLimits {
		if strings.HasPrefix(key, typ) {
			return days
		}
	}
	return p.DefaultLimit
}

// RefundFor computes the statutory refund owed on a permit fee, rounded
// half up to whole cents. The rate is applied in basis points so the money
// math stays in integers.
func (p Profile) RefundFor(fee domain.Cents) domain.Cents {
	bps := int64(math.Round(p.RefundRate * 10000))
	return domain.Cents((int64(fee)*bps + 5000) / 10000)
}

// RatePercent formats the refund rate the way the demand letter quotes it,
// e.g. "10%".
func (p Profile) RatePercent() string {
	return fmt.Sprintf("%g%%", p.RefundRate*100)
}
