package registry

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/statute"
)

// FileSource reads the watchlist from a YAML file. The file is re-read on
// every Snapshot so edits show up on the next evaluation pass without a
// restart.
type FileSource struct {
	path    string
	profile statute.Profile
	clock   func() time.Time
}

// NewFileSource creates a source over a watchlist file. Entries without an
// explicit review limit take the profile's limit for their permit type.
func NewFileSource(path string, profile statute.Profile) *FileSource {
	return &FileSource{path: path, profile: profile, clock: time.Now}
}

// WithClock pins the review clock. Derived days-open values follow it.
func (s *FileSource) WithClock(clock func() time.Time) *FileSource {
	s.clock = clock
	return s
}

// Snapshot loads the watchlist file.
func (s *FileSource) Snapshot(ctx context.Context) ([]domain.Permit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadWatchlist(s.path, s.profile, s.clock())
}

// ─── Watchlist Format ───────────────────────────────────────────────────────

type watchlistFile struct {
	Permits []watchlistEntry `yaml:"permits"`
}

// watchlistEntry is one permit row as written by a clerk. Most fields are
// optional: the review limit falls back to the statute profile and days
// open is derived from the submission date when omitted.
type watchlistEntry struct {
	ID               string `yaml:"id"`
	Address          string `yaml:"address"`
	Type             string `yaml:"type"`
	Status           string `yaml:"status"`
	SubmittedAt      string `yaml:"submitted_at"`
	StatuteLimitDays int    `yaml:"statute_limit_days"`
	DaysOpen         *int   `yaml:"days_open"`
	RefundOwed       string `yaml:"refund_owed"`
}

// LoadWatchlist parses a YAML watchlist into validated permit snapshots.
func LoadWatchlist(path string, profile statute.Profile, now time.Time) ([]domain.Permit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	var f watchlistFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse watchlist %s: %w", path, err)
	}
	if len(f.Permits) == 0 {
		return nil, fmt.Errorf("%w: watchlist %s has no permits", domain.ErrInvalidPermitData, path)
	}

	permits := make([]domain.Permit, 0, len(f.Permits))
	for _, e := range f.Permits {
		p, err := e.toPermit(profile, now)
		if err != nil {
			return nil, err
		}
		permits = append(permits, p)
	}
	return permits, nil
}

func (e watchlistEntry) toPermit(profile statute.Profile, now time.Time) (domain.Permit, error) {
	p := domain.Permit{
		ID:               e.ID,
		Address:          e.Address,
		Type:             e.Type,
		Status:           e.Status,
		StatuteLimitDays: e.StatuteLimitDays,
	}
	if e.SubmittedAt != "" {
		t, err := parseDate(e.SubmittedAt)
		if err != nil {
			return domain.Permit{}, fmt.Errorf("%w: permit %s submitted_at %q",
				domain.ErrInvalidPermitData, e.ID, e.SubmittedAt)
		}
		p.SubmittedAt = t
	}
	if p.StatuteLimitDays == 0 {
		p.StatuteLimitDays = profile.LimitFor(e.Type)
	}
	switch {
	case e.DaysOpen != nil:
		p.DaysOpen = *e.DaysOpen
	case !p.SubmittedAt.IsZero():
		p.DaysOpen = int(now.Sub(p.SubmittedAt).Hours() / 24)
	}
	if e.RefundOwed != "" {
		cents, err := domain.ParseUSD(e.RefundOwed)
		if err != nil {
			return domain.Permit{}, fmt.Errorf("permit %s refund: %w", e.ID, err)
		}
		p.RefundOwed = cents
	}
	if err := p.Validate(); err != nil {
		return domain.Permit{}, err
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
