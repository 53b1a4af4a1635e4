package registry

import (
	"context"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/sqlite"
	"github.com/permit-sheriff/sheriff/internal/infra/statute"
)

// StoreSource serves the permits previously imported into the local
// database. Useful when the watchlist is maintained on another machine and
// shipped as a file, then imported once.
type StoreSource struct {
	db *sqlite.DB
}

// NewStoreSource wraps the local database as a permit source.
func NewStoreSource(db *sqlite.DB) *StoreSource {
	return &StoreSource{db: db}
}

// Snapshot lists all stored permits.
func (s *StoreSource) Snapshot(ctx context.Context) ([]domain.Permit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.db.ListPermits()
}

// ImportFile loads a watchlist file and upserts every permit into the
// store. All-or-nothing on parse: a malformed entry fails the whole import
// before any row is written.
func ImportFile(db *sqlite.DB, path string, profile statute.Profile, now time.Time) (int, error) {
	permits, err := LoadWatchlist(path, profile, now)
	if err != nil {
		return 0, err
	}
	for i, p := range permits {
		if err := db.UpsertPermit(p); err != nil {
			return i, err
		}
	}
	return len(permits), nil
}
