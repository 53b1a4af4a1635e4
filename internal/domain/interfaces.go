package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// PermitSource supplies permit snapshots from a system of record. One
// Snapshot call returns one consistent copy of the watchlist; upstream
// mutations are never visible inside a single evaluation pass.
type PermitSource interface {
	Snapshot(ctx context.Context) ([]Permit, error)
}

// PermitStore abstracts persistent permit storage for sources backed by a
// local database rather than a fixture or file.
type PermitStore interface {
	UpsertPermit(p Permit) error
	GetPermit(id string) (*Permit, error)
	ListPermits() ([]Permit, error)
	DeletePermit(id string) error
}

// LetterComposer renders the legal demand notice for a violating permit.
// Implementations embed the permit id and the statute citation in the text.
// The template composer is additionally deterministic for a fixed now.
type LetterComposer interface {
	Compose(ctx context.Context, p Permit, now time.Time) (Notice, error)
}

// Notarizer produces the integrity proof for a drafted notice. The local
// implementation is a salted content hash; a real timestamping authority
// slots in behind the same call.
type Notarizer interface {
	Notarize(ctx context.Context, noticeText, nonce string) (Proof, error)
}

// Ledger is the append-only record of completed enforcement actions.
// Append assigns the chain fields (Seq, PrevHash, EntryHash) and returns
// the completed record. List returns a fresh copy in insertion order on
// every call, so callers can restart iteration mid-walk.
type Ledger interface {
	Append(r EnforcementRecord) (EnforcementRecord, error)
	List() ([]EnforcementRecord, error)
	Len() (int, error)
	Verify() error
}

// DocumentRenderer turns a completed enforcement package into servable
// bytes. The workflow core does not care about the output format.
type DocumentRenderer interface {
	Render(pkg EnforcementPackage) ([]byte, error)
	Filename(permitID string) string
}
