package ledger

import (
	"fmt"
	"sync"

	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/sqlite"
)

// Store is the SQLite-backed ledger. The chain head is resumed from the
// last stored row on open, so the chain continues across restarts instead
// of re-anchoring at genesis.
type Store struct {
	mu   sync.Mutex
	db   *sqlite.DB
	head string
	seq  uint64
}

// NewStore opens a ledger over db, resuming from the last stored record.
// The resumed tail is verified against its own entry hash so a ledger
// tampered while the process was down is refused at startup.
func NewStore(db *sqlite.DB) (*Store, error) {
	last, err := db.LastLedgerEntry()
	if err != nil {
		return nil, fmt.Errorf("resume ledger: %w", err)
	}
	s := &Store{db: db, head: GenesisHash()}
	if last != nil {
		computed, err := EntryHash(*last)
		if err != nil {
			return nil, fmt.Errorf("resume ledger: %w", err)
		}
		if computed != last.EntryHash {
			return nil, fmt.Errorf("%w: seq %d entry hash does not match content",
				domain.ErrLedgerCorrupted, last.Seq)
		}
		s.head = last.EntryHash
		s.seq = last.Seq
	}
	return s, nil
}

// Append seals the record onto the chain and persists it.
func (s *Store) Append(r domain.EnforcementRecord) (domain.EnforcementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := seal(r, s.seq+1, s.head)
	if err != nil {
		return domain.EnforcementRecord{}, err
	}
	if err := s.db.AppendLedgerEntry(sealed); err != nil {
		return domain.EnforcementRecord{}, err
	}
	s.seq = sealed.Seq
	s.head = sealed.EntryHash
	return sealed, nil
}

// List returns all persisted records in sequence order.
func (s *Store) List() ([]domain.EnforcementRecord, error) {
	return s.db.ListLedgerEntries()
}

// Len returns the number of persisted records.
func (s *Store) Len() (int, error) {
	return s.db.CountLedgerEntries()
}

// Verify reloads the whole chain from storage and re-walks it.
func (s *Store) Verify() error {
	records, err := s.db.ListLedgerEntries()
	if err != nil {
		return err
	}
	return VerifyChain(records)
}
