package ledger

import (
	"sync"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

// Memory is the in-process ledger used in demo mode. Records vanish on
// restart; the chain invariants still hold within a session. Safe for
// concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records []domain.EnforcementRecord
	head    string
}

// NewMemory returns an empty ledger anchored at the genesis hash.
func NewMemory() *Memory {
	return &Memory{head: GenesisHash()}
}

// Append seals the record onto the chain and returns it with the chain
// fields assigned.
func (l *Memory) Append(r domain.EnforcementRecord) (domain.EnforcementRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sealed, err := seal(r, uint64(len(l.records))+1, l.head)
	if err != nil {
		return domain.EnforcementRecord{}, err
	}
	l.records = append(l.records, sealed)
	l.head = sealed.EntryHash
	return sealed, nil
}

// List returns a fresh copy of all records in insertion order.
func (l *Memory) List() ([]domain.EnforcementRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.EnforcementRecord, len(l.records))
	copy(out, l.records)
	return out, nil
}

// Len returns the number of records.
func (l *Memory) Len() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records), nil
}

// Verify re-walks the whole chain.
func (l *Memory) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return VerifyChain(l.records)
}
