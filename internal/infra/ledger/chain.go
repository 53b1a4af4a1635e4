// Package ledger implements the append-only, hash-chained record of
// completed enforcement actions.
//
// Every record's EntryHash covers an RFC 8785 canonical JSON serialization
// of the record with the EntryHash field itself blanked, and links to its
// predecessor through PrevHash. The first record links to a fixed genesis
// hash. Editing, deleting or reordering any stored record breaks the chain
// at that point, which Verify reports.
package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

const genesisSeed = "sheriff-enforcement-ledger/v1"

// GenesisHash anchors the PrevHash of the first record.
func GenesisHash() string {
	return domain.SHA256Hex([]byte(genesisSeed))
}

// EntryHash computes the chain hash for a record. The EntryHash field is
// blanked before hashing so the result can be stored inside the record it
// covers.
func EntryHash(r domain.EnforcementRecord) (string, error) {
	r.EntryHash = ""
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal ledger record seq %d: %w", r.Seq, err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize ledger record seq %d: %w", r.Seq, err)
	}
	return domain.SHA256Hex(canonical), nil
}

// VerifyChain walks records in order and checks sequence continuity, prev
// linkage and every entry hash.
func VerifyChain(records []domain.EnforcementRecord) error {
	prevHash := GenesisHash()
	var prevSeq uint64
	for i, r := range records {
		if r.Seq != prevSeq+1 {
			return fmt.Errorf("%w: entry %d has seq %d, want %d",
				domain.ErrLedgerSequence, i, r.Seq, prevSeq+1)
		}
		if r.PrevHash != prevHash {
			return fmt.Errorf("%w: seq %d prev hash does not match preceding entry",
				domain.ErrLedgerCorrupted, r.Seq)
		}
		computed, err := EntryHash(r)
		if err != nil {
			return err
		}
		if computed != r.EntryHash {
			return fmt.Errorf("%w: seq %d entry hash does not match content",
				domain.ErrLedgerCorrupted, r.Seq)
		}
		prevHash = r.EntryHash
		prevSeq = r.Seq
	}
	return nil
}

// seal assigns the chain fields for the record that follows head.
func seal(r domain.EnforcementRecord, seq uint64, prevHash string) (domain.EnforcementRecord, error) {
	if r.Seq != 0 || r.PrevHash != "" || r.EntryHash != "" {
		return domain.EnforcementRecord{},
			fmt.Errorf("%w: chain fields are assigned on append", domain.ErrLedgerSequence)
	}
	if r.CycleID == "" || r.PermitID == "" {
		return domain.EnforcementRecord{},
			fmt.Errorf("ledger record missing cycle or permit id")
	}
	r.Seq = seq
	r.PrevHash = prevHash
	h, err := EntryHash(r)
	if err != nil {
		return domain.EnforcementRecord{}, err
	}
	r.EntryHash = h
	return r, nil
}
