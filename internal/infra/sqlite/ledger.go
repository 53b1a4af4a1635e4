package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

// ─── Enforcement Ledger Rows ────────────────────────────────────────────────
// Row storage only. Chain assignment and verification live in infra/ledger;
// this layer must round-trip records byte-exactly so recomputed entry hashes
// still match, which is why CompletedAt is stored at full nanosecond
// precision and never converted.

// AppendLedgerEntry inserts one completed record. Chain fields must already
// be assigned; the seq primary key and cycle_id uniqueness back up the
// ledger's own sequencing.
func (db *DB) AppendLedgerEntry(r domain.EnforcementRecord) error {
	_, err := db.db.Exec(`
		INSERT INTO enforcement_ledger
			(seq, cycle_id, permit_id, address, completed_at,
			 notice_sha256, proof_digest, proof_provider, prev_hash, entry_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Seq, r.CycleID, r.PermitID, r.Address,
		r.CompletedAt.Format(time.RFC3339Nano),
		r.NoticeSHA256, r.ProofDigest, r.ProofProvider, r.PrevHash, r.EntryHash)
	if err != nil {
		return fmt.Errorf("append ledger entry %d: %w", r.Seq, err)
	}
	return nil
}

// ListLedgerEntries returns all records in sequence order.
func (db *DB) ListLedgerEntries() ([]domain.EnforcementRecord, error) {
	rows, err := db.db.Query(`
		SELECT seq, cycle_id, permit_id, address, completed_at,
		       notice_sha256, proof_digest, proof_provider, prev_hash, entry_hash
		FROM enforcement_ledger ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var records []domain.EnforcementRecord
	for rows.Next() {
		r, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list ledger entries: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return records, nil
}

// LastLedgerEntry returns the highest-sequence record, or nil when the
// ledger is empty.
func (db *DB) LastLedgerEntry() (*domain.EnforcementRecord, error) {
	row := db.db.QueryRow(`
		SELECT seq, cycle_id, permit_id, address, completed_at,
		       notice_sha256, proof_digest, proof_provider, prev_hash, entry_hash
		FROM enforcement_ledger ORDER BY seq DESC LIMIT 1`)
	r, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last ledger entry: %w", err)
	}
	return &r, nil
}

// CountLedgerEntries returns the number of stored records.
func (db *DB) CountLedgerEntries() (int, error) {
	var n int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM enforcement_ledger`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return n, nil
}

func scanLedgerEntry(row rowScanner) (domain.EnforcementRecord, error) {
	var (
		r         domain.EnforcementRecord
		completed string
	)
	if err := row.Scan(&r.Seq, &r.CycleID, &r.PermitID, &r.Address, &completed,
		&r.NoticeSHA256, &r.ProofDigest, &r.ProofProvider, &r.PrevHash, &r.EntryHash); err != nil {
		return domain.EnforcementRecord{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, completed)
	if err != nil {
		return domain.EnforcementRecord{}, fmt.Errorf("parse completed_at for seq %d: %w", r.Seq, err)
	}
	r.CompletedAt = t
	return r, nil
}
