package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

// ─── Permit Store ───────────────────────────────────────────────────────────

// UpsertPermit inserts or replaces one permit snapshot.
func (db *DB) UpsertPermit(p domain.Permit) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := db.db.Exec(`
		INSERT INTO permits (id, address, type, status, submitted_at, statute_limit_days, days_open, refund_owed_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			address            = excluded.address,
			type               = excluded.type,
			status             = excluded.status,
			submitted_at       = excluded.submitted_at,
			statute_limit_days = excluded.statute_limit_days,
			days_open          = excluded.days_open,
			refund_owed_cents  = excluded.refund_owed_cents`,
		p.ID, p.Address, p.Type, p.Status,
		p.SubmittedAt.UTC().Format(time.RFC3339),
		p.StatuteLimitDays, p.DaysOpen, int64(p.RefundOwed))
	if err != nil {
		return fmt.Errorf("upsert permit %s: %w", p.ID, err)
	}
	return nil
}

// GetPermit fetches one permit by id.
func (db *DB) GetPermit(id string) (*domain.Permit, error) {
	row := db.db.QueryRow(`
		SELECT id, address, type, status, submitted_at, statute_limit_days, days_open, refund_owed_cents
		FROM permits WHERE id = ?`, id)
	p, err := scanPermit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPermitNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get permit %s: %w", id, err)
	}
	return &p, nil
}

// ListPermits returns all stored permits ordered by id.
func (db *DB) ListPermits() ([]domain.Permit, error) {
	rows, err := db.db.Query(`
		SELECT id, address, type, status, submitted_at, statute_limit_days, days_open, refund_owed_cents
		FROM permits ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list permits: %w", err)
	}
	defer rows.Close()

	var permits []domain.Permit
	for rows.Next() {
		p, err := scanPermit(rows)
		if err != nil {
			return nil, fmt.Errorf("list permits: %w", err)
		}
		permits = append(permits, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list permits: %w", err)
	}
	return permits, nil
}

// DeletePermit removes one permit by id.
func (db *DB) DeletePermit(id string) error {
	res, err := db.db.Exec(`DELETE FROM permits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete permit %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete permit %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPermitNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPermit(row rowScanner) (domain.Permit, error) {
	var (
		p         domain.Permit
		submitted string
		refund    int64
	)
	if err := row.Scan(&p.ID, &p.Address, &p.Type, &p.Status, &submitted,
		&p.StatuteLimitDays, &p.DaysOpen, &refund); err != nil {
		return domain.Permit{}, err
	}
	if submitted != "" {
		t, err := time.Parse(time.RFC3339, submitted)
		if err != nil {
			return domain.Permit{}, fmt.Errorf("parse submitted_at for %s: %w", p.ID, err)
		}
		p.SubmittedAt = t
	}
	p.RefundOwed = domain.Cents(refund)
	return p, nil
}
