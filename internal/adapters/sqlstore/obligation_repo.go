package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/followup/internal/db"
	"github.com/example/followup/internal/ports/secondary"
)

const obligationColumns = `id, source, contact, contact_email, contact_phone, description, due_date, priority, status, snooze_until, version, created_at, updated_at, completed_at`

// ObligationRepository implements secondary.ObligationRepository.
type ObligationRepository struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

// NewObligationRepository creates a new obligation repository.
func NewObligationRepository(conn *sql.DB, dialect db.Dialect) *ObligationRepository {
	return &ObligationRepository{db: conn, dialect: dialect, now: time.Now}
}

// Create persists a new obligation. Version starts at 1.
func (r *ObligationRepository) Create(ctx context.Context, o *secondary.ObligationRecord) error {
	now := r.now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = o.CreatedAt
	o.Version = 1

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		`INSERT INTO obligations (`+obligationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID,
		o.Source,
		o.Contact,
		stringArg(o.ContactEmail),
		stringArg(o.ContactPhone),
		o.Description,
		dateArg(o.DueDate),
		o.Priority,
		o.Status,
		dateArg(o.SnoozeUntil),
		o.Version,
		o.CreatedAt.UTC(),
		o.UpdatedAt.UTC(),
		timeArg(o.CompletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("obligation %s already exists", o.ID)
		}
		return fmt.Errorf("failed to create obligation: %w", err)
	}

	return nil
}

// GetByID retrieves an obligation by its ID.
func (r *ObligationRepository) GetByID(ctx context.Context, id string) (*secondary.ObligationRecord, error) {
	return r.get(ctx, r.db, id)
}

func (r *ObligationRepository) get(ctx context.Context, q querier, id string) (*secondary.ObligationRecord, error) {
	row := q.QueryRowContext(ctx, r.dialect.Rebind(`SELECT `+obligationColumns+` FROM obligations WHERE id = ?`), id)
	record, err := scanObligation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("obligation %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return record, nil
}

// Find retrieves obligations matching the given filters, ordered by due date.
func (r *ObligationRepository) Find(ctx context.Context, filters secondary.ObligationFilters) ([]*secondary.ObligationRecord, error) {
	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE 1=1`
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if !filters.DueOnOrBefore.IsZero() {
		query += " AND due_date <= ?"
		args = append(args, dateArg(filters.DueOnOrBefore))
	}
	if !filters.DueOnOrAfter.IsZero() {
		query += " AND due_date >= ?"
		args = append(args, dateArg(filters.DueOnOrAfter))
	}
	if !filters.SnoozeOnOrBefore.IsZero() {
		query += " AND snooze_until IS NOT NULL AND snooze_until <= ?"
		args = append(args, dateArg(filters.SnoozeOnOrBefore))
	}

	query += " ORDER BY due_date ASC, created_at ASC, id ASC"
	limit, limitArgs := limitClause(filters.Limit)
	query += limit
	args = append(args, limitArgs...)

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find obligations: %w", err)
	}
	defer rows.Close()

	var obligations []*secondary.ObligationRecord
	for rows.Next() {
		record, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		obligations = append(obligations, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate obligations: %w", err)
	}

	return obligations, nil
}

// AtomicUpdate reads, mutates and writes back one obligation in a single
// transaction. The write only lands if the stored version is unchanged.
func (r *ObligationRepository) AtomicUpdate(ctx context.Context, id string, mutate func(*secondary.ObligationRecord) error) (*secondary.ObligationRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.Version = current.Version + 1
	updated.UpdatedAt = r.now().UTC()

	result, err := tx.ExecContext(ctx, r.dialect.Rebind(
		`UPDATE obligations SET source = ?, contact = ?, contact_email = ?, contact_phone = ?, description = ?, due_date = ?, priority = ?, status = ?, snooze_until = ?, version = ?, updated_at = ?, completed_at = ? WHERE id = ? AND version = ?`),
		updated.Source,
		updated.Contact,
		stringArg(updated.ContactEmail),
		stringArg(updated.ContactPhone),
		updated.Description,
		dateArg(updated.DueDate),
		updated.Priority,
		updated.Status,
		dateArg(updated.SnoozeUntil),
		updated.Version,
		updated.UpdatedAt,
		timeArg(updated.CompletedAt),
		id,
		current.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update obligation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update obligation: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("obligation %s: %w", id, secondary.ErrConflict)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit obligation update: %w", err)
	}

	return &updated, nil
}

// Delete removes an obligation together with its delivery records.
func (r *ObligationRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind("DELETE FROM delivery_records WHERE obligation_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete delivery records: %w", err)
	}

	result, err := tx.ExecContext(ctx, r.dialect.Rebind("DELETE FROM obligations WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("obligation %s: %w", id, secondary.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit obligation delete: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*secondary.ObligationRecord, error) {
	var (
		contactEmail sql.NullString
		contactPhone sql.NullString
		dueDate      sql.NullString
		snoozeUntil  sql.NullString
		completedAt  sql.NullTime
	)

	record := &secondary.ObligationRecord{}
	err := row.Scan(
		&record.ID,
		&record.Source,
		&record.Contact,
		&contactEmail,
		&contactPhone,
		&record.Description,
		&dueDate,
		&record.Priority,
		&record.Status,
		&snoozeUntil,
		&record.Version,
		&record.CreatedAt,
		&record.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ContactEmail = contactEmail.String
	record.ContactPhone = contactPhone.String
	record.DueDate = parseDate(dueDate)
	record.SnoozeUntil = parseDate(snoozeUntil)
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time
	}
	return record, nil
}
