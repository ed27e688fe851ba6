package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/followup/internal/db"
	"github.com/example/followup/internal/ports/secondary"
)

const deliveryColumns = `id, obligation_id, channel, recipient, tier, tier_days, subject, sent_at, sent_on, outcome, error_detail`

// DeliveryRepository implements secondary.DeliveryRepository.
type DeliveryRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

// NewDeliveryRepository creates a new delivery record repository.
func NewDeliveryRepository(conn *sql.DB, dialect db.Dialect) *DeliveryRepository {
	return &DeliveryRepository{db: conn, dialect: dialect}
}

// Append persists a delivery record. A second sent record for the same
// obligation, channel and day is rejected with secondary.ErrDuplicateDelivery.
func (r *DeliveryRepository) Append(ctx context.Context, d *secondary.DeliveryRecord) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		`INSERT INTO delivery_records (`+deliveryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		d.ID,
		d.ObligationID,
		d.Channel,
		d.Recipient,
		d.Tier,
		d.TierDays,
		d.Subject,
		d.SentAt.UTC(),
		dateArg(d.SentOn),
		d.Outcome,
		stringArg(d.ErrorDetail),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("obligation %s via %s: %w", d.ObligationID, d.Channel, secondary.ErrDuplicateDelivery)
		}
		return fmt.Errorf("failed to append delivery record: %w", err)
	}
	return nil
}

// FindByObligationAndDate returns the records of one obligation counted against day.
func (r *DeliveryRepository) FindByObligationAndDate(ctx context.Context, obligationID string, day time.Time) ([]*secondary.DeliveryRecord, error) {
	return r.query(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_records WHERE obligation_id = ? AND sent_on = ? ORDER BY sent_at ASC`,
		obligationID, dateArg(day),
	)
}

// List retrieves delivery records matching the given filters, newest first.
func (r *DeliveryRepository) List(ctx context.Context, filters secondary.DeliveryFilters) ([]*secondary.DeliveryRecord, error) {
	query := `SELECT ` + deliveryColumns + ` FROM delivery_records WHERE 1=1`
	args := []any{}

	if filters.ObligationID != "" {
		query += " AND obligation_id = ?"
		args = append(args, filters.ObligationID)
	}
	if filters.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filters.Outcome)
	}

	query += " ORDER BY sent_at DESC, id DESC"
	limit, limitArgs := limitClause(filters.Limit)
	query += limit
	args = append(args, limitArgs...)

	return r.query(ctx, query, args...)
}

func (r *DeliveryRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.DeliveryRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery records: %w", err)
	}
	defer rows.Close()

	var records []*secondary.DeliveryRecord
	for rows.Next() {
		var (
			sentOn      sql.NullString
			errorDetail sql.NullString
		)
		record := &secondary.DeliveryRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.ObligationID,
			&record.Channel,
			&record.Recipient,
			&record.Tier,
			&record.TierDays,
			&record.Subject,
			&record.SentAt,
			&sentOn,
			&record.Outcome,
			&errorDetail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}
		record.SentOn = parseDate(sentOn)
		record.ErrorDetail = errorDetail.String
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delivery records: %w", err)
	}

	return records, nil
}
