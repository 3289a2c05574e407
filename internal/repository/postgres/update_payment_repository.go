package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UpdatePaymentRepository implements payment.UpdateRepository using PostgreSQL.
type UpdatePaymentRepository struct {
	pool *pgxpool.Pool
}

// NewUpdatePaymentRepository creates a new UpdatePaymentRepository.
func NewUpdatePaymentRepository(pool *pgxpool.Pool) *UpdatePaymentRepository {
	return &UpdatePaymentRepository{pool: pool}
}

func (r *UpdatePaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const updatePaymentColumns = `id, envelope_id, jurisdiction, exception_record_ref, new_case_ref,
	        status, status_message, created_at, last_updated_at`

// Create inserts a new update-payment row.
func (r *UpdatePaymentRepository) Create(ctx context.Context, u *payment.UpdatePayment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO update_payments
		 (id, envelope_id, jurisdiction, exception_record_ref, new_case_ref,
		  status, status_message, created_at, last_updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.EnvelopeID, u.Jurisdiction, u.ExceptionRecordRef, u.NewCaseRef,
		string(u.Status), u.StatusMessage, u.CreatedAt, u.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert update payment: %w", err)
	}
	return nil
}

// GetByID retrieves an update payment by its ID.
func (r *UpdatePaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.UpdatePayment, error) {
	return r.scanUpdatePayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+updatePaymentColumns+` FROM update_payments WHERE id = $1`, id))
}

// GetByStatus retrieves all update payments in the given status, oldest first.
func (r *UpdatePaymentRepository) GetByStatus(ctx context.Context, status payment.Status) ([]*payment.UpdatePayment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+updatePaymentColumns+` FROM update_payments WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query update payments by status: %w", err)
	}
	defer rows.Close()

	var updates []*payment.UpdatePayment
	for rows.Next() {
		u, err := r.scanUpdatePayment(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// UpdateStatusByEnvelopeID moves all of an envelope's update-payment rows to
// the given status.
func (r *UpdatePaymentRepository) UpdateStatusByEnvelopeID(ctx context.Context, status payment.Status, statusMessage, envelopeID string) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE update_payments SET status=$1, status_message=$2, last_updated_at=now()
		 WHERE envelope_id=$3`,
		string(status), statusMessage, envelopeID,
	)
	if err != nil {
		return fmt.Errorf("update update-payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

// Update updates an existing update-payment row.
func (r *UpdatePaymentRepository) Update(ctx context.Context, u *payment.UpdatePayment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE update_payments SET status=$1, status_message=$2, new_case_ref=$3, last_updated_at=now()
		 WHERE id=$4`,
		string(u.Status), u.StatusMessage, u.NewCaseRef, u.ID,
	)
	if err != nil {
		return fmt.Errorf("update update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

func (r *UpdatePaymentRepository) scanUpdatePayment(row scanner) (*payment.UpdatePayment, error) {
	var u payment.UpdatePayment
	var status string

	err := row.Scan(
		&u.ID, &u.EnvelopeID, &u.Jurisdiction, &u.ExceptionRecordRef, &u.NewCaseRef,
		&status, &u.StatusMessage, &u.CreatedAt, &u.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan update payment: %w", err)
	}

	u.Status = payment.Status(status)
	return &u, nil
}
