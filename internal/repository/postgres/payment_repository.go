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

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const paymentColumns = `id, envelope_id, ccd_reference, jurisdiction, service, po_box,
	        is_exception_record, status, status_message, document_control_numbers,
	        created_at, last_updated_at`

// Create inserts a new payment row.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, envelope_id, ccd_reference, jurisdiction, service, po_box,
		  is_exception_record, status, status_message, document_control_numbers,
		  created_at, last_updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.EnvelopeID, p.CcdReference, p.Jurisdiction, p.Service, p.PoBox,
		p.IsExceptionRecord, string(p.Status), p.StatusMessage, p.DocumentControlNumbers,
		p.CreatedAt, p.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

// GetByStatus retrieves all payments in the given status, oldest first.
func (r *PaymentRepository) GetByStatus(ctx context.Context, status payment.Status) ([]*payment.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query payments by status: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// UpdateStatusByEnvelopeID moves all of an envelope's payment rows to the
// given status.
func (r *PaymentRepository) UpdateStatusByEnvelopeID(ctx context.Context, status payment.Status, statusMessage, envelopeID string) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET status=$1, status_message=$2, last_updated_at=now()
		 WHERE envelope_id=$3`,
		string(status), statusMessage, envelopeID,
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

// Update updates an existing payment row.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET status=$1, status_message=$2, ccd_reference=$3, last_updated_at=now()
		 WHERE id=$4`,
		string(p.Status), p.StatusMessage, p.CcdReference, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) scanPayment(row scanner) (*payment.Payment, error) {
	var p payment.Payment
	var status string

	err := row.Scan(
		&p.ID, &p.EnvelopeID, &p.CcdReference, &p.Jurisdiction, &p.Service, &p.PoBox,
		&p.IsExceptionRecord, &status, &p.StatusMessage, &p.DocumentControlNumbers,
		&p.CreatedAt, &p.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	p.Status = payment.Status(status)
	return &p, nil
}
