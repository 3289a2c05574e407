package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists payment rows. Status updates are row-scoped; no cross-row
// locking is required.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByStatus(ctx context.Context, status Status) ([]*Payment, error)
	UpdateStatusByEnvelopeID(ctx context.Context, status Status, statusMessage, envelopeID string) error
	Update(ctx context.Context, p *Payment) error
}

// UpdateRepository persists update-payment rows.
type UpdateRepository interface {
	Create(ctx context.Context, u *UpdatePayment) error
	GetByID(ctx context.Context, id uuid.UUID) (*UpdatePayment, error)
	GetByStatus(ctx context.Context, status Status) ([]*UpdatePayment, error)
	UpdateStatusByEnvelopeID(ctx context.Context, status Status, statusMessage, envelopeID string) error
	Update(ctx context.Context, u *UpdatePayment) error
}
