// Package payments persists payment instructions derived from envelope
// processing and exposes the failed rows for operator-driven reprocessing.
package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransactionManager runs fn atomically; repositories pick up the transaction
// from the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service records payments in the awaiting state; posting them downstream is
// the scheduled tasks' job.
type Service struct {
	payments       payment.Repository
	updatePayments payment.UpdateRepository
	txManager      TransactionManager
	logger         zerolog.Logger
}

// NewService creates a payments service.
func NewService(
	payments payment.Repository,
	updatePayments payment.UpdateRepository,
	txManager TransactionManager,
	logger zerolog.Logger,
) *Service {
	return &Service{
		payments:       payments,
		updatePayments: updatePayments,
		txManager:      txManager,
		logger:         logger.With().Str("component", "payments-service").Logger(),
	}
}

// CreateNewPayment persists an awaiting payment row for the envelope's
// payment lines. Envelopes without payments are a no-op.
func (s *Service) CreateNewPayment(ctx context.Context, env *envelope.Envelope, caseRef int64, isExceptionRecord bool) error {
	if !env.HasPayments() {
		return nil
	}

	p := payment.NewPayment(env, strconv.FormatInt(caseRef, 10), isExceptionRecord)
	if err := s.payments.Create(ctx, p); err != nil {
		return fmt.Errorf("create payment for envelope %s: %w", env.ID, err)
	}

	s.logger.Info().
		Str("envelope_id", env.ID).
		Int64("case_ref", caseRef).
		Bool("is_exception_record", isExceptionRecord).
		Int("document_control_numbers", len(p.DocumentControlNumbers)).
		Msg("Recorded new payment awaiting processing")
	return nil
}

// CreateUpdatePayment persists an awaiting update-payment row, instructing the
// processor to move payments from an exception record onto a new case.
func (s *Service) CreateUpdatePayment(ctx context.Context, envelopeID, jurisdiction, exceptionRecordRef, newCaseRef string) error {
	up := payment.NewUpdatePayment(envelopeID, jurisdiction, exceptionRecordRef, newCaseRef)
	if err := s.updatePayments.Create(ctx, up); err != nil {
		return fmt.Errorf("create update payment for envelope %s: %w", envelopeID, err)
	}

	s.logger.Info().
		Str("envelope_id", envelopeID).
		Str("exception_record_ref", exceptionRecordRef).
		Str("new_case_ref", newCaseRef).
		Msg("Recorded update payment awaiting processing")
	return nil
}

// GetAllFailedNewPayments returns payment rows stuck in the error state.
func (s *Service) GetAllFailedNewPayments(ctx context.Context) ([]*payment.Payment, error) {
	return s.payments.GetByStatus(ctx, payment.StatusError)
}

// GetAllFailedUpdatePayments returns update-payment rows stuck in the error
// state.
func (s *Service) GetAllFailedUpdatePayments(ctx context.Context) ([]*payment.UpdatePayment, error) {
	return s.updatePayments.GetByStatus(ctx, payment.StatusError)
}

// ReprocessNewPayment queues a failed payment row for another posting attempt.
// The read and the requeue run in one transaction so a concurrent task run
// cannot observe the row mid-transition.
func (s *Service) ReprocessNewPayment(ctx context.Context, id uuid.UUID) error {
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Requeue(); err != nil {
			return fmt.Errorf("%w: payment %s is %s", domainerrors.ErrInvalidStateTransition, id, p.Status)
		}
		if err := s.payments.Update(ctx, p); err != nil {
			return fmt.Errorf("requeue payment %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("payment_id", id.String()).Msg("Queued failed payment for reprocessing")
	return nil
}

// ReprocessUpdatePayment queues a failed update-payment row for another
// posting attempt.
func (s *Service) ReprocessUpdatePayment(ctx context.Context, id uuid.UUID) error {
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		up, err := s.updatePayments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := up.Requeue(); err != nil {
			return fmt.Errorf("%w: update payment %s is %s", domainerrors.ErrInvalidStateTransition, id, up.Status)
		}
		if err := s.updatePayments.Update(ctx, up); err != nil {
			return fmt.Errorf("requeue update payment %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("update_payment_id", id.String()).Msg("Queued failed update payment for reprocessing")
	return nil
}
