// Package tasks holds the scheduled jobs that post persisted payment rows to
// the downstream payment processor.
package tasks

import (
	"context"

	paymentclient "github.com/cassiomorais/caseflow/internal/client/payment"
	"github.com/cassiomorais/caseflow/internal/domain/payment"
	"github.com/cassiomorais/caseflow/pkg/retry"
	"github.com/rs/zerolog"
)

// PaymentProcessingTask posts awaiting payment rows downstream. Each run scans
// the awaiting set and resolves every row to success or error; rows fail
// independently of each other.
type PaymentProcessingTask struct {
	repo     payment.Repository
	poster   paymentclient.Poster
	retryCfg retry.Config
	logger   zerolog.Logger
}

// NewPaymentProcessingTask creates the awaiting-payments posting task.
func NewPaymentProcessingTask(
	repo payment.Repository,
	poster paymentclient.Poster,
	retryCfg retry.Config,
	logger zerolog.Logger,
) *PaymentProcessingTask {
	return &PaymentProcessingTask{
		repo:     repo,
		poster:   poster,
		retryCfg: retryCfg,
		logger:   logger.With().Str("component", "payment-processing-task").Logger(),
	}
}

// Run processes all awaiting payment rows once.
func (t *PaymentProcessingTask) Run(ctx context.Context) {
	awaiting, err := t.repo.GetByStatus(ctx, payment.StatusAwaiting)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to load awaiting payments")
		return
	}
	if len(awaiting) == 0 {
		return
	}

	t.logger.Info().Int("count", len(awaiting)).Msg("Processing awaiting payments")
	for _, p := range awaiting {
		t.process(ctx, p)
	}
}

func (t *PaymentProcessingTask) process(ctx context.Context, p *payment.Payment) {
	log := t.logger.With().Str("envelope_id", p.EnvelopeID).Str("payment_id", p.ID.String()).Logger()

	err := retry.Do(ctx, t.retryCfg, func() error {
		return t.poster.PostPayment(ctx, p)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to post payment, marking as error")
		t.updateStatus(ctx, p.EnvelopeID, payment.StatusError, err.Error(), log)
		return
	}

	log.Info().Msg("Posted payment")
	t.updateStatus(ctx, p.EnvelopeID, payment.StatusSuccess, "", log)
}

func (t *PaymentProcessingTask) updateStatus(ctx context.Context, envelopeID string, status payment.Status, message string, log zerolog.Logger) {
	if err := t.repo.UpdateStatusByEnvelopeID(ctx, status, message, envelopeID); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("Failed to update payment status")
	}
}
