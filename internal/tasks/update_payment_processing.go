package tasks

import (
	"context"

	paymentclient "github.com/cassiomorais/caseflow/internal/client/payment"
	"github.com/cassiomorais/caseflow/internal/domain/payment"
	"github.com/cassiomorais/caseflow/pkg/retry"
	"github.com/rs/zerolog"
)

// UpdatePaymentProcessingTask posts awaiting update-payment rows downstream,
// with the same per-row posting budget as PaymentProcessingTask.
type UpdatePaymentProcessingTask struct {
	repo     payment.UpdateRepository
	poster   paymentclient.Poster
	retryCfg retry.Config
	logger   zerolog.Logger
}

// NewUpdatePaymentProcessingTask creates the awaiting-update-payments posting
// task.
func NewUpdatePaymentProcessingTask(
	repo payment.UpdateRepository,
	poster paymentclient.Poster,
	retryCfg retry.Config,
	logger zerolog.Logger,
) *UpdatePaymentProcessingTask {
	return &UpdatePaymentProcessingTask{
		repo:     repo,
		poster:   poster,
		retryCfg: retryCfg,
		logger:   logger.With().Str("component", "update-payment-processing-task").Logger(),
	}
}

// Run processes all awaiting update-payment rows once.
func (t *UpdatePaymentProcessingTask) Run(ctx context.Context) {
	awaiting, err := t.repo.GetByStatus(ctx, payment.StatusAwaiting)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to load awaiting update payments")
		return
	}
	if len(awaiting) == 0 {
		return
	}

	t.logger.Info().Int("count", len(awaiting)).Msg("Processing awaiting update payments")
	for _, up := range awaiting {
		t.process(ctx, up)
	}
}

func (t *UpdatePaymentProcessingTask) process(ctx context.Context, up *payment.UpdatePayment) {
	log := t.logger.With().Str("envelope_id", up.EnvelopeID).Str("update_payment_id", up.ID.String()).Logger()

	err := retry.Do(ctx, t.retryCfg, func() error {
		return t.poster.PostUpdatePayment(ctx, up)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to post update payment, marking as error")
		t.updateStatus(ctx, up.EnvelopeID, payment.StatusError, err.Error(), log)
		return
	}

	log.Info().Msg("Posted update payment")
	t.updateStatus(ctx, up.EnvelopeID, payment.StatusSuccess, "", log)
}

func (t *UpdatePaymentProcessingTask) updateStatus(ctx context.Context, envelopeID string, status payment.Status, message string, log zerolog.Logger) {
	if err := t.repo.UpdateStatusByEnvelopeID(ctx, status, message, envelopeID); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("Failed to update update-payment status")
	}
}
