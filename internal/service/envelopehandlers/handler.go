// Package envelopehandlers routes envelopes to their classification-specific
// processing path and reports a uniform result for each.
package envelopehandlers

import (
	"context"
	"fmt"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
)

// PaymentsProcessor persists payment records once the terminal case for an
// envelope is known.
type PaymentsProcessor interface {
	CreateNewPayment(ctx context.Context, env *envelope.Envelope, caseRef int64, isExceptionRecord bool) error
}

// EnvelopeHandler dispatches an envelope to the handler for its
// classification.
type EnvelopeHandler struct {
	exceptionHandler             *ExceptionClassificationHandler
	newApplicationHandler        *NewApplicationHandler
	supplementaryEvidenceHandler *SupplementaryEvidenceHandler
	ocrHandler                   *SupplementaryEvidenceWithOcrHandler
}

// NewEnvelopeHandler creates the top-level envelope dispatcher.
func NewEnvelopeHandler(
	exceptionHandler *ExceptionClassificationHandler,
	newApplicationHandler *NewApplicationHandler,
	supplementaryEvidenceHandler *SupplementaryEvidenceHandler,
	ocrHandler *SupplementaryEvidenceWithOcrHandler,
) *EnvelopeHandler {
	return &EnvelopeHandler{
		exceptionHandler:             exceptionHandler,
		newApplicationHandler:        newApplicationHandler,
		supplementaryEvidenceHandler: supplementaryEvidenceHandler,
		ocrHandler:                   ocrHandler,
	}
}

// Handle routes the envelope by classification. deliveryCount is how many
// times the message has been delivered before this attempt; handlers that
// retry via redelivery use it to cap their attempts.
func (h *EnvelopeHandler) Handle(ctx context.Context, env *envelope.Envelope, deliveryCount int64) (Result, error) {
	switch env.Classification {
	case envelope.SupplementaryEvidence:
		return h.supplementaryEvidenceHandler.Handle(ctx, env)
	case envelope.SupplementaryEvidenceWithOcr:
		return h.ocrHandler.Handle(ctx, env, deliveryCount)
	case envelope.Exception:
		return h.exceptionHandler.Handle(ctx, env)
	case envelope.NewApplication:
		return h.newApplicationHandler.Handle(ctx, env, deliveryCount)
	default:
		return Result{}, fmt.Errorf("cannot determine action for envelope %s: %w", env.ID,
			&domainerrors.UnknownClassificationError{Classification: string(env.Classification)})
	}
}
