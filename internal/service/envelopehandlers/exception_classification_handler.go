package envelopehandlers

import (
	"context"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
)

// ExceptionRecordCreator creates (or finds) the exception record for an
// envelope.
type ExceptionRecordCreator interface {
	TryCreateFrom(ctx context.Context, env *envelope.Envelope) (int64, error)
}

// ExceptionClassificationHandler handles EXCEPTION envelopes: an exception
// record is always created, with no automated attempt first.
type ExceptionClassificationHandler struct {
	exceptionRecordCreator ExceptionRecordCreator
	payments               PaymentsProcessor
}

// NewExceptionClassificationHandler creates a handler for EXCEPTION envelopes.
func NewExceptionClassificationHandler(creator ExceptionRecordCreator, payments PaymentsProcessor) *ExceptionClassificationHandler {
	return &ExceptionClassificationHandler{
		exceptionRecordCreator: creator,
		payments:               payments,
	}
}

// Handle creates the envelope's exception record and records its payments
// against it.
func (h *ExceptionClassificationHandler) Handle(ctx context.Context, env *envelope.Envelope) (Result, error) {
	return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)
}
