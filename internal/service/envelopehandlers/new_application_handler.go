package envelopehandlers

import (
	"context"
	"fmt"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/service/casecreation"
)

// Handlers that retry through message redelivery give up after this many
// deliveries and fall back to an exception record.
const maxRetriesForPotentiallyRecoverableFailures = 2

// CaseCreator attempts idempotent auto case creation for an envelope.
type CaseCreator interface {
	CreateCase(ctx context.Context, env *envelope.Envelope) casecreation.Result
}

// NewApplicationHandler handles NEW_APPLICATION envelopes.
type NewApplicationHandler struct {
	caseCreator            CaseCreator
	exceptionRecordCreator ExceptionRecordCreator
	payments               PaymentsProcessor
}

// NewNewApplicationHandler creates a handler for NEW_APPLICATION envelopes.
func NewNewApplicationHandler(
	caseCreator CaseCreator,
	exceptionRecordCreator ExceptionRecordCreator,
	payments PaymentsProcessor,
) *NewApplicationHandler {
	return &NewApplicationHandler{
		caseCreator:            caseCreator,
		exceptionRecordCreator: exceptionRecordCreator,
		payments:               payments,
	}
}

// Handle attempts auto case creation. Potentially recoverable failures are
// retried through message redelivery until the delivery cap, then fall back
// to an exception record; everything else resolves on this delivery.
func (h *NewApplicationHandler) Handle(ctx context.Context, env *envelope.Envelope, deliveryCount int64) (Result, error) {
	result := h.caseCreator.CreateCase(ctx, env)

	switch result.Type {
	case casecreation.CaseCreated, casecreation.CaseAlreadyExists:
		if err := h.payments.CreateNewPayment(ctx, env, result.CaseRef, false); err != nil {
			return Result{}, domainerrors.NewRecoverableError("failed to record payments for created case", err)
		}
		return Result{CcdID: result.CaseRef, Action: AutoCreatedCase}, nil

	case casecreation.AbortedWithoutFailure, casecreation.UnrecoverableFailure:
		// A case cannot be created; an exception record takes its place.
		return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)

	case casecreation.PotentiallyRecoverableFailure:
		if deliveryCount < maxRetriesForPotentiallyRecoverableFailures {
			return Result{}, domainerrors.NewRecoverableError(
				"case creation failed due to a potentially recoverable error", result.Err)
		}
		// Too many attempts, fall back to an exception record.
		return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)

	default:
		return Result{}, fmt.Errorf("unknown case creation result type: %s", result.Type)
	}
}

func createExceptionRecord(
	ctx context.Context,
	creator ExceptionRecordCreator,
	payments PaymentsProcessor,
	env *envelope.Envelope,
) (Result, error) {
	ccdID, err := creator.TryCreateFrom(ctx, env)
	if err != nil {
		return Result{}, domainerrors.NewRecoverableError("failed to create exception record", err)
	}
	if err := payments.CreateNewPayment(ctx, env, ccdID, true); err != nil {
		return Result{}, domainerrors.NewRecoverableError("failed to record payments for exception record", err)
	}
	return Result{CcdID: ccdID, Action: ExceptionRecord}, nil
}
