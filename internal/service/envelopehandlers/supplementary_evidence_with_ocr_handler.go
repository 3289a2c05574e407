package envelopehandlers

import (
	"context"
	"fmt"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/infrastructure/config"
	"github.com/cassiomorais/caseflow/internal/service/caseupdate"
)

// CaseUpdater applies an envelope's OCR-derived updates to its case.
type CaseUpdater interface {
	UpdateCase(ctx context.Context, env *envelope.Envelope) caseupdate.Result
}

// SupplementaryEvidenceWithOcrHandler handles SUPPLEMENTARY_EVIDENCE_WITH_OCR
// envelopes.
type SupplementaryEvidenceWithOcrHandler struct {
	caseUpdater            CaseUpdater
	exceptionRecordCreator ExceptionRecordCreator
	payments               PaymentsProcessor
	services               *config.ServiceConfigProvider
}

// NewSupplementaryEvidenceWithOcrHandler creates a handler for
// SUPPLEMENTARY_EVIDENCE_WITH_OCR envelopes.
func NewSupplementaryEvidenceWithOcrHandler(
	caseUpdater CaseUpdater,
	exceptionRecordCreator ExceptionRecordCreator,
	payments PaymentsProcessor,
	services *config.ServiceConfigProvider,
) *SupplementaryEvidenceWithOcrHandler {
	return &SupplementaryEvidenceWithOcrHandler{
		caseUpdater:            caseUpdater,
		exceptionRecordCreator: exceptionRecordCreator,
		payments:               payments,
		services:               services,
	}
}

// Handle attempts auto case update when the service has opted in, falling back
// to an exception record when the update is abandoned or keeps failing.
func (h *SupplementaryEvidenceWithOcrHandler) Handle(ctx context.Context, env *envelope.Envelope, deliveryCount int64) (Result, error) {
	svc, err := h.services.Config(env.Container)
	if err != nil {
		return Result{}, err
	}
	if !svc.AutoCaseUpdateEnabled {
		return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)
	}

	result := h.caseUpdater.UpdateCase(ctx, env)

	switch result.Type {
	case caseupdate.Updated:
		if err := h.payments.CreateNewPayment(ctx, env, result.CaseRef, false); err != nil {
			return Result{}, domainerrors.NewRecoverableError("failed to record payments for updated case", err)
		}
		return Result{CcdID: result.CaseRef, Action: AutoUpdatedCase}, nil

	case caseupdate.Failed:
		if deliveryCount < maxRetriesForPotentiallyRecoverableFailures {
			return Result{}, domainerrors.NewRecoverableError(
				"updating case failed due to a potentially recoverable error", result.Err)
		}
		return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)

	case caseupdate.Abandoned:
		// No case can be updated for this envelope.
		return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)

	default:
		return Result{}, fmt.Errorf("unsupported case update result type: %d", result.Type)
	}
}
