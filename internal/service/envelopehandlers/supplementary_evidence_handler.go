package envelopehandlers

import (
	"context"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/rs/zerolog"
)

// CaseFinder locates the case an envelope refers to, returning nil when no
// single match exists.
type CaseFinder interface {
	FindCase(ctx context.Context, env *envelope.Envelope) (*ccd.CaseDetails, error)
}

// EvidenceAttacher attaches an envelope's documents to an existing case and
// reports whether the attach took effect.
type EvidenceAttacher interface {
	Attach(ctx context.Context, env *envelope.Envelope, existing *ccd.CaseDetails) bool
}

// SupplementaryEvidenceHandler handles SUPPLEMENTARY_EVIDENCE envelopes.
type SupplementaryEvidenceHandler struct {
	caseFinder             CaseFinder
	evidenceAttacher       EvidenceAttacher
	exceptionRecordCreator ExceptionRecordCreator
	payments               PaymentsProcessor
	logger                 zerolog.Logger
}

// NewSupplementaryEvidenceHandler creates a handler for SUPPLEMENTARY_EVIDENCE
// envelopes.
func NewSupplementaryEvidenceHandler(
	caseFinder CaseFinder,
	evidenceAttacher EvidenceAttacher,
	exceptionRecordCreator ExceptionRecordCreator,
	payments PaymentsProcessor,
	logger zerolog.Logger,
) *SupplementaryEvidenceHandler {
	return &SupplementaryEvidenceHandler{
		caseFinder:             caseFinder,
		evidenceAttacher:       evidenceAttacher,
		exceptionRecordCreator: exceptionRecordCreator,
		payments:               payments,
		logger:                 logger.With().Str("component", "supplementary-evidence-handler").Logger(),
	}
}

// Handle attaches the envelope's documents to its case, falling back to an
// exception record when the case cannot be found or the attach fails. The
// attach itself is a single attempt; redelivery is the only retry path.
func (h *SupplementaryEvidenceHandler) Handle(ctx context.Context, env *envelope.Envelope) (Result, error) {
	existingCase, err := h.caseFinder.FindCase(ctx, env)
	if err != nil {
		return Result{}, domainerrors.NewRecoverableError("case lookup failed", err)
	}

	if existingCase == nil {
		h.logger.Info().
			Str("envelope_id", env.ID).
			Str("zip_file_name", env.ZipFileName).
			Str("case_ref", env.CaseRef).
			Msg("Case not found, creating exception record instead")
		return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)
	}

	if !h.evidenceAttacher.Attach(ctx, env, existingCase) {
		h.logger.Info().
			Str("envelope_id", env.ID).
			Int64("case_ref", existingCase.ID).
			Msg("Creating exception record because attaching supplementary evidence to a case failed")
		return createExceptionRecord(ctx, h.exceptionRecordCreator, h.payments, env)
	}

	if err := h.payments.CreateNewPayment(ctx, env, existingCase.ID, false); err != nil {
		return Result{}, domainerrors.NewRecoverableError("failed to record payments for attached case", err)
	}
	return Result{CcdID: existingCase.ID, Action: AutoAttachedToCase}, nil
}
