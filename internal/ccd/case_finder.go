package ccd

import (
	"context"
	"errors"
	"strconv"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainErrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/rs/zerolog"
)

// CaseFinder locates the case an envelope refers to: first by case reference,
// then by legacy reference. Returns nil when no case can be found.
type CaseFinder struct {
	api    API
	logger zerolog.Logger
}

// NewCaseFinder creates a case finder.
func NewCaseFinder(api API, logger zerolog.Logger) *CaseFinder {
	return &CaseFinder{
		api:    api,
		logger: logger.With().Str("component", "case-finder").Logger(),
	}
}

// FindCase returns the case referenced by the envelope, or nil if none exists.
func (f *CaseFinder) FindCase(ctx context.Context, env *envelope.Envelope) (*CaseDetails, error) {
	if isValidCaseRef(env.CaseRef) {
		details, err := f.getCaseByRef(ctx, env.CaseRef, env.Jurisdiction)
		if err != nil {
			return nil, err
		}
		if details != nil {
			return details, nil
		}
	}

	if env.LegacyCaseRef != "" {
		return f.getCaseByLegacyRef(ctx, env)
	}
	return nil, nil
}

// if case ref is not numeric we do not need to search
func isValidCaseRef(caseRef string) bool {
	if caseRef == "" {
		return false
	}
	_, err := strconv.ParseInt(caseRef, 10, 64)
	return err == nil
}

func (f *CaseFinder) getCaseByRef(ctx context.Context, caseRef, jurisdiction string) (*CaseDetails, error) {
	details, err := f.api.GetCase(ctx, caseRef, jurisdiction)
	if err != nil {
		if errors.Is(err, domainErrors.ErrCaseNotFound) {
			f.logger.Info().Str("case_ref", caseRef).Msg("Case not found by reference")
			return nil, nil
		}
		if errors.Is(err, domainErrors.ErrInvalidCaseID) {
			f.logger.Warn().Str("case_ref", caseRef).Msg("Case reference is invalid")
			return nil, nil
		}
		return nil, err
	}
	return details, nil
}

func (f *CaseFinder) getCaseByLegacyRef(ctx context.Context, env *envelope.Envelope) (*CaseDetails, error) {
	caseRefs, err := f.api.GetCaseRefsByLegacyID(ctx, env.LegacyCaseRef, env.Container)
	if err != nil {
		return nil, err
	}

	switch len(caseRefs) {
	case 0:
		f.logger.Info().
			Str("legacy_case_ref", env.LegacyCaseRef).
			Str("envelope_id", env.ID).
			Msg("Case not found by legacy reference")
		return nil, nil
	case 1:
		details, err := f.getCaseByRef(ctx, strconv.FormatInt(caseRefs[0], 10), env.Jurisdiction)
		if err != nil {
			return nil, err
		}
		if details == nil {
			// found by search but the subsequent read missed - data inconsistency
			f.logger.Error().
				Str("legacy_case_ref", env.LegacyCaseRef).
				Int64("case_id", caseRefs[0]).
				Str("envelope_id", env.ID).
				Msg("Case found by legacy reference but the subsequent read could not find it")
		}
		return details, nil
	default:
		f.logger.Warn().
			Str("legacy_case_ref", env.LegacyCaseRef).
			Str("envelope_id", env.ID).
			Ints64("case_ids", caseRefs).
			Msg("Multiple cases found for legacy reference")
		return nil, nil
	}
}
