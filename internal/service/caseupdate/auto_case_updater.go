// Package caseupdate applies OCR-derived updates to existing cases.
package caseupdate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/client/caseupdate"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/rs/zerolog"
)

// ResultType classifies the outcome of an auto case update attempt.
type ResultType int

const (
	// Updated means the case was updated with the envelope's data.
	Updated ResultType = iota
	// Abandoned means no update was written: no target case, an ambiguous
	// target, or the update data service reported warnings.
	Abandoned
	// Failed means the attempt errored; the caller decides the fallback.
	Failed
)

// Result is the outcome of an auto case update attempt. CaseRef is set for
// Updated results.
type Result struct {
	Type    ResultType
	CaseRef int64
	Err     error
}

// UpdateDataClient fetches the merged case data for an envelope and case.
type UpdateDataClient interface {
	GetCaseUpdateData(ctx context.Context, env *envelope.Envelope, existing *ccd.CaseDetails) (*caseupdate.UpdateResult, error)
}

// AutoCaseUpdater updates the single case linked to an envelope, abandoning
// the attempt whenever the target is missing or ambiguous.
type AutoCaseUpdater struct {
	api    ccd.API
	client UpdateDataClient
	logger zerolog.Logger
}

// NewAutoCaseUpdater creates an auto case updater.
func NewAutoCaseUpdater(api ccd.API, client UpdateDataClient, logger zerolog.Logger) *AutoCaseUpdater {
	return &AutoCaseUpdater{
		api:    api,
		client: client,
		logger: logger.With().Str("component", "auto-case-updater").Logger(),
	}
}

// UpdateCase looks up the case linked to the envelope and applies the update
// data service's merge. Any error is returned as a Failed result so the
// caller can fall back to an exception record instead of leaving the case
// half-updated.
func (u *AutoCaseUpdater) UpdateCase(ctx context.Context, env *envelope.Envelope) Result {
	log := u.logger.With().Str("envelope_id", env.ID).Str("service", env.Container).Logger()

	caseRefs, err := u.api.GetCaseRefsByEnvelopeID(ctx, env.ID, env.Container)
	if err != nil {
		return Result{Type: Failed, Err: fmt.Errorf("search cases for envelope: %w", err)}
	}

	switch len(caseRefs) {
	case 0:
		log.Info().Msg("No case found to update for envelope")
		return Result{Type: Abandoned}
	case 1:
		return u.update(ctx, env, caseRefs[0], log)
	default:
		log.Warn().Ints64("case_refs", caseRefs).
			Msg("Multiple cases found for envelope, abandoning update")
		return Result{Type: Abandoned}
	}
}

func (u *AutoCaseUpdater) update(ctx context.Context, env *envelope.Envelope, caseRef int64, log zerolog.Logger) Result {
	ref := strconv.FormatInt(caseRef, 10)
	existing, err := u.api.GetCase(ctx, ref, env.Jurisdiction)
	if err != nil {
		return Result{Type: Failed, Err: fmt.Errorf("fetch case %d: %w", caseRef, err)}
	}

	updateData, err := u.client.GetCaseUpdateData(ctx, env, existing)
	if err != nil {
		return Result{Type: Failed, Err: fmt.Errorf("get case update data: %w", err)}
	}
	if len(updateData.Warnings) > 0 {
		log.Warn().Strs("warnings", updateData.Warnings).
			Msg("Update data service reported warnings, abandoning update")
		return Result{Type: Abandoned}
	}
	if updateData.CaseDetails == nil {
		return Result{Type: Failed, Err: fmt.Errorf("update data response has neither warnings nor case data")}
	}

	start, err := u.api.StartEvent(ctx, existing.Jurisdiction, existing.CaseTypeID, ref, updateData.CaseDetails.EventID)
	if err != nil {
		return Result{Type: Failed, Err: fmt.Errorf("start update event: %w", err)}
	}

	eventID := start.EventID
	if eventID == "" {
		eventID = updateData.CaseDetails.EventID
	}
	_, err = u.api.SubmitEvent(ctx, existing.Jurisdiction, existing.CaseTypeID, ref, ccd.CaseDataContent{
		EventID:          eventID,
		EventToken:       start.Token,
		EventSummary:     "Case updated with envelope data",
		EventDescription: fmt.Sprintf("Envelope %s from %s", env.ID, env.ZipFileName),
		Data:             updateData.CaseDetails.CaseData,
	})
	if err != nil {
		return Result{Type: Failed, Err: fmt.Errorf("submit update event: %w", err)}
	}

	log.Info().Int64("case_ref", caseRef).Msg("Updated case with envelope data")
	return Result{Type: Updated, CaseRef: caseRef}
}
