// Package casecreation creates cases automatically from envelopes whose
// service has opted into auto case creation.
package casecreation

import (
	"context"
	"fmt"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/client/transformation"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/cassiomorais/caseflow/internal/infrastructure/config"
	"github.com/rs/zerolog"
)

// Transformer turns an envelope into case creation data.
type Transformer interface {
	Transform(ctx context.Context, env *envelope.Envelope) (*transformation.CaseCreationDetails, error)
}

// AutoCaseCreator attempts to create a case from an envelope, exactly once per
// envelope id.
type AutoCaseCreator struct {
	api         ccd.API
	transformer Transformer
	services    *config.ServiceConfigProvider
	logger      zerolog.Logger
}

// NewAutoCaseCreator creates an auto case creator.
func NewAutoCaseCreator(
	api ccd.API,
	transformer Transformer,
	services *config.ServiceConfigProvider,
	logger zerolog.Logger,
) *AutoCaseCreator {
	return &AutoCaseCreator{
		api:         api,
		transformer: transformer,
		services:    services,
		logger:      logger.With().Str("component", "auto-case-creator").Logger(),
	}
}

// CreateCase attempts auto case creation for the envelope. The search by
// envelope id makes the operation idempotent across re-deliveries: an envelope
// that already produced a case reports CaseAlreadyExists instead of creating
// a duplicate.
func (c *AutoCaseCreator) CreateCase(ctx context.Context, env *envelope.Envelope) Result {
	log := c.logger.With().Str("envelope_id", env.ID).Str("service", env.Container).Logger()

	svc, err := c.services.Config(env.Container)
	if err != nil {
		return unrecoverableFailure(err)
	}
	if !svc.AutoCaseCreationEnabled {
		log.Info().Msg("Auto case creation is disabled for service")
		return aborted()
	}

	existing, err := c.api.GetCaseRefsByEnvelopeID(ctx, env.ID, env.Container)
	if err != nil {
		log.Error().Err(err).Msg("Failed to search for cases referencing envelope")
		return potentiallyRecoverableFailure(err)
	}

	switch len(existing) {
	case 0:
		return c.createNewCase(ctx, env, log)
	case 1:
		log.Info().Int64("case_ref", existing[0]).Msg("Case already exists for envelope")
		return alreadyExists(existing[0])
	default:
		err := fmt.Errorf("multiple cases (%d) found for envelope %s", len(existing), env.ID)
		log.Error().Ints64("case_refs", existing).Msg("Multiple cases found for envelope")
		return unrecoverableFailure(err)
	}
}

func (c *AutoCaseCreator) createNewCase(ctx context.Context, env *envelope.Envelope, log zerolog.Logger) Result {
	details, err := c.transformer.Transform(ctx, env)
	if err != nil {
		if transformation.FailureKindOf(err) == transformation.Unrecoverable {
			log.Error().Err(err).Msg("Envelope transformation rejected, giving up on auto case creation")
			return unrecoverableFailure(err)
		}
		log.Warn().Err(err).Msg("Envelope transformation failed, may succeed on retry")
		return potentiallyRecoverableFailure(err)
	}

	caseRef, err := c.api.CreateCase(ctx, env.Jurisdiction, details.CaseTypeID, details.EventID,
		func(start ccd.StartEventResponse) ccd.CaseDataContent {
			return ccd.CaseDataContent{
				EventID:          start.EventID,
				EventToken:       start.Token,
				EventSummary:     "Case created automatically from envelope",
				EventDescription: fmt.Sprintf("Envelope %s from %s", env.ID, env.ZipFileName),
				Data:             details.CaseData,
			}
		})
	if err != nil {
		if ccd.IsValidationError(err) {
			log.Error().Err(err).Msg("Case submission rejected as invalid")
			return unrecoverableFailure(err)
		}
		log.Warn().Err(err).Msg("Case submission failed, may succeed on retry")
		return potentiallyRecoverableFailure(err)
	}

	log.Info().Int64("case_ref", caseRef).Msg("Created case for envelope")
	return created(caseRef)
}
