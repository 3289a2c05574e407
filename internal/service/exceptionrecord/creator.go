// Package exceptionrecord creates exception record cases for envelopes that
// cannot be handled automatically.
package exceptionrecord

import (
	"context"
	"fmt"
	"strings"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/rs/zerolog"
)

const createEventID = "createException"

// CaseTypeID derives the exception record case type for a service container.
func CaseTypeID(container string) string {
	return strings.ToUpper(container) + "_ExceptionRecord"
}

// Creator creates exception records, at most one per envelope.
type Creator struct {
	api    ccd.API
	logger zerolog.Logger
}

// NewCreator creates an exception record creator.
func NewCreator(api ccd.API, logger zerolog.Logger) *Creator {
	return &Creator{
		api:    api,
		logger: logger.With().Str("component", "exception-record-creator").Logger(),
	}
}

// TryCreateFrom returns the reference of the envelope's exception record,
// creating one only if no exception record already references the envelope.
// Re-deliveries of the same envelope therefore reuse the first record.
func (c *Creator) TryCreateFrom(ctx context.Context, env *envelope.Envelope) (int64, error) {
	log := c.logger.With().Str("envelope_id", env.ID).Str("service", env.Container).Logger()

	existing, err := c.api.GetExceptionRecordRefsByEnvelopeID(ctx, env.ID, env.Container)
	if err != nil {
		return 0, fmt.Errorf("search existing exception records: %w", err)
	}

	switch len(existing) {
	case 0:
		return c.create(ctx, env, log)
	case 1:
		log.Info().Int64("case_ref", existing[0]).
			Msg("Exception record already exists for envelope")
		return existing[0], nil
	default:
		log.Error().Ints64("case_refs", existing).
			Msg("Multiple exception records found for envelope, using first")
		return existing[0], nil
	}
}

func (c *Creator) create(ctx context.Context, env *envelope.Envelope, log zerolog.Logger) (int64, error) {
	caseRef, err := c.api.CreateCase(ctx, env.Jurisdiction, CaseTypeID(env.Container), createEventID,
		func(start ccd.StartEventResponse) ccd.CaseDataContent {
			return ccd.CaseDataContent{
				EventID:          start.EventID,
				EventToken:       start.Token,
				EventSummary:     "Create an exception record",
				EventDescription: fmt.Sprintf("Envelope %s from %s", env.ID, env.ZipFileName),
				Data:             caseData(env),
			}
		})
	if err != nil {
		return 0, fmt.Errorf("create exception record: %w", err)
	}

	log.Info().Int64("case_ref", caseRef).Msg("Created exception record for envelope")
	return caseRef, nil
}

func caseData(env *envelope.Envelope) map[string]any {
	documents := make([]map[string]any, len(env.Documents))
	for i, doc := range env.Documents {
		documents[i] = map[string]any{
			"fileName":                 doc.FileName,
			"controlNumber":            doc.ControlNumber,
			"type":                     doc.Type,
			"subtype":                  doc.Subtype,
			"scannedDate":              doc.ScannedAt,
			"url":                      doc.URL,
			"deliveryDate":             env.DeliveryDate,
			"exceptionRecordReference": env.ID,
		}
	}

	ocrData := make([]map[string]any, len(env.OcrData))
	for i, field := range env.OcrData {
		ocrData[i] = map[string]any{
			"key":   field.Name,
			"value": field.Value,
		}
	}

	data := map[string]any{
		"envelopeId":            env.ID,
		"poBox":                 env.PoBox,
		"poBoxJurisdiction":     env.Jurisdiction,
		"journeyClassification": string(env.Classification),
		"formType":              env.FormType,
		"deliveryDate":          env.DeliveryDate,
		"openingDate":           env.OpeningDate,
		"scannedDocuments":      documents,
		"containsPayments":      containsPayments(env),
	}
	if len(ocrData) > 0 {
		data["scanOCRData"] = ocrData
	}
	if env.CaseRef != "" {
		data["caseReference"] = env.CaseRef
	}
	return data
}

func containsPayments(env *envelope.Envelope) string {
	if env.HasPayments() {
		return "Yes"
	}
	return "No"
}
