package envelopehandlers

import (
	"context"
	"strconv"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/rs/zerolog"
)

const attachEventID = "attachScannedDocs"

// AttachDocsToSupplementaryEvidence attaches an envelope's scanned documents
// to an existing case.
type AttachDocsToSupplementaryEvidence struct {
	api    ccd.API
	logger zerolog.Logger
}

// NewAttachDocsToSupplementaryEvidence creates a document attacher.
func NewAttachDocsToSupplementaryEvidence(api ccd.API, logger zerolog.Logger) *AttachDocsToSupplementaryEvidence {
	return &AttachDocsToSupplementaryEvidence{
		api:    api,
		logger: logger.With().Str("component", "attach-docs").Logger(),
	}
}

// Attach adds the envelope's documents to the existing case, skipping any
// the case already holds. An envelope with no new documents is a no-op
// success. Returns false when the case-store event is rejected.
func (a *AttachDocsToSupplementaryEvidence) Attach(ctx context.Context, env *envelope.Envelope, existing *ccd.CaseDetails) bool {
	log := a.logger.With().
		Str("envelope_id", env.ID).
		Str("zip_file_name", env.ZipFileName).
		Int64("case_ref", existing.ID).
		Str("case_state", existing.State).
		Logger()

	if len(docsToAdd(existing, env.Documents)) == 0 {
		log.Warn().Msg("Envelope has no new documents, case not updated")
		return true
	}

	log.Info().Msg("Attaching supplementary evidence")

	caseRef := strconv.FormatInt(existing.ID, 10)
	start, err := a.api.StartEvent(ctx, env.Jurisdiction, existing.CaseTypeID, caseRef, attachEventID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start attach event on case")
		return false
	}

	// The event handshake returns current case data; recompute against it so
	// concurrent attaches do not duplicate documents.
	current := existing
	if start.CaseDetails != nil {
		current = start.CaseDetails
	}
	newDocs := docsToAdd(current, env.Documents)
	if len(newDocs) == 0 {
		log.Warn().Msg("Envelope has no new documents, case not updated")
		return true
	}

	_, err = a.api.SubmitEvent(ctx, env.Jurisdiction, existing.CaseTypeID, caseRef, ccd.CaseDataContent{
		EventID:      start.EventID,
		EventToken:   start.Token,
		EventSummary: "Attach scanned documents",
		Data: map[string]any{
			"scannedDocuments": append(existingDocuments(current), documentData(env, newDocs)...),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to attach documents from envelope to case")
		return false
	}

	log.Info().Msg("Attached documents from envelope to case")
	return true
}

// docsToAdd returns the envelope documents whose control numbers are not
// already present on the case.
func docsToAdd(existing *ccd.CaseDetails, docs []envelope.Document) []envelope.Document {
	seen := make(map[string]struct{})
	for _, doc := range existingDocuments(existing) {
		if m, ok := doc.(map[string]any); ok {
			if cn, ok := m["controlNumber"].(string); ok {
				seen[cn] = struct{}{}
			}
		}
	}

	var out []envelope.Document
	for _, doc := range docs {
		if _, ok := seen[doc.ControlNumber]; !ok {
			out = append(out, doc)
		}
	}
	return out
}

func existingDocuments(details *ccd.CaseDetails) []any {
	if details == nil || details.Data == nil {
		return nil
	}
	docs, _ := details.Data["scannedDocuments"].([]any)
	return docs
}

func documentData(env *envelope.Envelope, docs []envelope.Document) []any {
	out := make([]any, len(docs))
	for i, doc := range docs {
		out[i] = map[string]any{
			"fileName":      doc.FileName,
			"controlNumber": doc.ControlNumber,
			"type":          doc.Type,
			"subtype":       doc.Subtype,
			"scannedDate":   doc.ScannedAt,
			"url":           doc.URL,
			"deliveryDate":  env.DeliveryDate,
			"envelopeId":    env.ID,
		}
	}
	return out
}
