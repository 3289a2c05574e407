// Package transformation calls the per-service document transformation
// endpoint that turns an envelope (documents + OCR data) into case field data.
package transformation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/cassiomorais/caseflow/internal/infrastructure/config"
	"github.com/rs/zerolog"
)

// CaseCreationDetails is the successful transformation output: everything the
// case store needs to create a case.
type CaseCreationDetails struct {
	CaseTypeID string         `json:"case_type_id"`
	EventID    string         `json:"event_id"`
	CaseData   map[string]any `json:"case_data"`
}

// FailureKind distinguishes transformation failures that will never succeed on
// retry from those that might.
type FailureKind int

const (
	Unrecoverable FailureKind = iota
	PotentiallyRecoverable
)

// Failure is a classified transformation error.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("envelope transformation failed: %v", f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// FailureKindOf extracts the failure kind from err, defaulting to
// PotentiallyRecoverable for unclassified errors.
func FailureKindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return PotentiallyRecoverable
}

// EnvelopeTransformer calls the configured transformation endpoint for the
// envelope's service.
type EnvelopeTransformer struct {
	services   *config.ServiceConfigProvider
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewEnvelopeTransformer creates an envelope transformer.
func NewEnvelopeTransformer(services *config.ServiceConfigProvider, logger zerolog.Logger) *EnvelopeTransformer {
	return &EnvelopeTransformer{
		services:   services,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With().Str("component", "envelope-transformer").Logger(),
	}
}

type transformationRequest struct {
	EnvelopeID   string                  `json:"envelope_id"`
	PoBox        string                  `json:"po_box"`
	Jurisdiction string                  `json:"jurisdiction"`
	FormType     string                  `json:"form_type"`
	DeliveryDate time.Time               `json:"delivery_date"`
	OpeningDate  time.Time               `json:"opening_date"`
	Documents    []envelope.Document     `json:"scanned_documents"`
	OcrData      []envelope.OcrDataField `json:"ocr_data_fields"`
}

type transformationResponse struct {
	CaseCreationDetails *CaseCreationDetails `json:"case_creation_details"`
	Warnings            []string             `json:"warnings"`
}

// Transform converts an envelope into case creation data. Validation-class
// responses (400/422) and malformed success responses are Unrecoverable; every
// other failure is PotentiallyRecoverable.
func (t *EnvelopeTransformer) Transform(ctx context.Context, env *envelope.Envelope) (*CaseCreationDetails, error) {
	svc, err := t.services.Config(env.Container)
	if err != nil {
		return nil, &Failure{Kind: Unrecoverable, Err: err}
	}

	log := t.logger.With().Str("envelope_id", env.ID).Str("service", env.Container).Logger()
	log.Info().Msg("About to transform envelope")

	payload, err := json.Marshal(transformationRequest{
		EnvelopeID:   env.ID,
		PoBox:        env.PoBox,
		Jurisdiction: env.Jurisdiction,
		FormType:     env.FormType,
		DeliveryDate: env.DeliveryDate,
		OpeningDate:  env.OpeningDate,
		Documents:    env.Documents,
		OcrData:      env.OcrData,
	})
	if err != nil {
		return nil, &Failure{Kind: Unrecoverable, Err: fmt.Errorf("marshal transformation request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.TransformationURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &Failure{Kind: Unrecoverable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Transformation call failed")
		return nil, &Failure{Kind: PotentiallyRecoverable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).
			Msg("Received validation error response from transformation endpoint")
		return nil, &Failure{
			Kind: Unrecoverable,
			Err:  fmt.Errorf("transformation endpoint returned status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Msg("Transformation endpoint returned an error")
		return nil, &Failure{
			Kind: PotentiallyRecoverable,
			Err:  fmt.Errorf("transformation endpoint returned status %d", resp.StatusCode),
		}
	}

	var result transformationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Error().Err(err).Msg("Received malformed response from transformation endpoint")
		return nil, &Failure{Kind: Unrecoverable, Err: fmt.Errorf("decode transformation response: %w", err)}
	}
	if result.CaseCreationDetails == nil || result.CaseCreationDetails.CaseTypeID == "" || result.CaseCreationDetails.EventID == "" {
		return nil, &Failure{Kind: Unrecoverable, Err: errors.New("transformation response is missing case creation details")}
	}

	log.Info().Msg("Received successful transformation response for envelope")
	return result.CaseCreationDetails, nil
}
