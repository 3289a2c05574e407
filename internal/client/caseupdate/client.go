// Package caseupdate calls the per-service case update data endpoint, which
// merges an envelope's documents and OCR data into an existing case's fields.
package caseupdate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/cassiomorais/caseflow/internal/infrastructure/config"
	"github.com/rs/zerolog"
)

// UpdateResult carries the verdict of the case update data endpoint: either
// warnings that abandon the update, or the merged case data to submit.
type UpdateResult struct {
	Warnings    []string       `json:"warnings"`
	CaseDetails *UpdateDetails `json:"case_update_details"`
}

// UpdateDetails is the merged case data returned on success.
type UpdateDetails struct {
	EventID  string         `json:"event_id"`
	CaseData map[string]any `json:"case_data"`
}

// Client calls the configured case update data endpoint for a service.
type Client struct {
	services   *config.ServiceConfigProvider
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a case update data client.
func NewClient(services *config.ServiceConfigProvider, logger zerolog.Logger) *Client {
	return &Client{
		services:   services,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With().Str("component", "case-update-client").Logger(),
	}
}

type updateRequest struct {
	CaseDetails  *ccd.CaseDetails        `json:"case_details"`
	EnvelopeID   string                  `json:"envelope_id"`
	Documents    []envelope.Document     `json:"scanned_documents"`
	OcrData      []envelope.OcrDataField `json:"ocr_data_fields"`
	DeliveryDate time.Time               `json:"delivery_date"`
}

// GetCaseUpdateData asks the service how the existing case should change for
// this envelope. A non-2xx response or malformed body is returned as an error;
// callers decide whether it is worth retrying.
func (c *Client) GetCaseUpdateData(ctx context.Context, env *envelope.Envelope, existing *ccd.CaseDetails) (*UpdateResult, error) {
	svc, err := c.services.Config(env.Container)
	if err != nil {
		return nil, err
	}

	log := c.logger.With().
		Str("envelope_id", env.ID).
		Str("service", env.Container).
		Int64("case_ref", existing.ID).
		Logger()

	payload, err := json.Marshal(updateRequest{
		CaseDetails:  existing,
		EnvelopeID:   env.ID,
		Documents:    env.Documents,
		OcrData:      env.OcrData,
		DeliveryDate: env.DeliveryDate,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal case update request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.CaseUpdateURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("Case update data call failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).
			Msg("Case update data endpoint returned an error")
		return nil, fmt.Errorf("case update data endpoint returned status %d", resp.StatusCode)
	}

	var result UpdateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode case update data response: %w", err)
	}
	return &result, nil
}
