// Package paymentclient posts payment and payment-update instructions to the
// downstream payment processor.
package paymentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cassiomorais/caseflow/internal/domain/payment"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Poster posts payment instructions downstream. Both calls return an error on
// any non-2xx response.
type Poster interface {
	PostPayment(ctx context.Context, p *payment.Payment) error
	PostUpdatePayment(ctx context.Context, up *payment.UpdatePayment) error
}

// Client is an HTTP Poster guarded by a circuit breaker, so a struggling
// payment processor is not hammered by every scheduled task run.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
	logger     zerolog.Logger
}

// NewClient creates a payment processor client.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "payment-processor",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 10 && failureRatio >= 0.6
			},
		}),
		logger: logger.With().Str("component", "payment-client").Logger(),
	}
}

type createPaymentRequest struct {
	EnvelopeID             string   `json:"envelope_id"`
	CcdReference           string   `json:"ccd_reference"`
	Jurisdiction           string   `json:"jurisdiction"`
	Service                string   `json:"service"`
	PoBox                  string   `json:"po_box"`
	IsExceptionRecord      bool     `json:"is_exception_record"`
	DocumentControlNumbers []string `json:"document_control_numbers"`
}

type updatePaymentRequest struct {
	EnvelopeID         string `json:"envelope_id"`
	Jurisdiction       string `json:"jurisdiction"`
	ExceptionRecordRef string `json:"exception_record_ref"`
	NewCaseRef         string `json:"new_case_ref"`
}

// PostPayment sends a new payment instruction downstream.
func (c *Client) PostPayment(ctx context.Context, p *payment.Payment) error {
	return c.post(ctx, c.baseURL+"/payments", createPaymentRequest{
		EnvelopeID:             p.EnvelopeID,
		CcdReference:           p.CcdReference,
		Jurisdiction:           p.Jurisdiction,
		Service:                p.Service,
		PoBox:                  p.PoBox,
		IsExceptionRecord:      p.IsExceptionRecord,
		DocumentControlNumbers: p.DocumentControlNumbers,
	})
}

// PostUpdatePayment tells the processor to move payments from an exception
// record onto the newly created case.
func (c *Client) PostUpdatePayment(ctx context.Context, up *payment.UpdatePayment) error {
	return c.post(ctx, c.baseURL+"/payments/update", updatePaymentRequest{
		EnvelopeID:         up.EnvelopeID,
		Jurisdiction:       up.Jurisdiction,
		ExceptionRecordRef: up.ExceptionRecordRef,
		NewCaseRef:         up.NewCaseRef,
	})
}

func (c *Client) post(ctx context.Context, url string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal payment request: %w", err)
	}

	_, err = c.breaker.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			c.logger.Warn().Int("status", resp.StatusCode).Str("body", string(respBody)).
				Msg("Payment processor returned an error")
			return struct{}{}, fmt.Errorf("payment processor returned status %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	return err
}
