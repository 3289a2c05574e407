// Package ccd defines the contract this service consumes from the external
// case-management backend. The wire format belongs to that backend; callers
// only depend on the API interface and the error taxonomy below.
package ccd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// CaseDetails is the case-of-record as returned by the case store.
type CaseDetails struct {
	ID           int64          `json:"id"`
	Jurisdiction string         `json:"jurisdiction"`
	CaseTypeID   string         `json:"case_type_id"`
	State        string         `json:"state"`
	Data         map[string]any `json:"case_data"`
}

// StartEventResponse is the event-trigger handshake returned by the case store
// before data can be submitted.
type StartEventResponse struct {
	EventID     string       `json:"event_id"`
	Token       string       `json:"token"`
	CaseDetails *CaseDetails `json:"case_details"`
}

// CaseDataContent is the payload submitted for a case event.
type CaseDataContent struct {
	EventID          string         `json:"event_id"`
	EventToken       string         `json:"event_token"`
	EventSummary     string         `json:"event_summary"`
	EventDescription string         `json:"event_description,omitempty"`
	Data             map[string]any `json:"data"`
}

// ContentBuilder builds the case data content once the event handshake has
// produced a token.
type ContentBuilder func(StartEventResponse) CaseDataContent

// API is the case-store contract consumed by the envelope handlers.
type API interface {
	// GetCaseRefsByEnvelopeID returns ids of service cases already linked to the
	// given envelope (idempotency check for auto case creation/update).
	GetCaseRefsByEnvelopeID(ctx context.Context, envelopeID, service string) ([]int64, error)

	// GetExceptionRecordRefsByEnvelopeID returns ids of exception records
	// already created from the given envelope.
	GetExceptionRecordRefsByEnvelopeID(ctx context.Context, envelopeID, service string) ([]int64, error)

	// GetCaseRefsByLegacyID searches cases by their pre-migration reference.
	GetCaseRefsByLegacyID(ctx context.Context, legacyRef, service string) ([]int64, error)

	// GetCase fetches a single case by reference.
	GetCase(ctx context.Context, caseRef, jurisdiction string) (*CaseDetails, error)

	// CreateCase starts a creation event for the given case type, builds the
	// content via build, submits it and returns the new case id.
	CreateCase(ctx context.Context, jurisdiction, caseTypeID, eventID string, build ContentBuilder) (int64, error)

	// StartEvent begins an event on an existing case (caseRef may be empty when
	// the event creates the case).
	StartEvent(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*StartEventResponse, error)

	// SubmitEvent submits previously started event content and returns the id of
	// the affected case.
	SubmitEvent(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content CaseDataContent) (int64, error)
}

// APIError is a non-2xx response from the case store.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("case store %s returned status %d: %s", e.Operation, e.Status, e.Body)
}

// IsValidation reports whether the error is a validation-class client error
// (bad request / unprocessable entity). These are unrecoverable: retrying the
// same envelope will produce the same response.
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}

// IsValidationError reports whether err is a validation-class case-store error.
func IsValidationError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsValidation()
}
