package ccd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	domainErrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/rs/zerolog"
)

// TokenProvider supplies per-jurisdiction auth tokens. The identity service
// itself is an external collaborator.
type TokenProvider interface {
	Token(ctx context.Context, jurisdiction string) (string, error)
}

// Client is the HTTP implementation of the case-store API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     zerolog.Logger
}

// NewClient creates a case-store client.
func NewClient(baseURL string, tokens TokenProvider, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger.With().Str("component", "ccd-client").Logger(),
	}
}

func (c *Client) GetCaseRefsByEnvelopeID(ctx context.Context, envelopeID, service string) ([]int64, error) {
	q := url.Values{"envelope_id": {envelopeID}, "service": {service}}
	return c.searchCaseRefs(ctx, "/cases/search", q, service)
}

func (c *Client) GetExceptionRecordRefsByEnvelopeID(ctx context.Context, envelopeID, service string) ([]int64, error) {
	q := url.Values{"envelope_id": {envelopeID}, "service": {service}}
	return c.searchCaseRefs(ctx, "/exception-records/search", q, service)
}

func (c *Client) GetCaseRefsByLegacyID(ctx context.Context, legacyRef, service string) ([]int64, error) {
	q := url.Values{"legacy_id": {legacyRef}, "service": {service}}
	return c.searchCaseRefs(ctx, "/cases/search", q, service)
}

func (c *Client) searchCaseRefs(ctx context.Context, path string, q url.Values, jurisdiction string) ([]int64, error) {
	var resp struct {
		CaseIDs []int64 `json:"case_ids"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path+"?"+q.Encode(), jurisdiction, nil, &resp); err != nil {
		return nil, err
	}
	return resp.CaseIDs, nil
}

func (c *Client) GetCase(ctx context.Context, caseRef, jurisdiction string) (*CaseDetails, error) {
	if _, err := strconv.ParseInt(caseRef, 10, 64); err != nil {
		return nil, fmt.Errorf("case ref %q: %w", caseRef, domainErrors.ErrInvalidCaseID)
	}

	var details CaseDetails
	err := c.doJSON(ctx, http.MethodGet, "/cases/"+caseRef, jurisdiction, nil, &details)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("case %s: %w", caseRef, domainErrors.ErrCaseNotFound)
		}
		return nil, err
	}
	return &details, nil
}

func (c *Client) CreateCase(
	ctx context.Context,
	jurisdiction, caseTypeID, eventID string,
	build ContentBuilder,
) (int64, error) {
	startResp, err := c.StartEvent(ctx, jurisdiction, caseTypeID, "", eventID)
	if err != nil {
		return 0, err
	}
	return c.SubmitEvent(ctx, jurisdiction, caseTypeID, "", build(*startResp))
}

func (c *Client) StartEvent(
	ctx context.Context,
	jurisdiction, caseTypeID, caseRef, eventID string,
) (*StartEventResponse, error) {
	path := "/case-types/" + url.PathEscape(caseTypeID) + "/event-triggers/" + url.PathEscape(eventID)
	if caseRef != "" {
		path = "/cases/" + url.PathEscape(caseRef) + path
	}

	var resp StartEventResponse
	if err := c.doJSON(ctx, http.MethodGet, path, jurisdiction, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitEvent(
	ctx context.Context,
	jurisdiction, caseTypeID, caseRef string,
	content CaseDataContent,
) (int64, error) {
	path := "/case-types/" + url.PathEscape(caseTypeID) + "/cases"
	if caseRef != "" {
		path = "/cases/" + url.PathEscape(caseRef) + "/events"
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, jurisdiction, content, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, jurisdiction string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx, jurisdiction)
	if err != nil {
		return fmt.Errorf("obtain case store token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("case store call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Operation: method + " " + path, Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode case store response: %w", err)
		}
	}
	return nil
}
