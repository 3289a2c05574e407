package envelopehandlers

import (
	"context"
	"errors"
	"testing"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/cassiomorais/caseflow/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caseWithDocuments(controlNumbers ...string) *ccd.CaseDetails {
	details := testutil.NewTestCaseDetails(500)
	docs := make([]any, len(controlNumbers))
	for i, cn := range controlNumbers {
		docs[i] = map[string]any{"fileName": "existing.pdf", "controlNumber": cn}
	}
	details.Data = map[string]any{"scannedDocuments": docs}
	return details
}

func TestAttach_AddsNewDocuments(t *testing.T) {
	env := testutil.NewTestEnvelope(envelope.SupplementaryEvidence)

	var submitted ccd.CaseDataContent
	api := &testutil.MockCcdAPI{
		StartEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*ccd.StartEventResponse, error) {
			assert.Equal(t, "attachScannedDocs", eventID)
			assert.Equal(t, "500", caseRef)
			return &ccd.StartEventResponse{EventID: eventID, Token: "tok"}, nil
		},
		SubmitEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content ccd.CaseDataContent) (int64, error) {
			submitted = content
			return 500, nil
		},
	}

	attacher := NewAttachDocsToSupplementaryEvidence(api, zerolog.Nop())
	ok := attacher.Attach(context.Background(), env, caseWithDocuments("9999999"))
	assert.True(t, ok)

	docs, castOK := submitted.Data["scannedDocuments"].([]any)
	require.True(t, castOK)
	require.Len(t, docs, 2)

	added, castOK := docs[1].(map[string]any)
	require.True(t, castOK)
	assert.Equal(t, "1000001", added["controlNumber"])
	assert.Equal(t, env.ID, added["envelopeId"])
}

func TestAttach_NoNewDocumentsIsNoOpSuccess(t *testing.T) {
	env := testutil.NewTestEnvelope(envelope.SupplementaryEvidence)

	started := false
	api := &testutil.MockCcdAPI{
		StartEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*ccd.StartEventResponse, error) {
			started = true
			return &ccd.StartEventResponse{EventID: eventID, Token: "tok"}, nil
		},
	}

	attacher := NewAttachDocsToSupplementaryEvidence(api, zerolog.Nop())
	ok := attacher.Attach(context.Background(), env, caseWithDocuments("1000001"))
	assert.True(t, ok)
	assert.False(t, started)
}

func TestAttach_RechecksDocumentsAgainstEventSnapshot(t *testing.T) {
	env := testutil.NewTestEnvelope(envelope.SupplementaryEvidence)

	// The document is new against the stale case but already attached in the
	// snapshot returned by the event handshake.
	submitCalled := false
	api := &testutil.MockCcdAPI{
		StartEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*ccd.StartEventResponse, error) {
			return &ccd.StartEventResponse{
				EventID:     eventID,
				Token:       "tok",
				CaseDetails: caseWithDocuments("1000001"),
			}, nil
		},
		SubmitEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content ccd.CaseDataContent) (int64, error) {
			submitCalled = true
			return 500, nil
		},
	}

	attacher := NewAttachDocsToSupplementaryEvidence(api, zerolog.Nop())
	ok := attacher.Attach(context.Background(), env, caseWithDocuments())
	assert.True(t, ok)
	assert.False(t, submitCalled)
}

func TestAttach_StartEventFailure(t *testing.T) {
	api := &testutil.MockCcdAPI{
		StartEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*ccd.StartEventResponse, error) {
			return nil, errors.New("case store unavailable")
		},
	}

	attacher := NewAttachDocsToSupplementaryEvidence(api, zerolog.Nop())
	ok := attacher.Attach(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidence), caseWithDocuments())
	assert.False(t, ok)
}

func TestAttach_SubmitEventFailure(t *testing.T) {
	api := &testutil.MockCcdAPI{
		SubmitEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content ccd.CaseDataContent) (int64, error) {
			return 0, errors.New("event token expired")
		},
	}

	attacher := NewAttachDocsToSupplementaryEvidence(api, zerolog.Nop())
	ok := attacher.Attach(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidence), caseWithDocuments())
	assert.False(t, ok)
}
