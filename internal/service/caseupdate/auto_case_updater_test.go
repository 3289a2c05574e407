package caseupdate

import (
	"context"
	"errors"
	"testing"

	"github.com/cassiomorais/caseflow/internal/ccd"
	clientcaseupdate "github.com/cassiomorais/caseflow/internal/client/caseupdate"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/cassiomorais/caseflow/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpdateDataClient struct {
	result *clientcaseupdate.UpdateResult
	err    error
}

func (s *stubUpdateDataClient) GetCaseUpdateData(ctx context.Context, env *envelope.Envelope, existing *ccd.CaseDetails) (*clientcaseupdate.UpdateResult, error) {
	return s.result, s.err
}

func TestUpdateCase_NoCaseFoundIsAbandoned(t *testing.T) {
	updater := NewAutoCaseUpdater(&testutil.MockCcdAPI{}, &stubUpdateDataClient{}, zerolog.Nop())

	result := updater.UpdateCase(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidenceWithOcr))
	assert.Equal(t, Abandoned, result.Type)
	assert.NoError(t, result.Err)
}

func TestUpdateCase_MultipleCasesIsAbandoned(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return []int64{1, 2}, nil
		},
	}
	updater := NewAutoCaseUpdater(api, &stubUpdateDataClient{}, zerolog.Nop())

	result := updater.UpdateCase(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidenceWithOcr))
	assert.Equal(t, Abandoned, result.Type)
}

func TestUpdateCase_SearchFailure(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return nil, errors.New("case store unavailable")
		},
	}
	updater := NewAutoCaseUpdater(api, &stubUpdateDataClient{}, zerolog.Nop())

	result := updater.UpdateCase(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidenceWithOcr))
	assert.Equal(t, Failed, result.Type)
	require.Error(t, result.Err)
}

func TestUpdateCase_WarningsAbandonUpdate(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return []int64{100}, nil
		},
		GetCaseFunc: func(ctx context.Context, caseRef, jurisdiction string) (*ccd.CaseDetails, error) {
			return testutil.NewTestCaseDetails(100), nil
		},
	}
	client := &stubUpdateDataClient{
		result: &clientcaseupdate.UpdateResult{Warnings: []string{"date of birth mismatch"}},
	}
	updater := NewAutoCaseUpdater(api, client, zerolog.Nop())

	result := updater.UpdateCase(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidenceWithOcr))
	assert.Equal(t, Abandoned, result.Type)
}

func TestUpdateCase_EmptyUpdateResponseIsFailed(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return []int64{100}, nil
		},
		GetCaseFunc: func(ctx context.Context, caseRef, jurisdiction string) (*ccd.CaseDetails, error) {
			return testutil.NewTestCaseDetails(100), nil
		},
	}
	updater := NewAutoCaseUpdater(api, &stubUpdateDataClient{result: &clientcaseupdate.UpdateResult{}}, zerolog.Nop())

	result := updater.UpdateCase(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidenceWithOcr))
	assert.Equal(t, Failed, result.Type)
}

func TestUpdateCase_Success(t *testing.T) {
	var submitted ccd.CaseDataContent
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return []int64{100}, nil
		},
		GetCaseFunc: func(ctx context.Context, caseRef, jurisdiction string) (*ccd.CaseDetails, error) {
			assert.Equal(t, "100", caseRef)
			assert.Equal(t, "BULKSCAN", jurisdiction)
			return testutil.NewTestCaseDetails(100), nil
		},
		StartEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*ccd.StartEventResponse, error) {
			assert.Equal(t, "attachScannedDocsWithOcrData", eventID)
			return &ccd.StartEventResponse{EventID: eventID, Token: "tok"}, nil
		},
		SubmitEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content ccd.CaseDataContent) (int64, error) {
			submitted = content
			return 100, nil
		},
	}
	client := &stubUpdateDataClient{
		result: &clientcaseupdate.UpdateResult{
			CaseDetails: &clientcaseupdate.UpdateDetails{
				EventID:  "attachScannedDocsWithOcrData",
				CaseData: map[string]any{"firstName": "Jane"},
			},
		},
	}
	updater := NewAutoCaseUpdater(api, client, zerolog.Nop())

	result := updater.UpdateCase(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidenceWithOcr))
	assert.Equal(t, Updated, result.Type)
	assert.Equal(t, int64(100), result.CaseRef)
	assert.Equal(t, "attachScannedDocsWithOcrData", submitted.EventID)
	assert.Equal(t, "tok", submitted.EventToken)
	assert.Equal(t, map[string]any{"firstName": "Jane"}, submitted.Data)
}

func TestUpdateCase_SubmitFailure(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return []int64{100}, nil
		},
		GetCaseFunc: func(ctx context.Context, caseRef, jurisdiction string) (*ccd.CaseDetails, error) {
			return testutil.NewTestCaseDetails(100), nil
		},
		SubmitEventFunc: func(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content ccd.CaseDataContent) (int64, error) {
			return 0, errors.New("event token expired")
		},
	}
	client := &stubUpdateDataClient{
		result: &clientcaseupdate.UpdateResult{
			CaseDetails: &clientcaseupdate.UpdateDetails{EventID: "attachScannedDocsWithOcrData"},
		},
	}
	updater := NewAutoCaseUpdater(api, client, zerolog.Nop())

	result := updater.UpdateCase(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidenceWithOcr))
	assert.Equal(t, Failed, result.Type)
}
