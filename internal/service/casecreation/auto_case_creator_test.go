package casecreation

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/client/transformation"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/cassiomorais/caseflow/internal/infrastructure/config"
	"github.com/cassiomorais/caseflow/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransformer struct {
	details *transformation.CaseCreationDetails
	err     error
}

func (s *stubTransformer) Transform(ctx context.Context, env *envelope.Envelope) (*transformation.CaseCreationDetails, error) {
	return s.details, s.err
}

func serviceProvider(creationEnabled bool) *config.ServiceConfigProvider {
	return config.NewServiceConfigProvider(map[string]config.ServiceConfigItem{
		"bulkscan": {
			Jurisdiction:            "BULKSCAN",
			TransformationURL:       "http://transform",
			AutoCaseCreationEnabled: creationEnabled,
		},
	})
}

func newCreator(api ccd.API, transformer Transformer, creationEnabled bool) *AutoCaseCreator {
	return NewAutoCaseCreator(api, transformer, serviceProvider(creationEnabled), zerolog.Nop())
}

func TestCreateCase_ServiceNotConfigured(t *testing.T) {
	creator := newCreator(&testutil.MockCcdAPI{}, &stubTransformer{}, true)

	env := testutil.NewTestEnvelope(envelope.NewApplication)
	env.Container = "unknown-service"

	result := creator.CreateCase(context.Background(), env)
	assert.Equal(t, UnrecoverableFailure, result.Type)
	require.Error(t, result.Err)
}

func TestCreateCase_AutoCreationDisabled(t *testing.T) {
	creator := newCreator(&testutil.MockCcdAPI{}, &stubTransformer{}, false)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, AbortedWithoutFailure, result.Type)
	assert.NoError(t, result.Err)
}

func TestCreateCase_SearchFailureIsRecoverable(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return nil, errors.New("case store unavailable")
		},
	}
	creator := newCreator(api, &stubTransformer{}, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, PotentiallyRecoverableFailure, result.Type)
}

func TestCreateCase_CaseAlreadyExists(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return []int64{123}, nil
		},
	}
	creator := newCreator(api, &stubTransformer{}, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, CaseAlreadyExists, result.Type)
	assert.Equal(t, int64(123), result.CaseRef)
}

func TestCreateCase_MultipleCasesIsUnrecoverable(t *testing.T) {
	api := &testutil.MockCcdAPI{
		GetCaseRefsByEnvelopeIDFunc: func(ctx context.Context, envelopeID, service string) ([]int64, error) {
			return []int64{123, 456}, nil
		},
	}
	creator := newCreator(api, &stubTransformer{}, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, UnrecoverableFailure, result.Type)
	require.Error(t, result.Err)
}

func TestCreateCase_CreatesNewCase(t *testing.T) {
	transformer := &stubTransformer{
		details: &transformation.CaseCreationDetails{
			CaseTypeID: "Bulk_Scanned",
			EventID:    "createCase",
			CaseData:   map[string]any{"firstName": "Jane"},
		},
	}
	api := &testutil.MockCcdAPI{
		CreateCaseFunc: func(ctx context.Context, jurisdiction, caseTypeID, eventID string, build ccd.ContentBuilder) (int64, error) {
			assert.Equal(t, "BULKSCAN", jurisdiction)
			assert.Equal(t, "Bulk_Scanned", caseTypeID)
			assert.Equal(t, "createCase", eventID)
			content := build(ccd.StartEventResponse{EventID: eventID, Token: "tok"})
			assert.Equal(t, map[string]any{"firstName": "Jane"}, content.Data)
			return 777, nil
		},
	}
	creator := newCreator(api, transformer, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, CaseCreated, result.Type)
	assert.Equal(t, int64(777), result.CaseRef)
}

func TestCreateCase_UnrecoverableTransformationFailure(t *testing.T) {
	transformer := &stubTransformer{
		err: &transformation.Failure{Kind: transformation.Unrecoverable, Err: errors.New("invalid OCR data")},
	}
	creator := newCreator(&testutil.MockCcdAPI{}, transformer, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, UnrecoverableFailure, result.Type)
}

func TestCreateCase_TransientTransformationFailure(t *testing.T) {
	transformer := &stubTransformer{err: errors.New("transformation service timed out")}
	creator := newCreator(&testutil.MockCcdAPI{}, transformer, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, PotentiallyRecoverableFailure, result.Type)
}

func TestCreateCase_ValidationRejectionIsUnrecoverable(t *testing.T) {
	transformer := &stubTransformer{
		details: &transformation.CaseCreationDetails{CaseTypeID: "Bulk_Scanned", EventID: "createCase"},
	}
	api := &testutil.MockCcdAPI{
		CreateCaseFunc: func(ctx context.Context, jurisdiction, caseTypeID, eventID string, build ccd.ContentBuilder) (int64, error) {
			return 0, &ccd.APIError{Operation: "submit event", Status: http.StatusUnprocessableEntity, Body: "bad data"}
		},
	}
	creator := newCreator(api, transformer, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, UnrecoverableFailure, result.Type)
}

func TestCreateCase_SubmissionServerErrorIsRecoverable(t *testing.T) {
	transformer := &stubTransformer{
		details: &transformation.CaseCreationDetails{CaseTypeID: "Bulk_Scanned", EventID: "createCase"},
	}
	api := &testutil.MockCcdAPI{
		CreateCaseFunc: func(ctx context.Context, jurisdiction, caseTypeID, eventID string, build ccd.ContentBuilder) (int64, error) {
			return 0, &ccd.APIError{Operation: "submit event", Status: http.StatusInternalServerError, Body: "boom"}
		},
	}
	creator := newCreator(api, transformer, true)

	result := creator.CreateCase(context.Background(), testutil.NewTestEnvelope(envelope.NewApplication))
	assert.Equal(t, PotentiallyRecoverableFailure, result.Type)
}

func TestResultType_String(t *testing.T) {
	assert.Equal(t, "CASE_CREATED", CaseCreated.String())
	assert.Equal(t, "CASE_ALREADY_EXISTS", CaseAlreadyExists.String())
	assert.Equal(t, "ABORTED_WITHOUT_FAILURE", AbortedWithoutFailure.String())
	assert.Equal(t, "UNRECOVERABLE_FAILURE", UnrecoverableFailure.String())
	assert.Equal(t, "POTENTIALLY_RECOVERABLE_FAILURE", PotentiallyRecoverableFailure.String())
}
