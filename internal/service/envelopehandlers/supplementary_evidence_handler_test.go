package envelopehandlers

import (
	"context"
	"errors"
	"testing"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplementaryEvidence_AttachesToFoundCase(t *testing.T) {
	payments := &stubPayments{}
	erCreator := &stubExceptionRecordCreator{}
	attacher := &stubAttacher{ok: true}
	handler := NewSupplementaryEvidenceHandler(
		&stubCaseFinder{caseDetails: testutil.NewTestCaseDetails(321)},
		attacher, erCreator, payments, zerolog.Nop())

	result, err := handler.Handle(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidence))
	require.NoError(t, err)
	assert.Equal(t, int64(321), result.CcdID)
	assert.Equal(t, AutoAttachedToCase, result.Action)

	assert.True(t, attacher.called)
	assert.Equal(t, 0, erCreator.calls)
	require.Len(t, payments.calls, 1)
	assert.Equal(t, paymentCall{caseRef: 321, isExceptionRecord: false}, payments.calls[0])
}

func TestSupplementaryEvidence_CaseNotFoundCreatesExceptionRecord(t *testing.T) {
	erCreator := &stubExceptionRecordCreator{caseRef: 910}
	attacher := &stubAttacher{ok: true}
	handler := NewSupplementaryEvidenceHandler(
		&stubCaseFinder{}, attacher, erCreator, &stubPayments{}, zerolog.Nop())

	result, err := handler.Handle(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidence))
	require.NoError(t, err)
	assert.Equal(t, int64(910), result.CcdID)
	assert.Equal(t, ExceptionRecord, result.Action)
	assert.False(t, attacher.called)
}

func TestSupplementaryEvidence_LookupFailureIsRecoverable(t *testing.T) {
	handler := NewSupplementaryEvidenceHandler(
		&stubCaseFinder{err: errors.New("case store unavailable")},
		&stubAttacher{}, &stubExceptionRecordCreator{}, &stubPayments{}, zerolog.Nop())

	_, err := handler.Handle(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidence))
	require.Error(t, err)
	assert.True(t, domainerrors.IsRecoverable(err))
}

func TestSupplementaryEvidence_AttachFailureCreatesExceptionRecord(t *testing.T) {
	erCreator := &stubExceptionRecordCreator{caseRef: 911}
	handler := NewSupplementaryEvidenceHandler(
		&stubCaseFinder{caseDetails: testutil.NewTestCaseDetails(321)},
		&stubAttacher{ok: false}, erCreator, &stubPayments{}, zerolog.Nop())

	result, err := handler.Handle(context.Background(), testutil.NewTestEnvelope(envelope.SupplementaryEvidence))
	require.NoError(t, err)
	assert.Equal(t, int64(911), result.CcdID)
	assert.Equal(t, ExceptionRecord, result.Action)
	assert.Equal(t, 1, erCreator.calls)
}

func TestSupplementaryEvidence_PaymentFailureIsRecoverable(t *testing.T) {
	handler := NewSupplementaryEvidenceHandler(
		&stubCaseFinder{caseDetails: testutil.NewTestCaseDetails(321)},
		&stubAttacher{ok: true}, &stubExceptionRecordCreator{},
		&stubPayments{err: errors.New("database unavailable")}, zerolog.Nop())

	_, err := handler.Handle(context.Background(), testutil.NewTestEnvelopeWithPayments(envelope.SupplementaryEvidence))
	require.Error(t, err)
	assert.True(t, domainerrors.IsRecoverable(err))
}
