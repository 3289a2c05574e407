package payment

import (
	"testing"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainErrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvelope() *envelope.Envelope {
	return &envelope.Envelope{
		ID:           "envelope-1",
		PoBox:        "PO BOX 123",
		Jurisdiction: "BULKSCAN",
		Container:    "bulkscan",
		Payments: []envelope.PaymentLine{
			{DocumentControlNumber: "1000001"},
			{DocumentControlNumber: "1000002"},
		},
	}
}

func TestNewPayment(t *testing.T) {
	p := NewPayment(testEnvelope(), "1234567890123456", true)

	assert.NotEqual(t, "", p.ID.String())
	assert.Equal(t, "envelope-1", p.EnvelopeID)
	assert.Equal(t, "1234567890123456", p.CcdReference)
	assert.Equal(t, "BULKSCAN", p.Jurisdiction)
	assert.Equal(t, "bulkscan", p.Service)
	assert.Equal(t, "PO BOX 123", p.PoBox)
	assert.True(t, p.IsExceptionRecord)
	assert.Equal(t, StatusAwaiting, p.Status)
	assert.Equal(t, []string{"1000001", "1000002"}, p.DocumentControlNumbers)
}

func TestNewUpdatePayment(t *testing.T) {
	u := NewUpdatePayment("envelope-1", "BULKSCAN", "1111", "2222")

	assert.Equal(t, "envelope-1", u.EnvelopeID)
	assert.Equal(t, "BULKSCAN", u.Jurisdiction)
	assert.Equal(t, "1111", u.ExceptionRecordRef)
	assert.Equal(t, "2222", u.NewCaseRef)
	assert.Equal(t, StatusAwaiting, u.Status)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusAwaiting, StatusSuccess, true},
		{StatusAwaiting, StatusError, true},
		{StatusAwaiting, StatusAwaiting, false},
		{StatusSuccess, StatusAwaiting, false},
		{StatusSuccess, StatusError, false},
		{StatusError, StatusAwaiting, true},
		{StatusError, StatusSuccess, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPayment_MarkSuccessAndError(t *testing.T) {
	p := NewPayment(testEnvelope(), "1234", false)

	require.NoError(t, p.MarkError("processor returned 500"))
	assert.Equal(t, StatusError, p.Status)
	assert.Equal(t, "processor returned 500", p.StatusMessage)

	require.NoError(t, p.Requeue())
	assert.Equal(t, StatusAwaiting, p.Status)
	assert.Equal(t, "", p.StatusMessage)

	require.NoError(t, p.MarkSuccess())
	assert.Equal(t, StatusSuccess, p.Status)
}

func TestPayment_InvalidTransition(t *testing.T) {
	p := NewPayment(testEnvelope(), "1234", false)
	require.NoError(t, p.MarkSuccess())

	err := p.Requeue()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidStateTransition)
	assert.Equal(t, StatusSuccess, p.Status)
}

func TestUpdatePayment_Transitions(t *testing.T) {
	u := NewUpdatePayment("envelope-1", "BULKSCAN", "1111", "2222")

	require.NoError(t, u.MarkError("postal address mismatch"))
	assert.Equal(t, StatusError, u.Status)

	require.NoError(t, u.Requeue())
	require.NoError(t, u.MarkSuccess())

	err := u.Requeue()
	assert.ErrorIs(t, err, domainErrors.ErrInvalidStateTransition)
}
