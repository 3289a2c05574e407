package testutil

import (
	"time"

	"github.com/cassiomorais/caseflow/internal/ccd"
	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	"github.com/cassiomorais/caseflow/internal/domain/payment"
)

// NewTestEnvelope builds a minimal valid envelope of the given classification.
func NewTestEnvelope(classification envelope.Classification) *envelope.Envelope {
	now := time.Now().UTC()
	return &envelope.Envelope{
		ID:             "envelope-1",
		PoBox:          "PO BOX 123",
		Jurisdiction:   "BULKSCAN",
		Container:      "bulkscan",
		ZipFileName:    "zip-file-test.zip",
		FormType:       "B123",
		DeliveryDate:   now.Add(-2 * time.Hour),
		OpeningDate:    now.Add(-time.Hour),
		Classification: classification,
		Documents: []envelope.Document{
			{
				FileName:      "doc-1.pdf",
				ControlNumber: "1000001",
				Type:          "form",
				ScannedAt:     now.Add(-90 * time.Minute),
				URL:           "https://docstore/doc-1",
				DeliveryDate:  now.Add(-2 * time.Hour),
			},
		},
		OcrData: []envelope.OcrDataField{
			{Name: "first_name", Value: "Jane"},
			{Name: "last_name", Value: "Doe"},
		},
	}
}

// NewTestEnvelopeWithPayments builds a test envelope carrying one payment line.
func NewTestEnvelopeWithPayments(classification envelope.Classification) *envelope.Envelope {
	env := NewTestEnvelope(classification)
	env.Payments = []envelope.PaymentLine{
		{DocumentControlNumber: "1000001"},
	}
	return env
}

// NewTestCaseDetails builds a case as the case store would return it.
func NewTestCaseDetails(id int64) *ccd.CaseDetails {
	return &ccd.CaseDetails{
		ID:           id,
		Jurisdiction: "BULKSCAN",
		CaseTypeID:   "Bulk_Scanned",
		State:        "ScannedRecordReceived",
		Data:         map[string]any{},
	}
}

// NewAwaitingPayment builds an AWAITING payment row from a test envelope.
func NewAwaitingPayment(envelopeID, ccdReference string) *payment.Payment {
	env := NewTestEnvelopeWithPayments(envelope.NewApplication)
	env.ID = envelopeID
	return payment.NewPayment(env, ccdReference, false)
}

// NewAwaitingUpdatePayment builds an AWAITING update-payment row.
func NewAwaitingUpdatePayment(envelopeID string) *payment.UpdatePayment {
	return payment.NewUpdatePayment(envelopeID, "BULKSCAN", "1111222233334444", "5555666677778888")
}
