package controller

import (
	"time"

	"github.com/cassiomorais/caseflow/internal/domain/payment"
)

// --- Request DTOs ---

// CreateUpdatePaymentRequest queues an instruction for the payment processor
// to move payments from an exception record onto a case.
type CreateUpdatePaymentRequest struct {
	EnvelopeID         string `json:"envelope_id" validate:"required"`
	Jurisdiction       string `json:"jurisdiction" validate:"required"`
	ExceptionRecordRef string `json:"exception_record_ref" validate:"required,numeric"`
	NewCaseRef         string `json:"new_case_ref" validate:"required,numeric"`
}

// --- Response DTOs ---

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// PaymentResponse represents a payment row in API responses.
type PaymentResponse struct {
	ID                     string    `json:"id"`
	EnvelopeID             string    `json:"envelope_id"`
	CcdReference           string    `json:"ccd_reference"`
	Jurisdiction           string    `json:"jurisdiction"`
	Service                string    `json:"service"`
	IsExceptionRecord      bool      `json:"is_exception_record"`
	Status                 string    `json:"status"`
	StatusMessage          string    `json:"status_message,omitempty"`
	DocumentControlNumbers []string  `json:"document_control_numbers"`
	CreatedAt              time.Time `json:"created_at"`
	LastUpdatedAt          time.Time `json:"last_updated_at"`
}

// UpdatePaymentResponse represents an update-payment row in API responses.
type UpdatePaymentResponse struct {
	ID                 string    `json:"id"`
	EnvelopeID         string    `json:"envelope_id"`
	Jurisdiction       string    `json:"jurisdiction"`
	ExceptionRecordRef string    `json:"exception_record_ref"`
	NewCaseRef         string    `json:"new_case_ref"`
	Status             string    `json:"status"`
	StatusMessage      string    `json:"status_message,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	LastUpdatedAt      time.Time `json:"last_updated_at"`
}

// PaymentListResponse wraps a list of payments with its count.
type PaymentListResponse struct {
	Count    int               `json:"count"`
	Payments []PaymentResponse `json:"payments"`
}

// UpdatePaymentListResponse wraps a list of update payments with its count.
type UpdatePaymentListResponse struct {
	Count    int                     `json:"count"`
	Payments []UpdatePaymentResponse `json:"payments"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                     p.ID.String(),
		EnvelopeID:             p.EnvelopeID,
		CcdReference:           p.CcdReference,
		Jurisdiction:           p.Jurisdiction,
		Service:                p.Service,
		IsExceptionRecord:      p.IsExceptionRecord,
		Status:                 string(p.Status),
		StatusMessage:          p.StatusMessage,
		DocumentControlNumbers: p.DocumentControlNumbers,
		CreatedAt:              p.CreatedAt,
		LastUpdatedAt:          p.LastUpdatedAt,
	}
}

func toUpdatePaymentResponse(u *payment.UpdatePayment) UpdatePaymentResponse {
	return UpdatePaymentResponse{
		ID:                 u.ID.String(),
		EnvelopeID:         u.EnvelopeID,
		Jurisdiction:       u.Jurisdiction,
		ExceptionRecordRef: u.ExceptionRecordRef,
		NewCaseRef:         u.NewCaseRef,
		Status:             string(u.Status),
		StatusMessage:      u.StatusMessage,
		CreatedAt:          u.CreatedAt,
		LastUpdatedAt:      u.LastUpdatedAt,
	}
}
