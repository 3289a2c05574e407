package controller

import (
	"fmt"
	"net/http"

	domainErrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/service/payments"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PaymentController exposes the failed payment rows and operator-driven
// reprocessing.
type PaymentController struct {
	service *payments.Service
}

// NewPaymentController creates a payment controller.
func NewPaymentController(service *payments.Service) *PaymentController {
	return &PaymentController{service: service}
}

// GetFailedNewPayments returns payment rows in the error state.
func (c *PaymentController) GetFailedNewPayments(w http.ResponseWriter, r *http.Request) {
	failed, err := c.service.GetAllFailedNewPayments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := PaymentListResponse{Count: len(failed), Payments: make([]PaymentResponse, len(failed))}
	for i, p := range failed {
		resp.Payments[i] = toPaymentResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFailedUpdatePayments returns update-payment rows in the error state.
func (c *PaymentController) GetFailedUpdatePayments(w http.ResponseWriter, r *http.Request) {
	failed, err := c.service.GetAllFailedUpdatePayments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := UpdatePaymentListResponse{Count: len(failed), Payments: make([]UpdatePaymentResponse, len(failed))}
	for i, u := range failed {
		resp.Payments[i] = toUpdatePaymentResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateUpdatePayment records an awaiting update-payment row instructing the
// processor to move payments from an exception record onto a case.
func (c *PaymentController) CreateUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreateUpdatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := c.service.CreateUpdatePayment(r.Context(),
		req.EnvelopeID, req.Jurisdiction, req.ExceptionRecordRef, req.NewCaseRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// RetryNewPayment queues a failed payment row for another posting attempt.
func (c *PaymentController) RetryNewPayment(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := c.service.ReprocessNewPayment(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

// RetryUpdatePayment queues a failed update-payment row for another posting
// attempt.
func (c *PaymentController) RetryUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := c.service.ReprocessUpdatePayment(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}

func paymentID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id must be a UUID", domainErrors.ErrInvalidInput)
	}
	return id, nil
}
