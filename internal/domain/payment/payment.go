package payment

import (
	"time"

	"github.com/cassiomorais/caseflow/internal/domain/envelope"
	domainErrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/google/uuid"
)

// Status represents the lifecycle state of a persisted payment row.
type Status string

const (
	StatusAwaiting Status = "AWAITING"
	StatusSuccess  Status = "SUCCESS"
	StatusError    Status = "ERROR"
)

// Payment is a persisted payment row derived from an envelope that reached a
// terminal processing outcome. It is owned by this service for its whole
// lifecycle: created AWAITING, moved to SUCCESS or ERROR by the reprocessing
// task, never deleted here.
type Payment struct {
	ID                     uuid.UUID
	EnvelopeID             string
	CcdReference           string
	Jurisdiction           string
	Service                string
	PoBox                  string
	IsExceptionRecord      bool
	Status                 Status
	StatusMessage          string
	DocumentControlNumbers []string
	CreatedAt              time.Time
	LastUpdatedAt          time.Time
}

// UpdatePayment is a persisted request to move payments from an exception
// record to the case that superseded it.
type UpdatePayment struct {
	ID                 uuid.UUID
	EnvelopeID         string
	Jurisdiction       string
	ExceptionRecordRef string
	NewCaseRef         string
	Status             Status
	StatusMessage      string
	CreatedAt          time.Time
	LastUpdatedAt      time.Time
}

// NewPayment creates an AWAITING payment row from an envelope and the case it
// was resolved to.
func NewPayment(env *envelope.Envelope, ccdReference string, isExceptionRecord bool) *Payment {
	dcns := make([]string, 0, len(env.Payments))
	for _, p := range env.Payments {
		dcns = append(dcns, p.DocumentControlNumber)
	}

	now := time.Now().UTC()
	return &Payment{
		ID:                     uuid.New(),
		EnvelopeID:             env.ID,
		CcdReference:           ccdReference,
		Jurisdiction:           env.Jurisdiction,
		Service:                env.Container,
		PoBox:                  env.PoBox,
		IsExceptionRecord:      isExceptionRecord,
		Status:                 StatusAwaiting,
		DocumentControlNumbers: dcns,
		CreatedAt:              now,
		LastUpdatedAt:          now,
	}
}

// NewUpdatePayment creates an AWAITING update-payment row.
func NewUpdatePayment(envelopeID, jurisdiction, exceptionRecordRef, newCaseRef string) *UpdatePayment {
	now := time.Now().UTC()
	return &UpdatePayment{
		ID:                 uuid.New(),
		EnvelopeID:         envelopeID,
		Jurisdiction:       jurisdiction,
		ExceptionRecordRef: exceptionRecordRef,
		NewCaseRef:         newCaseRef,
		Status:             StatusAwaiting,
		CreatedAt:          now,
		LastUpdatedAt:      now,
	}
}

// CanTransitionTo checks whether a status transition is allowed. SUCCESS and
// ERROR are terminal from this service's perspective; an operator-triggered
// requeue resets ERROR back to AWAITING.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusAwaiting:
		return next == StatusSuccess || next == StatusError
	case StatusError:
		return next == StatusAwaiting
	default:
		return false
	}
}

// MarkSuccess transitions the payment to SUCCESS.
func (p *Payment) MarkSuccess() error {
	return p.transition(StatusSuccess, "")
}

// MarkError transitions the payment to ERROR with a diagnostic message.
func (p *Payment) MarkError(message string) error {
	return p.transition(StatusError, message)
}

// Requeue resets an ERROR payment back to AWAITING for another posting round.
func (p *Payment) Requeue() error {
	return p.transition(StatusAwaiting, "")
}

func (p *Payment) transition(next Status, message string) error {
	if !p.Status.CanTransitionTo(next) {
		return domainErrors.NewDomainError(
			"invalid_transition",
			"cannot transition payment from "+string(p.Status)+" to "+string(next),
			domainErrors.ErrInvalidStateTransition,
		)
	}
	p.Status = next
	p.StatusMessage = message
	p.LastUpdatedAt = time.Now().UTC()
	return nil
}

// MarkSuccess transitions the update payment to SUCCESS.
func (u *UpdatePayment) MarkSuccess() error {
	return u.transition(StatusSuccess, "")
}

// MarkError transitions the update payment to ERROR with a diagnostic message.
func (u *UpdatePayment) MarkError(message string) error {
	return u.transition(StatusError, message)
}

// Requeue resets an ERROR update payment back to AWAITING.
func (u *UpdatePayment) Requeue() error {
	return u.transition(StatusAwaiting, "")
}

func (u *UpdatePayment) transition(next Status, message string) error {
	if !u.Status.CanTransitionTo(next) {
		return domainErrors.NewDomainError(
			"invalid_transition",
			"cannot transition update payment from "+string(u.Status)+" to "+string(next),
			domainErrors.ErrInvalidStateTransition,
		)
	}
	u.Status = next
	u.StatusMessage = message
	u.LastUpdatedAt = time.Now().UTC()
	return nil
}
