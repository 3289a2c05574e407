package testutil

import (
	"context"
	"sync"

	"github.com/cassiomorais/caseflow/internal/ccd"
	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/cassiomorais/caseflow/internal/domain/payment"
	"github.com/google/uuid"
)

// --- Case Store Mock ---

// MockCcdAPI is a mock implementation of ccd.API.
type MockCcdAPI struct {
	GetCaseRefsByEnvelopeIDFunc            func(ctx context.Context, envelopeID, service string) ([]int64, error)
	GetExceptionRecordRefsByEnvelopeIDFunc func(ctx context.Context, envelopeID, service string) ([]int64, error)
	GetCaseRefsByLegacyIDFunc              func(ctx context.Context, legacyRef, service string) ([]int64, error)
	GetCaseFunc                            func(ctx context.Context, caseRef, jurisdiction string) (*ccd.CaseDetails, error)
	CreateCaseFunc                         func(ctx context.Context, jurisdiction, caseTypeID, eventID string, build ccd.ContentBuilder) (int64, error)
	StartEventFunc                         func(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*ccd.StartEventResponse, error)
	SubmitEventFunc                        func(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content ccd.CaseDataContent) (int64, error)
}

func (m *MockCcdAPI) GetCaseRefsByEnvelopeID(ctx context.Context, envelopeID, service string) ([]int64, error) {
	if m.GetCaseRefsByEnvelopeIDFunc != nil {
		return m.GetCaseRefsByEnvelopeIDFunc(ctx, envelopeID, service)
	}
	return nil, nil
}

func (m *MockCcdAPI) GetExceptionRecordRefsByEnvelopeID(ctx context.Context, envelopeID, service string) ([]int64, error) {
	if m.GetExceptionRecordRefsByEnvelopeIDFunc != nil {
		return m.GetExceptionRecordRefsByEnvelopeIDFunc(ctx, envelopeID, service)
	}
	return nil, nil
}

func (m *MockCcdAPI) GetCaseRefsByLegacyID(ctx context.Context, legacyRef, service string) ([]int64, error) {
	if m.GetCaseRefsByLegacyIDFunc != nil {
		return m.GetCaseRefsByLegacyIDFunc(ctx, legacyRef, service)
	}
	return nil, nil
}

func (m *MockCcdAPI) GetCase(ctx context.Context, caseRef, jurisdiction string) (*ccd.CaseDetails, error) {
	if m.GetCaseFunc != nil {
		return m.GetCaseFunc(ctx, caseRef, jurisdiction)
	}
	return nil, nil
}

func (m *MockCcdAPI) CreateCase(ctx context.Context, jurisdiction, caseTypeID, eventID string, build ccd.ContentBuilder) (int64, error) {
	if m.CreateCaseFunc != nil {
		return m.CreateCaseFunc(ctx, jurisdiction, caseTypeID, eventID, build)
	}
	return 0, nil
}

func (m *MockCcdAPI) StartEvent(ctx context.Context, jurisdiction, caseTypeID, caseRef, eventID string) (*ccd.StartEventResponse, error) {
	if m.StartEventFunc != nil {
		return m.StartEventFunc(ctx, jurisdiction, caseTypeID, caseRef, eventID)
	}
	return &ccd.StartEventResponse{EventID: eventID, Token: "test-token"}, nil
}

func (m *MockCcdAPI) SubmitEvent(ctx context.Context, jurisdiction, caseTypeID, caseRef string, content ccd.CaseDataContent) (int64, error) {
	if m.SubmitEventFunc != nil {
		return m.SubmitEventFunc(ctx, jurisdiction, caseTypeID, caseRef, content)
	}
	return 0, nil
}

// --- Payment Repository Mock ---

// MockPaymentRepository is an in-memory mock implementation of
// payment.Repository.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*payment.Payment

	CreateFunc                   func(ctx context.Context, p *payment.Payment) error
	GetByIDFunc                  func(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	GetByStatusFunc              func(ctx context.Context, status payment.Status) ([]*payment.Payment, error)
	UpdateStatusByEnvelopeIDFunc func(ctx context.Context, status payment.Status, statusMessage, envelopeID string) error
	UpdateFunc                   func(ctx context.Context, p *payment.Payment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[uuid.UUID]*payment.Payment)}
}

// AddPayment pre-populates the mock with a payment row.
func (m *MockPaymentRepository) AddPayment(p *payment.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
}

// GetPaymentByID returns the stored row (test helper, no context needed).
func (m *MockPaymentRepository) GetPaymentByID(id uuid.UUID) *payment.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domainerrors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockPaymentRepository) GetByStatus(ctx context.Context, status payment.Status) ([]*payment.Payment, error) {
	if m.GetByStatusFunc != nil {
		return m.GetByStatusFunc(ctx, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*payment.Payment
	for _, p := range m.payments {
		if p.Status == status {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatusByEnvelopeID(ctx context.Context, status payment.Status, statusMessage, envelopeID string) error {
	if m.UpdateStatusByEnvelopeIDFunc != nil {
		return m.UpdateStatusByEnvelopeIDFunc(ctx, status, statusMessage, envelopeID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, p := range m.payments {
		if p.EnvelopeID == envelopeID {
			p.Status = status
			p.StatusMessage = statusMessage
			found = true
		}
	}
	if !found {
		return domainerrors.ErrPaymentNotFound
	}
	return nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

// --- Update Payment Repository Mock ---

// MockUpdatePaymentRepository is an in-memory mock implementation of
// payment.UpdateRepository.
type MockUpdatePaymentRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*payment.UpdatePayment

	CreateFunc                   func(ctx context.Context, u *payment.UpdatePayment) error
	GetByIDFunc                  func(ctx context.Context, id uuid.UUID) (*payment.UpdatePayment, error)
	GetByStatusFunc              func(ctx context.Context, status payment.Status) ([]*payment.UpdatePayment, error)
	UpdateStatusByEnvelopeIDFunc func(ctx context.Context, status payment.Status, statusMessage, envelopeID string) error
	UpdateFunc                   func(ctx context.Context, u *payment.UpdatePayment) error
}

func NewMockUpdatePaymentRepository() *MockUpdatePaymentRepository {
	return &MockUpdatePaymentRepository{payments: make(map[uuid.UUID]*payment.UpdatePayment)}
}

// AddUpdatePayment pre-populates the mock with an update-payment row.
func (m *MockUpdatePaymentRepository) AddUpdatePayment(u *payment.UpdatePayment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[u.ID] = u
}

// GetUpdatePaymentByID returns the stored row (test helper, no context needed).
func (m *MockUpdatePaymentRepository) GetUpdatePaymentByID(id uuid.UUID) *payment.UpdatePayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[id]
}

func (m *MockUpdatePaymentRepository) Create(ctx context.Context, u *payment.UpdatePayment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[u.ID] = u
	return nil
}

func (m *MockUpdatePaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.UpdatePayment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.payments[id]
	if !ok {
		return nil, domainerrors.ErrPaymentNotFound
	}
	return u, nil
}

func (m *MockUpdatePaymentRepository) GetByStatus(ctx context.Context, status payment.Status) ([]*payment.UpdatePayment, error) {
	if m.GetByStatusFunc != nil {
		return m.GetByStatusFunc(ctx, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*payment.UpdatePayment
	for _, u := range m.payments {
		if u.Status == status {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *MockUpdatePaymentRepository) UpdateStatusByEnvelopeID(ctx context.Context, status payment.Status, statusMessage, envelopeID string) error {
	if m.UpdateStatusByEnvelopeIDFunc != nil {
		return m.UpdateStatusByEnvelopeIDFunc(ctx, status, statusMessage, envelopeID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, u := range m.payments {
		if u.EnvelopeID == envelopeID {
			u.Status = status
			u.StatusMessage = statusMessage
			found = true
		}
	}
	if !found {
		return domainerrors.ErrPaymentNotFound
	}
	return nil
}

func (m *MockUpdatePaymentRepository) Update(ctx context.Context, u *payment.UpdatePayment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[u.ID] = u
	return nil
}

// --- Transaction Manager Mock ---

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Payment Poster Mock ---

// MockPaymentPoster is a mock implementation of the payment processor client.
type MockPaymentPoster struct {
	mu                     sync.Mutex
	postPaymentCalls       int
	postUpdatePaymentCalls int

	PostPaymentFunc       func(ctx context.Context, p *payment.Payment) error
	PostUpdatePaymentFunc func(ctx context.Context, up *payment.UpdatePayment) error
}

func (m *MockPaymentPoster) PostPayment(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	m.postPaymentCalls++
	m.mu.Unlock()
	if m.PostPaymentFunc != nil {
		return m.PostPaymentFunc(ctx, p)
	}
	return nil
}

func (m *MockPaymentPoster) PostUpdatePayment(ctx context.Context, up *payment.UpdatePayment) error {
	m.mu.Lock()
	m.postUpdatePaymentCalls++
	m.mu.Unlock()
	if m.PostUpdatePaymentFunc != nil {
		return m.PostUpdatePaymentFunc(ctx, up)
	}
	return nil
}

// PostPaymentCalls returns how many times PostPayment was invoked.
func (m *MockPaymentPoster) PostPaymentCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.postPaymentCalls
}

// PostUpdatePaymentCalls returns how many times PostUpdatePayment was invoked.
func (m *MockPaymentPoster) PostUpdatePaymentCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.postUpdatePaymentCalls
}

// --- Stream Publisher Mock ---

// PublishedMessage is a single message captured by MockPublisher.
type PublishedMessage struct {
	Stream string
	Values map[string]any
}

// MockPublisher is a mock stream publisher that records every publish.
type MockPublisher struct {
	mu        sync.Mutex
	published []PublishedMessage

	PublishFunc func(ctx context.Context, stream string, values map[string]any) error
}

func (m *MockPublisher) Publish(ctx context.Context, stream string, values map[string]any) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, stream, values)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedMessage{Stream: stream, Values: values})
	return nil
}

// Published returns the messages captured so far.
func (m *MockPublisher) Published() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedMessage(nil), m.published...)
}
