package handler

import (
	"context"

	"gorm.io/gorm"

	"cartpay/internal/models"
	"cartpay/internal/payment"
)

// stubProvider is a canned payment.Provider for handler tests.
type stubProvider struct {
	identifier    string
	session       *payment.Session
	initiateErr   error
	initiated     []*payment.Context
	status        payment.Status
	statusErr     error
	updateSession *payment.Session
	updateErr     error
	webhookResult *payment.WebhookResult
	webhookErr    error
}

func (s *stubProvider) Identifier() string {
	if s.identifier == "" {
		return "cashfree"
	}
	return s.identifier
}

func (s *stubProvider) InitiatePayment(_ context.Context, pc *payment.Context) (*payment.Session, error) {
	s.initiated = append(s.initiated, pc)
	if s.initiateErr != nil {
		return nil, s.initiateErr
	}
	return s.session, nil
}

func (s *stubProvider) AuthorizePayment(sd map[string]interface{}) (*payment.AuthorizeResult, error) {
	return &payment.AuthorizeResult{Status: "authorized", Data: sd}, nil
}

func (s *stubProvider) CapturePayment(map[string]interface{}) (*payment.CaptureResult, error) {
	return &payment.CaptureResult{Status: "captured"}, nil
}

func (s *stubProvider) CancelPayment(sd map[string]interface{}) (*payment.CancelResult, error) {
	id, _ := sd["id"].(string)
	return &payment.CancelResult{ID: id}, nil
}

func (s *stubProvider) RefundPayment(sd map[string]interface{}, _ int64) (*payment.RefundResult, error) {
	id, _ := sd["id"].(string)
	return &payment.RefundResult{ID: id}, nil
}

func (s *stubProvider) DeletePayment(map[string]interface{}) error { return nil }

func (s *stubProvider) GetPaymentData(sd map[string]interface{}) (map[string]interface{}, error) {
	return sd, nil
}

func (s *stubProvider) GetPaymentStatus(context.Context, map[string]interface{}) (payment.Status, error) {
	if s.statusErr != nil {
		return "", s.statusErr
	}
	return s.status, nil
}

func (s *stubProvider) RetrievePayment(sd map[string]interface{}) (map[string]interface{}, error) {
	return sd, nil
}

func (s *stubProvider) UpdatePayment(context.Context, *payment.Context, map[string]interface{}) (*payment.Session, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.updateSession, nil
}

func (s *stubProvider) WebhookActionAndData(*payment.WebhookRequest) (*payment.WebhookResult, error) {
	if s.webhookErr != nil {
		return nil, s.webhookErr
	}
	return s.webhookResult, nil
}

// memSessionStore is an in-memory SessionStore.
type memSessionStore struct {
	rows map[string]*models.PaymentSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{rows: make(map[string]*models.PaymentSession)}
}

func (m *memSessionStore) Create(s *models.PaymentSession) error {
	cp := *s
	m.rows[s.OrderID] = &cp
	return nil
}

func (m *memSessionStore) FindByOrderID(orderID string) (*models.PaymentSession, error) {
	row, ok := m.rows[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memSessionStore) UpdateStatus(orderID, status string) error {
	if row, ok := m.rows[orderID]; ok {
		row.Status = status
	}
	return nil
}

func (m *memSessionStore) MarkReplaced(orderID, replacedBy string) error {
	if row, ok := m.rows[orderID]; ok {
		row.Status = "canceled"
		row.ReplacedBy = replacedBy
	}
	return nil
}

// memWebhookStore is an in-memory WebhookStore.
type memWebhookStore struct {
	events []*models.WebhookEvent
}

func (m *memWebhookStore) Create(e *models.WebhookEvent) error {
	m.events = append(m.events, e)
	return nil
}
