package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cartpay/internal/models"
	"cartpay/internal/payment"
	"cartpay/internal/repository"
)

// SessionStore is the slice of the session repository the handlers use.
type SessionStore interface {
	Create(session *models.PaymentSession) error
	FindByOrderID(orderID string) (*models.PaymentSession, error)
	UpdateStatus(orderID, status string) error
	MarkReplaced(orderID, replacedBy string) error
}

// WebhookStore records processed webhook events.
type WebhookStore interface {
	Create(event *models.WebhookEvent) error
}

var _ SessionStore = (*repository.SessionRepository)(nil)
var _ WebhookStore = (*repository.WebhookEventRepository)(nil)

// Repos bundles the stores the payment handlers need.
type Repos struct {
	Session SessionStore
	Webhook WebhookStore
}

// PaymentHandler exposes the provider lifecycle to the commerce platform.
type PaymentHandler struct {
	repos    *Repos
	registry *payment.Registry
	logger   *zap.Logger
}

func NewPaymentHandler(repos *Repos, registry *payment.Registry, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{repos: repos, registry: registry, logger: logger}
}

// createSessionRequest is the platform's payment context plus the provider
// selection.
type createSessionRequest struct {
	Provider string `json:"provider"`
	payment.Context
}

// CreateSession initiates a payment: creates the gateway order and persists
// the resulting session.
func (h *PaymentHandler) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	provider, err := h.provider(req.Provider)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sess, err := provider.InitiatePayment(c.Request().Context(), &req.Context)
	if err != nil {
		return h.paymentError(c, "initiate payment failed", err)
	}

	raw, _ := json.Marshal(sess.Data)
	row := &models.PaymentSession{
		OrderID:     req.ResourceID,
		CfOrderID:   sess.ID,
		Provider:    provider.Identifier(),
		Amount:      req.Amount,
		Currency:    req.CurrencyCode,
		Status:      string(payment.StatusPending),
		RawResponse: string(raw),
	}
	if err := h.repos.Session.Create(row); err != nil {
		h.logger.Error("failed to persist payment session", zap.Error(err),
			zap.String("order_id", req.ResourceID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store session"})
	}

	return c.JSON(http.StatusCreated, sess)
}

// GetSession re-reads a stored session payload.
func (h *PaymentHandler) GetSession(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "get session failed", err)
	}
	data, err := provider.GetPaymentData(sessionData(row))
	if err != nil {
		return h.paymentError(c, "get session failed", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id":     row.OrderID,
		"status":       row.Status,
		"session_data": data,
	})
}

// GetStatus polls the gateway for the live order state and synchronizes the
// stored session.
func (h *PaymentHandler) GetStatus(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "get status failed", err)
	}

	status, err := provider.GetPaymentStatus(c.Request().Context(), sessionData(row))
	if err != nil {
		return h.paymentError(c, "get status failed", err)
	}
	if string(status) != row.Status {
		if err := h.repos.Session.UpdateStatus(row.OrderID, string(status)); err != nil {
			h.logger.Error("failed to update session status", zap.Error(err),
				zap.String("order_id", row.OrderID))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"order_id": row.OrderID,
		"status":   string(status),
	})
}

// Authorize reports the session authorized to the platform.
func (h *PaymentHandler) Authorize(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "authorize failed", err)
	}
	result, err := provider.AuthorizePayment(sessionData(row))
	if err != nil {
		return h.paymentError(c, "authorize failed", err)
	}
	h.transition(row, payment.StatusAuthorized)
	return c.JSON(http.StatusOK, result)
}

// Capture acknowledges capture of an authorized session.
func (h *PaymentHandler) Capture(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "capture failed", err)
	}
	result, err := provider.CapturePayment(sessionData(row))
	if err != nil {
		return h.paymentError(c, "capture failed", err)
	}
	h.transition(row, payment.StatusCaptured)
	return c.JSON(http.StatusOK, result)
}

// Cancel cancels a session.
func (h *PaymentHandler) Cancel(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "cancel failed", err)
	}
	result, err := provider.CancelPayment(sessionData(row))
	if err != nil {
		return h.paymentError(c, "cancel failed", err)
	}
	h.transition(row, payment.StatusCanceled)
	return c.JSON(http.StatusOK, result)
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

// Refund acknowledges a refund for a captured session.
func (h *PaymentHandler) Refund(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "refund failed", err)
	}
	var req refundRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	result, err := provider.RefundPayment(sessionData(row), req.Amount)
	if err != nil {
		return h.paymentError(c, "refund failed", err)
	}
	h.transition(row, payment.StatusRefunded)
	return c.JSON(http.StatusOK, result)
}

// Delete discards a session.
func (h *PaymentHandler) Delete(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "delete failed", err)
	}
	if err := provider.DeletePayment(sessionData(row)); err != nil {
		return h.paymentError(c, "delete failed", err)
	}
	h.transition(row, payment.StatusCanceled)
	return c.NoContent(http.StatusNoContent)
}

// Update reconciles a session with a changed cart: unchanged orders come
// back as-is, changed ones are replaced by a revision order.
func (h *PaymentHandler) Update(c echo.Context) error {
	row, provider, err := h.loadSession(c)
	if err != nil {
		return h.paymentError(c, "update failed", err)
	}
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.ResourceID == "" {
		req.ResourceID = row.OrderID
	}

	sess, err := provider.UpdatePayment(c.Request().Context(), &req.Context, sessionData(row))
	if err != nil {
		return h.paymentError(c, "update failed", err)
	}

	if sess.ReplacedID != "" {
		newOrderID := orderIDFromSession(sess, req.ResourceID)
		if err := h.repos.Session.MarkReplaced(row.OrderID, newOrderID); err != nil {
			h.logger.Error("failed to mark session replaced", zap.Error(err),
				zap.String("order_id", row.OrderID))
		}
		raw, _ := json.Marshal(sess.Data)
		newRow := &models.PaymentSession{
			OrderID:     newOrderID,
			CfOrderID:   sess.ID,
			Provider:    provider.Identifier(),
			Amount:      req.Amount,
			Currency:    req.CurrencyCode,
			Status:      string(payment.StatusPending),
			RawResponse: string(raw),
		}
		if err := h.repos.Session.Create(newRow); err != nil {
			h.logger.Error("failed to persist replacement session", zap.Error(err),
				zap.String("order_id", newOrderID))
		}
	}

	return c.JSON(http.StatusOK, sess)
}

// ── helpers ──────────────────────────────────────────────────────────

func (h *PaymentHandler) provider(identifier string) (payment.Provider, error) {
	if identifier == "" {
		identifier = "cashfree"
	}
	return h.registry.Get(identifier)
}

func (h *PaymentHandler) loadSession(c echo.Context) (*models.PaymentSession, payment.Provider, error) {
	orderID := c.Param("order_id")
	if orderID == "" {
		return nil, nil, payment.ErrSessionNotFound
	}
	row, err := h.repos.Session.FindByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, payment.ErrSessionNotFound
		}
		return nil, nil, err
	}
	provider, err := h.registry.Get(row.Provider)
	if err != nil {
		return nil, nil, err
	}
	return row, provider, nil
}

func (h *PaymentHandler) transition(row *models.PaymentSession, status payment.Status) {
	if row.Status == string(status) {
		return
	}
	if err := h.repos.Session.UpdateStatus(row.OrderID, string(status)); err != nil {
		h.logger.Error("failed to update session status", zap.Error(err),
			zap.String("order_id", row.OrderID), zap.String("status", string(status)))
	}
}

// paymentError maps provider errors onto HTTP responses without swallowing
// the gateway's own status and body.
func (h *PaymentHandler) paymentError(c echo.Context, msg string, err error) error {
	switch {
	case errors.Is(err, payment.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, payment.ErrMissingResourceID):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, payment.ErrConfigurationMissing):
		h.logger.Error(msg, zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "payment gateway not configured"})
	}
	if ge, ok := payment.AsGatewayError(err); ok {
		h.logger.Error(msg, zap.Int("gateway_status", ge.Status), zap.String("gateway_body", ge.Body))
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error":          "gateway request failed",
			"gateway_status": ge.Status,
			"gateway_body":   json.RawMessage(rawOrQuoted(ge.Body)),
		})
	}
	h.logger.Error(msg, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// rawOrQuoted passes JSON gateway bodies through verbatim and quotes
// anything else so the response stays valid JSON.
func rawOrQuoted(body string) []byte {
	if json.Valid([]byte(body)) {
		return []byte(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}

// sessionData reconstitutes the opaque gateway payload stored on a session
// row, guaranteeing the order_id key the providers rely on.
func sessionData(row *models.PaymentSession) map[string]interface{} {
	data := make(map[string]interface{})
	if row.RawResponse != "" {
		_ = json.Unmarshal([]byte(row.RawResponse), &data)
	}
	if _, ok := data["order_id"]; !ok {
		data["order_id"] = row.OrderID
	}
	if _, ok := data["id"]; !ok && row.CfOrderID != "" {
		data["id"] = row.CfOrderID
	}
	return data
}

func orderIDFromSession(sess *payment.Session, fallback string) string {
	if v, ok := sess.Data["order_id"].(string); ok && v != "" {
		return v
	}
	return fallback
}
