package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cartpay/internal/models"
	"cartpay/internal/payment"
)

// Signature headers sent by the gateway on every webhook delivery.
const (
	headerWebhookSignature = "x-webhook-signature"
	headerWebhookTimestamp = "x-webhook-timestamp"
)

// WebhookHandler receives gateway webhooks and applies the resulting
// session transitions. This is the path that moves a session from pending
// to authorized or captured after the shopper returns from the gateway.
type WebhookHandler struct {
	repos    *Repos
	registry *payment.Registry
	logger   *zap.Logger
}

func NewWebhookHandler(repos *Repos, registry *payment.Registry, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{repos: repos, registry: registry, logger: logger}
}

// Handle verifies and translates a webhook delivery for the provider named
// in the path, then transitions the referenced session.
func (h *WebhookHandler) Handle(c echo.Context) error {
	provider, err := h.registry.Get(c.Param("provider"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown provider"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
	}

	result, err := provider.WebhookActionAndData(&payment.WebhookRequest{
		Body:      body,
		Signature: c.Request().Header.Get(headerWebhookSignature),
		Timestamp: c.Request().Header.Get(headerWebhookTimestamp),
	})
	if err != nil {
		if errors.Is(err, payment.ErrInvalidWebhookSignature) {
			h.logger.Warn("webhook signature rejected",
				zap.String("provider", provider.Identifier()))
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		}
		h.logger.Error("webhook translation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	if result.Action == payment.WebhookNotSupported {
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	row, err := h.repos.Session.FindByOrderID(result.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.Warn("webhook for unknown session",
				zap.String("order_id", result.OrderID),
				zap.String("action", string(result.Action)))
			return c.JSON(http.StatusOK, map[string]string{"status": "not_found"})
		}
		h.logger.Error("webhook session lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
	}

	if payment.Status(row.Status).Terminal() {
		return c.JSON(http.StatusOK, map[string]string{"status": "already_processed"})
	}

	status := statusForAction(result.Action)
	if err := h.repos.Session.UpdateStatus(row.OrderID, string(status)); err != nil {
		h.logger.Error("webhook status update failed", zap.Error(err),
			zap.String("order_id", row.OrderID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "update failed"})
	}

	event := &models.WebhookEvent{
		Provider: provider.Identifier(),
		OrderID:  result.OrderID,
		Action:   string(result.Action),
		Payload:  string(body),
	}
	if err := h.repos.Webhook.Create(event); err != nil {
		h.logger.Error("webhook audit insert failed", zap.Error(err))
	}

	h.logger.Info("webhook applied",
		zap.String("order_id", result.OrderID),
		zap.String("action", string(result.Action)),
		zap.String("status", string(status)))

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func statusForAction(action payment.WebhookAction) payment.Status {
	switch action {
	case payment.WebhookAuthorized:
		return payment.StatusAuthorized
	case payment.WebhookCaptured:
		return payment.StatusCaptured
	case payment.WebhookFailed, payment.WebhookCanceled:
		return payment.StatusCanceled
	default:
		return payment.StatusPending
	}
}
