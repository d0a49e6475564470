package cashfree

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"

	"cartpay/internal/payment"
)

// Webhook event types delivered by the gateway.
const (
	eventPaymentSuccess     = "PAYMENT_SUCCESS_WEBHOOK"
	eventPaymentFailed      = "PAYMENT_FAILED_WEBHOOK"
	eventPaymentUserDropped = "PAYMENT_USER_DROPPED_WEBHOOK"
)

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID       string  `json:"order_id"`
			OrderAmount   float64 `json:"order_amount"`
			OrderCurrency string  `json:"order_currency"`
		} `json:"order"`
		Payment struct {
			CfPaymentID   json.Number `json:"cf_payment_id"`
			PaymentStatus string      `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

// WebhookActionAndData verifies the delivery signature and translates the
// event into a platform action. Unverifiable deliveries are rejected, never
// silently accepted; unrecognized event types come back as not_supported so
// the platform can acknowledge and ignore them.
func (p *Provider) WebhookActionAndData(req *payment.WebhookRequest) (*payment.WebhookResult, error) {
	if !p.configured {
		return nil, payment.ErrConfigurationMissing
	}
	if !verifyWebhookSignature(req, p.creds.secretKey) {
		return nil, payment.ErrInvalidWebhookSignature
	}

	var evt webhookEvent
	if err := json.Unmarshal(req.Body, &evt); err != nil {
		return nil, fmt.Errorf("cashfree: decode webhook payload: %w", err)
	}
	var raw map[string]interface{}
	_ = json.Unmarshal(req.Body, &raw)

	result := &payment.WebhookResult{
		OrderID: evt.Data.Order.OrderID,
		Amount:  int64(math.Round(evt.Data.Order.OrderAmount * 100)),
		Raw:     raw,
	}

	switch evt.Type {
	case eventPaymentSuccess:
		if evt.Data.Payment.PaymentStatus == "AUTHORIZED" {
			result.Action = payment.WebhookAuthorized
		} else {
			result.Action = payment.WebhookCaptured
		}
	case eventPaymentFailed:
		result.Action = payment.WebhookFailed
	case eventPaymentUserDropped:
		result.Action = payment.WebhookCanceled
	default:
		result.Action = payment.WebhookNotSupported
	}
	return result, nil
}

// verifyWebhookSignature checks the x-webhook-signature header: the base64
// HMAC-SHA256 of timestamp+body under the secret key.
func verifyWebhookSignature(req *payment.WebhookRequest, secretKey string) bool {
	if req.Signature == "" {
		return false
	}
	expected := signWebhookPayload(req.Timestamp, req.Body, secretKey)
	return hmac.Equal([]byte(expected), []byte(req.Signature))
}

func signWebhookPayload(timestamp string, body []byte, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
