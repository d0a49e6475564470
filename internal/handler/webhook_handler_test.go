package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cartpay/internal/payment"
)

func newWebhookHandlerTest(t *testing.T, provider *stubProvider) (*WebhookHandler, *memSessionStore, *memWebhookStore) {
	t.Helper()
	registry := payment.NewRegistry()
	registry.Register(provider)
	sessions := newMemSessionStore()
	webhooks := &memWebhookStore{}
	repos := &Repos{Session: sessions, Webhook: webhooks}
	return NewWebhookHandler(repos, registry, zap.NewNop()), sessions, webhooks
}

func deliverWebhook(e *echo.Echo, provider, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/"+provider, strings.NewReader(body))
	req.Header.Set(headerWebhookSignature, "sig")
	req.Header.Set(headerWebhookTimestamp, "1700000000")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("provider")
	c.SetParamValues(provider)
	return c, rec
}

func webhookStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["status"]
}

func TestWebhookCapturesSession(t *testing.T) {
	provider := &stubProvider{
		webhookResult: &payment.WebhookResult{
			Action:  payment.WebhookCaptured,
			OrderID: "order_1",
			Amount:  50000,
		},
	}
	h, sessions, webhooks := newWebhookHandlerTest(t, provider)
	seedSession(t, sessions, "order_1", string(payment.StatusPending))
	e := echo.New()

	c, rec := deliverWebhook(e, "cashfree", `{"type":"PAYMENT_SUCCESS_WEBHOOK"}`)
	require.NoError(t, h.Handle(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", webhookStatus(t, rec))

	row, err := sessions.FindByOrderID("order_1")
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusCaptured), row.Status)

	require.Len(t, webhooks.events, 1)
	assert.Equal(t, "order_1", webhooks.events[0].OrderID)
	assert.Equal(t, string(payment.WebhookCaptured), webhooks.events[0].Action)
	assert.Equal(t, `{"type":"PAYMENT_SUCCESS_WEBHOOK"}`, webhooks.events[0].Payload)
}

func TestWebhookFailureCancelsSession(t *testing.T) {
	provider := &stubProvider{
		webhookResult: &payment.WebhookResult{
			Action:  payment.WebhookFailed,
			OrderID: "order_1",
		},
	}
	h, sessions, _ := newWebhookHandlerTest(t, provider)
	seedSession(t, sessions, "order_1", string(payment.StatusPending))
	e := echo.New()

	c, _ := deliverWebhook(e, "cashfree", `{"type":"PAYMENT_FAILED_WEBHOOK"}`)
	require.NoError(t, h.Handle(c))

	row, err := sessions.FindByOrderID("order_1")
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusCanceled), row.Status)
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	provider := &stubProvider{webhookErr: payment.ErrInvalidWebhookSignature}
	h, _, webhooks := newWebhookHandlerTest(t, provider)
	e := echo.New()

	c, rec := deliverWebhook(e, "cashfree", `{}`)
	require.NoError(t, h.Handle(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, webhooks.events)
}

func TestWebhookUnknownProvider(t *testing.T) {
	h, _, _ := newWebhookHandlerTest(t, &stubProvider{})
	e := echo.New()

	c, rec := deliverWebhook(e, "stripe", `{}`)
	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookUnknownSessionAcknowledged(t *testing.T) {
	provider := &stubProvider{
		webhookResult: &payment.WebhookResult{
			Action:  payment.WebhookCaptured,
			OrderID: "order_missing",
		},
	}
	h, _, webhooks := newWebhookHandlerTest(t, provider)
	e := echo.New()

	c, rec := deliverWebhook(e, "cashfree", `{}`)
	require.NoError(t, h.Handle(c))

	// 200 so the gateway stops retrying a delivery we can never apply.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not_found", webhookStatus(t, rec))
	assert.Empty(t, webhooks.events)
}

func TestWebhookTerminalSessionNotReplayed(t *testing.T) {
	provider := &stubProvider{
		webhookResult: &payment.WebhookResult{
			Action:  payment.WebhookCaptured,
			OrderID: "order_1",
		},
	}
	h, sessions, webhooks := newWebhookHandlerTest(t, provider)
	seedSession(t, sessions, "order_1", string(payment.StatusCaptured))
	e := echo.New()

	c, rec := deliverWebhook(e, "cashfree", `{}`)
	require.NoError(t, h.Handle(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "already_processed", webhookStatus(t, rec))
	assert.Empty(t, webhooks.events)

	row, err := sessions.FindByOrderID("order_1")
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusCaptured), row.Status)
}

func TestWebhookUnsupportedEventIgnored(t *testing.T) {
	provider := &stubProvider{
		webhookResult: &payment.WebhookResult{Action: payment.WebhookNotSupported},
	}
	h, _, webhooks := newWebhookHandlerTest(t, provider)
	e := echo.New()

	c, rec := deliverWebhook(e, "cashfree", `{"type":"REFUND_WEBHOOK"}`)
	require.NoError(t, h.Handle(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ignored", webhookStatus(t, rec))
	assert.Empty(t, webhooks.events)
}
