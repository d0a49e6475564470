package cashfree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cartpay/internal/payment"
)

func signedWebhook(t *testing.T, secret, timestamp, body string) *payment.WebhookRequest {
	t.Helper()
	return &payment.WebhookRequest{
		Body:      []byte(body),
		Timestamp: timestamp,
		Signature: signWebhookPayload(timestamp, []byte(body), secret),
	}
}

func TestWebhookPaymentSuccess(t *testing.T) {
	clearGatewayEnv(t)
	p := New(testOptions(), zap.NewNop())

	body := `{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"cart_1","order_amount":10.00,"order_currency":"INR"},"payment":{"cf_payment_id":12345,"payment_status":"SUCCESS"}}}`
	res, err := p.WebhookActionAndData(signedWebhook(t, "secret_test", "1700000000", body))
	require.NoError(t, err)

	assert.Equal(t, payment.WebhookCaptured, res.Action)
	assert.Equal(t, "cart_1", res.OrderID)
	assert.Equal(t, int64(1000), res.Amount)
	assert.NotNil(t, res.Raw)
}

func TestWebhookAuthorizedStatus(t *testing.T) {
	clearGatewayEnv(t)
	p := New(testOptions(), zap.NewNop())

	body := `{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"cart_2","order_amount":5.50},"payment":{"payment_status":"AUTHORIZED"}}}`
	res, err := p.WebhookActionAndData(signedWebhook(t, "secret_test", "1700000001", body))
	require.NoError(t, err)

	assert.Equal(t, payment.WebhookAuthorized, res.Action)
	assert.Equal(t, int64(550), res.Amount)
}

func TestWebhookFailedAndDropped(t *testing.T) {
	clearGatewayEnv(t)
	p := New(testOptions(), zap.NewNop())

	res, err := p.WebhookActionAndData(signedWebhook(t, "secret_test", "1",
		`{"type":"PAYMENT_FAILED_WEBHOOK","data":{"order":{"order_id":"cart_3"}}}`))
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookFailed, res.Action)

	res, err = p.WebhookActionAndData(signedWebhook(t, "secret_test", "2",
		`{"type":"PAYMENT_USER_DROPPED_WEBHOOK","data":{"order":{"order_id":"cart_3"}}}`))
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookCanceled, res.Action)
}

func TestWebhookUnknownTypeNotSupported(t *testing.T) {
	clearGatewayEnv(t)
	p := New(testOptions(), zap.NewNop())

	res, err := p.WebhookActionAndData(signedWebhook(t, "secret_test", "3",
		`{"type":"REFUND_STATUS_WEBHOOK","data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, payment.WebhookNotSupported, res.Action)
}

func TestWebhookBadSignatureRejected(t *testing.T) {
	clearGatewayEnv(t)
	p := New(testOptions(), zap.NewNop())

	body := `{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{}}`
	req := &payment.WebhookRequest{
		Body:      []byte(body),
		Timestamp: "1700000000",
		Signature: signWebhookPayload("1700000000", []byte(body), "someone-elses-secret"),
	}
	_, err := p.WebhookActionAndData(req)
	assert.ErrorIs(t, err, payment.ErrInvalidWebhookSignature)

	req.Signature = ""
	_, err = p.WebhookActionAndData(req)
	assert.ErrorIs(t, err, payment.ErrInvalidWebhookSignature)
}

func TestWebhookTamperedBodyRejected(t *testing.T) {
	clearGatewayEnv(t)
	p := New(testOptions(), zap.NewNop())

	req := signedWebhook(t, "secret_test", "1700000000",
		`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"cart_1","order_amount":10.00}}}`)
	req.Body = []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"cart_1","order_amount":9999.00}}}`)

	_, err := p.WebhookActionAndData(req)
	assert.ErrorIs(t, err, payment.ErrInvalidWebhookSignature)
}
