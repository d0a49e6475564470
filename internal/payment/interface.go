package payment

import (
	"context"
)

// Status is the lifecycle state of a payment session as observed by the
// hosting platform. The provider derives it from the gateway's most recent
// response; it is never stored by the provider itself.
type Status string

const (
	StatusNotInitiated Status = "not_initiated"
	StatusPending      Status = "pending"
	StatusAuthorized   Status = "authorized"
	StatusCaptured     Status = "captured"
	StatusCanceled     Status = "canceled"
	StatusRefunded     Status = "refunded"
)

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCaptured || s == StatusCanceled || s == StatusRefunded
}

// Customer carries the (all optional) customer fields of a payment context.
// Each field independently falls back to a fixed placeholder so that
// initiation never fails solely due to missing customer data.
type Customer struct {
	ID        string `json:"id"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Context is the input the platform hands a provider when initiating or
// updating a payment session.
type Context struct {
	// Amount is an integer number of minor currency units (paise, cents).
	Amount int64 `json:"amount"`
	// CurrencyCode is case-insensitive ISO 4217; empty defaults to INR.
	CurrencyCode string `json:"currency_code"`
	// ResourceID is the platform-side cart/order id. It doubles as the
	// idempotency key for gateway order creation and is required.
	ResourceID string    `json:"resource_id"`
	Customer   *Customer `json:"customer,omitempty"`
	// Email is a context-level fallback used when Customer.Email is empty.
	Email string `json:"email,omitempty"`
	// ReturnURL is where the gateway redirects the shopper afterwards.
	ReturnURL string `json:"return_url,omitempty"`
}

// Session is the durable output of initiation: the provider-assigned id and
// the raw gateway payload, opaque to the platform. SessionData aliases Data
// for hosts that read the legacy field name.
type Session struct {
	ID          string                 `json:"id"`
	Data        map[string]interface{} `json:"data"`
	SessionData map[string]interface{} `json:"session_data"`
	// ReplacedID is set when an update created a replacement gateway order;
	// the platform must treat the prior session as invalidated.
	ReplacedID string `json:"replaced_id,omitempty"`
}

// AuthorizeResult is returned by AuthorizePayment.
type AuthorizeResult struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data"`
}

// CaptureResult is returned by CapturePayment.
type CaptureResult struct {
	Status string `json:"status"`
}

// CancelResult is returned by CancelPayment.
type CancelResult struct {
	ID string `json:"id"`
}

// RefundResult is returned by RefundPayment.
type RefundResult struct {
	ID string `json:"id"`
}

// WebhookAction classifies a gateway webhook after signature verification.
type WebhookAction string

const (
	WebhookAuthorized   WebhookAction = "authorized"
	WebhookCaptured     WebhookAction = "captured"
	WebhookFailed       WebhookAction = "failed"
	WebhookCanceled     WebhookAction = "canceled"
	WebhookNotSupported WebhookAction = "not_supported"
)

// WebhookRequest is a raw gateway webhook delivery: the unparsed body plus
// the signature headers needed for verification.
type WebhookRequest struct {
	Body      []byte
	Signature string
	Timestamp string
}

// WebhookResult is the platform-facing translation of a verified webhook.
type WebhookResult struct {
	Action  WebhookAction          `json:"action"`
	OrderID string                 `json:"order_id,omitempty"`
	Amount  int64                  `json:"amount,omitempty"`
	Raw     map[string]interface{} `json:"raw,omitempty"`
}

// Provider is the fixed lifecycle contract the hosting commerce platform
// invokes against any registered payment integration. Implementations are
// stateless: every call is independent, and idempotency comes from the
// gateway's own order-id semantics.
type Provider interface {
	// Identifier returns the registry key, e.g. "cashfree".
	Identifier() string

	// InitiatePayment creates an order on the gateway and returns the
	// resulting session. It does not retry; gateway failures are returned
	// unchanged as *GatewayError.
	InitiatePayment(ctx context.Context, pc *Context) (*Session, error)

	// AuthorizePayment reports a session as authorized. The real
	// authorization event arrives via webhook or status polling.
	AuthorizePayment(sessionData map[string]interface{}) (*AuthorizeResult, error)

	// CapturePayment acknowledges capture. Settlement is automatic for the
	// integrated gateway, so no gateway call is made.
	CapturePayment(payment map[string]interface{}) (*CaptureResult, error)

	// CancelPayment acknowledges cancellation of a session.
	CancelPayment(sessionData map[string]interface{}) (*CancelResult, error)

	// RefundPayment acknowledges a refund request for the given minor-unit
	// amount.
	RefundPayment(payment map[string]interface{}, amount int64) (*RefundResult, error)

	// DeletePayment discards a session; nothing to release gateway-side.
	DeletePayment(sessionData map[string]interface{}) error

	// GetPaymentData re-reads the stored session payload.
	GetPaymentData(sessionData map[string]interface{}) (map[string]interface{}, error)

	// GetPaymentStatus queries the gateway for the live order state.
	GetPaymentStatus(ctx context.Context, sessionData map[string]interface{}) (Status, error)

	// RetrievePayment re-reads the stored session payload.
	RetrievePayment(sessionData map[string]interface{}) (map[string]interface{}, error)

	// UpdatePayment reconciles an existing session with a changed context.
	// When amount and currency are unchanged the existing session is
	// returned as-is; otherwise a replacement order is created and the old
	// session reported invalidated via Session.ReplacedID.
	UpdatePayment(ctx context.Context, pc *Context, sessionData map[string]interface{}) (*Session, error)

	// WebhookActionAndData verifies a webhook delivery and translates it
	// into a platform action.
	WebhookActionAndData(req *WebhookRequest) (*WebhookResult, error)
}
