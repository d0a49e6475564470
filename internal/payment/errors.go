package payment

import (
	"errors"
	"fmt"
)

// ErrConfigurationMissing is returned by every gateway-calling operation when
// the provider was constructed without credentials. Construction itself never
// fails on missing credentials.
var ErrConfigurationMissing = errors.New("payment: gateway credentials not configured")

// ErrMissingResourceID is returned when initiation is attempted without a
// stable platform resource id. Generating a timestamp-based order id instead
// would break idempotency, so the absence is treated as a caller error.
var ErrMissingResourceID = errors.New("payment: resource id is required for order creation")

// ErrSessionNotFound is returned when an operation references a session the
// host has no record of.
var ErrSessionNotFound = errors.New("payment: session not found")

// ErrInvalidWebhookSignature is returned when a webhook delivery fails
// signature verification.
var ErrInvalidWebhookSignature = errors.New("payment: webhook signature verification failed")

// GatewayError carries the HTTP status and raw body of a failed gateway
// call. It is logged and propagated unchanged; the provider never retries
// and never translates it into a success.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment: gateway request failed with status %d: %s", e.Status, e.Body)
}

// AsGatewayError unwraps err into a *GatewayError when possible.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
