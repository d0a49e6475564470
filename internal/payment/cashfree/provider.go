// Package cashfree implements the payment provider contract against the
// Cashfree PG order API.
package cashfree

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cartpay/internal/currency"
	"cartpay/internal/payment"
)

// Identifier is the provider registry key.
const Identifier = "cashfree"

// Placeholder customer values used when the platform supplies no customer
// data. Order creation must never fail solely because the shopper checked
// out as a guest.
const (
	guestPhone          = "9999999999"
	guestName           = "Guest"
	guestEmail          = "guest@example.com"
	defaultReturnURL    = "http://localhost:3000/order/confirmed"
	guestCustomerPrefix = "guest_"
)

// Provider implements payment.Provider for Cashfree.
//
// Construction is fail-soft: missing credentials are logged, not fatal, and
// every gateway-calling operation afterwards returns ErrConfigurationMissing
// before touching the network.
type Provider struct {
	creds      credentials
	client     *apiClient
	logger     *zap.Logger
	configured bool
}

// Option customizes provider construction.
type Option func(*settings)

type settings struct {
	baseURL string
}

// WithBaseURL overrides the gateway base URL. Used by tests to point the
// provider at a local server.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// New constructs the provider, resolving credentials once from environment
// variables with the option struct as fallback.
func New(opts Options, logger *zap.Logger, providerOpts ...Option) *Provider {
	var s settings
	for _, o := range providerOpts {
		o(&s)
	}

	creds := resolveCredentials(opts)
	p := &Provider{
		creds:      creds,
		logger:     logger,
		configured: creds.complete(),
	}
	if !p.configured {
		logger.Error("cashfree credentials missing, gateway calls disabled",
			zap.Bool("app_id_set", creds.appID != ""),
			zap.Bool("secret_key_set", creds.secretKey != ""))
		return p
	}

	p.client = newAPIClient(creds, s.baseURL)
	logger.Info("cashfree provider initialized",
		zap.String("app_id", maskTail(creds.appID)),
		zap.Bool("sandbox", creds.sandbox))
	return p
}

// Identifier returns the provider registry key.
func (p *Provider) Identifier() string {
	return Identifier
}

// InitiatePayment builds an order-create request from the payment context
// and submits it to the gateway. The platform resource id is the order id,
// so repeated initiation for the same cart hits the gateway's own
// order-id idempotency instead of creating duplicates.
func (p *Provider) InitiatePayment(ctx context.Context, pc *payment.Context) (*payment.Session, error) {
	if !p.configured {
		return nil, payment.ErrConfigurationMissing
	}
	req, err := buildOrderRequest(pc)
	if err != nil {
		return nil, err
	}
	return p.createOrder(ctx, req)
}

func (p *Provider) createOrder(ctx context.Context, req *orderRequest) (*payment.Session, error) {
	p.logger.Info("creating gateway order",
		zap.String("order_id", req.OrderID),
		zap.Float64("order_amount", req.OrderAmount),
		zap.String("order_currency", req.OrderCurrency))

	data, err := p.client.CreateOrder(ctx, req)
	if err != nil {
		p.logGatewayFailure("gateway order creation failed", err)
		return nil, err
	}
	return sessionFromOrder(req.OrderID, data), nil
}

func (p *Provider) logGatewayFailure(msg string, err error) {
	if ge, ok := payment.AsGatewayError(err); ok {
		p.logger.Error(msg, zap.Int("status", ge.Status), zap.String("body", ge.Body))
		return
	}
	p.logger.Error(msg, zap.Error(err))
}

// AuthorizePayment reports the session as authorized. The definitive
// transition arrives through the webhook or the status poller.
func (p *Provider) AuthorizePayment(sessionData map[string]interface{}) (*payment.AuthorizeResult, error) {
	return &payment.AuthorizeResult{
		Status: string(payment.StatusAuthorized),
		Data:   sessionData,
	}, nil
}

// CapturePayment acknowledges capture; settlement is automatic for Cashfree
// orders, so there is no gateway call to make.
func (p *Provider) CapturePayment(_ map[string]interface{}) (*payment.CaptureResult, error) {
	return &payment.CaptureResult{Status: string(payment.StatusCaptured)}, nil
}

// CancelPayment acknowledges cancellation of the session.
func (p *Provider) CancelPayment(sessionData map[string]interface{}) (*payment.CancelResult, error) {
	return &payment.CancelResult{ID: sessionID(sessionData)}, nil
}

// RefundPayment acknowledges a refund request. The amount is part of the
// contract but refunds for this gateway are settled operator-side.
func (p *Provider) RefundPayment(paymentData map[string]interface{}, _ int64) (*payment.RefundResult, error) {
	return &payment.RefundResult{ID: sessionID(paymentData)}, nil
}

// DeletePayment discards the session; the gateway holds nothing to release.
func (p *Provider) DeletePayment(_ map[string]interface{}) error {
	return nil
}

// GetPaymentData returns the stored session payload unchanged.
func (p *Provider) GetPaymentData(sessionData map[string]interface{}) (map[string]interface{}, error) {
	return sessionData, nil
}

// RetrievePayment returns the stored session payload unchanged.
func (p *Provider) RetrievePayment(sessionData map[string]interface{}) (map[string]interface{}, error) {
	return sessionData, nil
}

// GetPaymentStatus fetches the live order state from the gateway and maps
// it onto the platform lifecycle.
func (p *Provider) GetPaymentStatus(ctx context.Context, sessionData map[string]interface{}) (payment.Status, error) {
	if !p.configured {
		return "", payment.ErrConfigurationMissing
	}
	orderID := gatewayOrderID(sessionData)
	if orderID == "" {
		return "", payment.ErrSessionNotFound
	}
	data, err := p.client.FetchOrder(ctx, orderID)
	if err != nil {
		p.logGatewayFailure("gateway order fetch failed", err)
		return "", err
	}
	return mapOrderStatus(stringField(data, "order_status")), nil
}

// UpdatePayment reconciles a session with a changed context. Gateway orders
// are immutable, so a changed amount or currency forces a replacement order
// under a deterministic revision of the resource id; the superseded session
// is reported through Session.ReplacedID so the platform can invalidate it.
func (p *Provider) UpdatePayment(ctx context.Context, pc *payment.Context, sessionData map[string]interface{}) (*payment.Session, error) {
	if !p.configured {
		return nil, payment.ErrConfigurationMissing
	}
	if sessionID(sessionData) == "" {
		return p.InitiatePayment(ctx, pc)
	}

	req, err := buildOrderRequest(pc)
	if err != nil {
		return nil, err
	}

	if orderUnchanged(req, sessionData) {
		return &payment.Session{
			ID:          sessionID(sessionData),
			Data:        sessionData,
			SessionData: sessionData,
		}, nil
	}

	req.OrderID = nextOrderRevision(gatewayOrderID(sessionData), pc.ResourceID)
	sess, err := p.createOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	sess.ReplacedID = sessionID(sessionData)
	return sess, nil
}

// buildOrderRequest translates a payment context into the gateway payload,
// applying the normalizer and the guest placeholder policy.
func buildOrderRequest(pc *payment.Context) (*orderRequest, error) {
	if pc.ResourceID == "" {
		return nil, payment.ErrMissingResourceID
	}

	cust := pc.Customer
	if cust == nil {
		cust = &payment.Customer{}
	}

	customerID := cust.ID
	if customerID == "" {
		customerID = fmt.Sprintf("%s%d", guestCustomerPrefix, time.Now().UnixMilli())
	}
	phone := cust.Phone
	if phone == "" {
		phone = guestPhone
	}
	name := strings.TrimSpace(cust.FirstName + " " + cust.LastName)
	if name == "" {
		name = guestName
	}
	email := cust.Email
	if email == "" {
		email = pc.Email
	}
	if email == "" {
		email = guestEmail
	}
	returnURL := pc.ReturnURL
	if returnURL == "" {
		returnURL = defaultReturnURL
	}

	return &orderRequest{
		OrderAmount:   currency.ToGatewayAmount(pc.Amount),
		OrderCurrency: currency.NormalizeCurrency(pc.CurrencyCode),
		OrderID:       pc.ResourceID,
		CustomerDetails: customerDetails{
			CustomerID:    customerID,
			CustomerPhone: phone,
			CustomerName:  name,
			CustomerEmail: email,
		},
		OrderMeta: orderMeta{ReturnURL: returnURL},
	}, nil
}

func sessionFromOrder(requestOrderID string, data map[string]interface{}) *payment.Session {
	id := stringField(data, "cf_order_id")
	if id == "" {
		id = stringField(data, "order_id")
	}
	if id == "" {
		id = requestOrderID
	}
	return &payment.Session{
		ID:          id,
		Data:        data,
		SessionData: data,
	}
}

// sessionID extracts the provider-assigned identifier from stored session
// data, falling back through the raw gateway field names.
func sessionID(data map[string]interface{}) string {
	for _, key := range []string{"id", "cf_order_id", "order_id"} {
		if v := stringField(data, key); v != "" {
			return v
		}
	}
	return ""
}

// gatewayOrderID extracts the order_id used on gateway paths, which is the
// platform resource id rather than the numeric cf_order_id.
func gatewayOrderID(data map[string]interface{}) string {
	if v := stringField(data, "order_id"); v != "" {
		return v
	}
	return stringField(data, "id")
}

func stringField(data map[string]interface{}, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

func mapOrderStatus(orderStatus string) payment.Status {
	switch orderStatus {
	case "ACTIVE":
		return payment.StatusPending
	case "PAID":
		return payment.StatusCaptured
	case "EXPIRED", "TERMINATED", "TERMINATION_REQUESTED":
		return payment.StatusCanceled
	default:
		return payment.StatusAuthorized
	}
}

func orderUnchanged(req *orderRequest, sessionData map[string]interface{}) bool {
	amount, ok := sessionData["order_amount"].(float64)
	if !ok {
		return false
	}
	curr := stringField(sessionData, "order_currency")
	return math.Abs(amount-req.OrderAmount) < 0.005 && curr == req.OrderCurrency
}

var orderRevisionPattern = regexp.MustCompile(`-r(\d+)$`)

// nextOrderRevision derives a deterministic replacement order id from the
// resource id: cart_123 -> cart_123-r2 -> cart_123-r3. Never random, so a
// repeated update against the same prior session resolves to the same id.
func nextOrderRevision(previousOrderID, resourceID string) string {
	rev := 2
	if m := orderRevisionPattern.FindStringSubmatch(previousOrderID); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			rev = n + 1
		}
	}
	return fmt.Sprintf("%s-r%d", resourceID, rev)
}
