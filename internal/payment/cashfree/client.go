package cashfree

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cartpay/internal/payment"
	"cartpay/internal/pkg/httpclient"
)

const (
	sandboxBaseURL    = "https://sandbox.cashfree.com/pg"
	productionBaseURL = "https://api.cashfree.com/pg"
	apiVersion        = "2023-08-01"
)

// orderRequest is the gateway's order-creation payload. Amounts are decimal
// major units; the platform's minor-unit integers are converted before this
// struct is built.
type orderRequest struct {
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	OrderID         string          `json:"order_id"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url"`
}

// apiClient talks to the Cashfree PG API. Each provider instance owns its
// own client with its own credential headers, so two providers with
// different credentials can coexist in one process.
type apiClient struct {
	http *httpclient.Client
}

func newAPIClient(creds credentials, baseURL string) *apiClient {
	if baseURL == "" {
		if creds.sandbox {
			baseURL = sandboxBaseURL
		} else {
			baseURL = productionBaseURL
		}
	}
	h := httpclient.New().
		WithTimeout(30 * time.Second).
		WithBaseURL(baseURL).
		WithHeader("x-client-id", creds.appID).
		WithHeader("x-client-secret", creds.secretKey).
		WithHeader("x-api-version", apiVersion)
	return &apiClient{http: h}
}

// CreateOrder posts an order to the gateway and returns the raw response
// payload. Non-2xx responses become *payment.GatewayError; nothing is
// retried here.
func (c *apiClient) CreateOrder(ctx context.Context, req *orderRequest) (map[string]interface{}, error) {
	resp, err := c.http.PostJSON(ctx, "/orders", req)
	if err != nil {
		return nil, fmt.Errorf("cashfree: order create request: %w", err)
	}
	return decodeOrderResponse(resp)
}

// FetchOrder retrieves the current gateway-side state of an order.
func (c *apiClient) FetchOrder(ctx context.Context, orderID string) (map[string]interface{}, error) {
	resp, err := c.http.GetJSON(ctx, "/orders/"+orderID)
	if err != nil {
		return nil, fmt.Errorf("cashfree: order fetch request: %w", err)
	}
	return decodeOrderResponse(resp)
}

func decodeOrderResponse(resp *httpclient.Response) (map[string]interface{}, error) {
	if !resp.Ok() {
		return nil, &payment.GatewayError{Status: resp.StatusCode, Body: string(resp.Body)}
	}
	var data map[string]interface{}
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("cashfree: decode order response: %w", err)
	}
	return data, nil
}
