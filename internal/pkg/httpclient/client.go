// Package httpclient wraps resty for requests to external payment gateways.
package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Response is a completed HTTP exchange. Callers decide what a non-2xx
// status means; the client never turns one into an error on its own.
type Response struct {
	StatusCode int
	Body       []byte
}

// Ok reports whether the status code is in the 2xx range.
func (r *Response) Ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client wraps resty with the defaults gateway calls need. Retries are
// deliberately disabled: the hosting platform owns retry policy, and blind
// retries of order creation risk duplicate charges.
type Client struct {
	r *resty.Client
}

// New creates a new HTTP client with sensible defaults.
func New() *Client {
	r := resty.New().SetTimeout(30 * time.Second)
	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithBaseURL sets the base URL prepended to request paths.
func (c *Client) WithBaseURL(url string) *Client {
	c.r.SetBaseURL(url)
	return c
}

// WithHeader sets a header sent on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// GetJSON sends a GET request.
func (c *Client) GetJSON(ctx context.Context, path string) (*Response, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("x-request-id", uuid.NewString()).
		Get(path)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// PostJSON sends a POST request with a JSON body.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}) (*Response, error) {
	req := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("x-request-id", uuid.NewString())
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(path)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// PatchJSON sends a PATCH request with a JSON body.
func (c *Client) PatchJSON(ctx context.Context, path string, body interface{}) (*Response, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("x-request-id", uuid.NewString()).
		SetBody(body).
		Patch(path)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// Raw returns the underlying resty client for advanced usage.
func (c *Client) Raw() *resty.Client {
	return c.r
}
