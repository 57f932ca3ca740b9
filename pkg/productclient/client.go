// Package productclient is an HTTP client for the remote product service.
//
// The service exposes a single collection resource:
//
//	GET    <base>       list all products
//	POST   <base>       create a product, returns it with an assigned id
//	DELETE <base>/<id>  delete a product, response body is ignored
package productclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakestore/productctl/pkg/logging"
	"github.com/fakestore/productctl/pkg/product"
)

// DefaultBaseURL is the public demo product API.
const DefaultBaseURL = "https://fakestoreapi.com/products"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const maxErrorBody = 512

// Client talks to the remote product service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the HTTP client's own
// timeout. The client passed to WithHTTPClient is never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the collection at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  "productctl",
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the collection URL the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// List returns every product in the collection, in service order.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return nil, c.parseError(resp)
	}

	var products []product.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	if products == nil {
		products = []product.Product{}
	}
	return products, nil
}

// Create submits a draft and returns the product as echoed by the service.
func (c *Client) Create(ctx context.Context, d product.Draft) (product.Product, error) {
	resp, err := c.do(ctx, http.MethodPost, c.baseURL, d)
	if err != nil {
		return product.Product{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return product.Product{}, c.parseError(resp)
	}

	var created product.Product
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return product.Product{}, fmt.Errorf("failed to decode created product: %w", err)
	}
	return created, nil
}

// Delete removes a product. Only the status code is inspected.
func (c *Client) Delete(ctx context.Context, id product.ID) error {
	resp, err := c.do(ctx, http.MethodDelete, c.baseURL+"/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return c.parseError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			"method", method, "url", target, "requestId", requestID,
			"duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	c.log.Debug("request completed",
		"method", method, "url", target, "requestId", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
