package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/infrastructure/telemetry"
)

const (
	headerAccessToken = "X-Shopify-Access-Token"
	// maxErrorBody is how much of a failed response is kept on RemoteStatusError
	maxErrorBody = 512
)

// RequestObserver records the outcome of each outbound request
type RequestObserver interface {
	ObserveRemoteRequest(method, resource string, status int, d time.Duration)
}

// ShopifyClient implements integration.RemoteClient against the Shopify
// Admin REST API. Requests are throttled per connection.
type ShopifyClient struct {
	config     ShopifyClientConfig
	httpClient *http.Client
	observer   RequestObserver

	// limiters holds one token bucket per connection
	limiters map[uuid.UUID]*rate.Limiter
	mu       sync.Mutex
}

// ShopifyClientOption customizes a ShopifyClient
type ShopifyClientOption func(*ShopifyClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) ShopifyClientOption {
	return func(s *ShopifyClient) { s.httpClient = c }
}

// WithRequestObserver records request latency and status
func WithRequestObserver(o RequestObserver) ShopifyClientOption {
	return func(s *ShopifyClient) { s.observer = o }
}

// NewShopifyClient creates a new Shopify client with the given configuration
func NewShopifyClient(config ShopifyClientConfig, opts ...ShopifyClientOption) (*ShopifyClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &ShopifyClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiters:   make(map[uuid.UUID]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch GETs a resource with query filters
func (c *ShopifyClient) Fetch(ctx context.Context, conn *integration.Connection, resource string, filters url.Values) (*integration.RemoteResponse, error) {
	return c.do(ctx, conn, http.MethodGet, resource, filters, nil)
}

// FetchByID GETs a single entity, e.g. ("customers", 555) -> customers/555.json
func (c *ShopifyClient) FetchByID(ctx context.Context, conn *integration.Connection, resource string, id shared.ExternalID) (*integration.RemoteResponse, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: empty id for %s", integration.ErrRemoteRequestFailed, resource)
	}
	return c.do(ctx, conn, http.MethodGet, strings.Trim(resource, "/")+"/"+id.String(), nil, nil)
}

// Post POSTs a JSON body to a resource
func (c *ShopifyClient) Post(ctx context.Context, conn *integration.Connection, resource string, body any) (*integration.RemoteResponse, error) {
	return c.do(ctx, conn, http.MethodPost, resource, nil, body)
}

// Delete DELETEs a resource, e.g. "webhooks/123"
func (c *ShopifyClient) Delete(ctx context.Context, conn *integration.Connection, resource string) (*integration.RemoteResponse, error) {
	return c.do(ctx, conn, http.MethodDelete, resource, nil, nil)
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// limiter returns the token bucket of a connection, creating it on first use
func (c *ShopifyClient) limiter(connID uuid.UUID) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[connID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.config.RateLimit), c.config.RateBurst)
		c.limiters[connID] = l
	}
	return l
}

// do performs a request, honouring one 429 Retry-After within MaxRetryAfter
func (c *ShopifyClient) do(ctx context.Context, conn *integration.Connection, method, resource string, query url.Values, body any) (*integration.RemoteResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "shopify."+strings.ToLower(method),
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute("shopify.resource", resource),
		telemetry.WithAttribute("connection.id", conn.ID.String()))
	defer span.End()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("shopify: failed to marshal request: %w", err)
		}
	}

	resp, retryAfter, err := c.roundTrip(ctx, conn, method, resource, query, payload)
	if retryAfter > 0 && retryAfter <= c.config.MaxRetryAfter {
		telemetry.AddEvent(span, "rate_limited", "retry_after_ms", retryAfter.Milliseconds())
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", integration.ErrRemoteUnavailable, ctx.Err())
		case <-time.After(retryAfter):
		}
		resp, _, err = c.roundTrip(ctx, conn, method, resource, query, payload)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, "http.status_code", resp.StatusCode)
	return resp, nil
}

// roundTrip sends one request. A 429 response also returns its Retry-After.
func (c *ShopifyClient) roundTrip(ctx context.Context, conn *integration.Connection, method, resource string, query url.Values, payload []byte) (*integration.RemoteResponse, time.Duration, error) {
	if err := c.limiter(conn.ID).Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", integration.ErrRemoteUnavailable, err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, conn.ResourceURL(resource, query), reader)
	if err != nil {
		return nil, 0, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set(headerAccessToken, conn.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, resource, 0, time.Since(start))
		return nil, 0, fmt.Errorf("%w: %v", integration.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes+1))
	c.observe(method, resource, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read response: %v", integration.ErrRemoteUnavailable, err)
	}
	if int64(len(data)) > c.config.MaxResponseBytes {
		return nil, 0, fmt.Errorf("%w: response exceeds %d bytes", integration.ErrRemoteInvalidPayload, c.config.MaxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &integration.RemoteStatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), maxErrorBody)}
		var wait time.Duration
		if resp.StatusCode == http.StatusTooManyRequests {
			wait = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return nil, wait, statusErr
	}
	return &integration.RemoteResponse{StatusCode: resp.StatusCode, Body: data}, 0, nil
}

func (c *ShopifyClient) observe(method, resource string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRemoteRequest(method, resourceLabel(resource), status, d)
	}
}

// resourceLabel drops numeric path segments so metric labels stay bounded,
// e.g. "customers/555" -> "customers/:id"
func resourceLabel(resource string) string {
	parts := strings.Split(strings.Trim(resource, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// parseRetryAfter reads a Retry-After value in (possibly fractional) seconds
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ integration.RemoteClient = (*ShopifyClient)(nil)
