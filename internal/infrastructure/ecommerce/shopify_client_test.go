package ecommerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/shopify-connector/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestShopifyClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ShopifyClientConfig)
		wantErr error
	}{
		{"defaults are valid", func(*ShopifyClientConfig) {}, nil},
		{"zero timeout", func(c *ShopifyClientConfig) { c.Timeout = 0 }, ErrShopifyConfigInvalidTimeout},
		{"zero max bytes", func(c *ShopifyClientConfig) { c.MaxResponseBytes = 0 }, ErrShopifyConfigInvalidMaxBytes},
		{"zero rate", func(c *ShopifyClientConfig) { c.RateLimit = 0 }, ErrShopifyConfigInvalidRateLimit},
		{"zero burst", func(c *ShopifyClientConfig) { c.RateBurst = 0 }, ErrShopifyConfigInvalidRateBurst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultShopifyClientConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

type recordingObserver struct {
	mu      sync.Mutex
	records []string
}

func (o *recordingObserver) ObserveRemoteRequest(method, resource string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, method+" "+resource+" "+http.StatusText(status))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ShopifyClientOption) (*ShopifyClient, *integration.Connection) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultShopifyClientConfig()
	cfg.RateLimit = 1000
	cfg.MaxRetryAfter = 50 * time.Millisecond
	client, err := NewShopifyClient(cfg, opts...)
	require.NoError(t, err)

	conn, err := integration.NewConnection("Test store", srv.URL, "shpat_token", uuid.New())
	require.NoError(t, err)
	return client, conn
}

func TestShopifyClient_Fetch(t *testing.T) {
	obs := &recordingObserver{}
	client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/api/2024-04/customers.json", r.URL.Path)
		assert.Equal(t, "1,2", r.URL.Query().Get("ids"))
		assert.Equal(t, "shpat_token", r.Header.Get("X-Shopify-Access-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"customers":[{"id":1},{"id":2}]}`))
	}, WithRequestObserver(obs))

	resp, err := client.Fetch(context.Background(), conn, "customers", map[string][]string{"ids": {"1,2"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"customers":[{"id":1},{"id":2}]}`, string(resp.Body))
	assert.Equal(t, []string{"GET customers OK"}, obs.records)
}

func TestShopifyClient_FetchByID(t *testing.T) {
	obs := &recordingObserver{}
	client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-04/orders/450789469.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"order":{"id":450789469}}`))
	}, WithRequestObserver(obs))

	_, err := client.FetchByID(context.Background(), conn, "orders", "450789469")
	require.NoError(t, err)
	assert.Equal(t, []string{"GET orders/:id OK"}, obs.records)

	_, err = client.FetchByID(context.Background(), conn, "orders", "")
	assert.ErrorIs(t, err, integration.ErrRemoteRequestFailed)
}

func TestShopifyClient_Post(t *testing.T) {
	client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "orders/create", body["webhook"]["topic"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"webhook":{"id":4759306}}`))
	})

	resp, err := client.Post(context.Background(), conn, "webhooks", map[string]any{
		"webhook": map[string]string{"topic": "orders/create", "address": "https://erp.example.com/webhooks/shopify/orders/create", "format": "json"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestShopifyClient_Delete(t *testing.T) {
	client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin/api/2024-04/webhooks/4759306.json", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Delete(context.Background(), conn, "webhooks/4759306")
	assert.NoError(t, err)
}

func TestShopifyClient_Errors(t *testing.T) {
	t.Run("non-2xx is a status error", func(t *testing.T) {
		client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":"[API] Invalid API key or access token"}`))
		})

		_, err := client.Fetch(context.Background(), conn, "shop", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, integration.ErrRemoteRequestFailed)
		var statusErr *integration.RemoteStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "Invalid API key")
	})

	t.Run("transport failure is unavailable", func(t *testing.T) {
		client, conn := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
		conn.Host = "http://127.0.0.1:1"

		_, err := client.Fetch(context.Background(), conn, "shop", nil)
		assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
	})

	t.Run("oversized response is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, strings.Repeat("x", 64))
		}))
		defer srv.Close()

		cfg := DefaultShopifyClientConfig()
		cfg.MaxResponseBytes = 32
		client, err := NewShopifyClient(cfg)
		require.NoError(t, err)
		conn, err := integration.NewConnection("Test store", srv.URL, "shpat_token", uuid.New())
		require.NoError(t, err)

		_, err = client.Fetch(context.Background(), conn, "products", nil)
		assert.ErrorIs(t, err, integration.ErrRemoteInvalidPayload)
	})

	t.Run("cancelled context", func(t *testing.T) {
		client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Fetch(ctx, conn, "shop", nil)
		assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
	})
}

func TestShopifyClient_RetryAfter(t *testing.T) {
	t.Run("retries once after a short Retry-After", func(t *testing.T) {
		var calls atomic.Int32
		client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "0.01")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(`{"shop":{}}`))
		})

		_, err := client.Fetch(context.Background(), conn, "shop", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("gives up when Retry-After exceeds the cap", func(t *testing.T) {
		var calls atomic.Int32
		client, conn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.Fetch(context.Background(), conn, "shop", nil)
		var statusErr *integration.RemoteStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestShopifyClient_RateLimitPerConnection(t *testing.T) {
	cfg := DefaultShopifyClientConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	client, err := NewShopifyClient(cfg)
	require.NoError(t, err)

	a, b := uuid.New(), uuid.New()
	assert.Same(t, client.limiter(a), client.limiter(a))
	assert.NotSame(t, client.limiter(a), client.limiter(b))

	assert.True(t, client.limiter(a).Allow())
	assert.False(t, client.limiter(a).Allow())
	assert.True(t, client.limiter(b).Allow())
}

func TestResourceLabel(t *testing.T) {
	assert.Equal(t, "customers", resourceLabel("customers"))
	assert.Equal(t, "customers/:id", resourceLabel("/customers/207119551/"))
	assert.Equal(t, "webhooks/:id", resourceLabel("webhooks/4759306"))
	assert.Equal(t, "orders/count", resourceLabel("orders/count"))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseRetryAfter("2.0"))
	assert.Equal(t, 500*time.Millisecond, parseRetryAfter("0.5"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
