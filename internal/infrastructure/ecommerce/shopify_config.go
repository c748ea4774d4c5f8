package ecommerce

import (
	"errors"
	"time"
)

// ShopifyClientConfig holds the outbound Admin API client settings shared by
// every connection
type ShopifyClientConfig struct {
	// Timeout bounds one HTTP round trip
	Timeout time.Duration
	// MaxResponseBytes caps a response body; larger bodies are rejected
	MaxResponseBytes int64
	// RateLimit is the sustained requests per second allowed per connection
	RateLimit float64
	// RateBurst is the number of requests allowed above RateLimit in a burst
	RateBurst int
	// MaxRetryAfter caps the wait honoured from a 429 Retry-After header
	MaxRetryAfter time.Duration
	// UserAgent is sent on every request
	UserAgent string
}

// Errors for client configuration
var (
	ErrShopifyConfigInvalidTimeout   = errors.New("shopify: timeout must be positive")
	ErrShopifyConfigInvalidMaxBytes  = errors.New("shopify: max response bytes must be positive")
	ErrShopifyConfigInvalidRateLimit = errors.New("shopify: rate limit must be positive")
	ErrShopifyConfigInvalidRateBurst = errors.New("shopify: rate burst must be at least 1")
)

// DefaultShopifyClientConfig matches the Admin REST API leaky bucket
// (2 requests/second, bucket of 40)
func DefaultShopifyClientConfig() ShopifyClientConfig {
	return ShopifyClientConfig{
		Timeout:          30 * time.Second,
		MaxResponseBytes: 10 * 1024 * 1024,
		RateLimit:        2,
		RateBurst:        40,
		MaxRetryAfter:    10 * time.Second,
		UserAgent:        "shopify-connector/1.0",
	}
}

// Validate validates the client configuration
func (c *ShopifyClientConfig) Validate() error {
	if c.Timeout <= 0 {
		return ErrShopifyConfigInvalidTimeout
	}
	if c.MaxResponseBytes <= 0 {
		return ErrShopifyConfigInvalidMaxBytes
	}
	if c.RateLimit <= 0 {
		return ErrShopifyConfigInvalidRateLimit
	}
	if c.RateBurst < 1 {
		return ErrShopifyConfigInvalidRateBurst
	}
	return nil
}
