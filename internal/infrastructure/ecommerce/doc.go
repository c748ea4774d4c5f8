// Package ecommerce holds the outbound adapters to the Shopify platform: the
// throttled Admin REST API client and the product image fetcher.
package ecommerce
