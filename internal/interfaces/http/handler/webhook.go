package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Shopify delivery headers
const (
	HeaderShopifyTopic      = "X-Shopify-Topic"
	HeaderShopifyShopDomain = "X-Shopify-Shop-Domain"
	HeaderShopifyWebhookID  = "X-Shopify-Webhook-Id"
	HeaderShopifyHmac       = "X-Shopify-Hmac-Sha256"
)

// WebhookReceiver processes one inbound delivery
type WebhookReceiver interface {
	Receive(ctx context.Context, d app.WebhookDelivery) app.WebhookOutcome
}

// WebhookHandler receives Shopify webhooks. Every delivery is acknowledged
// with 200 and a plain text outcome so the platform does not retry, oversized
// deliveries included.
type WebhookHandler struct {
	BaseHandler
	receiver WebhookReceiver
	maxBody  int64
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(receiver WebhookReceiver) *WebhookHandler {
	return &WebhookHandler{receiver: receiver}
}

// WithBodyLimit caps delivery bodies at maxBytes. Zero or less means no cap.
func (h *WebhookHandler) WithBodyLimit(maxBytes int64) *WebhookHandler {
	h.maxBody = maxBytes
	return h
}

// RegisterRoutes mounts one POST route per supported topic
func (h *WebhookHandler) RegisterRoutes(r gin.IRoutes) {
	for _, topic := range integration.AllWebhookTopics {
		r.POST(topic.Route(), h.Receive(topic))
	}
}

// Receive returns the handler of a topic route. The topic comes from the
// route; the X-Shopify-Topic header is only logged.
func (h *WebhookHandler) Receive(topic integration.WebhookTopic) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		if h.maxBody > 0 {
			if c.Request.ContentLength > h.maxBody {
				log.Warn("Webhook body exceeds limit",
					zap.String("topic", topic.String()),
					zap.Int64("content_length", c.Request.ContentLength),
					zap.Int64("limit", h.maxBody))
				c.String(http.StatusOK, string(app.WebhookProcessingFailed))
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				log.Warn("Webhook body exceeds limit",
					zap.String("topic", topic.String()),
					zap.Int64("limit", maxErr.Limit))
			} else {
				log.Warn("Failed to read webhook body", zap.Error(err))
			}
			c.String(http.StatusOK, string(app.WebhookProcessingFailed))
			return
		}

		outcome := h.receiver.Receive(c.Request.Context(), app.WebhookDelivery{
			Topic:      topic,
			ShopDomain: c.GetHeader(HeaderShopifyShopDomain),
			WebhookID:  c.GetHeader(HeaderShopifyWebhookID),
			Signature:  c.GetHeader(HeaderShopifyHmac),
			Body:       body,
		})
		c.String(http.StatusOK, string(outcome))
	}
}
