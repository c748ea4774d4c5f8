package integration

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// WebhookDelivery is one inbound webhook request
type WebhookDelivery struct {
	Topic      integration.WebhookTopic
	ShopDomain string
	WebhookID  string
	Signature  string
	Body       []byte
}

// WebhookServiceConfig holds the collaborators and switches of a WebhookService
type WebhookServiceConfig struct {
	Connections integration.ConnectionRepository
	Webhooks    integration.WebhookRepository
	Dispatcher  *Dispatcher
	Validator   *PayloadValidator
	// Idempotency drops repeated deliveries; nil disables de-duplication
	Idempotency shared.IdempotencyStore
	// Queue receives payloads whose processing failed, for a later drain; nil disables
	Queue   *SyncQueueService
	Auditor *Auditor
	Metrics SyncMetrics
	Logger  *zap.Logger

	VerifySignature bool
	IdempotencyTTL  time.Duration
}

// WebhookService applies inbound webhook deliveries synchronously
type WebhookService struct {
	connections     integration.ConnectionRepository
	webhooks        integration.WebhookRepository
	dispatcher      *Dispatcher
	validator       *PayloadValidator
	idempotency     shared.IdempotencyStore
	queue           *SyncQueueService
	auditor         *Auditor
	metrics         SyncMetrics
	logger          *zap.Logger
	verifySignature bool
	idempotencyTTL  time.Duration
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return &WebhookService{
		connections:     cfg.Connections,
		webhooks:        cfg.Webhooks,
		dispatcher:      cfg.Dispatcher,
		validator:       cfg.Validator,
		idempotency:     cfg.Idempotency,
		queue:           cfg.Queue,
		auditor:         cfg.Auditor,
		metrics:         metricsOrNop(cfg.Metrics),
		logger:          logger,
		verifySignature: cfg.VerifySignature,
		idempotencyTTL:  ttl,
	}
}

// Receive processes a delivery and returns the fixed acknowledgement. Events
// from an unknown or inactive origin, and repeated deliveries, are dropped
// and still acknowledged as received.
func (s *WebhookService) Receive(ctx context.Context, d WebhookDelivery) WebhookOutcome {
	ctx, span := telemetry.StartServiceSpan(ctx, "webhook", "receive",
		telemetry.WithSpanKind(trace.SpanKindServer),
		telemetry.WithAttribute(telemetry.SpanAttrTopic, d.Topic.String()),
		telemetry.WithAttribute(telemetry.SpanAttrWebhookID, d.WebhookID))
	defer span.End()

	log := s.logger.With(
		zap.String("topic", d.Topic.String()),
		zap.String("shop_domain", d.ShopDomain),
		zap.String("webhook_id", d.WebhookID))

	conn, err := s.authorize(ctx, d)
	if err != nil {
		log.Info("Webhook dropped", zap.Error(err))
		telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, OutcomeDropped)
		s.metrics.WebhookReceived(d.Topic.String(), OutcomeDropped)
		return WebhookReceived
	}
	log = log.With(zap.String("connection_id", conn.ID.String()))

	if !s.firstDelivery(ctx, d, log) {
		log.Info("Duplicate webhook delivery dropped")
		telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, OutcomeDropped)
		s.metrics.WebhookReceived(d.Topic.String(), OutcomeDropped)
		return WebhookReceived
	}

	if err := s.process(ctx, conn, d); err != nil {
		log.Error("Webhook processing failed", zap.Error(err))
		telemetry.RecordError(span, err)
		s.metrics.WebhookReceived(d.Topic.String(), OutcomeFailure)
		s.auditor.Failure(ctx, conn.ID, integration.ResourceModelFor(d.Topic.Kind()), "",
			"Failed to process webhook "+d.Topic.String(), string(d.Body), err)
		s.deferFailed(ctx, conn, d, err, log)
		return WebhookProcessingFailed
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, OutcomeSuccess)
	s.metrics.WebhookReceived(d.Topic.String(), OutcomeSuccess)
	return WebhookReceived
}

// authorize maps the delivery to an operational connection with an active
// registration for the topic, then checks the signature when enabled
func (s *WebhookService) authorize(ctx context.Context, d WebhookDelivery) (*integration.Connection, error) {
	if !d.Topic.IsValid() {
		return nil, integration.ErrWebhookInvalidTopic
	}
	conn, err := s.connectionFor(ctx, d.ShopDomain)
	if err != nil {
		return nil, err
	}
	if !conn.IsOperational() {
		return nil, fmt.Errorf("%w: connection %s is not integrated", integration.ErrUnauthorizedOrigin, conn.Name)
	}
	reg, err := s.webhooks.FindByTopic(ctx, conn.ID, d.Topic)
	if err != nil {
		if errors.Is(err, integration.ErrWebhookNotFound) {
			return nil, fmt.Errorf("%w: no registration for %s", integration.ErrUnauthorizedOrigin, d.Topic)
		}
		return nil, err
	}
	if !reg.IsActive() {
		return nil, fmt.Errorf("%w: registration for %s is inactive", integration.ErrUnauthorizedOrigin, d.Topic)
	}
	if s.verifySignature && !VerifyWebhookSignature(conn.APISecret, d.Body, d.Signature) {
		return nil, fmt.Errorf("%w: signature mismatch", integration.ErrUnauthorizedOrigin)
	}
	return conn, nil
}

func (s *WebhookService) connectionFor(ctx context.Context, shopDomain string) (*integration.Connection, error) {
	if shopDomain == "" {
		return nil, fmt.Errorf("%w: shop domain missing", integration.ErrUnauthorizedOrigin)
	}
	conns, err := s.connections.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range conns {
		if c.MatchesDomain(shopDomain) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown shop %s", integration.ErrUnauthorizedOrigin, shopDomain)
}

// firstDelivery reports whether the delivery id has not been seen. A store
// failure lets the delivery through.
func (s *WebhookService) firstDelivery(ctx context.Context, d WebhookDelivery, log *zap.Logger) bool {
	if s.idempotency == nil || d.WebhookID == "" {
		return true
	}
	fresh, err := s.idempotency.MarkProcessed(ctx, d.WebhookID, s.idempotencyTTL)
	if err != nil {
		log.Warn("Idempotency store unavailable", zap.Error(err))
		return true
	}
	return fresh
}

func (s *WebhookService) process(ctx context.Context, conn *integration.Connection, d WebhookDelivery) error {
	kind := d.Topic.Kind()
	op := d.Topic.Operation()
	if op != integration.OperationDelete && s.validator != nil {
		if err := s.validator.Validate(kind, d.Body); err != nil {
			return err
		}
	}
	return s.dispatcher.Dispatch(ctx, conn, kind, op, d.Body)
}

// deferFailed stores a failed create/update payload as a one-line queue so a
// later drain can replay it. Malformed payloads and deletes are not deferred.
func (s *WebhookService) deferFailed(ctx context.Context, conn *integration.Connection, d WebhookDelivery, cause error, log *zap.Logger) {
	if s.queue == nil || d.Topic.Operation() == integration.OperationDelete {
		return
	}
	if errors.Is(cause, integration.ErrMalformedPayload) || errors.Is(cause, integration.ErrUnsupportedOperation) {
		return
	}
	queues, err := s.queue.Enqueue(ctx, conn, d.Topic.Kind(), []json.RawMessage{d.Body})
	if err != nil {
		log.Warn("Failed to defer webhook payload", zap.Error(err))
		return
	}
	for _, q := range queues {
		log.Info("Webhook payload deferred", zap.String("queue", q.Name))
	}
}

// VerifyWebhookSignature checks a base64 HMAC-SHA256 of body keyed by secret.
// An empty secret or signature never verifies.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, SignWebhookBody(secret, body))
}

// SignWebhookBody computes the raw HMAC-SHA256 of body keyed by secret
func SignWebhookBody(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
