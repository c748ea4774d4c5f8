package integration

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShop = "test-store.myshopify.com"

func registerTopic(t *testing.T, h *testHarness, topic integration.WebhookTopic) *integration.WebhookRegistration {
	t.Helper()
	reg, err := integration.NewWebhookRegistration(h.conn.ID, topic)
	require.NoError(t, err)
	reg.Activate("7001", integration.WebhookAddress("https://connector.example.com", topic))
	require.NoError(t, h.webhooks.Save(t.Context(), reg))
	return reg
}

func newWebhookService(h *testHarness, verify bool) *WebhookService {
	return NewWebhookService(WebhookServiceConfig{
		Connections:     h.connections,
		Webhooks:        h.webhooks,
		Dispatcher:      h.dispatcher,
		Validator:       h.validator,
		Idempotency:     &memIdempotency{},
		Queue:           h.queue,
		Auditor:         h.auditor,
		VerifySignature: verify,
		IdempotencyTTL:  time.Hour,
	})
}

// failingIdempotency always reports a store error
type failingIdempotency struct{ memIdempotency }

func (*failingIdempotency) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errStoreDown
}

func TestWebhookService_Receive(t *testing.T) {
	body := []byte(`{"id": 321, "first_name": "Web", "last_name": "Hook"}`)

	t.Run("applies a registered topic", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersCreate)
		svc := newWebhookService(h, false)

		outcome := svc.Receive(t.Context(), WebhookDelivery{
			Topic: integration.TopicCustomersCreate, ShopDomain: testShop, WebhookID: "w-1", Body: body,
		})
		assert.Equal(t, WebhookReceived, outcome)
		c, err := h.customers.FindByExternalID(t.Context(), h.conn.ID, "321")
		require.NoError(t, err)
		assert.Equal(t, "Web Hook", c.Name)
	})

	t.Run("unknown shop is dropped but acknowledged", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersCreate)
		svc := newWebhookService(h, false)

		outcome := svc.Receive(t.Context(), WebhookDelivery{
			Topic: integration.TopicCustomersCreate, ShopDomain: "other.myshopify.com", Body: body,
		})
		assert.Equal(t, WebhookReceived, outcome)
		assert.Equal(t, 0, h.customers.count())
	})

	t.Run("unregistered or inactive topic is dropped", func(t *testing.T) {
		h := newTestHarness(t)
		svc := newWebhookService(h, false)
		d := WebhookDelivery{Topic: integration.TopicCustomersCreate, ShopDomain: testShop, Body: body}

		assert.Equal(t, WebhookReceived, svc.Receive(t.Context(), d))
		assert.Equal(t, 0, h.customers.count())

		reg := registerTopic(t, h, integration.TopicCustomersCreate)
		reg.Deactivate()
		require.NoError(t, h.webhooks.Save(t.Context(), reg))
		assert.Equal(t, WebhookReceived, svc.Receive(t.Context(), d))
		assert.Equal(t, 0, h.customers.count())
	})

	t.Run("connection that is not integrated is dropped", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersCreate)
		h.conn.ResetToDraft()
		svc := newWebhookService(h, false)

		svc.Receive(t.Context(), WebhookDelivery{Topic: integration.TopicCustomersCreate, ShopDomain: testShop, Body: body})
		assert.Equal(t, 0, h.customers.count())
	})

	t.Run("repeated delivery id is applied once", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersUpdate)
		svc := newWebhookService(h, false)
		d := WebhookDelivery{Topic: integration.TopicCustomersUpdate, ShopDomain: testShop, WebhookID: "dup", Body: body}

		svc.Receive(t.Context(), d)
		svc.Receive(t.Context(), d)
		assert.Len(t, h.logs.all(), 1)
	})

	t.Run("idempotency store failure lets the delivery through", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersCreate)
		svc := newWebhookService(h, false)
		svc.idempotency = &failingIdempotency{}

		svc.Receive(t.Context(), WebhookDelivery{Topic: integration.TopicCustomersCreate, ShopDomain: testShop, WebhookID: "x", Body: body})
		assert.Equal(t, 1, h.customers.count())
	})

	t.Run("signature is checked when enabled", func(t *testing.T) {
		h := newTestHarness(t)
		h.conn.APISecret = "shh"
		registerTopic(t, h, integration.TopicCustomersCreate)
		svc := newWebhookService(h, true)

		svc.Receive(t.Context(), WebhookDelivery{
			Topic: integration.TopicCustomersCreate, ShopDomain: testShop, Signature: "bm9wZQ==", Body: body,
		})
		assert.Equal(t, 0, h.customers.count())

		sig := base64.StdEncoding.EncodeToString(SignWebhookBody("shh", body))
		svc.Receive(t.Context(), WebhookDelivery{
			Topic: integration.TopicCustomersCreate, ShopDomain: testShop, Signature: sig, Body: body,
		})
		assert.Equal(t, 1, h.customers.count())
	})

	t.Run("delete topic archives the record", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersCreate)
		registerTopic(t, h, integration.TopicCustomersDelete)
		svc := newWebhookService(h, false)

		svc.Receive(t.Context(), WebhookDelivery{Topic: integration.TopicCustomersCreate, ShopDomain: testShop, Body: body})
		outcome := svc.Receive(t.Context(), WebhookDelivery{Topic: integration.TopicCustomersDelete, ShopDomain: testShop, Body: []byte(`{"id": 321}`)})
		assert.Equal(t, WebhookReceived, outcome)
		_, err := h.customers.FindByExternalID(t.Context(), h.conn.ID, "321")
		assert.Error(t, err)
	})

	t.Run("malformed payload fails without deferral", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersCreate)
		svc := newWebhookService(h, false)

		outcome := svc.Receive(t.Context(), WebhookDelivery{Topic: integration.TopicCustomersCreate, ShopDomain: testShop, Body: []byte(`{"email": "x"}`)})
		assert.Equal(t, WebhookProcessingFailed, outcome)
		assert.Zero(t, h.queues.totalLines())
	})

	t.Run("processing failure is deferred to a queue", func(t *testing.T) {
		h := newTestHarness(t)
		registerTopic(t, h, integration.TopicCustomersCreate)
		svc := newWebhookService(h, false)
		svc.dispatcher = NewDispatcher(&flakyHandler{
			kind:    integration.EntityKindCustomer,
			failing: map[string]error{"321": errors.New("database is locked")},
		})

		outcome := svc.Receive(t.Context(), WebhookDelivery{Topic: integration.TopicCustomersCreate, ShopDomain: testShop, Body: body})
		assert.Equal(t, WebhookProcessingFailed, outcome)
		assert.Equal(t, 1, h.queues.totalLines())

		logs := h.logs.all()
		require.Len(t, logs, 1)
		assert.True(t, logs[0].HasErrors())
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"id":1}`)
	sig := base64.StdEncoding.EncodeToString(SignWebhookBody("secret", body))

	assert.True(t, VerifyWebhookSignature("secret", body, sig))
	assert.False(t, VerifyWebhookSignature("other", body, sig))
	assert.False(t, VerifyWebhookSignature("secret", []byte(`{"id":2}`), sig))
	assert.False(t, VerifyWebhookSignature("", body, sig))
	assert.False(t, VerifyWebhookSignature("secret", body, ""))
	assert.False(t, VerifyWebhookSignature("secret", body, "%%%"))
}
