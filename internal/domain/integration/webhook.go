package integration

import (
	"strings"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// WebhookTopic
// ---------------------------------------------------------------------------

// WebhookTopic is a Shopify webhook topic handled by the connector
type WebhookTopic string

const (
	TopicCustomersCreate WebhookTopic = "customers/create"
	TopicCustomersUpdate WebhookTopic = "customers/update"
	TopicCustomersDelete WebhookTopic = "customers/delete"
	TopicProductsCreate  WebhookTopic = "products/create"
	TopicProductsUpdate  WebhookTopic = "products/update"
	TopicProductsDelete  WebhookTopic = "products/delete"
	TopicOrdersCreate    WebhookTopic = "orders/create"
	TopicOrdersUpdated   WebhookTopic = "orders/updated"
)

// AllWebhookTopics lists every topic in route registration order
var AllWebhookTopics = []WebhookTopic{
	TopicCustomersCreate, TopicCustomersUpdate, TopicCustomersDelete,
	TopicProductsCreate, TopicProductsUpdate, TopicProductsDelete,
	TopicOrdersCreate, TopicOrdersUpdated,
}

type topicBinding struct {
	kind EntityKind
	op   Operation
}

var topicBindings = map[WebhookTopic]topicBinding{
	TopicCustomersCreate: {EntityKindCustomer, OperationCreate},
	TopicCustomersUpdate: {EntityKindCustomer, OperationUpdate},
	TopicCustomersDelete: {EntityKindCustomer, OperationDelete},
	TopicProductsCreate:  {EntityKindProduct, OperationCreate},
	TopicProductsUpdate:  {EntityKindProduct, OperationUpdate},
	TopicProductsDelete:  {EntityKindProduct, OperationDelete},
	TopicOrdersCreate:    {EntityKindOrder, OperationCreate},
	TopicOrdersUpdated:   {EntityKindOrder, OperationUpdate},
}

// ParseWebhookTopic validates a topic string
func ParseWebhookTopic(s string) (WebhookTopic, error) {
	t := WebhookTopic(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrWebhookInvalidTopic
	}
	return t, nil
}

// IsValid returns true if the topic is handled
func (t WebhookTopic) IsValid() bool {
	_, ok := topicBindings[t]
	return ok
}

// String returns the string representation of WebhookTopic
func (t WebhookTopic) String() string {
	return string(t)
}

// Kind returns the entity kind the topic carries
func (t WebhookTopic) Kind() EntityKind {
	return topicBindings[t].kind
}

// Operation returns the operation the topic requests
func (t WebhookTopic) Operation() Operation {
	return topicBindings[t].op
}

// Route is the inbound path the remote platform posts this topic to
func (t WebhookTopic) Route() string {
	return "/webhooks/shopify/" + string(t)
}

// ---------------------------------------------------------------------------
// WebhookRegistration
// ---------------------------------------------------------------------------

// WebhookState is the state of a registration
type WebhookState string

const (
	WebhookStateInactive WebhookState = "inactive"
	WebhookStateActive   WebhookState = "active"
)

// WebhookRegistration is a remote webhook subscription of a Connection.
// At most one registration exists per (connection, topic).
type WebhookRegistration struct {
	shared.BaseEntity
	ConnectionID    uuid.UUID
	Topic           WebhookTopic
	RemoteWebhookID shared.ExternalID
	Address         string
	State           WebhookState
}

// NewWebhookRegistration creates an inactive registration
func NewWebhookRegistration(connectionID uuid.UUID, topic WebhookTopic) (*WebhookRegistration, error) {
	if !topic.IsValid() {
		return nil, ErrWebhookInvalidTopic
	}
	return &WebhookRegistration{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectionID: connectionID,
		Topic:        topic,
		State:        WebhookStateInactive,
	}, nil
}

// Activate records the remote subscription
func (w *WebhookRegistration) Activate(remoteID shared.ExternalID, address string) {
	w.RemoteWebhookID = remoteID
	w.Address = address
	w.State = WebhookStateActive
	w.Touch()
}

// Deactivate stops inbound processing for the topic without removing it
func (w *WebhookRegistration) Deactivate() {
	w.State = WebhookStateInactive
	w.Touch()
}

// IsActive reports whether inbound deliveries for the topic are accepted
func (w *WebhookRegistration) IsActive() bool {
	return w.State == WebhookStateActive
}

// WebhookAddress joins the public base URL and the topic route, forcing https
func WebhookAddress(publicBaseURL string, topic WebhookTopic) string {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	switch {
	case strings.HasPrefix(base, "http://"):
		base = "https://" + strings.TrimPrefix(base, "http://")
	case !strings.HasPrefix(base, "https://"):
		base = "https://" + base
	}
	return base + topic.Route()
}
