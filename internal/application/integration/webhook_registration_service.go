package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebhookRegistrationService subscribes connections to remote webhook topics
type WebhookRegistrationService struct {
	connections   integration.ConnectionRepository
	webhooks      integration.WebhookRepository
	remote        integration.RemoteClient
	auditor       *Auditor
	publicBaseURL string
	logger        *zap.Logger
}

// NewWebhookRegistrationService creates a new WebhookRegistrationService.
// publicBaseURL is the externally reachable base of this service.
func NewWebhookRegistrationService(
	connections integration.ConnectionRepository,
	webhooks integration.WebhookRepository,
	remote integration.RemoteClient,
	auditor *Auditor,
	publicBaseURL string,
	logger *zap.Logger,
) *WebhookRegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookRegistrationService{
		connections:   connections,
		webhooks:      webhooks,
		remote:        remote,
		auditor:       auditor,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

type webhookEnvelope struct {
	Webhook struct {
		ID      shared.ExternalID `json:"id,omitempty"`
		Topic   string            `json:"topic"`
		Address string            `json:"address"`
		Format  string            `json:"format"`
	} `json:"webhook"`
}

// Register creates the remote subscription for a topic and stores it active
func (s *WebhookRegistrationService) Register(ctx context.Context, connectionID uuid.UUID, topic integration.WebhookTopic) (*WebhookResponse, error) {
	conn, err := s.connections.FindByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.IsOperational() {
		return nil, integration.ErrConnectionNotIntegrated
	}
	existing, err := s.webhooks.FindByTopic(ctx, conn.ID, topic)
	switch {
	case err == nil && existing != nil:
		return nil, integration.ErrWebhookAlreadyExists
	case err != nil && !errors.Is(err, integration.ErrWebhookNotFound):
		return nil, err
	}

	reg, err := integration.NewWebhookRegistration(conn.ID, topic)
	if err != nil {
		return nil, err
	}
	var body webhookEnvelope
	body.Webhook.Topic = topic.String()
	body.Webhook.Address = integration.WebhookAddress(s.publicBaseURL, topic)
	body.Webhook.Format = "json"

	resp, err := s.remote.Post(ctx, conn, "webhooks", body)
	if err != nil {
		s.auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(),
			"Failed to register webhook "+topic.String(), "", err)
		return nil, err
	}
	var created webhookEnvelope
	if err := json.Unmarshal(resp.Body, &created); err != nil || created.Webhook.ID.IsZero() {
		err = fmt.Errorf("%w: webhook id missing", integration.ErrRemoteInvalidPayload)
		s.auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(),
			"Failed to register webhook "+topic.String(), string(resp.Body), err)
		return nil, err
	}
	address := created.Webhook.Address
	if address == "" {
		address = body.Webhook.Address
	}

	reg.Activate(created.Webhook.ID, address)
	if err := s.webhooks.Save(ctx, reg); err != nil {
		return nil, err
	}
	s.logger.Info("Webhook registered",
		zap.String("connection_id", conn.ID.String()),
		zap.String("topic", topic.String()),
		zap.String("remote_webhook_id", reg.RemoteWebhookID.String()))
	out := ToWebhookResponse(reg)
	return &out, nil
}

// Delete removes the remote subscription, then the local registration. A
// subscription already gone on the remote side is not an error.
func (s *WebhookRegistrationService) Delete(ctx context.Context, id uuid.UUID) error {
	reg, err := s.webhooks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !reg.RemoteWebhookID.IsZero() {
		conn, err := s.connections.FindByID(ctx, reg.ConnectionID)
		if err != nil {
			return err
		}
		_, err = s.remote.Delete(ctx, conn, "webhooks/"+reg.RemoteWebhookID.String())
		var statusErr *integration.RemoteStatusError
		if err != nil && !(errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound) {
			s.auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(),
				"Failed to delete webhook "+reg.Topic.String(), "", err)
			return err
		}
	}
	if err := s.webhooks.Delete(ctx, reg.ID); err != nil {
		return err
	}
	s.logger.Info("Webhook deleted",
		zap.String("connection_id", reg.ConnectionID.String()),
		zap.String("topic", reg.Topic.String()))
	return nil
}

// List returns a connection's registrations
func (s *WebhookRegistrationService) List(ctx context.Context, connectionID uuid.UUID) ([]WebhookResponse, error) {
	regs, err := s.webhooks.FindByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	out := make([]WebhookResponse, len(regs))
	for i, r := range regs {
		out[i] = ToWebhookResponse(r)
	}
	return out, nil
}
