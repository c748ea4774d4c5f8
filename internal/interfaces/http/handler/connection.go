package handler

import (
	"context"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConnectionService manages store connections
type ConnectionService interface {
	Create(ctx context.Context, req app.CreateConnectionRequest) (*app.ConnectionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*integration.Connection, error)
	List(ctx context.Context) ([]app.ConnectionResponse, error)
	Test(ctx context.Context, id uuid.UUID) (*app.ConnectionTestResult, error)
	ResetToDraft(ctx context.Context, id uuid.UUID) (*app.ConnectionResponse, error)
}

// WebhookRegistrar manages remote webhook subscriptions
type WebhookRegistrar interface {
	Register(ctx context.Context, connectionID uuid.UUID, topic integration.WebhookTopic) (*app.WebhookResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, connectionID uuid.UUID) ([]app.WebhookResponse, error)
}

// ConnectionHandler handles connection and webhook registration endpoints
type ConnectionHandler struct {
	BaseHandler
	connections ConnectionService
	webhooks    WebhookRegistrar
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connections ConnectionService, webhooks WebhookRegistrar) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, webhooks: webhooks}
}

// Create godoc
// @Summary      Create a store connection
// @Tags         connections
// @Accept       json
// @Produce      json
// @Param        request body app.CreateConnectionRequest true "Connection"
// @Success      201 {object} dto.Response
// @Router       /connections [post]
func (h *ConnectionHandler) Create(c *gin.Context) {
	var req app.CreateConnectionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	conn, err := h.connections.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, conn)
}

// List godoc
// @Summary      List store connections
// @Tags         connections
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.connections.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, conns, len(conns))
}

// Get godoc
// @Summary      Get a store connection
// @Tags         connections
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /connections/{id} [get]
func (h *ConnectionHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, app.ToConnectionResponse(conn))
}

// Test godoc
// @Summary      Test a store connection
// @Description  Fetches the remote shop; a failed test is reported in the body, not as an error status
// @Tags         connections
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      200 {object} dto.Response
// @Router       /connections/{id}/test [post]
func (h *ConnectionHandler) Test(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	result, err := h.connections.Test(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reset godoc
// @Summary      Reset a store connection to draft
// @Tags         connections
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      200 {object} dto.Response
// @Router       /connections/{id}/reset [post]
func (h *ConnectionHandler) Reset(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	conn, err := h.connections.ResetToDraft(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, conn)
}

// ListWebhooks returns the webhook registrations of a connection
func (h *ConnectionHandler) ListWebhooks(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	hooks, err := h.webhooks.List(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, hooks, len(hooks))
}

// RegisterWebhook subscribes a topic on the remote store
func (h *ConnectionHandler) RegisterWebhook(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.RegisterWebhookRequest
	if !h.BindJSON(c, &req) {
		return
	}
	topic, err := integration.ParseWebhookTopic(req.Topic)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	hook, err := h.webhooks.Register(c.Request.Context(), id, topic)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, hook)
}

// DeleteWebhook removes a registration locally and on the remote store
func (h *ConnectionHandler) DeleteWebhook(c *gin.Context) {
	id, ok := h.ParseID(c, "webhook_id")
	if !ok {
		return
	}
	if err := h.webhooks.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
