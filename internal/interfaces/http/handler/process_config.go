package handler

import (
	"context"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProcessConfigService manages automation workflows and order process configs
type ProcessConfigService interface {
	CreateWorkflow(ctx context.Context, req app.CreateWorkflowRequest) (*app.WorkflowResponse, error)
	ListWorkflows(ctx context.Context) ([]app.WorkflowResponse, error)
	DeactivateWorkflow(ctx context.Context, id uuid.UUID) (*app.WorkflowResponse, error)
	CreateConfig(ctx context.Context, connectionID uuid.UUID, req app.CreateProcessConfigRequest) (*app.ProcessConfigResponse, error)
	ListConfigs(ctx context.Context, connectionID uuid.UUID) ([]app.ProcessConfigResponse, error)
	DeactivateConfig(ctx context.Context, id uuid.UUID) (*app.ProcessConfigResponse, error)
}

// ProcessConfigHandler handles the order automation policy endpoints
type ProcessConfigHandler struct {
	BaseHandler
	service ProcessConfigService
}

// NewProcessConfigHandler creates a new ProcessConfigHandler
func NewProcessConfigHandler(service ProcessConfigService) *ProcessConfigHandler {
	return &ProcessConfigHandler{service: service}
}

// CreateWorkflow godoc
// @Summary      Create an automation workflow
// @Description  Flags whose prerequisites are off are cleared: no confirmation means no invoice, no invoice means no validation or payment
// @Tags         automation
// @Accept       json
// @Produce      json
// @Param        request body app.CreateWorkflowRequest true "Workflow"
// @Success      201 {object} dto.Response
// @Router       /workflows [post]
func (h *ProcessConfigHandler) CreateWorkflow(c *gin.Context) {
	var req app.CreateWorkflowRequest
	if !h.BindJSON(c, &req) {
		return
	}
	wf, err := h.service.CreateWorkflow(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, wf)
}

// ListWorkflows godoc
// @Summary      List automation workflows
// @Tags         automation
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /workflows [get]
func (h *ProcessConfigHandler) ListWorkflows(c *gin.Context) {
	workflows, err := h.service.ListWorkflows(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, workflows, len(workflows))
}

// DeactivateWorkflow stops a workflow from being applied
func (h *ProcessConfigHandler) DeactivateWorkflow(c *gin.Context) {
	id, ok := h.ParseID(c, "workflow_id")
	if !ok {
		return
	}
	wf, err := h.service.DeactivateWorkflow(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wf)
}

// CreateConfig godoc
// @Summary      Create an order process configuration
// @Description  Routes orders with a financial status and payment gateway to a workflow. The gateway must be known to the connection.
// @Tags         automation
// @Accept       json
// @Produce      json
// @Param        id path string true "Connection ID"
// @Param        request body app.CreateProcessConfigRequest true "Configuration"
// @Success      201 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /connections/{id}/process-configs [post]
func (h *ProcessConfigHandler) CreateConfig(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req app.CreateProcessConfigRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cfg, err := h.service.CreateConfig(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cfg)
}

// ListConfigs returns a connection's order process configurations
func (h *ProcessConfigHandler) ListConfigs(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	configs, err := h.service.ListConfigs(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, configs, len(configs))
}

// DeactivateConfig godoc
// @Summary      Deactivate an order process configuration
// @Tags         automation
// @Produce      json
// @Param        config_id path string true "Configuration ID"
// @Success      200 {object} dto.Response
// @Router       /process-configs/{config_id}/deactivate [post]
func (h *ProcessConfigHandler) DeactivateConfig(c *gin.Context) {
	id, ok := h.ParseID(c, "config_id")
	if !ok {
		return
	}
	cfg, err := h.service.DeactivateConfig(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cfg)
}
