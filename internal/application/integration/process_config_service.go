package integration

import (
	"context"
	"strings"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessConfigService manages automation workflows and the per-connection
// configs that route a (financial status, payment gateway) pair to one of them
type ProcessConfigService struct {
	configs     integration.ProcessConfigRepository
	gateways    integration.PaymentGatewayRepository
	connections integration.ConnectionRepository
	logger      *zap.Logger
}

// NewProcessConfigService creates a new ProcessConfigService
func NewProcessConfigService(
	configs integration.ProcessConfigRepository,
	gateways integration.PaymentGatewayRepository,
	connections integration.ConnectionRepository,
	logger *zap.Logger,
) *ProcessConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessConfigService{
		configs:     configs,
		gateways:    gateways,
		connections: connections,
		logger:      logger,
	}
}

// CreateWorkflow stores a new active workflow. Flags whose prerequisites are
// off are cleared before saving.
func (s *ProcessConfigService) CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (*WorkflowResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, integration.ErrWorkflowInvalidName
	}
	wf := integration.NewAutomationWorkflow(name)
	wf.Confirm = req.Confirm
	wf.CreateInvoice = req.CreateInvoice
	wf.ValidateInvoice = req.ValidateInvoice
	wf.RegisterPayment = req.RegisterPayment
	wf.LockOrder = req.LockOrder
	wf.InvoiceDateIsOrderDate = req.InvoiceDateIsOrderDate
	wf.PickingPolicy = integration.PickingPolicy(req.PickingPolicy)
	wf.PaymentJournalID = req.PaymentJournalID
	wf.SaleJournalID = req.SaleJournalID
	wf.InboundPaymentMethodID = req.InboundPaymentMethodID
	wf.Normalize()

	if err := s.configs.SaveWorkflow(ctx, wf); err != nil {
		return nil, err
	}
	s.logger.Info("Automation workflow created",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("name", wf.Name))
	resp := ToWorkflowResponse(wf)
	return &resp, nil
}

// ListWorkflows returns every workflow
func (s *ProcessConfigService) ListWorkflows(ctx context.Context) ([]WorkflowResponse, error) {
	workflows, err := s.configs.FindWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WorkflowResponse, len(workflows))
	for i, wf := range workflows {
		out[i] = ToWorkflowResponse(wf)
	}
	return out, nil
}

// DeactivateWorkflow stops a workflow from being applied. Configs pointing at
// it stop matching but are left as they are.
func (s *ProcessConfigService) DeactivateWorkflow(ctx context.Context, id uuid.UUID) (*WorkflowResponse, error) {
	wf, err := s.configs.FindWorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf.Active {
		wf.Deactivate()
		if err := s.configs.SaveWorkflow(ctx, wf); err != nil {
			return nil, err
		}
		s.logger.Info("Automation workflow deactivated", zap.String("workflow_id", wf.ID.String()))
	}
	resp := ToWorkflowResponse(wf)
	return &resp, nil
}

// CreateConfig routes orders of a connection with the given financial status
// and gateway code to a workflow. The gateway must already be known to the
// connection and the workflow must be active.
func (s *ProcessConfigService) CreateConfig(ctx context.Context, connectionID uuid.UUID, req CreateProcessConfigRequest) (*ProcessConfigResponse, error) {
	if _, err := s.connections.FindByID(ctx, connectionID); err != nil {
		return nil, err
	}
	status := integration.FinancialStatus(strings.ToLower(strings.TrimSpace(req.FinancialStatus)))
	if !status.IsValid() {
		return nil, integration.ErrFinancialStatusInvalid
	}
	code := strings.TrimSpace(req.PaymentGatewayCode)
	if code == "" {
		return nil, integration.ErrPaymentGatewayInvalid
	}
	gateway, err := s.gateways.FindByCode(ctx, connectionID, code)
	if err != nil {
		return nil, err
	}
	wf, err := s.configs.FindWorkflowByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}
	if !wf.Active {
		return nil, integration.ErrWorkflowInactive
	}

	cfg := integration.NewOrderProcessConfig(connectionID, status, gateway.ID, wf)
	cfg.PaymentTermID = req.PaymentTermID
	cfg.Sequence = req.Sequence
	if err := s.configs.Save(ctx, cfg); err != nil {
		return nil, err
	}
	s.logger.Info("Order process configuration created",
		zap.String("connection_id", connectionID.String()),
		zap.String("config_id", cfg.ID.String()),
		zap.String("financial_status", string(status)),
		zap.String("gateway", gateway.Code),
		zap.String("workflow_id", wf.ID.String()))
	resp := ToProcessConfigResponse(cfg, gateway.Code)
	return &resp, nil
}

// ListConfigs returns a connection's configs, lowest sequence first
func (s *ProcessConfigService) ListConfigs(ctx context.Context, connectionID uuid.UUID) ([]ProcessConfigResponse, error) {
	if _, err := s.connections.FindByID(ctx, connectionID); err != nil {
		return nil, err
	}
	configs, err := s.configs.FindByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	codes, err := s.gatewayCodes(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	out := make([]ProcessConfigResponse, len(configs))
	for i, cfg := range configs {
		out[i] = ToProcessConfigResponse(cfg, codes[cfg.PaymentGatewayID])
	}
	return out, nil
}

// DeactivateConfig removes a config from matching
func (s *ProcessConfigService) DeactivateConfig(ctx context.Context, id uuid.UUID) (*ProcessConfigResponse, error) {
	cfg, err := s.configs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg.Active {
		cfg.Deactivate()
		if err := s.configs.Save(ctx, cfg); err != nil {
			return nil, err
		}
		s.logger.Info("Order process configuration deactivated",
			zap.String("connection_id", cfg.ConnectionID.String()),
			zap.String("config_id", cfg.ID.String()))
	}
	codes, err := s.gatewayCodes(ctx, cfg.ConnectionID)
	if err != nil {
		return nil, err
	}
	resp := ToProcessConfigResponse(cfg, codes[cfg.PaymentGatewayID])
	return &resp, nil
}

func (s *ProcessConfigService) gatewayCodes(ctx context.Context, connectionID uuid.UUID) (map[uuid.UUID]string, error) {
	gateways, err := s.gateways.FindByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	codes := make(map[uuid.UUID]string, len(gateways))
	for _, g := range gateways {
		codes[g.ID] = g.Code
	}
	return codes, nil
}
