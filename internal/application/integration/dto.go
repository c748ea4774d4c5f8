package integration

import (
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Connection DTOs
// ---------------------------------------------------------------------------

// ConnectionResponse represents a connection in API responses. Credentials are never exposed.
type ConnectionResponse struct {
	ID               uuid.UUID                   `json:"id"`
	Name             string                      `json:"name"`
	Host             string                      `json:"host"`
	APIVersion       string                      `json:"api_version"`
	TimeZone         string                      `json:"time_zone,omitempty"`
	CurrencyCode     string                      `json:"currency_code,omitempty"`
	CompanyID        uuid.UUID                   `json:"company_id"`
	WarehouseID      *uuid.UUID                  `json:"warehouse_id,omitempty"`
	RemoteLocationID string                      `json:"remote_location_id,omitempty"`
	State            integration.ConnectionState `json:"state"`
	LastError        string                      `json:"last_error,omitempty"`
	LastTestedAt     *time.Time                  `json:"last_tested_at,omitempty"`
	Active           bool                        `json:"active"`
}

// ToConnectionResponse converts a connection
func ToConnectionResponse(c *integration.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:               c.ID,
		Name:             c.Name,
		Host:             c.Host,
		APIVersion:       c.APIVersion,
		TimeZone:         c.TimeZone,
		CurrencyCode:     c.CurrencyCode,
		CompanyID:        c.CompanyID,
		WarehouseID:      c.WarehouseID,
		RemoteLocationID: c.RemoteLocationID.String(),
		State:            c.State,
		LastError:        c.LastError,
		LastTestedAt:     c.LastTestedAt,
		Active:           c.Active,
	}
}

// ConnectionTestResult is the outcome of a connection test
type ConnectionTestResult struct {
	Connection      ConnectionResponse `json:"connection"`
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	GatewaysCreated int                `json:"gateways_created"`
}

// ---------------------------------------------------------------------------
// Webhook DTOs
// ---------------------------------------------------------------------------

// WebhookResponse represents a webhook registration in API responses
type WebhookResponse struct {
	ID              uuid.UUID                `json:"id"`
	ConnectionID    uuid.UUID                `json:"connection_id"`
	Topic           integration.WebhookTopic `json:"topic"`
	RemoteWebhookID string                   `json:"remote_webhook_id,omitempty"`
	Address         string                   `json:"address,omitempty"`
	State           integration.WebhookState `json:"state"`
}

// ToWebhookResponse converts a registration
func ToWebhookResponse(w *integration.WebhookRegistration) WebhookResponse {
	return WebhookResponse{
		ID:              w.ID,
		ConnectionID:    w.ConnectionID,
		Topic:           w.Topic,
		RemoteWebhookID: w.RemoteWebhookID.String(),
		Address:         w.Address,
		State:           w.State,
	}
}

// ---------------------------------------------------------------------------
// Queue DTOs
// ---------------------------------------------------------------------------

// QueueResponse represents a queue in API responses
type QueueResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	ConnectionID uuid.UUID              `json:"connection_id"`
	Kind         integration.EntityKind `json:"kind"`
	State        integration.QueueState `json:"state"`
	Total        int                    `json:"total"`
	Draft        int                    `json:"draft"`
	Done         int                    `json:"done"`
	Failed       int                    `json:"failed"`
	Cancel       int                    `json:"cancel"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ToQueueResponse converts a queue
func ToQueueResponse(q *integration.Queue) QueueResponse {
	return QueueResponse{
		ID:           q.ID,
		Name:         q.Name,
		ConnectionID: q.ConnectionID,
		Kind:         q.Kind,
		State:        q.State(),
		Total:        q.Counts.Total,
		Draft:        q.Counts.Draft,
		Done:         q.Counts.Done,
		Failed:       q.Counts.Failed,
		Cancel:       q.Counts.Cancel,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// QueueLineResponse represents a queue line in API responses
type QueueLineResponse struct {
	ID          uuid.UUID                  `json:"id"`
	Position    int                        `json:"position"`
	ExternalID  string                     `json:"external_id"`
	Name        string                     `json:"name"`
	State       integration.QueueLineState `json:"state"`
	Attempts    int                        `json:"attempts"`
	LastError   string                     `json:"last_error,omitempty"`
	ProcessedAt *time.Time                 `json:"processed_at,omitempty"`
}

// ToQueueLineResponse converts a queue line
func ToQueueLineResponse(l *integration.QueueLine) QueueLineResponse {
	return QueueLineResponse{
		ID:          l.ID,
		Position:    l.Position,
		ExternalID:  l.ExternalID.String(),
		Name:        l.Name,
		State:       l.State,
		Attempts:    l.Attempts,
		LastError:   l.LastError,
		ProcessedAt: l.ProcessedAt,
	}
}

// QueueDetailResponse is a queue with its lines
type QueueDetailResponse struct {
	QueueResponse
	Lines []QueueLineResponse `json:"lines"`
}

// DrainResult summarises one drain pass over a queue
type DrainResult struct {
	QueueID   uuid.UUID              `json:"queue_id"`
	QueueName string                 `json:"queue_name"`
	Processed int                    `json:"processed"`
	Done      int                    `json:"done"`
	Failed    int                    `json:"failed"`
	Cancelled int                    `json:"cancelled"`
	Skipped   int                    `json:"skipped"`
	State     integration.QueueState `json:"state"`
}

// ---------------------------------------------------------------------------
// Import DTOs
// ---------------------------------------------------------------------------

// ImportResult is the outcome of a synchronous import. A single-object
// response is applied at once and reported by ExternalID; a list response
// yields the queues it was split into.
type ImportResult struct {
	Kind       integration.EntityKind `json:"kind"`
	ExternalID string                 `json:"external_id,omitempty"`
	Queues     []QueueResponse        `json:"queues,omitempty"`
	Lines      int                    `json:"lines"`
}

// OrderImportMode selects which remote orders an order import fetches
type OrderImportMode string

const (
	OrderImportUnshipped OrderImportMode = "unshipped"
	OrderImportShipped   OrderImportMode = "shipped"
	OrderImportAll       OrderImportMode = "all"
)

// OrderImportRequest selects remote orders by status window or explicit ids
type OrderImportRequest struct {
	Mode OrderImportMode
	From time.Time
	To   time.Time
	IDs  []string
}

// GatewayImportResult lists gateway codes seen in a window and how many were new
type GatewayImportResult struct {
	Codes   []string `json:"codes"`
	Created int      `json:"created"`
}

// CreateConnectionRequest holds the fields of a new connection
type CreateConnectionRequest struct {
	Name        string     `json:"name" binding:"required,max=128"`
	Host        string     `json:"host" binding:"required"`
	APIKey      string     `json:"api_key"`
	AccessToken string     `json:"access_token" binding:"required"`
	APISecret   string     `json:"api_secret"`
	APIVersion  string     `json:"api_version"`
	CompanyID   uuid.UUID  `json:"company_id" binding:"required"`
	WarehouseID *uuid.UUID `json:"warehouse_id"`
	LocationID  *uuid.UUID `json:"location_id"`
}

// ---------------------------------------------------------------------------
// Process configuration DTOs
// ---------------------------------------------------------------------------

// CreateWorkflowRequest holds the switches of a new automation workflow
type CreateWorkflowRequest struct {
	Name                   string     `json:"name" binding:"required,max=200"`
	Confirm                bool       `json:"confirm"`
	CreateInvoice          bool       `json:"create_invoice"`
	ValidateInvoice        bool       `json:"validate_invoice"`
	RegisterPayment        bool       `json:"register_payment"`
	LockOrder              bool       `json:"lock_order"`
	InvoiceDateIsOrderDate bool       `json:"invoice_date_is_order_date"`
	PickingPolicy          string     `json:"picking_policy" binding:"omitempty,oneof=direct one never"`
	PaymentJournalID       *uuid.UUID `json:"payment_journal_id"`
	SaleJournalID          *uuid.UUID `json:"sale_journal_id"`
	InboundPaymentMethodID *uuid.UUID `json:"inbound_payment_method_id"`
}

// WorkflowResponse represents an automation workflow in API responses
type WorkflowResponse struct {
	ID                     uuid.UUID                 `json:"id"`
	Name                   string                    `json:"name"`
	Confirm                bool                      `json:"confirm"`
	CreateInvoice          bool                      `json:"create_invoice"`
	ValidateInvoice        bool                      `json:"validate_invoice"`
	RegisterPayment        bool                      `json:"register_payment"`
	LockOrder              bool                      `json:"lock_order"`
	InvoiceDateIsOrderDate bool                      `json:"invoice_date_is_order_date"`
	PickingPolicy          integration.PickingPolicy `json:"picking_policy"`
	PaymentJournalID       *uuid.UUID                `json:"payment_journal_id,omitempty"`
	SaleJournalID          *uuid.UUID                `json:"sale_journal_id,omitempty"`
	InboundPaymentMethodID *uuid.UUID                `json:"inbound_payment_method_id,omitempty"`
	Active                 bool                      `json:"active"`
}

// ToWorkflowResponse converts a workflow
func ToWorkflowResponse(w *integration.AutomationWorkflow) WorkflowResponse {
	return WorkflowResponse{
		ID:                     w.ID,
		Name:                   w.Name,
		Confirm:                w.Confirm,
		CreateInvoice:          w.CreateInvoice,
		ValidateInvoice:        w.ValidateInvoice,
		RegisterPayment:        w.RegisterPayment,
		LockOrder:              w.LockOrder,
		InvoiceDateIsOrderDate: w.InvoiceDateIsOrderDate,
		PickingPolicy:          w.PickingPolicy,
		PaymentJournalID:       w.PaymentJournalID,
		SaleJournalID:          w.SaleJournalID,
		InboundPaymentMethodID: w.InboundPaymentMethodID,
		Active:                 w.Active,
	}
}

// CreateProcessConfigRequest routes a financial status and gateway to a workflow
type CreateProcessConfigRequest struct {
	FinancialStatus    string     `json:"financial_status" binding:"required"`
	PaymentGatewayCode string     `json:"payment_gateway_code" binding:"required"`
	WorkflowID         uuid.UUID  `json:"workflow_id" binding:"required"`
	PaymentTermID      *uuid.UUID `json:"payment_term_id"`
	Sequence           int        `json:"sequence" binding:"min=0"`
}

// ProcessConfigResponse represents an order process configuration in API responses
type ProcessConfigResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	ConnectionID       uuid.UUID                   `json:"connection_id"`
	FinancialStatus    integration.FinancialStatus `json:"financial_status"`
	PaymentGatewayID   uuid.UUID                   `json:"payment_gateway_id"`
	PaymentGatewayCode string                      `json:"payment_gateway_code,omitempty"`
	PaymentTermID      *uuid.UUID                  `json:"payment_term_id,omitempty"`
	Sequence           int                         `json:"sequence"`
	Active             bool                        `json:"active"`
	Workflow           *WorkflowResponse           `json:"workflow,omitempty"`
}

// ToProcessConfigResponse converts a config; gatewayCode may be empty
func ToProcessConfigResponse(c *integration.OrderProcessConfig, gatewayCode string) ProcessConfigResponse {
	resp := ProcessConfigResponse{
		ID:                 c.ID,
		ConnectionID:       c.ConnectionID,
		FinancialStatus:    c.FinancialStatus,
		PaymentGatewayID:   c.PaymentGatewayID,
		PaymentGatewayCode: gatewayCode,
		PaymentTermID:      c.PaymentTermID,
		Sequence:           c.Sequence,
		Active:             c.Active,
	}
	if c.Workflow != nil {
		wf := ToWorkflowResponse(c.Workflow)
		resp.Workflow = &wf
	}
	return resp
}

// ---------------------------------------------------------------------------
// Stock export DTOs
// ---------------------------------------------------------------------------

// StockExportLine is the outcome for one variant
type StockExportLine struct {
	VariantID       uuid.UUID `json:"variant_id"`
	ExternalID      string    `json:"external_id"`
	InventoryItemID string    `json:"inventory_item_id,omitempty"`
	Available       int64     `json:"available"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
}

// StockExportResult summarises a stock export run
type StockExportResult struct {
	ConnectionID uuid.UUID         `json:"connection_id"`
	Exported     int               `json:"exported"`
	Failed       int               `json:"failed"`
	Lines        []StockExportLine `json:"lines"`
}

// WebhookOutcome is the acknowledgement returned to the remote platform
type WebhookOutcome string

const (
	WebhookReceived         WebhookOutcome = "received"
	WebhookProcessingFailed WebhookOutcome = "processing failed"
)
