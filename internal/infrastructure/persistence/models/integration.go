package models

import (
	"encoding/json"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

// ConnectionModel is the persistence model for Connection. AccessToken and
// APISecret hold sealed values when a sealer is configured.
type ConnectionModel struct {
	BaseModel
	Name             string                      `gorm:"type:varchar(200);not null"`
	Host             string                      `gorm:"type:varchar(255);not null;uniqueIndex"`
	APIKey           string                      `gorm:"type:varchar(255)"`
	AccessToken      string                      `gorm:"type:text;not null"`
	APISecret        string                      `gorm:"type:text"`
	APIVersion       string                      `gorm:"type:varchar(20);not null"`
	TimeZone         string                      `gorm:"type:varchar(64)"`
	CurrencyCode     string                      `gorm:"type:varchar(8)"`
	CompanyID        uuid.UUID                   `gorm:"type:uuid;not null"`
	WarehouseID      *uuid.UUID                  `gorm:"type:uuid"`
	LocationID       *uuid.UUID                  `gorm:"type:uuid"`
	RemoteLocationID string                      `gorm:"type:varchar(32)"`
	State            integration.ConnectionState `gorm:"type:varchar(20);not null;index"`
	LastError        string                      `gorm:"type:text"`
	LastTestedAt     *time.Time
	Active           bool `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConnectionModel) TableName() string {
	return "connections"
}

// ToDomain converts the persistence model to a domain Connection
func (m *ConnectionModel) ToDomain() *integration.Connection {
	return &integration.Connection{
		BaseEntity:       m.BaseModel.ToDomain(),
		Name:             m.Name,
		Host:             m.Host,
		APIKey:           m.APIKey,
		AccessToken:      m.AccessToken,
		APISecret:        m.APISecret,
		APIVersion:       m.APIVersion,
		TimeZone:         m.TimeZone,
		CurrencyCode:     m.CurrencyCode,
		CompanyID:        m.CompanyID,
		WarehouseID:      m.WarehouseID,
		LocationID:       m.LocationID,
		RemoteLocationID: shared.ExternalID(m.RemoteLocationID),
		State:            m.State,
		LastError:        m.LastError,
		LastTestedAt:     m.LastTestedAt,
		Active:           m.Active,
	}
}

// ConnectionModelFromDomain creates a persistence model from a domain Connection
func ConnectionModelFromDomain(c *integration.Connection) *ConnectionModel {
	m := &ConnectionModel{
		Name:             c.Name,
		Host:             c.Host,
		APIKey:           c.APIKey,
		AccessToken:      c.AccessToken,
		APISecret:        c.APISecret,
		APIVersion:       c.APIVersion,
		TimeZone:         c.TimeZone,
		CurrencyCode:     c.CurrencyCode,
		CompanyID:        c.CompanyID,
		WarehouseID:      c.WarehouseID,
		LocationID:       c.LocationID,
		RemoteLocationID: c.RemoteLocationID.String(),
		State:            c.State,
		LastError:        c.LastError,
		LastTestedAt:     c.LastTestedAt,
		Active:           c.Active,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// ---------------------------------------------------------------------------
// WebhookRegistration
// ---------------------------------------------------------------------------

// WebhookModel is the persistence model for WebhookRegistration
type WebhookModel struct {
	BaseModel
	ConnectionID    uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_webhook_connection_topic,priority:1"`
	Topic           integration.WebhookTopic `gorm:"type:varchar(50);not null;uniqueIndex:idx_webhook_connection_topic,priority:2"`
	RemoteWebhookID string                   `gorm:"type:varchar(32)"`
	Address         string                   `gorm:"type:varchar(500)"`
	State           integration.WebhookState `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (WebhookModel) TableName() string {
	return "webhook_registrations"
}

// ToDomain converts the persistence model to a domain WebhookRegistration
func (m *WebhookModel) ToDomain() *integration.WebhookRegistration {
	return &integration.WebhookRegistration{
		BaseEntity:      m.BaseModel.ToDomain(),
		ConnectionID:    m.ConnectionID,
		Topic:           m.Topic,
		RemoteWebhookID: shared.ExternalID(m.RemoteWebhookID),
		Address:         m.Address,
		State:           m.State,
	}
}

// WebhookModelFromDomain creates a persistence model from a domain WebhookRegistration
func WebhookModelFromDomain(w *integration.WebhookRegistration) *WebhookModel {
	m := &WebhookModel{
		ConnectionID:    w.ConnectionID,
		Topic:           w.Topic,
		RemoteWebhookID: w.RemoteWebhookID.String(),
		Address:         w.Address,
		State:           w.State,
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	return m
}

// ---------------------------------------------------------------------------
// Queue
// ---------------------------------------------------------------------------

// QueueModel is the persistence model for Queue. Counts and State are the
// derived values, stored so drainable queues can be selected in SQL.
type QueueModel struct {
	BaseModel
	Name         string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	ConnectionID uuid.UUID              `gorm:"type:uuid;not null;index"`
	CompanyID    uuid.UUID              `gorm:"type:uuid;not null"`
	Kind         integration.EntityKind `gorm:"type:varchar(20);not null"`
	State        integration.QueueState `gorm:"type:varchar(30);not null;index"`
	TotalCount   int                    `gorm:"not null"`
	DraftCount   int                    `gorm:"not null"`
	DoneCount    int                    `gorm:"not null"`
	FailedCount  int                    `gorm:"not null"`
	CancelCount  int                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QueueModel) TableName() string {
	return "sync_queues"
}

// ToDomain converts the persistence model to a domain Queue
func (m *QueueModel) ToDomain() *integration.Queue {
	q := &integration.Queue{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		ConnectionID: m.ConnectionID,
		CompanyID:    m.CompanyID,
		Kind:         m.Kind,
	}
	q.RestoreQueueState(m.State, integration.QueueCounts{
		Total:  m.TotalCount,
		Draft:  m.DraftCount,
		Done:   m.DoneCount,
		Failed: m.FailedCount,
		Cancel: m.CancelCount,
	})
	return q
}

// QueueModelFromDomain creates a persistence model from a domain Queue
func QueueModelFromDomain(q *integration.Queue) *QueueModel {
	m := &QueueModel{
		Name:         q.Name,
		ConnectionID: q.ConnectionID,
		CompanyID:    q.CompanyID,
		Kind:         q.Kind,
		State:        q.State(),
		TotalCount:   q.Counts.Total,
		DraftCount:   q.Counts.Draft,
		DoneCount:    q.Counts.Done,
		FailedCount:  q.Counts.Failed,
		CancelCount:  q.Counts.Cancel,
	}
	m.FromDomainBaseEntity(q.BaseEntity)
	return m
}

// QueueLineModel is the persistence model for QueueLine. The payload is the
// schema-validated JSON document of the remote entity.
type QueueLineModel struct {
	BaseModel
	QueueID      uuid.UUID                  `gorm:"type:uuid;not null;index:idx_queue_line_position,priority:1"`
	ConnectionID uuid.UUID                  `gorm:"type:uuid;not null"`
	Kind         integration.EntityKind     `gorm:"type:varchar(20);not null"`
	Position     int                        `gorm:"not null;index:idx_queue_line_position,priority:2"`
	ExternalID   string                     `gorm:"type:varchar(32);index"`
	Name         string                     `gorm:"type:varchar(255)"`
	Payload      json.RawMessage            `gorm:"type:jsonb;not null"`
	State        integration.QueueLineState `gorm:"type:varchar(20);not null;index"`
	Attempts     int                        `gorm:"not null"`
	LastError    string                     `gorm:"type:text"`
	ProcessedAt  *time.Time
}

// TableName returns the table name for GORM
func (QueueLineModel) TableName() string {
	return "sync_queue_lines"
}

// ToDomain converts the persistence model to a domain QueueLine
func (m *QueueLineModel) ToDomain() *integration.QueueLine {
	return &integration.QueueLine{
		BaseEntity:   m.BaseModel.ToDomain(),
		QueueID:      m.QueueID,
		ConnectionID: m.ConnectionID,
		Kind:         m.Kind,
		Position:     m.Position,
		ExternalID:   shared.ExternalID(m.ExternalID),
		Name:         m.Name,
		Payload:      m.Payload,
		State:        m.State,
		Attempts:     m.Attempts,
		LastError:    m.LastError,
		ProcessedAt:  m.ProcessedAt,
	}
}

// QueueLineModelFromDomain creates a persistence model from a domain QueueLine
func QueueLineModelFromDomain(l *integration.QueueLine) *QueueLineModel {
	m := &QueueLineModel{
		QueueID:      l.QueueID,
		ConnectionID: l.ConnectionID,
		Kind:         l.Kind,
		Position:     l.Position,
		ExternalID:   l.ExternalID.String(),
		Name:         l.Name,
		Payload:      l.Payload,
		State:        l.State,
		Attempts:     l.Attempts,
		LastError:    l.LastError,
		ProcessedAt:  l.ProcessedAt,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// ---------------------------------------------------------------------------
// ProcessLog
// ---------------------------------------------------------------------------

// ProcessLogModel is the persistence model for ProcessLog; its lines are
// stored inline as a JSON array
type ProcessLogModel struct {
	BaseModel
	Name          string                     `gorm:"type:varchar(50);not null;uniqueIndex"`
	ConnectionID  uuid.UUID                  `gorm:"type:uuid;index"`
	Message       string                     `gorm:"type:text"`
	ResourceModel integration.ResourceModel  `gorm:"type:varchar(30);not null;index:idx_process_log_resource,priority:1"`
	ResourceID    string                     `gorm:"type:varchar(64);index:idx_process_log_resource,priority:2"`
	Response      string                     `gorm:"type:text"`
	Tag           string                     `gorm:"type:varchar(50);not null"`
	HasErrors     bool                       `gorm:"not null;index"`
	Lines         []integration.ProcessLogLine `gorm:"serializer:json;type:jsonb"`
}

// TableName returns the table name for GORM
func (ProcessLogModel) TableName() string {
	return "process_logs"
}

// ToDomain converts the persistence model to a domain ProcessLog
func (m *ProcessLogModel) ToDomain() *integration.ProcessLog {
	return &integration.ProcessLog{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		ConnectionID:  m.ConnectionID,
		Message:       m.Message,
		ResourceModel: m.ResourceModel,
		ResourceID:    m.ResourceID,
		Response:      m.Response,
		Tag:           m.Tag,
		Lines:         m.Lines,
	}
}

// ProcessLogModelFromDomain creates a persistence model from a domain ProcessLog
func ProcessLogModelFromDomain(l *integration.ProcessLog) *ProcessLogModel {
	m := &ProcessLogModel{
		Name:          l.Name,
		ConnectionID:  l.ConnectionID,
		Message:       l.Message,
		ResourceModel: l.ResourceModel,
		ResourceID:    l.ResourceID,
		Response:      l.Response,
		Tag:           l.Tag,
		HasErrors:     l.HasErrors(),
		Lines:         l.Lines,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// ---------------------------------------------------------------------------
// PaymentGateway
// ---------------------------------------------------------------------------

// PaymentGatewayModel is the persistence model for PaymentGateway
type PaymentGatewayModel struct {
	BaseModel
	ConnectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_gateway_connection_code,priority:1"`
	Code         string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_gateway_connection_code,priority:2"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Active       bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentGatewayModel) TableName() string {
	return "payment_gateways"
}

// ToDomain converts the persistence model to a domain PaymentGateway
func (m *PaymentGatewayModel) ToDomain() *integration.PaymentGateway {
	return &integration.PaymentGateway{
		BaseEntity:   m.BaseModel.ToDomain(),
		ConnectionID: m.ConnectionID,
		Code:         m.Code,
		Name:         m.Name,
		Active:       m.Active,
	}
}

// PaymentGatewayModelFromDomain creates a persistence model from a domain PaymentGateway
func PaymentGatewayModelFromDomain(g *integration.PaymentGateway) *PaymentGatewayModel {
	m := &PaymentGatewayModel{
		ConnectionID: g.ConnectionID,
		Code:         g.Code,
		Name:         g.Name,
		Active:       g.Active,
	}
	m.FromDomainBaseEntity(g.BaseEntity)
	return m
}

// ---------------------------------------------------------------------------
// Automation
// ---------------------------------------------------------------------------

// AutomationWorkflowModel is the persistence model for AutomationWorkflow
type AutomationWorkflowModel struct {
	BaseModel
	Name                   string                    `gorm:"type:varchar(200);not null"`
	Confirm                bool                      `gorm:"not null"`
	CreateInvoice          bool                      `gorm:"not null"`
	ValidateInvoice        bool                      `gorm:"not null"`
	RegisterPayment        bool                      `gorm:"not null"`
	LockOrder              bool                      `gorm:"not null"`
	InvoiceDateIsOrderDate bool                      `gorm:"not null"`
	PickingPolicy          integration.PickingPolicy `gorm:"type:varchar(20);not null"`
	PaymentJournalID       *uuid.UUID                `gorm:"type:uuid"`
	SaleJournalID          *uuid.UUID                `gorm:"type:uuid"`
	InboundPaymentMethodID *uuid.UUID                `gorm:"type:uuid"`
	Active                 bool                      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AutomationWorkflowModel) TableName() string {
	return "automation_workflows"
}

// ToDomain converts the persistence model to a domain AutomationWorkflow
func (m *AutomationWorkflowModel) ToDomain() *integration.AutomationWorkflow {
	return &integration.AutomationWorkflow{
		BaseEntity:             m.BaseModel.ToDomain(),
		Name:                   m.Name,
		Confirm:                m.Confirm,
		CreateInvoice:          m.CreateInvoice,
		ValidateInvoice:        m.ValidateInvoice,
		RegisterPayment:        m.RegisterPayment,
		LockOrder:              m.LockOrder,
		InvoiceDateIsOrderDate: m.InvoiceDateIsOrderDate,
		PickingPolicy:          m.PickingPolicy,
		PaymentJournalID:       m.PaymentJournalID,
		SaleJournalID:          m.SaleJournalID,
		InboundPaymentMethodID: m.InboundPaymentMethodID,
		Active:                 m.Active,
	}
}

// AutomationWorkflowModelFromDomain creates a persistence model from a domain AutomationWorkflow
func AutomationWorkflowModelFromDomain(w *integration.AutomationWorkflow) *AutomationWorkflowModel {
	m := &AutomationWorkflowModel{
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
	m.FromDomainBaseEntity(w.BaseEntity)
	return m
}

// OrderProcessConfigModel is the persistence model for OrderProcessConfig
type OrderProcessConfigModel struct {
	BaseModel
	ConnectionID     uuid.UUID                   `gorm:"type:uuid;not null;index:idx_process_config_match,priority:1"`
	FinancialStatus  integration.FinancialStatus `gorm:"type:varchar(30);not null;index:idx_process_config_match,priority:2"`
	PaymentGatewayID uuid.UUID                   `gorm:"type:uuid;not null;index:idx_process_config_match,priority:3"`
	PaymentTermID    *uuid.UUID                  `gorm:"type:uuid"`
	WorkflowID       *uuid.UUID                  `gorm:"type:uuid"`
	Sequence         int                         `gorm:"not null"`
	Active           bool                        `gorm:"not null"`
	Workflow         *AutomationWorkflowModel    `gorm:"foreignKey:WorkflowID"`
}

// TableName returns the table name for GORM
func (OrderProcessConfigModel) TableName() string {
	return "order_process_configs"
}

// ToDomain converts the persistence model to a domain OrderProcessConfig.
// The workflow is set only when preloaded.
func (m *OrderProcessConfigModel) ToDomain() *integration.OrderProcessConfig {
	cfg := &integration.OrderProcessConfig{
		BaseEntity:       m.BaseModel.ToDomain(),
		ConnectionID:     m.ConnectionID,
		FinancialStatus:  m.FinancialStatus,
		PaymentGatewayID: m.PaymentGatewayID,
		PaymentTermID:    m.PaymentTermID,
		Sequence:         m.Sequence,
		Active:           m.Active,
	}
	if m.Workflow != nil {
		cfg.Workflow = m.Workflow.ToDomain()
	}
	return cfg
}

// OrderProcessConfigModelFromDomain creates a persistence model from a domain
// OrderProcessConfig. The workflow itself is stored separately.
func OrderProcessConfigModelFromDomain(c *integration.OrderProcessConfig) *OrderProcessConfigModel {
	m := &OrderProcessConfigModel{
		ConnectionID:     c.ConnectionID,
		FinancialStatus:  c.FinancialStatus,
		PaymentGatewayID: c.PaymentGatewayID,
		PaymentTermID:    c.PaymentTermID,
		Sequence:         c.Sequence,
		Active:           c.Active,
	}
	if c.Workflow != nil {
		id := c.Workflow.ID
		m.WorkflowID = &id
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// SequenceModel holds the last value handed out per sequence code
type SequenceModel struct {
	Code  string `gorm:"type:varchar(30);primaryKey"`
	Value int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}
