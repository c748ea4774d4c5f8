package integration

import (
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// FinancialStatus
// ---------------------------------------------------------------------------

// FinancialStatus is the remote order payment status
type FinancialStatus string

const (
	FinancialStatusPending           FinancialStatus = "pending"
	FinancialStatusAuthorized        FinancialStatus = "authorized"
	FinancialStatusPartiallyPaid     FinancialStatus = "partially_paid"
	FinancialStatusPaid              FinancialStatus = "paid"
	FinancialStatusPartiallyRefunded FinancialStatus = "partially_refunded"
	FinancialStatusRefunded          FinancialStatus = "refunded"
	FinancialStatusVoided            FinancialStatus = "voided"
)

// IsValid returns true if the status is valid
func (s FinancialStatus) IsValid() bool {
	switch s {
	case FinancialStatusPending, FinancialStatusAuthorized, FinancialStatusPartiallyPaid,
		FinancialStatusPaid, FinancialStatusPartiallyRefunded, FinancialStatusRefunded,
		FinancialStatusVoided:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// PickingPolicy
// ---------------------------------------------------------------------------

// PickingPolicy decides how deliveries are validated for fulfilled orders
type PickingPolicy string

const (
	// PickingPolicyDirect validates each delivery as soon as it is reserved
	PickingPolicyDirect PickingPolicy = "direct"
	// PickingPolicyOne validates all deliveries together once fully reserved
	PickingPolicyOne PickingPolicy = "one"
	// PickingPolicyNever validates each delivery and never leaves a backorder
	PickingPolicyNever PickingPolicy = "never"
)

// IsValid returns true if the policy is valid
func (p PickingPolicy) IsValid() bool {
	switch p {
	case PickingPolicyDirect, PickingPolicyOne, PickingPolicyNever:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// AutomationWorkflow
// ---------------------------------------------------------------------------

// AutomationWorkflow is the set of post-upsert transitions applied to an order
type AutomationWorkflow struct {
	shared.BaseEntity
	Name                   string
	Confirm                bool
	CreateInvoice          bool
	ValidateInvoice        bool
	RegisterPayment        bool
	LockOrder              bool
	InvoiceDateIsOrderDate bool
	PickingPolicy          PickingPolicy
	PaymentJournalID       *uuid.UUID
	SaleJournalID          *uuid.UUID
	InboundPaymentMethodID *uuid.UUID
	// Active workflows are the only ones applied; configs pointing at an
	// inactive workflow never match
	Active bool
}

// NewAutomationWorkflow creates an active workflow with the default picking policy
func NewAutomationWorkflow(name string) *AutomationWorkflow {
	return &AutomationWorkflow{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		PickingPolicy: PickingPolicyOne,
		Active:        true,
	}
}

// Deactivate stops the workflow from being applied
func (w *AutomationWorkflow) Deactivate() {
	w.Active = false
	w.Touch()
}

// Normalize clears flags whose prerequisites are off: no confirmation means
// no invoice, and no invoice means no validation or payment.
func (w *AutomationWorkflow) Normalize() {
	if !w.PickingPolicy.IsValid() {
		w.PickingPolicy = PickingPolicyOne
	}
	if !w.Confirm {
		w.CreateInvoice = false
	}
	if !w.CreateInvoice {
		w.ValidateInvoice = false
		w.RegisterPayment = false
	}
}

// ---------------------------------------------------------------------------
// OrderProcessConfig
// ---------------------------------------------------------------------------

// OrderProcessConfig maps (financial status, payment gateway) to a workflow
type OrderProcessConfig struct {
	shared.BaseEntity
	ConnectionID     uuid.UUID
	FinancialStatus  FinancialStatus
	PaymentGatewayID uuid.UUID
	PaymentTermID    *uuid.UUID
	// Sequence orders candidate configs; the lowest matching one wins
	Sequence int
	Active   bool
	Workflow *AutomationWorkflow
}

// NewOrderProcessConfig creates an active configuration
func NewOrderProcessConfig(connectionID uuid.UUID, status FinancialStatus, gatewayID uuid.UUID, workflow *AutomationWorkflow) *OrderProcessConfig {
	return &OrderProcessConfig{
		BaseEntity:       shared.NewBaseEntity(),
		ConnectionID:     connectionID,
		FinancialStatus:  status,
		PaymentGatewayID: gatewayID,
		Active:           true,
		Workflow:         workflow,
	}
}

// Deactivate removes the configuration from matching
func (c *OrderProcessConfig) Deactivate() {
	c.Active = false
	c.Touch()
}
