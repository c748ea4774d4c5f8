package integration

import (
	"context"

	"github.com/google/uuid"
)

// ConnectionRepository persists connections
type ConnectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Connection, error)
	FindAll(ctx context.Context) ([]*Connection, error)
	// FindActive returns connections with Active set, in any state
	FindActive(ctx context.Context) ([]*Connection, error)
	Save(ctx context.Context, conn *Connection) error
}

// WebhookRepository persists webhook registrations
type WebhookRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WebhookRegistration, error)
	FindByTopic(ctx context.Context, connectionID uuid.UUID, topic WebhookTopic) (*WebhookRegistration, error)
	FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*WebhookRegistration, error)
	Save(ctx context.Context, reg *WebhookRegistration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QueueRepository persists queues and their lines
type QueueRepository interface {
	// Create stores a queue together with its lines
	Create(ctx context.Context, queue *Queue, lines []*QueueLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*Queue, error)
	FindByStates(ctx context.Context, states ...QueueState) ([]*Queue, error)
	FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*Queue, error)
	// FindLines returns lines in creation order
	FindLines(ctx context.Context, queueID uuid.UUID) ([]*QueueLine, error)
	SaveLine(ctx context.Context, line *QueueLine) error
	// SaveState stores the queue's derived counts and state
	SaveState(ctx context.Context, queue *Queue) error
}

// ProcessLogRepository stores audit logs
type ProcessLogRepository interface {
	Create(ctx context.Context, log *ProcessLog) error
	FindByResource(ctx context.Context, model ResourceModel, resourceID string) ([]*ProcessLog, error)
}

// PaymentGatewayRepository persists payment gateways
type PaymentGatewayRepository interface {
	FindByCode(ctx context.Context, connectionID uuid.UUID, code string) (*PaymentGateway, error)
	FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*PaymentGateway, error)
	Create(ctx context.Context, gw *PaymentGateway) error
}

// ProcessConfigRepository persists order automation policies and their workflows
type ProcessConfigRepository interface {
	// FindMatch returns the lowest-sequence active config for the key, with its
	// workflow loaded. Configs whose workflow is inactive are skipped.
	FindMatch(ctx context.Context, connectionID uuid.UUID, status FinancialStatus, gatewayID uuid.UUID) (*OrderProcessConfig, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OrderProcessConfig, error)
	// FindByConnection returns a connection's configs ordered by sequence, workflows loaded
	FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*OrderProcessConfig, error)
	Save(ctx context.Context, cfg *OrderProcessConfig) error

	FindWorkflowByID(ctx context.Context, id uuid.UUID) (*AutomationWorkflow, error)
	// FindWorkflows returns every workflow ordered by name
	FindWorkflows(ctx context.Context) ([]*AutomationWorkflow, error)
	SaveWorkflow(ctx context.Context, wf *AutomationWorkflow) error
}

// SequenceGenerator hands out names like "CUST-Q/00001"
type SequenceGenerator interface {
	Next(ctx context.Context, code string) (string, error)
}

// QueueRepositories groups the repositories used inside one enqueue transaction
type QueueRepositories interface {
	Queues() QueueRepository
	Sequences() SequenceGenerator
}

// QueueTransactionScope runs fn in a single store transaction
type QueueTransactionScope interface {
	Execute(ctx context.Context, fn func(repos QueueRepositories) error) error
}
