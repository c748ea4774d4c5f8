package integration

import (
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// ProcessLogTag marks every log written by the connector
const ProcessLogTag = "shopify_connector"

// ProcessLogSequenceCode names process logs (LOG/00001)
const ProcessLogSequenceCode = "LOG"

// ResourceModel names the kind of record a log refers to
type ResourceModel string

const (
	ResourceCustomer   ResourceModel = "customer"
	ResourceProduct    ResourceModel = "product"
	ResourceOrder      ResourceModel = "order"
	ResourceQueueLine  ResourceModel = "queue_line"
	ResourceConnection ResourceModel = "connection"
)

// ResourceModelFor maps an entity kind to its log resource model
func ResourceModelFor(kind EntityKind) ResourceModel {
	return ResourceModel(kind)
}

// LogLineState is the outcome recorded by a log line
type LogLineState string

const (
	LogLineSuccess LogLineState = "success"
	LogLineError   LogLineState = "error"
)

// ProcessLogLine is one touched sub-record of a sync attempt
type ProcessLogLine struct {
	Name       string
	ResourceID string
	Response   string
	Message    string
	State      LogLineState
}

// ProcessLog is an append-only audit record of one sync attempt
type ProcessLog struct {
	shared.BaseEntity
	Name          string
	ConnectionID  uuid.UUID
	Message       string
	ResourceModel ResourceModel
	ResourceID    string
	Response      string
	Tag           string
	Lines         []ProcessLogLine
}

// NewProcessLog creates an unnamed log; the name is assigned from the LOG sequence on save
func NewProcessLog(connectionID uuid.UUID, model ResourceModel, resourceID, message, response string) *ProcessLog {
	return &ProcessLog{
		BaseEntity:    shared.NewBaseEntity(),
		ConnectionID:  connectionID,
		Message:       message,
		ResourceModel: model,
		ResourceID:    resourceID,
		Response:      response,
		Tag:           ProcessLogTag,
	}
}

// AddSuccess appends a success line
func (l *ProcessLog) AddSuccess(name, resourceID, message, response string) {
	l.Lines = append(l.Lines, ProcessLogLine{
		Name: name, ResourceID: resourceID, Message: message, Response: response, State: LogLineSuccess,
	})
}

// AddError appends an error line
func (l *ProcessLog) AddError(name, resourceID, message, response string) {
	l.Lines = append(l.Lines, ProcessLogLine{
		Name: name, ResourceID: resourceID, Message: message, Response: response, State: LogLineError,
	})
}

// HasErrors reports whether any line failed
func (l *ProcessLog) HasErrors() bool {
	for _, line := range l.Lines {
		if line.State == LogLineError {
			return true
		}
	}
	return false
}
