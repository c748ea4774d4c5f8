package integration

import (
	"context"
	"encoding/json"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auditor writes process logs. Audit failures never reach the caller: they
// are reported through the logger and the sync attempt carries on.
type Auditor struct {
	logs      integration.ProcessLogRepository
	sequences integration.SequenceGenerator
	logger    *zap.Logger
}

// NewAuditor creates a new Auditor
func NewAuditor(logs integration.ProcessLogRepository, sequences integration.SequenceGenerator, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{
		logs:      logs,
		sequences: sequences,
		logger:    logger,
	}
}

// Record names and stores a process log
func (a *Auditor) Record(ctx context.Context, log *integration.ProcessLog) {
	if a == nil || a.logs == nil || log == nil {
		return
	}
	if a.sequences != nil {
		name, err := a.sequences.Next(ctx, integration.ProcessLogSequenceCode)
		if err != nil {
			a.logger.Warn("Failed to allocate process log name",
				zap.String("resource_model", string(log.ResourceModel)),
				zap.Error(err))
		}
		log.Name = name
	}
	if err := a.logs.Create(ctx, log); err != nil {
		a.logger.Warn("Failed to write process log",
			zap.String("resource_model", string(log.ResourceModel)),
			zap.String("resource_id", log.ResourceID),
			zap.String("message", log.Message),
			zap.Error(err))
	}
}

// Failure records a log holding a single error line
func (a *Auditor) Failure(ctx context.Context, connectionID uuid.UUID, model integration.ResourceModel, resourceID, message, response string, cause error) {
	log := integration.NewProcessLog(connectionID, model, resourceID, message, response)
	detail := message
	if cause != nil {
		detail = cause.Error()
	}
	log.AddError("Error", resourceID, detail, response)
	a.Record(ctx, log)
}

// responseText renders a payload for the log's response field
func responseText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case json.RawMessage:
		return string(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
