package integration

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDrainInProgress is returned when a queue is already being drained in this process
var ErrDrainInProgress = errors.New("integration: queue drain already in progress")

// SyncQueueServiceConfig holds the collaborators and limits of a SyncQueueService
type SyncQueueServiceConfig struct {
	Scope       integration.QueueTransactionScope
	Queues      integration.QueueRepository
	Connections integration.ConnectionRepository
	Dispatcher  *Dispatcher
	Validator   *PayloadValidator
	Auditor     *Auditor
	Metrics     SyncMetrics
	Logger      *zap.Logger
	// ChunkSize is the number of payloads per queue (default 125)
	ChunkSize int
	// MaxAttempts is how many drains a failing line gets before it is cancelled (default 1)
	MaxAttempts int
}

// SyncQueueService defers bulk payloads into queues and drains them through
// the entity handlers
type SyncQueueService struct {
	scope       integration.QueueTransactionScope
	queues      integration.QueueRepository
	connections integration.ConnectionRepository
	dispatcher  *Dispatcher
	validator   *PayloadValidator
	auditor     *Auditor
	metrics     SyncMetrics
	logger      *zap.Logger
	chunkSize   int
	maxAttempts int
	now         func() time.Time

	draining sync.Map
}

// NewSyncQueueService creates a new SyncQueueService
func NewSyncQueueService(cfg SyncQueueServiceConfig) *SyncQueueService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = integration.DefaultChunkSize
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &SyncQueueService{
		scope:       cfg.Scope,
		queues:      cfg.Queues,
		connections: cfg.Connections,
		dispatcher:  cfg.Dispatcher,
		validator:   cfg.Validator,
		auditor:     cfg.Auditor,
		metrics:     metricsOrNop(cfg.Metrics),
		logger:      logger,
		chunkSize:   chunkSize,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// ---------------------------------------------------------------------------
// Enqueue
// ---------------------------------------------------------------------------

// Enqueue splits payloads into chunks and stores one queue per chunk, each in
// its own transaction. Queues committed before a failure are returned with the error.
// A payload that fails validation is stored as a cancelled line carrying the reason.
func (s *SyncQueueService) Enqueue(ctx context.Context, conn *integration.Connection, kind integration.EntityKind, payloads []json.RawMessage) ([]*integration.Queue, error) {
	if !kind.IsValid() {
		return nil, integration.ErrQueueInvalidKind
	}
	if len(payloads) == 0 {
		return nil, integration.ErrQueueEmptyPayload
	}

	created := make([]*integration.Queue, 0, (len(payloads)+s.chunkSize-1)/s.chunkSize)
	for _, chunk := range integration.Chunk(payloads, s.chunkSize) {
		var queue *integration.Queue
		err := s.scope.Execute(ctx, func(repos integration.QueueRepositories) error {
			name, err := repos.Sequences().Next(ctx, kind.QueueSequenceCode())
			if err != nil {
				return err
			}
			q, err := integration.NewQueue(name, conn, kind)
			if err != nil {
				return err
			}
			lines := s.buildLines(q, chunk)
			states := make([]integration.QueueLineState, len(lines))
			for i, l := range lines {
				states[i] = l.State
			}
			q.Recompute(states)
			if err := repos.Queues().Create(ctx, q, lines); err != nil {
				return err
			}
			queue = q
			return nil
		})
		if err != nil {
			s.logger.Error("Failed to enqueue payloads",
				zap.String("connection_id", conn.ID.String()),
				zap.String("kind", kind.String()),
				zap.Int("queues_created", len(created)),
				zap.Error(err))
			return created, err
		}
		created = append(created, queue)
	}

	s.logger.Info("Payloads enqueued",
		zap.String("connection_id", conn.ID.String()),
		zap.String("kind", kind.String()),
		zap.Int("payloads", len(payloads)),
		zap.Int("queues", len(created)))
	return created, nil
}

func (s *SyncQueueService) buildLines(q *integration.Queue, chunk []json.RawMessage) []*integration.QueueLine {
	lines := make([]*integration.QueueLine, 0, len(chunk))
	for i, raw := range chunk {
		err := s.validate(q.Kind, raw)
		var line *integration.QueueLine
		if err == nil {
			externalID, name, idErr := integration.LineIdentity(q.Kind, raw)
			line = integration.NewQueueLine(q, i+1, externalID, name, raw)
			err = idErr
		} else {
			line = integration.NewQueueLine(q, i+1, "", "", storablePayload(raw))
		}
		if err != nil {
			line.State = integration.QueueLineStateCancel
			line.LastError = err.Error()
		}
		lines = append(lines, line)
	}
	return lines
}

func (s *SyncQueueService) validate(kind integration.EntityKind, raw json.RawMessage) error {
	if s.validator == nil {
		return nil
	}
	return s.validator.Validate(kind, raw)
}

// storablePayload keeps text that is not JSON as a JSON string so it can be
// stored in a document column
func storablePayload(raw json.RawMessage) json.RawMessage {
	if json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return json.RawMessage(`null`)
	}
	return quoted
}

// ---------------------------------------------------------------------------
// Drain
// ---------------------------------------------------------------------------

// Drain processes a queue's draft and failed lines in creation order. Each
// line succeeds or fails on its own and the queue state is recomputed after
// every line. Order lines whose payload is cancelled upstream are skipped.
func (s *SyncQueueService) Drain(ctx context.Context, queueID uuid.UUID) (*DrainResult, error) {
	if _, busy := s.draining.LoadOrStore(queueID, struct{}{}); busy {
		return nil, ErrDrainInProgress
	}
	defer s.draining.Delete(queueID)

	ctx, span := telemetry.StartServiceSpan(ctx, "sync_queue", "drain",
		telemetry.WithAttribute(telemetry.SpanAttrQueueID, queueID.String()))
	defer span.End()

	queue, err := s.queues.FindByID(ctx, queueID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	conn, err := s.connections.FindByID(ctx, queue.ConnectionID)
	if err != nil {
		return nil, err
	}
	lines, err := s.queues.FindLines(ctx, queue.ID)
	if err != nil {
		return nil, err
	}

	result := &DrainResult{QueueID: queue.ID, QueueName: queue.Name}
	var drainErr error
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			drainErr = err
			break
		}
		if !line.IsDrainable() {
			continue
		}
		if skipCancelledOrder(line) {
			result.Skipped++
			s.metrics.QueueLineProcessed(line.Kind.String(), OutcomeSkipped)
			continue
		}

		result.Processed++
		if err := s.processLine(ctx, conn, line); err != nil {
			line.MarkFailed(err, s.maxAttempts, s.now())
			s.metrics.QueueLineProcessed(line.Kind.String(), OutcomeFailure)
			s.auditor.Failure(ctx, conn.ID, integration.ResourceQueueLine, line.ID.String(),
				"Failed to process queue line "+line.Name, string(line.Payload), err)
		} else {
			line.MarkDone(s.now())
			s.metrics.QueueLineProcessed(line.Kind.String(), OutcomeSuccess)
		}
		switch line.State {
		case integration.QueueLineStateDone:
			result.Done++
		case integration.QueueLineStateFailed:
			result.Failed++
		case integration.QueueLineStateCancel:
			result.Cancelled++
		}

		if err := s.queues.SaveLine(ctx, line); err != nil {
			s.logger.Error("Failed to save queue line",
				zap.String("queue_id", queue.ID.String()),
				zap.String("line_id", line.ID.String()),
				zap.Error(err))
		}
		queue.Recompute(lineStates(lines))
		if err := s.queues.SaveState(ctx, queue); err != nil {
			s.logger.Error("Failed to save queue state",
				zap.String("queue_id", queue.ID.String()),
				zap.Error(err))
		}
	}

	result.State = queue.State()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrQueueName, queue.Name,
		"processed", result.Processed,
		"failed", result.Failed,
		"state", result.State.String())
	telemetry.RecordError(span, drainErr)
	s.logger.Info("Queue drained",
		zap.String("queue", queue.Name),
		zap.Int("processed", result.Processed),
		zap.Int("done", result.Done),
		zap.Int("failed", result.Failed),
		zap.Int("cancelled", result.Cancelled),
		zap.Int("skipped", result.Skipped),
		zap.String("state", result.State.String()))
	return result, drainErr
}

func (s *SyncQueueService) processLine(ctx context.Context, conn *integration.Connection, line *integration.QueueLine) error {
	if err := s.validate(line.Kind, line.Payload); err != nil {
		return err
	}
	return s.dispatcher.Dispatch(ctx, conn, line.Kind, integration.OperationUpdate, line.Payload)
}

// skipCancelledOrder reports whether an order line describes an order cancelled upstream
func skipCancelledOrder(line *integration.QueueLine) bool {
	if line.Kind != integration.EntityKindOrder {
		return false
	}
	p, err := integration.DecodeOrder(line.Payload)
	return err == nil && p.IsCancelled()
}

func lineStates(lines []*integration.QueueLine) []integration.QueueLineState {
	states := make([]integration.QueueLineState, len(lines))
	for i, l := range lines {
		states[i] = l.State
	}
	return states
}

// DrainPending drains every draft or partially completed queue, one after
// another. A queue that fails to drain is logged and the rest still run.
func (s *SyncQueueService) DrainPending(ctx context.Context) ([]*DrainResult, error) {
	queues, err := s.queues.FindByStates(ctx, integration.QueueStateDraft, integration.QueueStatePartiallyCompleted)
	if err != nil {
		return nil, err
	}
	results := make([]*DrainResult, 0, len(queues))
	for _, q := range queues {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Drain(ctx, q.ID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if res != nil {
					results = append(results, res)
				}
				return results, err
			}
			s.logger.Warn("Failed to drain queue",
				zap.String("queue_id", q.ID.String()),
				zap.String("queue", q.Name),
				zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// List returns a connection's queues
func (s *SyncQueueService) List(ctx context.Context, connectionID uuid.UUID) ([]QueueResponse, error) {
	queues, err := s.queues.FindByConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	out := make([]QueueResponse, len(queues))
	for i, q := range queues {
		out[i] = ToQueueResponse(q)
	}
	return out, nil
}

// Get returns a queue with its lines
func (s *SyncQueueService) Get(ctx context.Context, queueID uuid.UUID) (*QueueDetailResponse, error) {
	queue, err := s.queues.FindByID(ctx, queueID)
	if err != nil {
		return nil, err
	}
	lines, err := s.queues.FindLines(ctx, queue.ID)
	if err != nil {
		return nil, err
	}
	detail := &QueueDetailResponse{
		QueueResponse: ToQueueResponse(queue),
		Lines:         make([]QueueLineResponse, len(lines)),
	}
	for i, l := range lines {
		detail.Lines[i] = ToQueueLineResponse(l)
	}
	return detail, nil
}
