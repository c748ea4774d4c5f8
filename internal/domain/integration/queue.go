package integration

import (
	"encoding/json"
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultChunkSize is the number of payloads grouped into one queue
const DefaultChunkSize = 125

// ---------------------------------------------------------------------------
// States
// ---------------------------------------------------------------------------

// QueueState is derived from the states of a queue's lines
type QueueState string

const (
	QueueStateDraft              QueueState = "draft"
	QueueStatePartiallyCompleted QueueState = "partially_completed"
	QueueStateCompleted          QueueState = "completed"
	QueueStateFailed             QueueState = "failed"
)

// String returns the string representation of QueueState
func (s QueueState) String() string {
	return string(s)
}

// IsDrainable reports whether the cron drain should pick up the queue
func (s QueueState) IsDrainable() bool {
	return s == QueueStateDraft || s == QueueStatePartiallyCompleted
}

// QueueLineState is the processing state of one line
type QueueLineState string

const (
	QueueLineStateDraft QueueLineState = "draft"
	QueueLineStateDone  QueueLineState = "done"
	// QueueLineStateFailed is a failed line still eligible for another drain
	QueueLineStateFailed QueueLineState = "failed"
	QueueLineStateCancel QueueLineState = "cancel"
)

// String returns the string representation of QueueLineState
func (s QueueLineState) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Derived state
// ---------------------------------------------------------------------------

// QueueCounts tallies line states
type QueueCounts struct {
	Total  int
	Draft  int
	Done   int
	Failed int
	Cancel int
}

// CountLineStates tallies a set of line states
func CountLineStates(states []QueueLineState) QueueCounts {
	c := QueueCounts{Total: len(states)}
	for _, s := range states {
		switch s {
		case QueueLineStateDraft:
			c.Draft++
		case QueueLineStateDone:
			c.Done++
		case QueueLineStateFailed:
			c.Failed++
		case QueueLineStateCancel:
			c.Cancel++
		}
	}
	return c
}

// DeriveQueueState computes the queue state from its line counts. An
// all-cancelled queue is failed, not completed.
func DeriveQueueState(c QueueCounts) QueueState {
	switch {
	case c.Total == 0 || c.Draft == c.Total:
		return QueueStateDraft
	case c.Cancel == c.Total:
		return QueueStateFailed
	case c.Done+c.Cancel == c.Total:
		return QueueStateCompleted
	default:
		return QueueStatePartiallyCompleted
	}
}

// ---------------------------------------------------------------------------
// Queue
// ---------------------------------------------------------------------------

// Queue groups a batch of same-kind payloads for one connection.
// Its state is never set directly; Recompute derives it from the lines.
type Queue struct {
	shared.BaseEntity
	Name         string
	ConnectionID uuid.UUID
	CompanyID    uuid.UUID
	Kind         EntityKind
	Counts       QueueCounts
	state        QueueState
}

// NewQueue creates an empty draft queue
func NewQueue(name string, conn *Connection, kind EntityKind) (*Queue, error) {
	if !kind.IsValid() {
		return nil, ErrQueueInvalidKind
	}
	return &Queue{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		ConnectionID: conn.ID,
		CompanyID:    conn.CompanyID,
		Kind:         kind,
		state:        QueueStateDraft,
	}, nil
}

// RestoreQueueState is used by persistence to rehydrate the cached state
func (q *Queue) RestoreQueueState(state QueueState, counts QueueCounts) {
	q.state = state
	q.Counts = counts
}

// State returns the derived state
func (q *Queue) State() QueueState {
	if q.state == "" {
		return DeriveQueueState(q.Counts)
	}
	return q.state
}

// Recompute derives counts and state from the current line states
func (q *Queue) Recompute(states []QueueLineState) {
	q.Counts = CountLineStates(states)
	q.state = DeriveQueueState(q.Counts)
	q.Touch()
}

// ---------------------------------------------------------------------------
// QueueLine
// ---------------------------------------------------------------------------

// QueueLine is one deferred payload and its processing record
type QueueLine struct {
	shared.BaseEntity
	QueueID      uuid.UUID
	ConnectionID uuid.UUID
	Kind         EntityKind
	// Position orders lines by creation within the queue
	Position   int
	ExternalID shared.ExternalID
	Name       string
	Payload    json.RawMessage
	State      QueueLineState
	Attempts   int
	LastError  string
	// ProcessedAt is when the line was last drained
	ProcessedAt *time.Time
}

// NewQueueLine creates a draft line for a queue
func NewQueueLine(q *Queue, position int, externalID shared.ExternalID, name string, payload json.RawMessage) *QueueLine {
	return &QueueLine{
		BaseEntity:   shared.NewBaseEntity(),
		QueueID:      q.ID,
		ConnectionID: q.ConnectionID,
		Kind:         q.Kind,
		Position:     position,
		ExternalID:   externalID,
		Name:         name,
		Payload:      payload,
		State:        QueueLineStateDraft,
	}
}

// IsDrainable reports whether a drain pass should process the line
func (l *QueueLine) IsDrainable() bool {
	return l.State == QueueLineStateDraft || l.State == QueueLineStateFailed
}

// MarkDone records a successful pass
func (l *QueueLine) MarkDone(at time.Time) {
	l.Attempts++
	l.State = QueueLineStateDone
	l.LastError = ""
	l.ProcessedAt = &at
	l.Touch()
}

// MarkFailed records a failed pass. The line stays retryable until it has
// been attempted maxAttempts times, then it is cancelled.
func (l *QueueLine) MarkFailed(cause error, maxAttempts int, at time.Time) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	l.Attempts++
	if cause != nil {
		l.LastError = cause.Error()
	}
	if l.Attempts < maxAttempts {
		l.State = QueueLineStateFailed
	} else {
		l.State = QueueLineStateCancel
	}
	l.ProcessedAt = &at
	l.Touch()
}

// Chunk splits payloads into consecutive groups of at most size
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
