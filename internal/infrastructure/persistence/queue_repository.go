package persistence

import (
	"context"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// queueLineBatchSize bounds the rows per INSERT when a queue is created
const queueLineBatchSize = 200

// GormQueueRepository implements integration.QueueRepository using GORM
type GormQueueRepository struct {
	db *gorm.DB
}

// NewGormQueueRepository creates a new GormQueueRepository
func NewGormQueueRepository(db *gorm.DB) *GormQueueRepository {
	return &GormQueueRepository{db: db}
}

// Create stores a queue together with its lines
func (r *GormQueueRepository) Create(ctx context.Context, queue *integration.Queue, lines []*integration.QueueLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.QueueModelFromDomain(queue)).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		rows := make([]*models.QueueLineModel, len(lines))
		for i, line := range lines {
			rows[i] = models.QueueLineModelFromDomain(line)
		}
		return tx.CreateInBatches(rows, queueLineBatchSize).Error
	})
}

// FindByID finds a queue by its ID
func (r *GormQueueRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Queue, error) {
	var model models.QueueModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, integration.ErrQueueNotFound)
	}
	return model.ToDomain(), nil
}

// FindByStates returns queues in any of the given states, oldest first
func (r *GormQueueRepository) FindByStates(ctx context.Context, states ...integration.QueueState) ([]*integration.Queue, error) {
	if len(states) == 0 {
		return nil, nil
	}
	var rows []models.QueueModel
	if err := r.db.WithContext(ctx).
		Where("state IN ?", states).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return queuesToDomain(rows), nil
}

// FindByConnection returns the queues of a connection, oldest first
func (r *GormQueueRepository) FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*integration.Queue, error) {
	var rows []models.QueueModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return queuesToDomain(rows), nil
}

// FindLines returns the lines of a queue in creation order
func (r *GormQueueRepository) FindLines(ctx context.Context, queueID uuid.UUID) ([]*integration.QueueLine, error) {
	var rows []models.QueueLineModel
	if err := r.db.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*integration.QueueLine, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SaveLine updates a line after processing
func (r *GormQueueRepository) SaveLine(ctx context.Context, line *integration.QueueLine) error {
	return r.db.WithContext(ctx).Save(models.QueueLineModelFromDomain(line)).Error
}

// SaveState stores the queue's derived counts and state
func (r *GormQueueRepository) SaveState(ctx context.Context, queue *integration.Queue) error {
	result := r.db.WithContext(ctx).
		Model(&models.QueueModel{}).
		Where("id = ?", queue.ID).
		Updates(map[string]any{
			"state":        queue.State(),
			"total_count":  queue.Counts.Total,
			"draft_count":  queue.Counts.Draft,
			"done_count":   queue.Counts.Done,
			"failed_count": queue.Counts.Failed,
			"cancel_count": queue.Counts.Cancel,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrQueueNotFound
	}
	return nil
}

func queuesToDomain(rows []models.QueueModel) []*integration.Queue {
	out := make([]*integration.Queue, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// ---------------------------------------------------------------------------
// Sequences
// ---------------------------------------------------------------------------

const nextSequenceSQL = `INSERT INTO sequences (code, value) VALUES (?, 1)
ON CONFLICT (code) DO UPDATE SET value = sequences.value + 1
RETURNING value`

// GormSequenceGenerator hands out gap-free per-code numbers from the sequences table
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next increments the sequence and returns the formatted name, e.g. "CUST-Q/00001"
func (g *GormSequenceGenerator) Next(ctx context.Context, code string) (string, error) {
	var value int64
	if err := g.db.WithContext(ctx).Raw(nextSequenceSQL, code).Scan(&value).Error; err != nil {
		return "", err
	}
	return integration.FormatSequence(code, value), nil
}

// ---------------------------------------------------------------------------
// Transaction scope
// ---------------------------------------------------------------------------

// GormQueueTransactionScope implements integration.QueueTransactionScope
// using GORM transactions
type GormQueueTransactionScope struct {
	db *gorm.DB
}

// NewGormQueueTransactionScope creates a new GormQueueTransactionScope
func NewGormQueueTransactionScope(db *gorm.DB) *GormQueueTransactionScope {
	return &GormQueueTransactionScope{db: db}
}

// Execute runs fn within a database transaction. If fn returns an error the
// transaction is rolled back, which also returns the consumed sequence numbers.
func (s *GormQueueTransactionScope) Execute(ctx context.Context, fn func(repos integration.QueueRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormQueueRepositories{tx: tx})
	})
}

// gormQueueRepositories provides the queue repositories bound to one transaction
type gormQueueRepositories struct {
	tx *gorm.DB
}

// Queues returns the queue repository scoped to the current transaction
func (r *gormQueueRepositories) Queues() integration.QueueRepository {
	return NewGormQueueRepository(r.tx)
}

// Sequences returns the sequence generator scoped to the current transaction
func (r *gormQueueRepositories) Sequences() integration.SequenceGenerator {
	return NewGormSequenceGenerator(r.tx)
}

var (
	_ integration.QueueRepository       = (*GormQueueRepository)(nil)
	_ integration.SequenceGenerator     = (*GormSequenceGenerator)(nil)
	_ integration.QueueTransactionScope = (*GormQueueTransactionScope)(nil)
	_ integration.QueueRepositories     = (*gormQueueRepositories)(nil)
)
