package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProcessLogRepository implements integration.ProcessLogRepository using GORM.
// Logs are append-only.
type GormProcessLogRepository struct {
	db *gorm.DB
}

// NewGormProcessLogRepository creates a new GormProcessLogRepository
func NewGormProcessLogRepository(db *gorm.DB) *GormProcessLogRepository {
	return &GormProcessLogRepository{db: db}
}

// Create inserts a log with its lines
func (r *GormProcessLogRepository) Create(ctx context.Context, log *integration.ProcessLog) error {
	return r.db.WithContext(ctx).Create(models.ProcessLogModelFromDomain(log)).Error
}

// FindByResource returns the logs written for one local record, oldest first
func (r *GormProcessLogRepository) FindByResource(ctx context.Context, model integration.ResourceModel, resourceID string) ([]*integration.ProcessLog, error) {
	var rows []models.ProcessLogModel
	if err := r.db.WithContext(ctx).
		Where("resource_model = ? AND resource_id = ?", model, resourceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*integration.ProcessLog, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ integration.ProcessLogRepository = (*GormProcessLogRepository)(nil)
