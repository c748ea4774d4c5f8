package persistence

import (
	"context"
	"errors"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWebhookRepository implements integration.WebhookRepository using GORM
type GormWebhookRepository struct {
	db *gorm.DB
}

// NewGormWebhookRepository creates a new GormWebhookRepository
func NewGormWebhookRepository(db *gorm.DB) *GormWebhookRepository {
	return &GormWebhookRepository{db: db}
}

// FindByID finds a registration by its ID
func (r *GormWebhookRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.WebhookRegistration, error) {
	var model models.WebhookModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, integration.ErrWebhookNotFound)
	}
	return model.ToDomain(), nil
}

// FindByTopic finds the registration of a topic on a connection
func (r *GormWebhookRepository) FindByTopic(ctx context.Context, connectionID uuid.UUID, topic integration.WebhookTopic) (*integration.WebhookRegistration, error) {
	var model models.WebhookModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND topic = ?", connectionID, topic).
		First(&model).Error; err != nil {
		return nil, notFound(err, integration.ErrWebhookNotFound)
	}
	return model.ToDomain(), nil
}

// FindByConnection lists the registrations of a connection ordered by topic
func (r *GormWebhookRepository) FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*integration.WebhookRegistration, error) {
	var rows []models.WebhookModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("topic ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*integration.WebhookRegistration, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a registration
func (r *GormWebhookRepository) Save(ctx context.Context, reg *integration.WebhookRegistration) error {
	err := r.db.WithContext(ctx).Save(models.WebhookModelFromDomain(reg)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return integration.ErrWebhookAlreadyExists
	}
	return err
}

// Delete removes a registration
func (r *GormWebhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.WebhookModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrWebhookNotFound
	}
	return nil
}

// Ensure GormWebhookRepository implements the interface
var _ integration.WebhookRepository = (*GormWebhookRepository)(nil)
