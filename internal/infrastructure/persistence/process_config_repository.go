package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProcessConfigRepository implements integration.ProcessConfigRepository using GORM
type GormProcessConfigRepository struct {
	db *gorm.DB
}

// NewGormProcessConfigRepository creates a new GormProcessConfigRepository
func NewGormProcessConfigRepository(db *gorm.DB) *GormProcessConfigRepository {
	return &GormProcessConfigRepository{db: db}
}

// FindMatch returns the lowest-sequence active config for the key with its workflow loaded
func (r *GormProcessConfigRepository) FindMatch(ctx context.Context, connectionID uuid.UUID, status integration.FinancialStatus, gatewayID uuid.UUID) (*integration.OrderProcessConfig, error) {
	activeWorkflows := r.db.Model(&models.AutomationWorkflowModel{}).Select("id").Where("active = ?", true)

	var model models.OrderProcessConfigModel
	if err := r.db.WithContext(ctx).
		Preload("Workflow").
		Where("connection_id = ? AND financial_status = ? AND payment_gateway_id = ? AND active = ?",
			connectionID, status, gatewayID, true).
		Where("workflow_id IS NULL OR workflow_id IN (?)", activeWorkflows).
		Order("sequence ASC").
		First(&model).Error; err != nil {
		return nil, notFound(err, integration.ErrProcessConfigNotFound)
	}
	return model.ToDomain(), nil
}

// FindByID finds a config by its ID with its workflow loaded
func (r *GormProcessConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.OrderProcessConfig, error) {
	var model models.OrderProcessConfigModel
	if err := r.db.WithContext(ctx).Preload("Workflow").First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, integration.ErrProcessConfigNotFound)
	}
	return model.ToDomain(), nil
}

// FindByConnection returns every config of a connection, lowest sequence first
func (r *GormProcessConfigRepository) FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*integration.OrderProcessConfig, error) {
	var rows []models.OrderProcessConfigModel
	if err := r.db.WithContext(ctx).
		Preload("Workflow").
		Where("connection_id = ?", connectionID).
		Order("sequence ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*integration.OrderProcessConfig, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a config. The workflow is stored with SaveWorkflow.
func (r *GormProcessConfigRepository) Save(ctx context.Context, cfg *integration.OrderProcessConfig) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(models.OrderProcessConfigModelFromDomain(cfg)).Error
}

// FindWorkflowByID finds a workflow by its ID
func (r *GormProcessConfigRepository) FindWorkflowByID(ctx context.Context, id uuid.UUID) (*integration.AutomationWorkflow, error) {
	var model models.AutomationWorkflowModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, integration.ErrWorkflowNotFound)
	}
	return model.ToDomain(), nil
}

// FindWorkflows returns every workflow ordered by name
func (r *GormProcessConfigRepository) FindWorkflows(ctx context.Context) ([]*integration.AutomationWorkflow, error) {
	var rows []models.AutomationWorkflowModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*integration.AutomationWorkflow, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SaveWorkflow creates or updates a workflow
func (r *GormProcessConfigRepository) SaveWorkflow(ctx context.Context, wf *integration.AutomationWorkflow) error {
	return r.db.WithContext(ctx).Save(models.AutomationWorkflowModelFromDomain(wf)).Error
}

var _ integration.ProcessConfigRepository = (*GormProcessConfigRepository)(nil)
