package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentGatewayRepository implements integration.PaymentGatewayRepository using GORM
type GormPaymentGatewayRepository struct {
	db *gorm.DB
}

// NewGormPaymentGatewayRepository creates a new GormPaymentGatewayRepository
func NewGormPaymentGatewayRepository(db *gorm.DB) *GormPaymentGatewayRepository {
	return &GormPaymentGatewayRepository{db: db}
}

// FindByCode finds a gateway by its remote name on a connection
func (r *GormPaymentGatewayRepository) FindByCode(ctx context.Context, connectionID uuid.UUID, code string) (*integration.PaymentGateway, error) {
	var model models.PaymentGatewayModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND code = ?", connectionID, code).
		First(&model).Error; err != nil {
		return nil, notFound(err, integration.ErrPaymentGatewayNotFound)
	}
	return model.ToDomain(), nil
}

// FindByConnection lists the gateways of a connection ordered by code
func (r *GormPaymentGatewayRepository) FindByConnection(ctx context.Context, connectionID uuid.UUID) ([]*integration.PaymentGateway, error) {
	var rows []models.PaymentGatewayModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*integration.PaymentGateway, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a gateway. A concurrent insert of the same code returns
// shared.ErrDuplicateExternalID.
func (r *GormPaymentGatewayRepository) Create(ctx context.Context, gw *integration.PaymentGateway) error {
	return duplicateExternalID(r.db.WithContext(ctx).Create(models.PaymentGatewayModelFromDomain(gw)).Error)
}

var _ integration.PaymentGatewayRepository = (*GormPaymentGatewayRepository)(nil)
