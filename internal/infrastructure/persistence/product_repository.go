package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByExternalID finds the active template with a remote id on a connection
func (r *GormProductRepository) FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*catalog.ProductTemplate, error) {
	var model models.ProductTemplateModel
	if err := r.activeExternal(ctx, connectionID, externalID).First(&model).Error; err != nil {
		return nil, notFound(err, catalog.ErrProductNotFound)
	}
	return model.ToDomain(), nil
}

// FindAllByExternalID returns every active template with a remote id, oldest first
func (r *GormProductRepository) FindAllByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) ([]*catalog.ProductTemplate, error) {
	var rows []models.ProductTemplateModel
	if err := r.activeExternal(ctx, connectionID, externalID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.ProductTemplate, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormProductRepository) activeExternal(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("connection_id = ? AND external_id = ? AND active = ?", connectionID, externalID.String(), true)
}

// Create inserts a new template
func (r *GormProductRepository) Create(ctx context.Context, t *catalog.ProductTemplate) error {
	return duplicateExternalID(r.db.WithContext(ctx).Create(models.ProductTemplateModelFromDomain(t)).Error)
}

// Save updates an existing template
func (r *GormProductRepository) Save(ctx context.Context, t *catalog.ProductTemplate) error {
	return duplicateExternalID(r.db.WithContext(ctx).Save(models.ProductTemplateModelFromDomain(t)).Error)
}

// FindVariants returns the variants of a template in creation order
func (r *GormProductRepository) FindVariants(ctx context.Context, templateID uuid.UUID) ([]*catalog.Variant, error) {
	var rows []models.VariantModel
	if err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Variant, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindVariantByExternalID finds the active variant with a remote id on a connection
func (r *GormProductRepository) FindVariantByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND external_id = ? AND active = ?", connectionID, externalID.String(), true).
		First(&model).Error; err != nil {
		return nil, notFound(err, catalog.ErrVariantNotFound)
	}
	return model.ToDomain(), nil
}

// FindExportableVariants returns the active variants with a remote id on a connection
func (r *GormProductRepository) FindExportableVariants(ctx context.Context, connectionID uuid.UUID) ([]*catalog.Variant, error) {
	var rows []models.VariantModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND active = ? AND external_id <> ''", connectionID, true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Variant, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SaveVariant creates or updates a variant
func (r *GormProductRepository) SaveVariant(ctx context.Context, v *catalog.Variant) error {
	return duplicateExternalID(r.db.WithContext(ctx).Save(models.VariantModelFromDomain(v)).Error)
}

// Ensure GormProductRepository implements ProductRepository interface
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormAttributeRepository implements catalog.AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

// FindByName finds an attribute by exact name and origin
func (r *GormAttributeRepository) FindByName(ctx context.Context, name string, isShopify bool) (*catalog.Attribute, error) {
	var model models.AttributeModel
	if err := r.db.WithContext(ctx).
		Where("name = ? AND is_shopify = ?", name, isShopify).
		First(&model).Error; err != nil {
		return nil, notFound(err, catalog.ErrAttributeNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts an attribute
func (r *GormAttributeRepository) Create(ctx context.Context, a *catalog.Attribute) error {
	return r.db.WithContext(ctx).Create(models.AttributeModelFromDomain(a)).Error
}

// FindValue finds a value of an attribute by exact name
func (r *GormAttributeRepository) FindValue(ctx context.Context, attributeID uuid.UUID, name string) (*catalog.AttributeValue, error) {
	var model models.AttributeValueModel
	if err := r.db.WithContext(ctx).
		Where("attribute_id = ? AND name = ?", attributeID, name).
		First(&model).Error; err != nil {
		return nil, notFound(err, catalog.ErrValueNotFound)
	}
	return model.ToDomain(), nil
}

// CreateValue inserts an attribute value
func (r *GormAttributeRepository) CreateValue(ctx context.Context, v *catalog.AttributeValue) error {
	return r.db.WithContext(ctx).Create(models.AttributeValueModelFromDomain(v)).Error
}

var _ catalog.AttributeRepository = (*GormAttributeRepository)(nil)
