package persistence

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/partner"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, partner.ErrCustomerNotFound)
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds the active customer with a remote id on a connection
func (r *GormCustomerRepository) FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND external_id = ? AND active = ?", connectionID, externalID.String(), true).
		First(&model).Error; err != nil {
		return nil, notFound(err, partner.ErrCustomerNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	return duplicateExternalID(r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error)
}

// Save updates an existing customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return duplicateExternalID(r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error)
}

// Ensure GormCustomerRepository implements CustomerRepository interface
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

// GormCountryRepository implements CountryRepository over the seeded reference tables
type GormCountryRepository struct {
	db *gorm.DB
}

// NewGormCountryRepository creates a new GormCountryRepository
func NewGormCountryRepository(db *gorm.DB) *GormCountryRepository {
	return &GormCountryRepository{db: db}
}

// FindByCode finds a country by exact ISO code
func (r *GormCountryRepository) FindByCode(ctx context.Context, code string) (*partner.Country, error) {
	var model models.CountryModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, notFound(err, partner.ErrCountryNotFound)
	}
	return model.ToDomain(), nil
}

// FindState finds a state by exact name within a country
func (r *GormCountryRepository) FindState(ctx context.Context, countryID uuid.UUID, name string) (*partner.CountryState, error) {
	var model models.CountryStateModel
	if err := r.db.WithContext(ctx).
		Where("country_id = ? AND name = ?", countryID, name).
		First(&model).Error; err != nil {
		return nil, notFound(err, partner.ErrCountryStateNotFound)
	}
	return model.ToDomain(), nil
}

var _ partner.CountryRepository = (*GormCountryRepository)(nil)
