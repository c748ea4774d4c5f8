package partner

import (
	"context"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByExternalID finds the active customer with a remote id on a connection
	FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*Customer, error)

	// Create inserts a new customer. Returns shared.ErrDuplicateExternalID when
	// an active customer with the same external id already exists.
	Create(ctx context.Context, customer *Customer) error

	// Save updates an existing customer
	Save(ctx context.Context, customer *Customer) error
}

// CountryRepository looks up reference geography
type CountryRepository interface {
	// FindByCode finds a country by exact ISO code
	FindByCode(ctx context.Context, code string) (*Country, error)

	// FindState finds a state by exact name within a country
	FindState(ctx context.Context, countryID uuid.UUID, name string) (*CountryState, error)
}
