package partner

import (
	"errors"
	"strings"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound     = errors.New("partner: customer not found")
	ErrCountryNotFound      = errors.New("partner: country not found")
	ErrCountryStateNotFound = errors.New("partner: country state not found")
)

// Customer is a local contact mirrored from a remote customer
type Customer struct {
	shared.BaseEntity
	shared.ExternalRecord
	CompanyID uuid.UUID
	Name      string
	Email     string
	Phone     string
	Street    string
	Street2   string
	City      string
	Zip       string
	CountryID *uuid.UUID
	StateID   *uuid.UUID
}

// CustomerProfile is the field-set an upsert writes onto a customer
type CustomerProfile struct {
	Name      string
	Email     string
	Phone     string
	Street    string
	Street2   string
	City      string
	Zip       string
	CountryID *uuid.UUID
	StateID   *uuid.UUID
}

// NewCustomer creates a customer imported from the remote store
func NewCustomer(connectionID, companyID uuid.UUID, externalID shared.ExternalID, profile CustomerProfile) (*Customer, error) {
	if externalID.IsZero() {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "Customer external id is required")
	}
	c := &Customer{
		BaseEntity:     shared.NewBaseEntity(),
		ExternalRecord: shared.NewExternalRecord(connectionID, externalID),
		CompanyID:      companyID,
	}
	c.Apply(profile)
	return c, nil
}

// Apply overwrites the customer's fields with a profile
func (c *Customer) Apply(p CustomerProfile) {
	c.Name = strings.TrimSpace(p.Name)
	c.Email = strings.TrimSpace(p.Email)
	c.Phone = strings.TrimSpace(p.Phone)
	c.Street = p.Street
	c.Street2 = p.Street2
	c.City = p.City
	c.Zip = p.Zip
	c.CountryID = p.CountryID
	c.StateID = p.StateID
	c.Touch()
}

// Profile returns the customer's current field-set
func (c *Customer) Profile() CustomerProfile {
	return CustomerProfile{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Street:    c.Street,
		Street2:   c.Street2,
		City:      c.City,
		Zip:       c.Zip,
		CountryID: c.CountryID,
		StateID:   c.StateID,
	}
}

// Archive soft-deletes the customer
func (c *Customer) Archive() {
	c.ExternalRecord.Archive()
	c.Touch()
}

// Country is a reference country keyed by ISO code
type Country struct {
	ID   uuid.UUID
	Code string
	Name string
}

// CountryState is a state or province within a country
type CountryState struct {
	ID        uuid.UUID
	CountryID uuid.UUID
	Code      string
	Name      string
}
