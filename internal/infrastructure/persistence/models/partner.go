package models

import (
	"github.com/erp/shopify-connector/internal/domain/partner"
	"github.com/google/uuid"
)

// CustomerModel is the persistence model for the Customer domain entity
type CustomerModel struct {
	BaseModel
	ExternalModel
	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Email     string     `gorm:"type:varchar(200);index"`
	Phone     string     `gorm:"type:varchar(50)"`
	Street    string     `gorm:"type:varchar(255)"`
	Street2   string     `gorm:"type:varchar(255)"`
	City      string     `gorm:"type:varchar(100)"`
	Zip       string     `gorm:"type:varchar(20)"`
	CountryID *uuid.UUID `gorm:"type:uuid"`
	StateID   *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity:     m.BaseModel.ToDomain(),
		ExternalRecord: m.ExternalModel.ToDomain(),
		CompanyID:      m.CompanyID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Street:         m.Street,
		Street2:        m.Street2,
		City:           m.City,
		Zip:            m.Zip,
		CountryID:      m.CountryID,
		StateID:        m.StateID,
	}
}

// FromDomain populates the persistence model from a domain Customer entity
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.FromDomainExternalRecord(c.ExternalRecord)
	m.CompanyID = c.CompanyID
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Street = c.Street
	m.Street2 = c.Street2
	m.City = c.City
	m.Zip = c.Zip
	m.CountryID = c.CountryID
	m.StateID = c.StateID
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// CountryModel is reference data seeded by the migrations
type CountryModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code string    `gorm:"type:varchar(2);not null;uniqueIndex"`
	Name string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (CountryModel) TableName() string {
	return "countries"
}

// ToDomain converts the persistence model to a domain Country
func (m *CountryModel) ToDomain() *partner.Country {
	return &partner.Country{ID: m.ID, Code: m.Code, Name: m.Name}
}

// CountryStateModel is reference data seeded by the migrations
type CountryStateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CountryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:varchar(10)"`
	Name      string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (CountryStateModel) TableName() string {
	return "country_states"
}

// ToDomain converts the persistence model to a domain CountryState
func (m *CountryStateModel) ToDomain() *partner.CountryState {
	return &partner.CountryState{ID: m.ID, CountryID: m.CountryID, Code: m.Code, Name: m.Name}
}
