package models

import (
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// ExternalModel holds the columns of a record mirrored from the remote
// platform. The unique (connection_id, external_id) index over active rows is
// created per table by the migrations, since gorm tags cannot name it per
// embedding table.
type ExternalModel struct {
	ConnectionID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalID       string    `gorm:"type:varchar(32);not null"`
	IsExternalOrigin bool      `gorm:"not null"`
	Active           bool      `gorm:"not null"`
}

// ToDomain converts ExternalModel to the domain ExternalRecord
func (m *ExternalModel) ToDomain() shared.ExternalRecord {
	return shared.ExternalRecord{
		ConnectionID:     m.ConnectionID,
		ExternalID:       shared.ExternalID(m.ExternalID),
		IsExternalOrigin: m.IsExternalOrigin,
		Active:           m.Active,
	}
}

// FromDomainExternalRecord populates ExternalModel from the domain ExternalRecord
func (m *ExternalModel) FromDomainExternalRecord(r shared.ExternalRecord) {
	m.ConnectionID = r.ConnectionID
	m.ExternalID = r.ExternalID.String()
	m.IsExternalOrigin = r.IsExternalOrigin
	m.Active = r.Active
}
