package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch bumps the update timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ExternalRecord is embedded by every local record that mirrors a remote
// entity. ExternalID is unique per Connection among active records.
type ExternalRecord struct {
	ConnectionID     uuid.UUID
	ExternalID       ExternalID
	IsExternalOrigin bool
	Active           bool
}

// NewExternalRecord stamps a freshly imported record
func NewExternalRecord(connectionID uuid.UUID, externalID ExternalID) ExternalRecord {
	return ExternalRecord{
		ConnectionID:     connectionID,
		ExternalID:       externalID,
		IsExternalOrigin: true,
		Active:           true,
	}
}

// Archive soft-deletes the record
func (r *ExternalRecord) Archive() {
	r.Active = false
}
