package catalog

import (
	"strings"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// Attribute is a variant dimension such as "Color", created from remote option names.
// Unique by (name, IsShopify).
type Attribute struct {
	shared.BaseEntity
	Name      string
	IsShopify bool
}

// NewAttribute creates an attribute
func NewAttribute(name string, isShopify bool) (*Attribute, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Attribute name cannot be empty")
	}
	return &Attribute{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		IsShopify:  isShopify,
	}, nil
}

// AttributeValue is one value of an attribute. Unique by (name, attribute).
type AttributeValue struct {
	shared.BaseEntity
	AttributeID uuid.UUID
	Name        string
}

// NewAttributeValue creates a value for an attribute
func NewAttributeValue(attributeID uuid.UUID, name string) (*AttributeValue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Attribute value cannot be empty")
	}
	return &AttributeValue{
		BaseEntity:  shared.NewBaseEntity(),
		AttributeID: attributeID,
		Name:        name,
	}, nil
}

// ---------------------------------------------------------------------------
// Attribute lines
// ---------------------------------------------------------------------------

// ValueRef references an attribute value by id and name
type ValueRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AttributeLine is the set of values a template offers for one attribute
type AttributeLine struct {
	AttributeID   uuid.UUID  `json:"attribute_id"`
	AttributeName string     `json:"attribute_name"`
	Values        []ValueRef `json:"values"`
}

// HasValue reports whether the line offers a value
func (l AttributeLine) HasValue(id uuid.UUID) bool {
	for _, v := range l.Values {
		if v.ID == id {
			return true
		}
	}
	return false
}

// MergeAttributeLines returns the union of existing and incoming lines.
// Values are never removed: existing order is kept and new attributes and
// values are appended in the order they arrive.
func MergeAttributeLines(existing, incoming []AttributeLine) []AttributeLine {
	merged := make([]AttributeLine, len(existing))
	index := make(map[uuid.UUID]int, len(existing))
	for i, line := range existing {
		merged[i] = AttributeLine{
			AttributeID:   line.AttributeID,
			AttributeName: line.AttributeName,
			Values:        append([]ValueRef(nil), line.Values...),
		}
		index[line.AttributeID] = i
	}

	for _, line := range incoming {
		i, ok := index[line.AttributeID]
		if !ok {
			merged = append(merged, AttributeLine{
				AttributeID:   line.AttributeID,
				AttributeName: line.AttributeName,
			})
			i = len(merged) - 1
			index[line.AttributeID] = i
		}
		for _, v := range line.Values {
			if !merged[i].HasValue(v.ID) {
				merged[i].Values = append(merged[i].Values, v)
			}
		}
	}
	return merged
}
