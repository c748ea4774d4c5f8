package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("catalog: product not found")
	ErrVariantNotFound   = errors.New("catalog: product variant not found")
	ErrCategoryNotFound  = errors.New("catalog: category not found")
	ErrAttributeNotFound = errors.New("catalog: attribute not found")
	ErrValueNotFound     = errors.New("catalog: attribute value not found")
)

// ---------------------------------------------------------------------------
// ProductTemplate
// ---------------------------------------------------------------------------

// ProductTemplate is a local product mirrored from a remote product. Its
// variants are the combinations of its attribute lines.
type ProductTemplate struct {
	shared.BaseEntity
	shared.ExternalRecord
	CompanyID      uuid.UUID
	Name           string
	CategoryID     *uuid.UUID
	ImageKey       string
	AttributeLines []AttributeLine
}

// NewProductTemplate creates a template imported from the remote store
func NewProductTemplate(connectionID, companyID uuid.UUID, externalID shared.ExternalID, name string) (*ProductTemplate, error) {
	if externalID.IsZero() {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "Product external id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	return &ProductTemplate{
		BaseEntity:     shared.NewBaseEntity(),
		ExternalRecord: shared.NewExternalRecord(connectionID, externalID),
		CompanyID:      companyID,
		Name:           name,
	}, nil
}

// Rename updates the display name; empty names are ignored
func (t *ProductTemplate) Rename(name string) {
	if name = strings.TrimSpace(name); name != "" {
		t.Name = name
		t.Touch()
	}
}

// SetCategory sets or clears the category
func (t *ProductTemplate) SetCategory(categoryID *uuid.UUID) {
	t.CategoryID = categoryID
	t.Touch()
}

// SetImage records the stored image key
func (t *ProductTemplate) SetImage(key string) {
	t.ImageKey = key
	t.Touch()
}

// MergeAttributeLines unions incoming lines into the template's lines
func (t *ProductTemplate) MergeAttributeLines(incoming []AttributeLine) {
	t.AttributeLines = MergeAttributeLines(t.AttributeLines, incoming)
	t.Touch()
}

// Archive soft-deletes the template
func (t *ProductTemplate) Archive() {
	t.ExternalRecord.Archive()
	t.Touch()
}

// ---------------------------------------------------------------------------
// Variant
// ---------------------------------------------------------------------------

// VariantValue is one attribute value a variant is made of
type VariantValue struct {
	AttributeID   uuid.UUID `json:"attribute_id"`
	AttributeName string    `json:"attribute_name"`
	ValueID       uuid.UUID `json:"value_id"`
	ValueName     string    `json:"value_name"`
}

// Variant is one sellable combination of a template's attribute values.
// ExternalID is the remote variant id once matched.
type Variant struct {
	shared.BaseEntity
	TemplateID       uuid.UUID
	ConnectionID     uuid.UUID
	CompanyID        uuid.UUID
	Values           []VariantValue
	ExternalID       shared.ExternalID
	Barcode          string
	Weight           decimal.Decimal
	WeightUnit       string
	InventoryItemID  shared.ExternalID
	IsExternalOrigin bool
	Active           bool
}

// RemoteVariant is the remote data written onto a matched variant
type RemoteVariant struct {
	ExternalID      shared.ExternalID
	Barcode         string
	Weight          decimal.Decimal
	WeightUnit      string
	InventoryItemID shared.ExternalID
}

// NewVariant creates a variant for a combination of values
func NewVariant(t *ProductTemplate, values []VariantValue) *Variant {
	return &Variant{
		BaseEntity:   shared.NewBaseEntity(),
		TemplateID:   t.ID,
		ConnectionID: t.ConnectionID,
		CompanyID:    t.CompanyID,
		Values:       append([]VariantValue(nil), values...),
		Active:       true,
	}
}

// Key identifies the variant's combination independent of value order
func (v *Variant) Key() string {
	return combinationKey(v.Values)
}

// ValueFor returns the variant's value name for an attribute name
func (v *Variant) ValueFor(attributeName string) (string, bool) {
	for _, val := range v.Values {
		if val.AttributeName == attributeName {
			return val.ValueName, true
		}
	}
	return "", false
}

// OptionSelection is one (option name, option value) pair of a remote variant
type OptionSelection struct {
	AttributeName string
	Value         string
}

// Matches reports whether every selection equals the variant's value for that attribute
func (v *Variant) Matches(selections []OptionSelection) bool {
	for _, sel := range selections {
		got, ok := v.ValueFor(sel.AttributeName)
		if !ok || got != sel.Value {
			return false
		}
	}
	return true
}

// ApplyRemote stamps remote ids and logistics data onto the variant
func (v *Variant) ApplyRemote(r RemoteVariant) {
	v.ExternalID = r.ExternalID
	v.Barcode = r.Barcode
	v.Weight = r.Weight
	v.WeightUnit = r.WeightUnit
	v.InventoryItemID = r.InventoryItemID
	v.IsExternalOrigin = true
	v.Touch()
}

// Archive soft-deletes the variant
func (v *Variant) Archive() {
	v.Active = false
	v.Touch()
}

// MatchVariant returns the first variant matching every selection, or nil
func MatchVariant(variants []*Variant, selections []OptionSelection) *Variant {
	for _, v := range variants {
		if v.Active && v.Matches(selections) {
			return v
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Combinations
// ---------------------------------------------------------------------------

// Combinations returns the cartesian product of the lines' values in line order.
// No lines yields a single empty combination; a line without values yields none.
func Combinations(lines []AttributeLine) [][]VariantValue {
	combos := [][]VariantValue{{}}
	for _, line := range lines {
		next := make([][]VariantValue, 0, len(combos)*len(line.Values))
		for _, combo := range combos {
			for _, val := range line.Values {
				c := make([]VariantValue, len(combo), len(combo)+1)
				copy(c, combo)
				c = append(c, VariantValue{
					AttributeID:   line.AttributeID,
					AttributeName: line.AttributeName,
					ValueID:       val.ID,
					ValueName:     val.Name,
				})
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

// MissingVariants builds variants for the template's combinations that no
// existing variant covers. Existing variants are never removed.
func MissingVariants(t *ProductTemplate, existing []*Variant) []*Variant {
	have := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		have[v.Key()] = struct{}{}
	}
	missing := make([]*Variant, 0)
	for _, combo := range Combinations(t.AttributeLines) {
		key := combinationKey(combo)
		if _, ok := have[key]; ok {
			continue
		}
		have[key] = struct{}{}
		missing = append(missing, NewVariant(t, combo))
	}
	return missing
}

func combinationKey(values []VariantValue) string {
	ids := make([]string, len(values))
	for i, v := range values {
		ids[i] = v.ValueID.String()
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
