package integration

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payloads mirror only the remote fields the connector consumes.

// ---------------------------------------------------------------------------
// Customer
// ---------------------------------------------------------------------------

// CustomerPayload is a remote customer
type CustomerPayload struct {
	ID             shared.ExternalID `json:"id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	DefaultAddress *AddressPayload   `json:"default_address,omitempty"`
}

// AddressPayload is a remote postal address
type AddressPayload struct {
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	Province    string `json:"province"`
	CountryCode string `json:"country_code"`
}

// DisplayName is the trimmed "first last" name
func (p *CustomerPayload) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// ProductPayload is a remote product with its options and variants
type ProductPayload struct {
	ID          shared.ExternalID `json:"id"`
	Title       string            `json:"title"`
	ProductType string            `json:"product_type"`
	Options     []OptionPayload   `json:"options"`
	Variants    []VariantPayload  `json:"variants"`
	Image       *ImagePayload     `json:"image,omitempty"`
}

// OptionPayload declares one product option (position 1..3)
type OptionPayload struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// VariantPayload is one remote variant
type VariantPayload struct {
	ID              shared.ExternalID `json:"id"`
	Option1         string            `json:"option1"`
	Option2         string            `json:"option2"`
	Option3         string            `json:"option3"`
	Barcode         string            `json:"barcode"`
	Weight          decimal.Decimal   `json:"weight"`
	WeightUnit      string            `json:"weight_unit"`
	InventoryItemID shared.ExternalID `json:"inventory_item_id"`
}

// Option returns the variant's value for an option position (1..3)
func (v *VariantPayload) Option(position int) string {
	switch position {
	case 1:
		return v.Option1
	case 2:
		return v.Option2
	case 3:
		return v.Option3
	default:
		return ""
	}
}

// ImagePayload is the product's main image
type ImagePayload struct {
	Src string `json:"src"`
}

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

// OrderPayload is a remote order
type OrderPayload struct {
	ID                  shared.ExternalID `json:"id"`
	Name                string            `json:"name"`
	CreatedAt           string            `json:"created_at"`
	Customer            *CustomerRef      `json:"customer,omitempty"`
	FinancialStatus     string            `json:"financial_status"`
	FulfillmentStatus   string            `json:"fulfillment_status"`
	PaymentGatewayNames []string          `json:"payment_gateway_names"`
	TaxesIncluded       bool              `json:"taxes_included"`
	LineItems           []LineItemPayload `json:"line_items"`
	TaxLines            []TaxLinePayload  `json:"tax_lines"`
	CancelledAt         *string           `json:"cancelled_at"`
}

// CustomerRef is a bare customer reference on an order
type CustomerRef struct {
	ID shared.ExternalID `json:"id"`
}

// LineItemPayload is one order line
type LineItemPayload struct {
	ID              shared.ExternalID `json:"id"`
	ProductID       shared.ExternalID `json:"product_id"`
	VariantID       shared.ExternalID `json:"variant_id"`
	Name            string            `json:"name"`
	Price           decimal.Decimal   `json:"price"`
	CurrentQuantity decimal.Decimal   `json:"current_quantity"`
}

// TaxLinePayload is one order-level tax line. Rate is a fraction (0.18 = 18%).
type TaxLinePayload struct {
	Title string          `json:"title"`
	Rate  decimal.Decimal `json:"rate"`
	Price decimal.Decimal `json:"price"`
}

// NoPaymentGateway is the gateway code used when an order names none
const NoPaymentGateway = "no_payment_gateway"

// GatewayCode returns the first payment gateway name or NoPaymentGateway
func (p *OrderPayload) GatewayCode() string {
	for _, name := range p.PaymentGatewayNames {
		if strings.TrimSpace(name) != "" {
			return name
		}
	}
	return NoPaymentGateway
}

// IsCancelled reports whether the remote order was cancelled upstream
func (p *OrderPayload) IsCancelled() bool {
	return p.CancelledAt != nil && strings.TrimSpace(*p.CancelledAt) != ""
}

// IsFulfilled reports whether the remote order is fully fulfilled
func (p *OrderPayload) IsFulfilled() bool {
	return p.FulfillmentStatus == "fulfilled"
}

// OrderDate parses created_at into UTC, falling back to now
func (p *OrderPayload) OrderDate(now time.Time) time.Time {
	if p.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

// DeletePayload carries only the id of a deleted remote entity
type DeletePayload struct {
	ID shared.ExternalID `json:"id"`
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// DecodeCustomer decodes a customer payload; a missing id is ErrMalformedPayload
func DecodeCustomer(data []byte) (*CustomerPayload, error) {
	var p CustomerPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if p.ID.IsZero() {
		return nil, fmt.Errorf("%w: customer id missing", ErrMalformedPayload)
	}
	return &p, nil
}

// DecodeProduct decodes a product payload; a missing id is ErrMalformedPayload
func DecodeProduct(data []byte) (*ProductPayload, error) {
	var p ProductPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if p.ID.IsZero() {
		return nil, fmt.Errorf("%w: product id missing", ErrMalformedPayload)
	}
	return &p, nil
}

// DecodeOrder decodes an order payload; a missing id is ErrMalformedPayload
func DecodeOrder(data []byte) (*OrderPayload, error) {
	var p OrderPayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if p.ID.IsZero() {
		return nil, fmt.Errorf("%w: order id missing", ErrMalformedPayload)
	}
	return &p, nil
}

// DecodeDelete decodes a delete payload; a missing id is ErrMalformedPayload
func DecodeDelete(data []byte) (*DeletePayload, error) {
	var p DeletePayload
	if err := decode(data, &p); err != nil {
		return nil, err
	}
	if p.ID.IsZero() {
		return nil, fmt.Errorf("%w: id missing", ErrMalformedPayload)
	}
	return &p, nil
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// LineIdentity extracts the external id and display name stored on a queue line
func LineIdentity(kind EntityKind, data []byte) (shared.ExternalID, string, error) {
	switch kind {
	case EntityKindCustomer:
		p, err := DecodeCustomer(data)
		if err != nil {
			return "", "", err
		}
		return p.ID, p.DisplayName(), nil
	case EntityKindProduct:
		p, err := DecodeProduct(data)
		if err != nil {
			return "", "", err
		}
		return p.ID, p.Title, nil
	case EntityKindOrder:
		p, err := DecodeOrder(data)
		if err != nil {
			return "", "", err
		}
		return p.ID, p.Name, nil
	default:
		return "", "", ErrQueueInvalidKind
	}
}
