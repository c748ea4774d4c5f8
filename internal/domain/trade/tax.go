package trade

import (
	"fmt"
	"strings"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TaxUse is where a tax applies
type TaxUse string

const TaxUseSale TaxUse = "sale"

// TaxAmountType is how a tax amount is computed
type TaxAmountType string

const TaxAmountPercent TaxAmountType = "percent"

// Tax is a sales tax created on demand from remote tax lines.
// Unique by (name, amount, price include, company).
type Tax struct {
	shared.BaseEntity
	CompanyID    uuid.UUID
	Name         string
	Amount       decimal.Decimal
	PriceInclude bool
	Use          TaxUse
	AmountType   TaxAmountType
}

// NewSaleTax creates a percent sale tax from a remote fractional rate
func NewSaleTax(companyID uuid.UUID, title string, rate decimal.Decimal, priceInclude bool) *Tax {
	return &Tax{
		BaseEntity:   shared.NewBaseEntity(),
		CompanyID:    companyID,
		Name:         TaxName(title, rate, priceInclude),
		Amount:       RatePercent(rate),
		PriceInclude: priceInclude,
		Use:          TaxUseSale,
		AmountType:   TaxAmountPercent,
	}
}

// RatePercent converts a remote fractional rate (0.18) to a percent (18)
func RatePercent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

// TaxName renders "{title}_({percent} % included|excluded)", e.g. "IGST_(18.0 % included)".
// The percent always carries a decimal point.
func TaxName(title string, rate decimal.Decimal, priceInclude bool) string {
	pct := RatePercent(rate).String()
	if !strings.Contains(pct, ".") {
		pct += ".0"
	}
	mode := "excluded"
	if priceInclude {
		mode = "included"
	}
	return fmt.Sprintf("%s_(%s %% %s)", title, pct, mode)
}

// SkipTaxLine reports whether a remote tax line must produce no tax:
// a zero rate or a zero price.
func SkipTaxLine(rate, price decimal.Decimal) bool {
	return rate.IsZero() || price.IsZero()
}

// Compute returns the tax added on top of a base amount. Price-included taxes add nothing.
func (t *Tax) Compute(base decimal.Decimal) decimal.Decimal {
	if t.PriceInclude {
		return decimal.Zero
	}
	return base.Mul(t.Amount).Div(hundred).Round(2)
}
