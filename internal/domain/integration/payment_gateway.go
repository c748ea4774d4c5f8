package integration

import (
	"strings"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentGateway is a remote gateway name observed on orders.
// Unique per (code, connection).
type PaymentGateway struct {
	shared.BaseEntity
	ConnectionID uuid.UUID
	Code         string
	Name         string
	Active       bool
}

// NewPaymentGateway creates a gateway from an observed name
func NewPaymentGateway(connectionID uuid.UUID, code string) (*PaymentGateway, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrPaymentGatewayInvalid
	}
	return &PaymentGateway{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectionID: connectionID,
		Code:         code,
		Name:         code,
		Active:       true,
	}, nil
}

// DistinctGatewayCodes collects unique non-empty gateway names in first-seen order
func DistinctGatewayCodes(orders []OrderPayload) []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0)
	for _, o := range orders {
		for _, name := range o.PaymentGatewayNames {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			codes = append(codes, name)
		}
	}
	return codes
}
