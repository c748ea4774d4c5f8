package integration

import (
	"context"
	"errors"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// ensurePaymentGateway returns the gateway for (connection, code), creating
// it when first observed. created reports whether a new gateway was stored.
func ensurePaymentGateway(ctx context.Context, repo integration.PaymentGatewayRepository, connectionID uuid.UUID, code string) (gw *integration.PaymentGateway, created bool, err error) {
	gw, err = repo.FindByCode(ctx, connectionID, code)
	if err == nil {
		return gw, false, nil
	}
	if !errors.Is(err, integration.ErrPaymentGatewayNotFound) {
		return nil, false, err
	}

	gw, err = integration.NewPaymentGateway(connectionID, code)
	if err != nil {
		return nil, false, err
	}
	if err := repo.Create(ctx, gw); err != nil {
		if errors.Is(err, shared.ErrDuplicateExternalID) {
			existing, findErr := repo.FindByCode(ctx, connectionID, gw.Code)
			return existing, false, findErr
		}
		return nil, false, err
	}
	return gw, true, nil
}
