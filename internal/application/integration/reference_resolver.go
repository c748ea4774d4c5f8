package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/partner"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type resolvingKey struct{}

// withinResolution marks ctx as already inside a remote fetch; nested
// resolution is then local-only
func withinResolution(ctx context.Context) context.Context {
	return context.WithValue(ctx, resolvingKey{}, true)
}

func isResolving(ctx context.Context) bool {
	v, _ := ctx.Value(resolvingKey{}).(bool)
	return v
}

// ReferenceResolver turns remote ids referenced by an order into local ids.
// A local miss triggers one synchronous remote fetch and upsert; failures
// leave the reference unset.
type ReferenceResolver struct {
	remote    integration.RemoteClient
	customers partner.CustomerRepository
	products  catalog.ProductRepository
	customerM *CustomerMapper
	productM  *ProductMapper
	logger    *zap.Logger
}

// NewReferenceResolver creates a new ReferenceResolver
func NewReferenceResolver(
	remote integration.RemoteClient,
	customers partner.CustomerRepository,
	products catalog.ProductRepository,
	customerMapper *CustomerMapper,
	productMapper *ProductMapper,
	logger *zap.Logger,
) *ReferenceResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceResolver{
		remote:    remote,
		customers: customers,
		products:  products,
		customerM: customerMapper,
		productM:  productMapper,
		logger:    logger,
	}
}

// ResolveCustomer returns the local customer id for a remote customer id, or nil
func (r *ReferenceResolver) ResolveCustomer(ctx context.Context, conn *integration.Connection, externalID shared.ExternalID) *uuid.UUID {
	if r == nil || externalID.IsZero() {
		return nil
	}
	customer, err := r.customers.FindByExternalID(ctx, conn.ID, externalID)
	if err == nil {
		return &customer.ID
	}
	if !errors.Is(err, partner.ErrCustomerNotFound) {
		r.unresolved(conn, integration.EntityKindCustomer, externalID, err)
		return nil
	}
	if isResolving(ctx) || r.remote == nil || r.customerM == nil {
		r.unresolved(conn, integration.EntityKindCustomer, externalID, errors.New("not found locally"))
		return nil
	}

	raw, err := r.fetch(ctx, conn, integration.EntityKindCustomer, externalID)
	if err != nil {
		r.unresolved(conn, integration.EntityKindCustomer, externalID, err)
		return nil
	}
	payload, err := integration.DecodeCustomer(raw)
	if err != nil {
		r.unresolved(conn, integration.EntityKindCustomer, externalID, err)
		return nil
	}
	customer, err = r.customerM.Upsert(withinResolution(ctx), conn, payload)
	if err != nil {
		r.unresolved(conn, integration.EntityKindCustomer, externalID, err)
		return nil
	}
	return &customer.ID
}

// ResolveVariant returns the local variant id for a remote (product, variant)
// pair, importing the product on a miss. Returns nil when unresolved.
func (r *ReferenceResolver) ResolveVariant(ctx context.Context, conn *integration.Connection, productID, variantID shared.ExternalID) *uuid.UUID {
	if r == nil || variantID.IsZero() {
		return nil
	}
	variant, err := r.products.FindVariantByExternalID(ctx, conn.ID, variantID)
	if err == nil {
		return &variant.ID
	}
	if !errors.Is(err, catalog.ErrVariantNotFound) {
		r.unresolved(conn, integration.EntityKindProduct, variantID, err)
		return nil
	}
	if productID.IsZero() || isResolving(ctx) || r.remote == nil || r.productM == nil {
		r.unresolved(conn, integration.EntityKindProduct, variantID, errors.New("not found locally"))
		return nil
	}

	raw, err := r.fetch(ctx, conn, integration.EntityKindProduct, productID)
	if err != nil {
		r.unresolved(conn, integration.EntityKindProduct, productID, err)
		return nil
	}
	payload, err := integration.DecodeProduct(raw)
	if err != nil {
		r.unresolved(conn, integration.EntityKindProduct, productID, err)
		return nil
	}
	if _, err := r.productM.Upsert(withinResolution(ctx), conn, payload); err != nil {
		r.unresolved(conn, integration.EntityKindProduct, productID, err)
		return nil
	}

	variant, err = r.products.FindVariantByExternalID(ctx, conn.ID, variantID)
	if err != nil {
		r.unresolved(conn, integration.EntityKindProduct, variantID, err)
		return nil
	}
	return &variant.ID
}

// fetch GETs one remote entity and unwraps its singular envelope
func (r *ReferenceResolver) fetch(ctx context.Context, conn *integration.Connection, kind integration.EntityKind, id shared.ExternalID) ([]byte, error) {
	resp, err := r.remote.FetchByID(ctx, conn, kind.PluralKey(), id)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(kind, resp.Body)
	if err != nil {
		return nil, err
	}
	if env.isList {
		return nil, fmt.Errorf("%w: expected a single %s", integration.ErrRemoteInvalidPayload, kind)
	}
	return env.single, nil
}

func (r *ReferenceResolver) unresolved(conn *integration.Connection, kind integration.EntityKind, id shared.ExternalID, cause error) {
	r.logger.Warn("Reference left unset",
		zap.String("connection_id", conn.ID.String()),
		zap.String("kind", kind.String()),
		zap.String("external_id", id.String()),
		zap.Error(fmt.Errorf("%w: %v", integration.ErrReferenceUnresolvable, cause)))
}
