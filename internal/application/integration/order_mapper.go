package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderMapper upserts remote orders and their lines, then hands the order to
// the automation engine when a process configuration matches
type OrderMapper struct {
	orders     trade.SalesOrderRepository
	taxes      trade.TaxRepository
	gateways   integration.PaymentGatewayRepository
	configs    integration.ProcessConfigRepository
	resolver   *ReferenceResolver
	automation *AutomationEngine
	auditor    *Auditor
	metrics    SyncMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// OrderMapperConfig holds the collaborators of an OrderMapper
type OrderMapperConfig struct {
	Orders     trade.SalesOrderRepository
	Taxes      trade.TaxRepository
	Gateways   integration.PaymentGatewayRepository
	Configs    integration.ProcessConfigRepository
	Resolver   *ReferenceResolver
	Automation *AutomationEngine
	Auditor    *Auditor
	Metrics    SyncMetrics
	Logger     *zap.Logger
}

// NewOrderMapper creates a new OrderMapper
func NewOrderMapper(cfg OrderMapperConfig) *OrderMapper {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderMapper{
		orders:     cfg.Orders,
		taxes:      cfg.Taxes,
		gateways:   cfg.Gateways,
		configs:    cfg.Configs,
		resolver:   cfg.Resolver,
		automation: cfg.Automation,
		auditor:    cfg.Auditor,
		metrics:    metricsOrNop(cfg.Metrics),
		logger:     logger,
		now:        time.Now,
	}
}

// Upsert creates or updates the local order for a remote order. Scalar fields
// and lines of a confirmed or cancelled order are left untouched, but the
// automation still runs against it. The automation result is nil when no
// process configuration matched.
func (m *OrderMapper) Upsert(ctx context.Context, conn *integration.Connection, p *integration.OrderPayload) (*trade.SalesOrder, *AutomationResult, error) {
	start := time.Now()
	defer func() { m.metrics.UpsertDuration(integration.EntityKindOrder.String(), time.Since(start)) }()

	if p == nil || p.ID.IsZero() {
		err := fmt.Errorf("%w: order id missing", integration.ErrMalformedPayload)
		m.auditor.Failure(ctx, conn.ID, integration.ResourceOrder, "", "Order payload has no id", "", err)
		return nil, nil, err
	}
	resourceID := p.ID.String()
	fail := func(err error) (*trade.SalesOrder, *AutomationResult, error) {
		m.logger.Error("Failed to upsert order",
			zap.String("connection_id", conn.ID.String()),
			zap.String("external_id", resourceID),
			zap.Error(err))
		m.auditor.Failure(ctx, conn.ID, integration.ResourceOrder, resourceID,
			"Failed to import order "+p.Name, responseText(p), err)
		return nil, nil, err
	}

	gateway, _, err := ensurePaymentGateway(ctx, m.gateways, conn.ID, p.GatewayCode())
	if err != nil {
		return fail(err)
	}
	cfg := m.matchConfig(ctx, conn, p, gateway)

	header := trade.OrderHeader{
		Name:              p.Name,
		OrderDate:         p.OrderDate(m.now()),
		WarehouseID:       conn.WarehouseID,
		PaymentGatewayID:  &gateway.ID,
		FinancialStatus:   p.FinancialStatus,
		FulfillmentStatus: p.FulfillmentStatus,
		TaxesIncluded:     p.TaxesIncluded,
	}
	if cfg != nil {
		header.PaymentTermID = cfg.PaymentTermID
	}
	if p.Customer != nil {
		header.CustomerID = m.resolver.ResolveCustomer(ctx, conn, p.Customer.ID)
	}

	order, created, err := m.applyHeader(ctx, conn, p.ID, header)
	if err != nil {
		return fail(err)
	}

	var message string
	switch {
	case created:
		message = "Order created: " + order.Name
	case order.IsTerminal():
		message = fmt.Sprintf("Order %s is %s: remote changes ignored", order.Name, order.State)
	default:
		message = "Order updated: " + order.Name
	}
	log := integration.NewProcessLog(conn.ID, integration.ResourceOrder, resourceID, message, responseText(p))

	if !order.IsTerminal() {
		m.upsertLines(ctx, conn, order, p, log)
	}

	var result *AutomationResult
	if cfg != nil && cfg.Workflow != nil && m.automation != nil {
		result = m.automation.Run(ctx, order, cfg.Workflow, p.IsFulfilled())
		for _, step := range result.Applied {
			log.AddSuccess("Automation", resourceID, "Applied "+string(step), "")
		}
		for _, failure := range result.Failures {
			log.AddError("Automation", resourceID, failure.Error(), "")
		}
	}
	m.auditor.Record(ctx, log)
	return order, result, nil
}

// matchConfig looks up the process configuration for the payload's financial
// status and gateway. No match, or an unknown status, skips automation.
func (m *OrderMapper) matchConfig(ctx context.Context, conn *integration.Connection, p *integration.OrderPayload, gateway *integration.PaymentGateway) *integration.OrderProcessConfig {
	status := integration.FinancialStatus(p.FinancialStatus)
	if m.configs == nil || !status.IsValid() {
		return nil
	}
	cfg, err := m.configs.FindMatch(ctx, conn.ID, status, gateway.ID)
	if err != nil {
		if !errors.Is(err, integration.ErrProcessConfigNotFound) {
			m.logger.Warn("Failed to look up order process configuration",
				zap.String("connection_id", conn.ID.String()),
				zap.String("financial_status", p.FinancialStatus),
				zap.String("gateway", gateway.Code),
				zap.Error(err))
		}
		return nil
	}
	return cfg
}

func (m *OrderMapper) applyHeader(ctx context.Context, conn *integration.Connection, externalID shared.ExternalID, header trade.OrderHeader) (*trade.SalesOrder, bool, error) {
	update := func(o *trade.SalesOrder) error {
		if !o.ApplyHeader(header) {
			return nil
		}
		return m.orders.Save(ctx, o)
	}

	existing, err := m.orders.FindByExternalID(ctx, conn.ID, externalID)
	switch {
	case err == nil:
		return existing, false, update(existing)
	case !errors.Is(err, trade.ErrOrderNotFound):
		return nil, false, err
	}

	order, err := trade.NewSalesOrder(conn.ID, conn.CompanyID, externalID, header)
	if err != nil {
		return nil, false, err
	}
	err = m.orders.Create(ctx, order)
	if errors.Is(err, shared.ErrDuplicateExternalID) {
		winner, findErr := m.orders.FindByExternalID(ctx, conn.ID, externalID)
		if findErr != nil {
			return nil, false, findErr
		}
		return winner, false, update(winner)
	}
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// upsertLines writes every remote line item. A failing line is logged and
// does not stop its siblings.
func (m *OrderMapper) upsertLines(ctx context.Context, conn *integration.Connection, order *trade.SalesOrder, p *integration.OrderPayload, log *integration.ProcessLog) {
	taxIDs, err := m.resolveTaxes(ctx, order.CompanyID, p)
	if err != nil {
		for _, item := range p.LineItems {
			log.AddError(item.Name, item.ID.String(), "Failed to resolve taxes: "+err.Error(), "")
		}
		return
	}

	for _, item := range p.LineItems {
		values := trade.LineValues{
			VariantID: m.resolver.ResolveVariant(ctx, conn, item.ProductID, item.VariantID),
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.CurrentQuantity,
			TaxIDs:    taxIDs,
		}
		if err := m.upsertLine(ctx, conn, order, item.ID, values); err != nil {
			log.AddError(item.Name, item.ID.String(), err.Error(), responseText(item))
			continue
		}
		log.AddSuccess(item.Name, item.ID.String(), "Order line synchronised", "")
	}
}

func (m *OrderMapper) upsertLine(ctx context.Context, conn *integration.Connection, order *trade.SalesOrder, externalID shared.ExternalID, values trade.LineValues) error {
	line, err := m.orders.FindLineByExternalID(ctx, conn.ID, externalID)
	switch {
	case err == nil:
		line.Apply(values)
	case errors.Is(err, trade.ErrOrderLineNotFound):
		line, err = trade.NewSalesOrderLine(order, externalID, values)
		if err != nil {
			return err
		}
	default:
		return err
	}
	return m.orders.SaveLine(ctx, line)
}

// resolveTaxes finds or creates one tax per order tax line. Lines with a zero
// rate or price are skipped.
func (m *OrderMapper) resolveTaxes(ctx context.Context, companyID uuid.UUID, p *integration.OrderPayload) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(p.TaxLines))
	seen := make(map[uuid.UUID]struct{})
	for _, tl := range p.TaxLines {
		if trade.SkipTaxLine(tl.Rate, tl.Price) {
			continue
		}
		tax, err := m.ensureTax(ctx, companyID, tl, p.TaxesIncluded)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[tax.ID]; !ok {
			seen[tax.ID] = struct{}{}
			ids = append(ids, tax.ID)
		}
	}
	return ids, nil
}

func (m *OrderMapper) ensureTax(ctx context.Context, companyID uuid.UUID, tl integration.TaxLinePayload, priceInclude bool) (*trade.Tax, error) {
	name := trade.TaxName(tl.Title, tl.Rate, priceInclude)
	amount := trade.RatePercent(tl.Rate)
	tax, err := m.taxes.FindByKey(ctx, companyID, name, amount, priceInclude)
	if err == nil {
		return tax, nil
	}
	if !errors.Is(err, trade.ErrTaxNotFound) {
		return nil, err
	}
	tax = trade.NewSaleTax(companyID, tl.Title, tl.Rate, priceInclude)
	if err := m.taxes.Create(ctx, tax); err != nil {
		if errors.Is(err, shared.ErrDuplicateExternalID) {
			return m.taxes.FindByKey(ctx, companyID, name, amount, priceInclude)
		}
		return nil, err
	}
	return tax, nil
}
