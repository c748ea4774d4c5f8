package integration

import (
	"errors"
	"testing"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

// testHarness wires every service against in-memory stores and a mock remote
type testHarness struct {
	conn *integration.Connection

	connections *memConnections
	webhooks    *memWebhooks
	customers   *memCustomers
	countries   *memCountries
	products    *memProducts
	categories  *memCategories
	attributes  *memAttributes
	orders      *memOrders
	taxes       *memTaxes
	deliveries  *memDeliveries
	invoices    *memInvoices
	payments    *memPayments
	gateways    *memGateways
	configs     *memProcessConfigs
	logs        *memLogs
	queues      *memQueues
	remote      *MockRemoteClient

	auditor    *Auditor
	customerM  *CustomerMapper
	productM   *ProductMapper
	resolver   *ReferenceResolver
	automation *AutomationEngine
	orderM     *OrderMapper
	dispatcher *Dispatcher
	validator  *PayloadValidator
	queue      *SyncQueueService
	imports    *ImportService
}

var (
	testCompanyID = uuid.New()
	indiaID       = uuid.New()
	gujaratID     = uuid.New()
)

func newTestConnection(t *testing.T) *integration.Connection {
	t.Helper()
	conn, err := integration.NewConnection("Test Store", "test-store.myshopify.com/", "shpat_token", testCompanyID)
	require.NoError(t, err)
	conn.MarkIntegrated("Asia/Kolkata", "INR", "")
	return conn
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		conn:       newTestConnection(t),
		webhooks:   &memWebhooks{},
		customers:  newMemCustomers(),
		products:   newMemProducts(),
		categories: &memCategories{},
		attributes: &memAttributes{},
		orders:     newMemOrders(),
		taxes:      &memTaxes{},
		deliveries: &memDeliveries{},
		invoices:   &memInvoices{},
		payments:   &memPayments{},
		gateways:   &memGateways{},
		configs:    &memProcessConfigs{},
		logs:       &memLogs{},
		queues:     newMemQueues(),
		remote:     &MockRemoteClient{},
		countries: &memCountries{
			countries: []*partner.Country{{ID: indiaID, Code: "IN", Name: "India"}},
			states:    []*partner.CountryState{{ID: gujaratID, CountryID: indiaID, Code: "GJ", Name: "Gujarat"}},
		},
	}
	h.connections = newMemConnections(h.conn)

	h.auditor = NewAuditor(h.logs, newMemSequences(), nil)
	h.customerM = NewCustomerMapper(h.customers, h.countries, h.auditor, nil, nil)
	h.productM = NewProductMapper(h.products, h.categories, h.attributes, h.auditor, nil, nil)
	h.resolver = NewReferenceResolver(h.remote, h.customers, h.products, h.customerM, h.productM, nil)
	h.automation = NewAutomationEngine(h.orders, h.deliveries, h.taxes, h.invoices, h.payments, nil, nil)
	h.orderM = NewOrderMapper(OrderMapperConfig{
		Orders:     h.orders,
		Taxes:      h.taxes,
		Gateways:   h.gateways,
		Configs:    h.configs,
		Resolver:   h.resolver,
		Automation: h.automation,
		Auditor:    h.auditor,
	})
	h.dispatcher = NewDispatcher(
		NewCustomerHandler(h.customerM),
		NewProductHandler(h.productM),
		NewOrderHandler(h.orderM),
	)
	h.validator = MustPayloadValidator()
	h.queue = NewSyncQueueService(SyncQueueServiceConfig{
		Scope:       h.queues,
		Queues:      h.queues,
		Connections: h.connections,
		Dispatcher:  h.dispatcher,
		Validator:   h.validator,
		Auditor:     h.auditor,
	})
	h.imports = NewImportService(h.remote, h.queue, h.dispatcher, h.validator, h.gateways, h.auditor, nil)
	return h
}

// gatewayFor returns the stored gateway for a code, creating it when missing
func (h *testHarness) gatewayFor(t *testing.T, code string) *integration.PaymentGateway {
	t.Helper()
	gw, err := h.gateways.FindByCode(t.Context(), h.conn.ID, code)
	if err == nil {
		return gw
	}
	gw, err = integration.NewPaymentGateway(h.conn.ID, code)
	require.NoError(t, err)
	require.NoError(t, h.gateways.Create(t.Context(), gw))
	return gw
}
