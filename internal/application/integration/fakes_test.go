package integration

import (
	"context"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/finance"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/partner"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// ---------------------------------------------------------------------------
// Remote client mock
// ---------------------------------------------------------------------------

// MockRemoteClient is a mock implementation of integration.RemoteClient
type MockRemoteClient struct {
	mock.Mock
}

func (m *MockRemoteClient) Fetch(ctx context.Context, conn *integration.Connection, resource string, filters url.Values) (*integration.RemoteResponse, error) {
	args := m.Called(ctx, conn, resource, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteResponse), args.Error(1)
}

func (m *MockRemoteClient) FetchByID(ctx context.Context, conn *integration.Connection, resource string, id shared.ExternalID) (*integration.RemoteResponse, error) {
	args := m.Called(ctx, conn, resource, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteResponse), args.Error(1)
}

func (m *MockRemoteClient) Post(ctx context.Context, conn *integration.Connection, resource string, body any) (*integration.RemoteResponse, error) {
	args := m.Called(ctx, conn, resource, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteResponse), args.Error(1)
}

func (m *MockRemoteClient) Delete(ctx context.Context, conn *integration.Connection, resource string) (*integration.RemoteResponse, error) {
	args := m.Called(ctx, conn, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.RemoteResponse), args.Error(1)
}

var _ integration.RemoteClient = (*MockRemoteClient)(nil)

func okResponse(body string) *integration.RemoteResponse {
	return &integration.RemoteResponse{StatusCode: 200, Body: []byte(body)}
}

// ---------------------------------------------------------------------------
// In-memory stores
// ---------------------------------------------------------------------------

type memCustomers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*partner.Customer
}

func newMemCustomers() *memCustomers {
	return &memCustomers{rows: make(map[uuid.UUID]*partner.Customer)}
}

func (r *memCustomers) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rows[id]; ok {
		return c, nil
	}
	return nil, partner.ErrCustomerNotFound
}

func (r *memCustomers) FindByExternalID(_ context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*partner.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.Active && c.ConnectionID == connectionID && c.ExternalID == externalID {
			return c, nil
		}
	}
	return nil, partner.ErrCustomerNotFound
}

func (r *memCustomers) Create(ctx context.Context, c *partner.Customer) error {
	if _, err := r.FindByExternalID(ctx, c.ConnectionID, c.ExternalID); err == nil {
		return shared.ErrDuplicateExternalID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = c
	return nil
}

func (r *memCustomers) Save(_ context.Context, c *partner.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = c
	return nil
}

func (r *memCustomers) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type memCountries struct {
	countries []*partner.Country
	states    []*partner.CountryState
}

func (r *memCountries) FindByCode(_ context.Context, code string) (*partner.Country, error) {
	for _, c := range r.countries {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, partner.ErrCountryNotFound
}

func (r *memCountries) FindState(_ context.Context, countryID uuid.UUID, name string) (*partner.CountryState, error) {
	for _, s := range r.states {
		if s.CountryID == countryID && s.Name == name {
			return s, nil
		}
	}
	return nil, partner.ErrCountryStateNotFound
}

type memProducts struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*catalog.ProductTemplate
	variants  []*catalog.Variant
}

func newMemProducts() *memProducts {
	return &memProducts{templates: make(map[uuid.UUID]*catalog.ProductTemplate)}
}

func (r *memProducts) FindByExternalID(_ context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*catalog.ProductTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.Active && t.ConnectionID == connectionID && t.ExternalID == externalID {
			return t, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (r *memProducts) FindAllByExternalID(_ context.Context, connectionID uuid.UUID, externalID shared.ExternalID) ([]*catalog.ProductTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.ProductTemplate
	for _, t := range r.templates {
		if t.Active && t.ConnectionID == connectionID && t.ExternalID == externalID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memProducts) Create(ctx context.Context, t *catalog.ProductTemplate) error {
	if _, err := r.FindByExternalID(ctx, t.ConnectionID, t.ExternalID); err == nil {
		return shared.ErrDuplicateExternalID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
	return nil
}

func (r *memProducts) Save(_ context.Context, t *catalog.ProductTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
	return nil
}

func (r *memProducts) FindVariants(_ context.Context, templateID uuid.UUID) ([]*catalog.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Variant
	for _, v := range r.variants {
		if v.TemplateID == templateID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memProducts) FindVariantByExternalID(_ context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*catalog.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.variants {
		if v.Active && v.ConnectionID == connectionID && v.ExternalID == externalID {
			return v, nil
		}
	}
	return nil, catalog.ErrVariantNotFound
}

func (r *memProducts) FindExportableVariants(_ context.Context, connectionID uuid.UUID) ([]*catalog.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Variant
	for _, v := range r.variants {
		if v.Active && v.ConnectionID == connectionID && v.ExternalID != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memProducts) SaveVariant(_ context.Context, v *catalog.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.variants {
		if existing.ID == v.ID {
			r.variants[i] = v
			return nil
		}
	}
	r.variants = append(r.variants, v)
	return nil
}

type memCategories struct {
	rows []*catalog.Category
}

func (r *memCategories) FindByName(_ context.Context, name string, isShopify bool) (*catalog.Category, error) {
	for _, c := range r.rows {
		if c.Name == name && c.IsShopify == isShopify {
			return c, nil
		}
	}
	return nil, catalog.ErrCategoryNotFound
}

func (r *memCategories) Create(_ context.Context, c *catalog.Category) error {
	r.rows = append(r.rows, c)
	return nil
}

type memAttributes struct {
	attrs  []*catalog.Attribute
	values []*catalog.AttributeValue
}

func (r *memAttributes) FindByName(_ context.Context, name string, isShopify bool) (*catalog.Attribute, error) {
	for _, a := range r.attrs {
		if a.Name == name && a.IsShopify == isShopify {
			return a, nil
		}
	}
	return nil, catalog.ErrAttributeNotFound
}

func (r *memAttributes) Create(_ context.Context, a *catalog.Attribute) error {
	r.attrs = append(r.attrs, a)
	return nil
}

func (r *memAttributes) FindValue(_ context.Context, attributeID uuid.UUID, name string) (*catalog.AttributeValue, error) {
	for _, v := range r.values {
		if v.AttributeID == attributeID && v.Name == name {
			return v, nil
		}
	}
	return nil, catalog.ErrValueNotFound
}

func (r *memAttributes) CreateValue(_ context.Context, v *catalog.AttributeValue) error {
	r.values = append(r.values, v)
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.SalesOrder
	lines  []*trade.SalesOrderLine
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[uuid.UUID]*trade.SalesOrder)}
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, trade.ErrOrderNotFound
}

func (r *memOrders) FindByExternalID(_ context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*trade.SalesOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Active && o.ConnectionID == connectionID && o.ExternalID == externalID {
			return o, nil
		}
	}
	return nil, trade.ErrOrderNotFound
}

func (r *memOrders) Create(ctx context.Context, o *trade.SalesOrder) error {
	if _, err := r.FindByExternalID(ctx, o.ConnectionID, o.ExternalID); err == nil {
		return shared.ErrDuplicateExternalID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memOrders) Save(_ context.Context, o *trade.SalesOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *memOrders) FindLines(_ context.Context, orderID uuid.UUID) ([]*trade.SalesOrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*trade.SalesOrderLine
	for _, l := range r.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memOrders) FindLineByExternalID(_ context.Context, connectionID uuid.UUID, externalID shared.ExternalID) (*trade.SalesOrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l.ConnectionID == connectionID && l.ExternalID == externalID {
			return l, nil
		}
	}
	return nil, trade.ErrOrderLineNotFound
}

func (r *memOrders) SaveLine(_ context.Context, l *trade.SalesOrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.lines {
		if existing.ID == l.ID {
			r.lines[i] = l
			return nil
		}
	}
	r.lines = append(r.lines, l)
	return nil
}

func (r *memOrders) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type memTaxes struct {
	rows []*trade.Tax
}

func (r *memTaxes) FindByKey(_ context.Context, companyID uuid.UUID, name string, amount decimal.Decimal, priceInclude bool) (*trade.Tax, error) {
	for _, t := range r.rows {
		if t.CompanyID == companyID && t.Name == name && t.Amount.Equal(amount) && t.PriceInclude == priceInclude {
			return t, nil
		}
	}
	return nil, trade.ErrTaxNotFound
}

func (r *memTaxes) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*trade.Tax, error) {
	var out []*trade.Tax
	for _, id := range ids {
		for _, t := range r.rows {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (r *memTaxes) Create(_ context.Context, t *trade.Tax) error {
	r.rows = append(r.rows, t)
	return nil
}

type memDeliveries struct {
	rows []*trade.Delivery
}

func (r *memDeliveries) FindByOrder(_ context.Context, orderID uuid.UUID) ([]*trade.Delivery, error) {
	var out []*trade.Delivery
	for _, d := range r.rows {
		if d.OrderID == orderID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDeliveries) Save(_ context.Context, d *trade.Delivery) error {
	for i, existing := range r.rows {
		if existing.ID == d.ID {
			r.rows[i] = d
			return nil
		}
	}
	r.rows = append(r.rows, d)
	return nil
}

type memInvoices struct {
	rows []*finance.Invoice
}

func (r *memInvoices) FindByOrder(_ context.Context, orderID uuid.UUID) ([]*finance.Invoice, error) {
	var out []*finance.Invoice
	for _, inv := range r.rows {
		if inv.OrderID == orderID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoices) Save(_ context.Context, inv *finance.Invoice) error {
	for i, existing := range r.rows {
		if existing.ID == inv.ID {
			r.rows[i] = inv
			return nil
		}
	}
	r.rows = append(r.rows, inv)
	return nil
}

type memPayments struct {
	rows []*finance.Payment
}

func (r *memPayments) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]*finance.Payment, error) {
	var out []*finance.Payment
	for _, p := range r.rows {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPayments) Create(_ context.Context, p *finance.Payment) error {
	r.rows = append(r.rows, p)
	return nil
}

type memGateways struct {
	mu   sync.Mutex
	rows []*integration.PaymentGateway
}

func (r *memGateways) FindByCode(_ context.Context, connectionID uuid.UUID, code string) (*integration.PaymentGateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.rows {
		if g.ConnectionID == connectionID && g.Code == code {
			return g, nil
		}
	}
	return nil, integration.ErrPaymentGatewayNotFound
}

func (r *memGateways) FindByConnection(_ context.Context, connectionID uuid.UUID) ([]*integration.PaymentGateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*integration.PaymentGateway
	for _, g := range r.rows {
		if g.ConnectionID == connectionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGateways) Create(_ context.Context, g *integration.PaymentGateway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, g)
	return nil
}

type memProcessConfigs struct {
	mu        sync.Mutex
	rows      []*integration.OrderProcessConfig
	workflows []*integration.AutomationWorkflow
}

func (r *memProcessConfigs) FindMatch(_ context.Context, connectionID uuid.UUID, status integration.FinancialStatus, gatewayID uuid.UUID) (*integration.OrderProcessConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *integration.OrderProcessConfig
	for _, c := range r.rows {
		if !c.Active || c.ConnectionID != connectionID || c.FinancialStatus != status || c.PaymentGatewayID != gatewayID {
			continue
		}
		if c.Workflow != nil && !c.Workflow.Active {
			continue
		}
		if best == nil || c.Sequence < best.Sequence {
			best = c
		}
	}
	if best == nil {
		return nil, integration.ErrProcessConfigNotFound
	}
	return best, nil
}

func (r *memProcessConfigs) FindByID(_ context.Context, id uuid.UUID) (*integration.OrderProcessConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, integration.ErrProcessConfigNotFound
}

func (r *memProcessConfigs) FindByConnection(_ context.Context, connectionID uuid.UUID) ([]*integration.OrderProcessConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*integration.OrderProcessConfig
	for _, c := range r.rows {
		if c.ConnectionID == connectionID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memProcessConfigs) Save(_ context.Context, c *integration.OrderProcessConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rows {
		if existing.ID == c.ID {
			r.rows[i] = c
			return nil
		}
	}
	r.rows = append(r.rows, c)
	return nil
}

func (r *memProcessConfigs) FindWorkflowByID(_ context.Context, id uuid.UUID) (*integration.AutomationWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workflows {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, integration.ErrWorkflowNotFound
}

func (r *memProcessConfigs) FindWorkflows(context.Context) ([]*integration.AutomationWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*integration.AutomationWorkflow(nil), r.workflows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProcessConfigs) SaveWorkflow(_ context.Context, wf *integration.AutomationWorkflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.workflows {
		if existing.ID == wf.ID {
			r.workflows[i] = wf
			return nil
		}
	}
	r.workflows = append(r.workflows, wf)
	return nil
}

type memLogs struct {
	mu   sync.Mutex
	rows []*integration.ProcessLog
}

func (r *memLogs) Create(_ context.Context, log *integration.ProcessLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, log)
	return nil
}

func (r *memLogs) FindByResource(_ context.Context, model integration.ResourceModel, resourceID string) ([]*integration.ProcessLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*integration.ProcessLog
	for _, l := range r.rows {
		if l.ResourceModel == model && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLogs) all() []*integration.ProcessLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*integration.ProcessLog(nil), r.rows...)
}

type memSequences struct {
	mu     sync.Mutex
	values map[string]int64
}

func newMemSequences() *memSequences {
	return &memSequences{values: make(map[string]int64)}
}

func (s *memSequences) Next(_ context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[code]++
	return integration.FormatSequence(code, s.values[code]), nil
}

type memConnections struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*integration.Connection
}

func newMemConnections(conns ...*integration.Connection) *memConnections {
	r := &memConnections{rows: make(map[uuid.UUID]*integration.Connection)}
	for _, c := range conns {
		r.rows[c.ID] = c
	}
	return r
}

func (r *memConnections) FindByID(_ context.Context, id uuid.UUID) (*integration.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rows[id]; ok {
		return c, nil
	}
	return nil, integration.ErrConnectionNotFound
}

func (r *memConnections) FindAll(_ context.Context) ([]*integration.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*integration.Connection, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	return out, nil
}

func (r *memConnections) FindActive(ctx context.Context) ([]*integration.Connection, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, c := range all {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memConnections) Save(_ context.Context, c *integration.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = c
	return nil
}

type memWebhooks struct {
	rows []*integration.WebhookRegistration
}

func (r *memWebhooks) FindByID(_ context.Context, id uuid.UUID) (*integration.WebhookRegistration, error) {
	for _, w := range r.rows {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, integration.ErrWebhookNotFound
}

func (r *memWebhooks) FindByTopic(_ context.Context, connectionID uuid.UUID, topic integration.WebhookTopic) (*integration.WebhookRegistration, error) {
	for _, w := range r.rows {
		if w.ConnectionID == connectionID && w.Topic == topic {
			return w, nil
		}
	}
	return nil, integration.ErrWebhookNotFound
}

func (r *memWebhooks) FindByConnection(_ context.Context, connectionID uuid.UUID) ([]*integration.WebhookRegistration, error) {
	var out []*integration.WebhookRegistration
	for _, w := range r.rows {
		if w.ConnectionID == connectionID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *memWebhooks) Save(_ context.Context, w *integration.WebhookRegistration) error {
	for i, existing := range r.rows {
		if existing.ID == w.ID {
			r.rows[i] = w
			return nil
		}
	}
	r.rows = append(r.rows, w)
	return nil
}

func (r *memWebhooks) Delete(_ context.Context, id uuid.UUID) error {
	for i, w := range r.rows {
		if w.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return integration.ErrWebhookNotFound
}

// memQueues stores queues and lines. It also serves as its own transaction
// scope; a failing fn leaves nothing behind because Create is the last call.
type memQueues struct {
	mu        sync.Mutex
	queues    map[uuid.UUID]*integration.Queue
	lines     map[uuid.UUID][]*integration.QueueLine
	sequences *memSequences
	failAfter int
	creates   int
}

func newMemQueues() *memQueues {
	return &memQueues{
		queues:    make(map[uuid.UUID]*integration.Queue),
		lines:     make(map[uuid.UUID][]*integration.QueueLine),
		sequences: newMemSequences(),
		failAfter: -1,
	}
}

func (r *memQueues) Execute(ctx context.Context, fn func(repos integration.QueueRepositories) error) error {
	return fn(r)
}

func (r *memQueues) Queues() integration.QueueRepository   { return r }
func (r *memQueues) Sequences() integration.SequenceGenerator { return r.sequences }

func (r *memQueues) Create(_ context.Context, q *integration.Queue, lines []*integration.QueueLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter >= 0 && r.creates >= r.failAfter {
		return errStoreDown
	}
	r.creates++
	r.queues[q.ID] = q
	r.lines[q.ID] = lines
	return nil
}

func (r *memQueues) FindByID(_ context.Context, id uuid.UUID) (*integration.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[id]; ok {
		return q, nil
	}
	return nil, integration.ErrQueueNotFound
}

func (r *memQueues) FindByStates(_ context.Context, states ...integration.QueueState) ([]*integration.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*integration.Queue
	for _, q := range r.queues {
		for _, s := range states {
			if q.State() == s {
				out = append(out, q)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memQueues) FindByConnection(_ context.Context, connectionID uuid.UUID) ([]*integration.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*integration.Queue
	for _, q := range r.queues {
		if q.ConnectionID == connectionID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memQueues) FindLines(_ context.Context, queueID uuid.UUID) ([]*integration.QueueLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*integration.QueueLine(nil), r.lines[queueID]...), nil
}

func (r *memQueues) SaveLine(context.Context, *integration.QueueLine) error { return nil }

func (r *memQueues) SaveState(context.Context, *integration.Queue) error { return nil }

func (r *memQueues) totalLines() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, lines := range r.lines {
		n += len(lines)
	}
	return n
}

// memIdempotency is a map-backed shared.IdempotencyStore
type memIdempotency struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func (s *memIdempotency) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[id]; ok {
		return false, nil
	}
	s.seen[id] = struct{}{}
	return true, nil
}

func (s *memIdempotency) IsProcessed(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok, nil
}

func (s *memIdempotency) Close() error { return nil }

var (
	_ partner.CustomerRepository           = (*memCustomers)(nil)
	_ partner.CountryRepository            = (*memCountries)(nil)
	_ catalog.ProductRepository            = (*memProducts)(nil)
	_ catalog.CategoryRepository           = (*memCategories)(nil)
	_ catalog.AttributeRepository          = (*memAttributes)(nil)
	_ trade.SalesOrderRepository           = (*memOrders)(nil)
	_ trade.TaxRepository                  = (*memTaxes)(nil)
	_ trade.DeliveryRepository             = (*memDeliveries)(nil)
	_ finance.InvoiceRepository            = (*memInvoices)(nil)
	_ finance.PaymentRepository            = (*memPayments)(nil)
	_ integration.PaymentGatewayRepository = (*memGateways)(nil)
	_ integration.ProcessConfigRepository  = (*memProcessConfigs)(nil)
	_ integration.ProcessLogRepository     = (*memLogs)(nil)
	_ integration.ConnectionRepository     = (*memConnections)(nil)
	_ integration.WebhookRepository        = (*memWebhooks)(nil)
	_ integration.QueueRepository          = (*memQueues)(nil)
	_ integration.QueueTransactionScope    = (*memQueues)(nil)
	_ shared.IdempotencyStore              = (*memIdempotency)(nil)
)

type memStock struct {
	mu     sync.Mutex
	quants []*catalog.StockQuant
	err    error
}

func (r *memStock) AvailableQuantity(_ context.Context, variantID, locationID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return decimal.Zero, r.err
	}
	total := decimal.Zero
	for _, q := range r.quants {
		if q.VariantID == variantID && q.LocationID == locationID {
			total = total.Add(q.Quantity)
		}
	}
	return total, nil
}

func (r *memStock) Save(_ context.Context, q *catalog.StockQuant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quants = append(r.quants, q)
	return nil
}
