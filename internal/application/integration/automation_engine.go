package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/shopify-connector/internal/domain/finance"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/trade"
	"github.com/erp/shopify-connector/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AutomationStep names one transition of the order automation
type AutomationStep string

const (
	StepConfirm         AutomationStep = "confirm"
	StepDeliver         AutomationStep = "deliver"
	StepInvoice         AutomationStep = "invoice"
	StepPostInvoice     AutomationStep = "post_invoice"
	StepRegisterPayment AutomationStep = "register_payment"
	StepInvoiceDate     AutomationStep = "invoice_date"
	StepLock            AutomationStep = "lock"
)

// AutomationStepError is the failure of one step. Later steps still run.
type AutomationStepError struct {
	Step AutomationStep
	Err  error
}

func (e *AutomationStepError) Error() string {
	return fmt.Sprintf("automation step %s: %v", e.Step, e.Err)
}

func (e *AutomationStepError) Unwrap() error {
	return e.Err
}

// AutomationResult lists the steps that changed something and the steps that failed
type AutomationResult struct {
	Applied  []AutomationStep
	Failures []*AutomationStepError
}

// Err joins the step failures, or returns nil
func (r *AutomationResult) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// AutomationEngine drives an order through confirm, deliver, invoice, pay and
// lock according to a workflow. Every step is guarded so re-running it on the
// same order changes nothing.
type AutomationEngine struct {
	orders     trade.SalesOrderRepository
	deliveries trade.DeliveryRepository
	taxes      trade.TaxRepository
	invoices   finance.InvoiceRepository
	payments   finance.PaymentRepository
	metrics    SyncMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAutomationEngine creates a new AutomationEngine
func NewAutomationEngine(
	orders trade.SalesOrderRepository,
	deliveries trade.DeliveryRepository,
	taxes trade.TaxRepository,
	invoices finance.InvoiceRepository,
	payments finance.PaymentRepository,
	metrics SyncMetrics,
	logger *zap.Logger,
) *AutomationEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutomationEngine{
		orders:     orders,
		deliveries: deliveries,
		taxes:      taxes,
		invoices:   invoices,
		payments:   payments,
		metrics:    metricsOrNop(metrics),
		logger:     logger,
		now:        time.Now,
	}
}

// automationRun carries state shared by the steps of one Run
type automationRun struct {
	order     *trade.SalesOrder
	wf        integration.AutomationWorkflow
	fulfilled bool
	lines     []*trade.SalesOrderLine
	invoices  []*finance.Invoice
	invoice   *finance.Invoice
	loaded    bool
}

// Run applies the workflow's steps in order. fulfilled is the remote
// fulfilment status of the payload that triggered the run.
func (e *AutomationEngine) Run(ctx context.Context, order *trade.SalesOrder, wf *integration.AutomationWorkflow, fulfilled bool) *AutomationResult {
	result := &AutomationResult{}
	if order == nil || wf == nil {
		return result
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "automation", "run",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, order.ID.String()),
		telemetry.WithAttribute("workflow", wf.Name))
	defer span.End()

	run := &automationRun{order: order, wf: *wf, fulfilled: fulfilled}
	run.wf.Normalize()

	steps := []struct {
		name AutomationStep
		fn   func(context.Context, *automationRun) (bool, error)
	}{
		{StepConfirm, e.confirm},
		{StepDeliver, e.deliver},
		{StepInvoice, e.invoice},
		{StepPostInvoice, e.postInvoice},
		{StepRegisterPayment, e.registerPayment},
		{StepInvoiceDate, e.alignInvoiceDates},
		{StepLock, e.lock},
	}
	for _, step := range steps {
		applied, err := step.fn(ctx, run)
		switch {
		case err != nil:
			e.logger.Error("Automation step failed",
				zap.String("step", string(step.name)),
				zap.String("order_id", order.ID.String()),
				zap.String("external_id", order.ExternalID.String()),
				zap.Error(err))
			e.metrics.AutomationStep(string(step.name), OutcomeFailure)
			telemetry.AddEvent(span, "step_failed", "step", string(step.name), "error", err.Error())
			result.Failures = append(result.Failures, &AutomationStepError{Step: step.name, Err: err})
		case applied:
			e.metrics.AutomationStep(string(step.name), OutcomeSuccess)
			result.Applied = append(result.Applied, step.name)
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

func (e *AutomationEngine) confirm(ctx context.Context, run *automationRun) (bool, error) {
	order := run.order
	if !run.wf.Confirm || (order.State != trade.OrderStateDraft && order.State != trade.OrderStateSent) {
		return false, nil
	}
	lines, err := e.orderLines(ctx, run)
	if err != nil {
		return false, err
	}

	prevState, prevConfirmed := order.State, order.ConfirmedAt
	if err := order.Confirm(); err != nil {
		return false, err
	}
	if err := e.orders.Save(ctx, order); err != nil {
		order.State, order.ConfirmedAt = prevState, prevConfirmed
		return false, err
	}

	delivery := trade.NewDelivery(order, lines)
	if len(delivery.Moves) > 0 {
		if err := e.deliveries.Save(ctx, delivery); err != nil {
			return true, fmt.Errorf("create delivery: %w", err)
		}
	}
	return true, nil
}

func (e *AutomationEngine) deliver(ctx context.Context, run *automationRun) (bool, error) {
	if !run.fulfilled {
		return false, nil
	}
	deliveries, err := e.deliveries.FindByOrder(ctx, run.order.ID)
	if err != nil {
		return false, err
	}
	if trade.HasDoneDelivery(deliveries) {
		return false, nil
	}
	open := make([]*trade.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if d.State.IsOpen() {
			open = append(open, d)
		}
	}
	if len(open) == 0 {
		return false, nil
	}

	switch run.wf.PickingPolicy {
	case integration.PickingPolicyDirect, integration.PickingPolicyNever:
		backorder := run.wf.PickingPolicy == integration.PickingPolicyDirect
		for _, d := range open {
			if d.State != trade.DeliveryStateAssigned {
				if err := d.Assign(); err != nil {
					return false, err
				}
			}
			if err := e.validateDelivery(ctx, d, backorder); err != nil {
				return false, err
			}
		}
	default:
		for _, d := range open {
			if err := d.Assign(); err != nil {
				return false, err
			}
			d.SetQuantitiesToDemand()
		}
		for _, d := range open {
			if err := e.validateDelivery(ctx, d, false); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

func (e *AutomationEngine) validateDelivery(ctx context.Context, d *trade.Delivery, createBackorder bool) error {
	backorder, err := d.Validate(createBackorder)
	if err != nil {
		return err
	}
	if err := e.deliveries.Save(ctx, d); err != nil {
		return err
	}
	if backorder != nil {
		return e.deliveries.Save(ctx, backorder)
	}
	return nil
}

func (e *AutomationEngine) invoice(ctx context.Context, run *automationRun) (bool, error) {
	order := run.order
	if !run.wf.CreateInvoice || (order.State != trade.OrderStateSale && order.State != trade.OrderStateCancel) {
		return false, nil
	}
	if err := e.loadInvoices(ctx, run); err != nil {
		return false, err
	}
	if open := finance.FirstOpenInvoice(run.invoices); open != nil {
		run.invoice = open
		return false, nil
	}

	lines, err := e.invoiceLines(ctx, run)
	if err != nil {
		return false, err
	}
	inv, err := finance.NewInvoice(order.ID, order.CompanyID, order.CustomerID, run.wf.SaleJournalID, order.OrderDate, lines)
	if errors.Is(err, finance.ErrNothingToInvoice) {
		e.logger.Debug("Order has nothing to invoice", zap.String("order_id", order.ID.String()))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := e.invoices.Save(ctx, inv); err != nil {
		return false, err
	}
	run.invoices = append(run.invoices, inv)
	run.invoice = inv
	return true, nil
}

func (e *AutomationEngine) postInvoice(ctx context.Context, run *automationRun) (bool, error) {
	inv := run.invoice
	if !run.wf.ValidateInvoice || inv == nil || inv.State != finance.InvoiceStateDraft {
		return false, nil
	}
	if err := inv.Post(); err != nil {
		return false, err
	}
	if err := e.invoices.Save(ctx, inv); err != nil {
		inv.State, inv.PostedAt = finance.InvoiceStateDraft, nil
		return false, err
	}
	return true, nil
}

func (e *AutomationEngine) registerPayment(ctx context.Context, run *automationRun) (bool, error) {
	inv := run.invoice
	if !run.wf.RegisterPayment || inv == nil || !inv.NeedsPayment() {
		return false, nil
	}
	if run.wf.PaymentJournalID == nil {
		return false, errors.New("payment journal is not configured")
	}
	payment, err := finance.RegisterPayment(inv, run.wf.PaymentJournalID, run.wf.InboundPaymentMethodID, e.now())
	if err != nil {
		return false, err
	}
	if err := e.payments.Create(ctx, payment); err != nil {
		return false, err
	}
	if err := e.invoices.Save(ctx, inv); err != nil {
		return false, err
	}
	return true, nil
}

func (e *AutomationEngine) alignInvoiceDates(ctx context.Context, run *automationRun) (bool, error) {
	if !run.wf.InvoiceDateIsOrderDate {
		return false, nil
	}
	if err := e.loadInvoices(ctx, run); err != nil {
		return false, err
	}
	changed := false
	for _, inv := range run.invoices {
		if inv.IsCancelled() || inv.InvoiceDate.Equal(run.order.OrderDate) {
			continue
		}
		inv.SetInvoiceDate(run.order.OrderDate)
		if err := e.invoices.Save(ctx, inv); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

func (e *AutomationEngine) lock(ctx context.Context, run *automationRun) (bool, error) {
	order := run.order
	if !run.wf.LockOrder || order.State != trade.OrderStateSale || order.Locked {
		return false, nil
	}
	if err := order.Lock(); err != nil {
		return false, err
	}
	if err := e.orders.Save(ctx, order); err != nil {
		order.Locked = false
		return false, err
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (e *AutomationEngine) orderLines(ctx context.Context, run *automationRun) ([]*trade.SalesOrderLine, error) {
	if run.lines != nil {
		return run.lines, nil
	}
	lines, err := e.orders.FindLines(ctx, run.order.ID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []*trade.SalesOrderLine{}
	}
	run.lines = lines
	return lines, nil
}

func (e *AutomationEngine) loadInvoices(ctx context.Context, run *automationRun) error {
	if run.loaded {
		return nil
	}
	invoices, err := e.invoices.FindByOrder(ctx, run.order.ID)
	if err != nil {
		return err
	}
	run.invoices = invoices
	run.loaded = true
	if run.invoice == nil {
		run.invoice = finance.FirstOpenInvoice(invoices)
	}
	return nil
}

// invoiceLines bills every line with a positive quantity, adding tax from the line's taxes
func (e *AutomationEngine) invoiceLines(ctx context.Context, run *automationRun) ([]finance.InvoiceLine, error) {
	lines, err := e.orderLines(ctx, run)
	if err != nil {
		return nil, err
	}

	taxIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})
	for _, l := range lines {
		for _, id := range l.TaxIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				taxIDs = append(taxIDs, id)
			}
		}
	}
	taxes := make(map[uuid.UUID]*trade.Tax, len(taxIDs))
	if len(taxIDs) > 0 {
		found, err := e.taxes.FindByIDs(ctx, taxIDs)
		if err != nil {
			return nil, err
		}
		for _, t := range found {
			taxes[t.ID] = t
		}
	}

	result := make([]finance.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		if !l.Quantity.IsPositive() {
			continue
		}
		subtotal := l.Subtotal()
		taxAmount := decimal.Zero
		for _, id := range l.TaxIDs {
			if t, ok := taxes[id]; ok {
				taxAmount = taxAmount.Add(t.Compute(subtotal))
			}
		}
		result = append(result, finance.InvoiceLine{
			OrderLineID: l.ID,
			VariantID:   l.VariantID,
			Name:        l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxAmount:   taxAmount,
		})
	}
	return result, nil
}
