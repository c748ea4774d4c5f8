package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"go.uber.org/zap"
)

// importPageLimit is the largest page the Admin API returns
const importPageLimit = "250"

// ImportService runs the synchronous import path: fetch from the remote
// store, apply a single object at once, enqueue lists
type ImportService struct {
	remote     integration.RemoteClient
	queue      *SyncQueueService
	dispatcher *Dispatcher
	validator  *PayloadValidator
	gateways   integration.PaymentGatewayRepository
	auditor    *Auditor
	logger     *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	remote integration.RemoteClient,
	queue *SyncQueueService,
	dispatcher *Dispatcher,
	validator *PayloadValidator,
	gateways integration.PaymentGatewayRepository,
	auditor *Auditor,
	logger *zap.Logger,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		remote:     remote,
		queue:      queue,
		dispatcher: dispatcher,
		validator:  validator,
		gateways:   gateways,
		auditor:    auditor,
		logger:     logger,
	}
}

// ImportCustomers imports all customers, or only the given remote ids
func (s *ImportService) ImportCustomers(ctx context.Context, conn *integration.Connection, ids []string) (*ImportResult, error) {
	return s.importKind(ctx, conn, integration.EntityKindCustomer, listFilters(ids))
}

// ImportProducts imports all products, or only the given remote ids
func (s *ImportService) ImportProducts(ctx context.Context, conn *integration.Connection, ids []string) (*ImportResult, error) {
	return s.importKind(ctx, conn, integration.EntityKindProduct, listFilters(ids))
}

// ImportOrders imports orders by explicit ids, or by status mode within a creation window
func (s *ImportService) ImportOrders(ctx context.Context, conn *integration.Connection, req OrderImportRequest) (*ImportResult, error) {
	if ids := cleanIDs(req.IDs); len(ids) > 0 {
		return s.importKind(ctx, conn, integration.EntityKindOrder, url.Values{"ids": {strings.Join(ids, ",")}})
	}
	filters, err := orderWindowFilters(req.From, req.To)
	if err != nil {
		return nil, err
	}
	switch req.Mode {
	case OrderImportUnshipped:
		filters.Set("fulfillment_status", "unshipped")
	case OrderImportShipped:
		filters.Set("fulfillment_status", "shipped")
	case OrderImportAll, "":
		filters.Set("status", "any")
	default:
		return nil, fmt.Errorf("unknown order import mode %q", req.Mode)
	}
	return s.importKind(ctx, conn, integration.EntityKindOrder, filters)
}

// ImportPaymentGateways records every gateway name seen on orders created in a window
func (s *ImportService) ImportPaymentGateways(ctx context.Context, conn *integration.Connection, from, to time.Time) (*GatewayImportResult, error) {
	if !conn.IsOperational() {
		return nil, integration.ErrConnectionNotIntegrated
	}
	filters, err := orderWindowFilters(from, to)
	if err != nil {
		return nil, err
	}
	filters.Set("status", "any")
	filters.Set("fields", "payment_gateway_names")
	filters.Set("limit", importPageLimit)
	return syncPaymentGateways(ctx, s.remote, s.gateways, s.auditor, conn, filters)
}

func (s *ImportService) importKind(ctx context.Context, conn *integration.Connection, kind integration.EntityKind, filters url.Values) (*ImportResult, error) {
	if !conn.IsOperational() {
		return nil, integration.ErrConnectionNotIntegrated
	}
	resource := kind.PluralKey()
	resp, err := s.remote.Fetch(ctx, conn, resource, filters)
	if err != nil {
		s.auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(),
			"Failed to import "+resource, "", err)
		return nil, err
	}
	env, err := decodeEnvelope(kind, resp.Body)
	if err != nil {
		s.auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(),
			"Failed to import "+resource, string(resp.Body), err)
		return nil, err
	}

	result := &ImportResult{Kind: kind}
	if !env.isList {
		if err := s.applySingle(ctx, conn, kind, env.single); err != nil {
			return nil, err
		}
		externalID, _, _ := integration.LineIdentity(kind, env.single)
		result.ExternalID = externalID.String()
		result.Lines = 1
		return result, nil
	}

	if len(env.list) == 0 {
		return result, nil
	}
	queues, err := s.queue.Enqueue(ctx, conn, kind, env.list)
	for _, q := range queues {
		result.Queues = append(result.Queues, ToQueueResponse(q))
		result.Lines += q.Counts.Total
	}
	if err != nil {
		return result, err
	}
	s.logger.Info("Import enqueued",
		zap.String("connection_id", conn.ID.String()),
		zap.String("kind", kind.String()),
		zap.Int("lines", result.Lines),
		zap.Int("queues", len(queues)))
	return result, nil
}

func (s *ImportService) applySingle(ctx context.Context, conn *integration.Connection, kind integration.EntityKind, raw json.RawMessage) error {
	if s.validator != nil {
		if err := s.validator.Validate(kind, raw); err != nil {
			s.auditor.Failure(ctx, conn.ID, integration.ResourceModelFor(kind), "", "Rejected "+kind.String()+" payload", string(raw), err)
			return err
		}
	}
	return s.dispatcher.Dispatch(ctx, conn, kind, integration.OperationUpdate, raw)
}

// ---------------------------------------------------------------------------
// Filters
// ---------------------------------------------------------------------------

func listFilters(ids []string) url.Values {
	if ids = cleanIDs(ids); len(ids) > 0 {
		return url.Values{"ids": {strings.Join(ids, ",")}}
	}
	return url.Values{"limit": {importPageLimit}}
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func orderWindowFilters(from, to time.Time) (url.Values, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, integration.ErrInvalidDateRange
	}
	filters := url.Values{}
	if !from.IsZero() {
		filters.Set("created_at_min", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		filters.Set("created_at_max", to.UTC().Format(time.RFC3339))
	}
	return filters, nil
}

// ---------------------------------------------------------------------------
// Payment gateways
// ---------------------------------------------------------------------------

// syncPaymentGateways fetches orders' gateway names and ensures one gateway per code
func syncPaymentGateways(
	ctx context.Context,
	remote integration.RemoteClient,
	gateways integration.PaymentGatewayRepository,
	auditor *Auditor,
	conn *integration.Connection,
	filters url.Values,
) (*GatewayImportResult, error) {
	resp, err := remote.Fetch(ctx, conn, integration.EntityKindOrder.PluralKey(), filters)
	if err != nil {
		auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(), "Failed to import payment gateways", "", err)
		return nil, err
	}
	var body struct {
		Orders []integration.OrderPayload `json:"orders"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		err = fmt.Errorf("%w: %v", integration.ErrRemoteInvalidPayload, err)
		auditor.Failure(ctx, conn.ID, integration.ResourceConnection, conn.ID.String(), "Failed to import payment gateways", string(resp.Body), err)
		return nil, err
	}

	result := &GatewayImportResult{Codes: integration.DistinctGatewayCodes(body.Orders)}
	for _, code := range result.Codes {
		_, created, err := ensurePaymentGateway(ctx, gateways, conn.ID, code)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		}
	}
	return result, nil
}
