package integration

import (
	"context"
	"encoding/json"

	"github.com/erp/shopify-connector/internal/domain/catalog"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// inventoryLevelsSet is the Admin API resource that overwrites the available
// quantity of an inventory item at a location
const inventoryLevelsSet = "inventory_levels/set"

// inventoryLevelRequest is the body of inventory_levels/set
type inventoryLevelRequest struct {
	LocationID      shared.ExternalID `json:"location_id"`
	InventoryItemID shared.ExternalID `json:"inventory_item_id"`
	Available       int64             `json:"available"`
}

// StockExportService pushes local stock levels of matched variants to the
// remote store
type StockExportService struct {
	remote   integration.RemoteClient
	products catalog.ProductRepository
	stock    catalog.StockRepository
	auditor  *Auditor
	logger   *zap.Logger
}

// NewStockExportService creates a new StockExportService
func NewStockExportService(
	remote integration.RemoteClient,
	products catalog.ProductRepository,
	stock catalog.StockRepository,
	auditor *Auditor,
	logger *zap.Logger,
) *StockExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockExportService{
		remote:   remote,
		products: products,
		stock:    stock,
		auditor:  auditor,
		logger:   logger,
	}
}

// ExportStock sets the remote available quantity of every active variant with
// a remote id to the quantity held at the connection's stock location. Each
// variant is reported on its own line of one process log; a failing variant
// does not stop the others.
func (s *StockExportService) ExportStock(ctx context.Context, conn *integration.Connection) (*StockExportResult, error) {
	if !conn.IsOperational() {
		return nil, integration.ErrConnectionNotIntegrated
	}
	if conn.LocationID == nil || conn.RemoteLocationID.IsZero() {
		return nil, integration.ErrStockLocationMissing
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "export",
		telemetry.WithAttribute(telemetry.SpanAttrConnectionID, conn.ID.String()))
	defer span.End()

	variants, err := s.products.FindExportableVariants(ctx, conn.ID)
	if err != nil {
		return nil, err
	}

	log := integration.NewProcessLog(conn.ID, integration.ResourceProduct, conn.ID.String(),
		"Successfully exported stock to Shopify.", "")
	result := &StockExportResult{ConnectionID: conn.ID, Lines: make([]StockExportLine, 0, len(variants))}

	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := s.exportVariant(ctx, conn, v, log)
		if line.Success {
			result.Exported++
		} else {
			result.Failed++
		}
		result.Lines = append(result.Lines, line)
	}

	if log.HasErrors() {
		log.Message = "Stock export finished with errors."
	}
	s.auditor.Record(ctx, log)
	s.logger.Info("Stock export completed",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("variants", len(variants)),
		zap.Int("exported", result.Exported),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *StockExportService) exportVariant(ctx context.Context, conn *integration.Connection, v *catalog.Variant, log *integration.ProcessLog) StockExportLine {
	line := StockExportLine{
		VariantID:       v.ID,
		ExternalID:      v.ExternalID.String(),
		InventoryItemID: v.InventoryItemID.String(),
	}
	name := variantLabel(v)
	fail := func(message, response string) StockExportLine {
		line.Error = message
		log.AddError(name, v.ID.String(), "Failed to export stock: "+message, response)
		s.logger.Warn("Failed to export variant stock",
			zap.String("connection_id", conn.ID.String()),
			zap.String("variant_external_id", line.ExternalID),
			zap.String("error", message))
		return line
	}

	if v.InventoryItemID.IsZero() {
		return fail("variant has no inventory item", "")
	}
	available, err := s.stock.AvailableQuantity(ctx, v.ID, *conn.LocationID)
	if err != nil {
		return fail(err.Error(), "")
	}
	line.Available = catalog.ExportableQuantity(available)

	body := inventoryLevelRequest{
		LocationID:      conn.RemoteLocationID,
		InventoryItemID: v.InventoryItemID,
		Available:       line.Available,
	}
	payload, _ := json.Marshal(body)
	if _, err := s.remote.Post(ctx, conn, inventoryLevelsSet, body); err != nil {
		return fail(err.Error(), string(payload))
	}

	line.Success = true
	log.AddSuccess(name, v.ID.String(), "Successfully exported stock for "+name+".", string(payload))
	return line
}

// variantLabel names a variant in process logs
func variantLabel(v *catalog.Variant) string {
	if v.Barcode != "" {
		return "Variant " + v.ExternalID.String() + " (" + v.Barcode + ")"
	}
	return "Variant " + v.ExternalID.String()
}
