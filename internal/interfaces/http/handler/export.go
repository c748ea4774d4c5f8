package handler

import (
	"context"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/gin-gonic/gin"
)

// StockExporter pushes local stock levels to the remote store
type StockExporter interface {
	ExportStock(ctx context.Context, conn *integration.Connection) (*app.StockExportResult, error)
}

// ExportHandler handles the export endpoints of a connection
type ExportHandler struct {
	BaseHandler
	connections ConnectionGetter
	exporter    StockExporter
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(connections ConnectionGetter, exporter StockExporter) *ExportHandler {
	return &ExportHandler{connections: connections, exporter: exporter}
}

// ExportStock godoc
// @Summary      Export stock levels
// @Description  Sets the remote available quantity of every matched variant to the stock held at the connection's location. Failed variants are reported per line.
// @Tags         exports
// @Produce      json
// @Param        id path string true "Connection ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /connections/{id}/export/stock [post]
func (h *ExportHandler) ExportStock(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.exporter.ExportStock(c.Request.Context(), conn)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
