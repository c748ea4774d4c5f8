package handler

import (
	"context"
	"time"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Importer pulls remote records into sync queues
type Importer interface {
	ImportCustomers(ctx context.Context, conn *integration.Connection, ids []string) (*app.ImportResult, error)
	ImportProducts(ctx context.Context, conn *integration.Connection, ids []string) (*app.ImportResult, error)
	ImportOrders(ctx context.Context, conn *integration.Connection, req app.OrderImportRequest) (*app.ImportResult, error)
	ImportPaymentGateways(ctx context.Context, conn *integration.Connection, from, to time.Time) (*app.GatewayImportResult, error)
}

// ConnectionGetter loads a connection by ID
type ConnectionGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*integration.Connection, error)
}

// ImportHandler handles the manual import endpoints of a connection
type ImportHandler struct {
	BaseHandler
	connections ConnectionGetter
	importer    Importer
	now         func() time.Time
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(connections ConnectionGetter, importer Importer) *ImportHandler {
	return &ImportHandler{connections: connections, importer: importer, now: time.Now}
}

func (h *ImportHandler) connection(c *gin.Context) (*integration.Connection, bool) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return nil, false
	}
	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return conn, true
}

// ImportCustomers godoc
// @Summary      Import customers
// @Description  Imports the listed remote customers, or every customer when ids is empty
// @Tags         imports
// @Accept       json
// @Produce      json
// @Param        id path string true "Connection ID"
// @Param        request body dto.ImportIDsRequest false "Remote ids"
// @Success      200 {object} dto.Response
// @Router       /connections/{id}/import/customers [post]
func (h *ImportHandler) ImportCustomers(c *gin.Context) {
	var req dto.ImportIDsRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	conn, ok := h.connection(c)
	if !ok {
		return
	}
	result, err := h.importer.ImportCustomers(c.Request.Context(), conn, req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportProducts imports the listed remote products, or every product when
// ids is empty
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	var req dto.ImportIDsRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	conn, ok := h.connection(c)
	if !ok {
		return
	}
	result, err := h.importer.ImportProducts(c.Request.Context(), conn, req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportOrders godoc
// @Summary      Import orders
// @Description  Imports orders by fulfillment mode within a creation window, or by explicit ids
// @Tags         imports
// @Accept       json
// @Produce      json
// @Param        id path string true "Connection ID"
// @Param        request body dto.OrderImportRequest false "Selection"
// @Success      200 {object} dto.Response
// @Router       /connections/{id}/import/orders [post]
func (h *ImportHandler) ImportOrders(c *gin.Context) {
	var req dto.OrderImportRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	conn, ok := h.connection(c)
	if !ok {
		return
	}
	result, err := h.importer.ImportOrders(c.Request.Context(), conn, req.ToApp(h.now()))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportPaymentGateways creates a local gateway for every gateway code seen
// on remote orders in the window
func (h *ImportHandler) ImportPaymentGateways(c *gin.Context) {
	var req dto.DateWindowRequest
	if !h.BindJSON(c, &req) {
		return
	}
	conn, ok := h.connection(c)
	if !ok {
		return
	}
	result, err := h.importer.ImportPaymentGateways(c.Request.Context(), conn, req.From, req.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
