package handler

import (
	"context"
	"errors"
	"net/http"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/scheduler"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/erp/shopify-connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QueueService drains and inspects sync queues
type QueueService interface {
	Drain(ctx context.Context, queueID uuid.UUID) (*app.DrainResult, error)
	List(ctx context.Context, connectionID uuid.UUID) ([]app.QueueResponse, error)
	Get(ctx context.Context, queueID uuid.UUID) (*app.QueueDetailResponse, error)
}

// PendingDrainer runs a drain pass over every pending queue
type PendingDrainer interface {
	RunOnce(ctx context.Context) error
	Last() scheduler.Snapshot
}

// QueueHandler handles sync queue endpoints
type QueueHandler struct {
	BaseHandler
	queues  QueueService
	pending PendingDrainer
}

// NewQueueHandler creates a new QueueHandler
func NewQueueHandler(queues QueueService, pending PendingDrainer) *QueueHandler {
	return &QueueHandler{queues: queues, pending: pending}
}

// ListByConnection returns the queues of a connection
func (h *QueueHandler) ListByConnection(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	queues, err := h.queues.List(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, queues, len(queues))
}

// Get godoc
// @Summary      Get a sync queue with its lines
// @Tags         queues
// @Produce      json
// @Param        queue_id path string true "Queue ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /queues/{queue_id} [get]
func (h *QueueHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "queue_id")
	if !ok {
		return
	}
	q, err := h.queues.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, q)
}

// Drain godoc
// @Summary      Drain a sync queue
// @Description  Processes every draft or failed line of the queue
// @Tags         queues
// @Produce      json
// @Param        queue_id path string true "Queue ID"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /queues/{queue_id}/drain [post]
func (h *QueueHandler) Drain(c *gin.Context) {
	id, ok := h.ParseID(c, "queue_id")
	if !ok {
		return
	}
	result, err := h.queues.Drain(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DrainPending runs one drain pass over every pending queue and returns the
// run snapshot. A failed pass is reported in the snapshot.
func (h *QueueHandler) DrainPending(c *gin.Context) {
	err := h.pending.RunOnce(c.Request.Context())
	if errors.Is(err, scheduler.ErrAlreadyRunning) {
		h.Conflict(c, dto.ErrCodeDrainInProgress, "A drain run is already in progress")
		return
	}
	snap := h.pending.Last()
	if err != nil {
		c.JSON(http.StatusOK, dto.Response{
			Success: false,
			Data:    snap,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeInternal, Message: "Drain run failed", RequestID: middleware.GetRequestID(c)},
		})
		return
	}
	h.Success(c, snap)
}

// DrainStatus returns the snapshot of the last scheduled or manual drain run
func (h *QueueHandler) DrainStatus(c *gin.Context) {
	h.Success(c, h.pending.Last())
}
