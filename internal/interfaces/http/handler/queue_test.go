package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/scheduler"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupQueueRouter() (*gin.Engine, *MockQueueService, *MockPendingDrainer) {
	queues := new(MockQueueService)
	pending := new(MockPendingDrainer)
	h := NewQueueHandler(queues, pending)

	r := newTestEngine()
	r.GET("/connections/:id/queues", h.ListByConnection)
	r.GET("/queues/:queue_id", h.Get)
	r.POST("/queues/:queue_id/drain", h.Drain)
	r.POST("/drain-runs", h.DrainPending)
	r.GET("/drain-runs/last", h.DrainStatus)
	return r, queues, pending
}

func TestQueueHandler_Drain(t *testing.T) {
	t.Run("returns the drain result", func(t *testing.T) {
		r, queues, _ := setupQueueRouter()
		id := uuid.New()
		queues.On("Drain", mock.Anything, id).Return(&app.DrainResult{
			QueueID:   id,
			QueueName: "ORD-Q/00003",
			Processed: 2,
			Done:      1,
			Failed:    1,
			State:     integration.QueueStatePartiallyCompleted,
		}, nil)

		w := perform(r, http.MethodPost, "/queues/"+id.String()+"/drain", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "ORD-Q/00003", data["queue_name"])
		assert.Equal(t, float64(1), data["failed"])
	})

	t.Run("concurrent drain conflicts", func(t *testing.T) {
		r, queues, _ := setupQueueRouter()
		id := uuid.New()
		queues.On("Drain", mock.Anything, id).Return(nil, app.ErrDrainInProgress)

		w := perform(r, http.MethodPost, "/queues/"+id.String()+"/drain", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeDrainInProgress, decodeResponse(t, w).Error.Code)
	})

	t.Run("unknown queue", func(t *testing.T) {
		r, queues, _ := setupQueueRouter()
		id := uuid.New()
		queues.On("Get", mock.Anything, id).Return(nil, integration.ErrQueueNotFound)

		w := perform(r, http.MethodGet, "/queues/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestQueueHandler_ListByConnection(t *testing.T) {
	r, queues, _ := setupQueueRouter()
	connID := uuid.New()
	queues.On("List", mock.Anything, connID).Return([]app.QueueResponse{
		{ID: uuid.New(), Name: "CUS-Q/00001", ConnectionID: connID},
		{ID: uuid.New(), Name: "CUS-Q/00002", ConnectionID: connID},
	}, nil)

	w := perform(r, http.MethodGet, "/connections/"+connID.String()+"/queues", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeResponse(t, w).Meta.Total)
}

func TestQueueHandler_DrainPending(t *testing.T) {
	completed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		r, _, pending := setupQueueRouter()
		pending.On("RunOnce", mock.Anything).Return(nil)
		pending.On("Last").Return(scheduler.Snapshot{Status: scheduler.RunStatusSuccess, CompletedAt: &completed, Queues: 2, Processed: 7})

		w := perform(r, http.MethodPost, "/drain-runs", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "SUCCESS", data["status"])
		assert.Equal(t, float64(7), data["processed"])
	})

	t.Run("already running", func(t *testing.T) {
		r, _, pending := setupQueueRouter()
		pending.On("RunOnce", mock.Anything).Return(scheduler.ErrAlreadyRunning)

		w := perform(r, http.MethodPost, "/drain-runs", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		pending.AssertNotCalled(t, "Last")
	})

	t.Run("failed run is reported in the snapshot", func(t *testing.T) {
		r, _, pending := setupQueueRouter()
		pending.On("RunOnce", mock.Anything).Return(errors.New("database is closed"))
		pending.On("Last").Return(scheduler.Snapshot{Status: scheduler.RunStatusFailed, Error: "database is closed"})

		w := perform(r, http.MethodPost, "/drain-runs", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "FAILED", resp.Data.(map[string]any)["status"])
	})

	t.Run("status", func(t *testing.T) {
		r, _, pending := setupQueueRouter()
		pending.On("Last").Return(scheduler.Snapshot{Status: scheduler.RunStatusIdle})

		w := perform(r, http.MethodGet, "/drain-runs/last", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "IDLE", decodeResponse(t, w).Data.(map[string]any)["status"])
	})
}
