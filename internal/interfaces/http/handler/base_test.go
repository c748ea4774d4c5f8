package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/erp/shopify-connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"wrapped sentinel", fmt.Errorf("load connection: %w", integration.ErrConnectionNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"domain error", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"not integrated", integration.ErrConnectionNotIntegrated, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"remote failure", integration.ErrRemoteRequestFailed, http.StatusBadGateway, dto.ErrCodeRemoteFailed},
		{"unknown", fmt.Errorf("pq: deadlock detected"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := newTestEngine()
			r.GET("/x", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := perform(r, http.MethodGet, "/x", nil)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_BindJSON_TooLarge(t *testing.T) {
	h := &BaseHandler{}
	r := newTestEngine()
	r.Use(middleware.BodyLimit(8))
	r.POST("/x", func(c *gin.Context) {
		var req dto.RegisterWebhookRequest
		if h.BindJSON(c, &req) {
			c.Status(http.StatusOK)
		}
	})

	w := perform(r, http.MethodPost, "/x", `{"topic":"`+strings.Repeat("a", 32)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
