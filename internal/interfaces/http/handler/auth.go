package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/shopify-connector/internal/infrastructure/auth"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/erp/shopify-connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// TokenRevoker invalidates a token for the rest of its lifetime
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler exposes the caller's token
type AuthHandler struct {
	BaseHandler
	revoker TokenRevoker
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// TokenInfoResponse describes the authenticated token
type TokenInfoResponse struct {
	Subject   string    `json:"subject"`
	TokenID   string    `json:"token_id"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me returns the subject and scopes of the calling token
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	info := TokenInfoResponse{
		Subject: claims.Subject,
		TokenID: claims.ID,
		Scopes:  claims.Scopes,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	h.Success(c, info)
}

// Revoke revokes the calling token
func (h *AuthHandler) Revoke(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
