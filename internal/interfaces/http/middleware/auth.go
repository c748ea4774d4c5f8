package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/shopify-connector/internal/infrastructure/auth"
	"github.com/erp/shopify-connector/internal/infrastructure/logger"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Auth context keys
const (
	ClaimsKey     = "auth_claims"
	AuthHeaderKey = "Authorization"
)

// TokenAuthenticator validates an Authorization header value
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, header string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid, unrevoked bearer token and
// stores the claims in the gin context
func Authenticate(authn TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authorization header is required")
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), header)
		if err != nil {
			code, message := authErrorCode(err)
			logger.FromContext(c.Request.Context()).Debug("Rejected bearer token", zap.String("code", code), zap.Error(err))
			abortAuth(c, http.StatusUnauthorized, code, message)
			return
		}

		c.Set(ClaimsKey, claims)
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(attribute.String("auth.subject", claims.Subject))
		}
		c.Next()
	}
}

// RequireScope rejects authenticated requests whose token lacks scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.HasScope(scope) {
			abortAuth(c, http.StatusForbidden, dto.ErrCodeForbidden, "Token lacks scope "+scope)
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims stored by Authenticate, or nil
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func authErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	default:
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
