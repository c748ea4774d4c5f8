package auth

import (
	"context"
	"testing"
	"time"

	"github.com/erp/shopify-connector/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Issuer:     "shopify-connector",
		Expiration: time.Hour,
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestJWTService()

	issued, err := svc.Issue("ops@example.com", []string{ScopeWrite}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
	assert.True(t, claims.HasScope(ScopeWrite))
	assert.True(t, claims.HasScope(ScopeRead), "write implies read")
}

func TestJWTService_IssueDefaultsAndErrors(t *testing.T) {
	svc := newTestJWTService()

	issued, err := svc.Issue("reader", nil, 10*time.Minute)
	require.NoError(t, err)
	claims, err := svc.Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{ScopeRead}, claims.Scopes)
	assert.False(t, claims.HasScope(ScopeWrite))

	_, err = svc.Issue(" ", nil, 0)
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = svc.Issue("ops", []string{"admin:*"}, 0)
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestJWTService_ValidateRejects(t *testing.T) {
	svc := newTestJWTService()

	t.Run("expired token", func(t *testing.T) {
		issued, err := svc.Issue("ops", nil, time.Minute)
		require.NoError(t, err)
		later := newTestJWTService()
		later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err = later.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("token from the future", func(t *testing.T) {
		future := newTestJWTService()
		future.now = func() time.Time { return time.Now().Add(time.Hour) }
		issued, err := future.Issue("ops", nil, 0)
		require.NoError(t, err)
		_, err = svc.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-chars!!", Issuer: "shopify-connector"})
		issued, err := other.Issue("ops", nil, 0)
		require.NoError(t, err)
		_, err = svc.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "erp"})
		issued, err := other.Issue("ops", nil, 0)
		require.NoError(t, err)
		_, err = svc.Validate(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "ops", Issuer: "shopify-connector"},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthenticator(t *testing.T) {
	svc := newTestJWTService()
	revoked := NewInMemoryRevocationList()
	authn := NewAuthenticator(svc, revoked)
	ctx := context.Background()

	issued, err := svc.Issue("ops", []string{ScopeWrite}, 0)
	require.NoError(t, err)

	claims, err := authn.Authenticate(ctx, "Bearer "+issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	_, err = authn.Authenticate(ctx, "bearer  "+issued.Token)
	assert.NoError(t, err, "scheme is case-insensitive")

	_, err = authn.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = authn.Authenticate(ctx, "Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = authn.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, authn.Revoke(ctx, claims))
	_, err = authn.Authenticate(ctx, "Bearer "+issued.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestInMemoryRevocationList_Expires(t *testing.T) {
	list := NewInMemoryRevocationList()
	now := time.Now()
	list.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, list.Revoke(ctx, "jti-expired", 0))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = list.IsRevoked(ctx, "jti-expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
