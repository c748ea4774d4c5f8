package auth

import (
	"context"
	"strings"
)

// Authenticator validates bearer tokens and checks revocation
type Authenticator struct {
	jwt     *JWTService
	revoked RevocationList
}

// NewAuthenticator creates an Authenticator. A nil list disables revocation.
func NewAuthenticator(jwt *JWTService, revoked RevocationList) *Authenticator {
	return &Authenticator{jwt: jwt, revoked: revoked}
}

// Authenticate validates an Authorization header value ("Bearer <token>")
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Claims, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}
	claims, err := a.jwt.Validate(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if a.revoked != nil {
		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke invalidates the token behind claims for the rest of its lifetime
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) error {
	if a.revoked == nil {
		return nil
	}
	return a.revoked.Revoke(ctx, claims.ID, claims.RemainingTTL())
}
