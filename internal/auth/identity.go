// Package auth resolves bearer credentials into the {userId, role} identity
// the rest of the API consumes. Token issuance, sessions, and password
// handling live outside this service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventhive/ticketing-api/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for missing, malformed, or expired credentials.
var ErrInvalidToken = errors.New("invalid or expired token")

// Provider resolves a bearer credential into an identity.
type Provider interface {
	Resolve(token string) (model.Identity, error)
}

// JWTProvider verifies HMAC-signed tokens carrying sub and role claims.
type JWTProvider struct {
	secret []byte
}

// NewJWTProvider constructs a JWTProvider with the shared signing secret.
func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Resolve verifies the token signature and expiry and extracts the identity.
func (p *JWTProvider) Resolve(token string) (model.Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Identity{}, ErrInvalidToken
	}
	if c.Subject == "" || c.Role == "" {
		return model.Identity{}, ErrInvalidToken
	}
	return model.Identity{UserID: c.Subject, Role: c.Role}, nil
}

// Sign issues a token for the given identity. Used by tests and by the
// external tooling that provisions identities; there is no login endpoint
// in this service.
func (p *JWTProvider) Sign(id model.Identity, ttl time.Duration, now time.Time) (string, error) {
	c := claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
}

type identityKey struct{}

// WithIdentity stores the resolved identity in the context.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity placed by the middleware.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(model.Identity)
	return id, ok
}
