// Package identity issues and verifies the bearer tokens used by both the
// HTTP API and the chat gateway.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rohits-web03/escapegame/internal/apperr"
)

const TokenTTL = 24 * time.Hour

var (
	ErrMissingToken = apperr.Auth("missing token")
	ErrInvalidToken = apperr.Auth("invalid token")
	ErrNoSecret     = apperr.Configuration("JWT secret is not configured")
)

// Identity is the authenticated caller. It is produced once per request or
// connection and passed explicitly from there on.
type Identity struct {
	UserID      uint   `json:"id"`
	HashedEmail string `json:"hashedEmail"`
}

// Claims is the JWT payload.
type Claims struct {
	UserID      uint   `json:"id"`
	HashedEmail string `json:"hashedEmail"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, HashedEmail: c.HashedEmail}
}

type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the time source. Tests use it to mint expired tokens.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue signs a token for id that expires after TokenTTL.
func (s *Service) Issue(id Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	now := s.now()
	claims := &Claims{
		UserID:      id.UserID,
		HashedEmail: id.HashedEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal(err, "failed to create token")
	}
	return token, nil
}

// Parse validates signature, algorithm and expiry and returns the claims.
func (s *Service) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) Verify(tokenStr string) (Identity, error) {
	claims, err := s.Parse(tokenStr)
	if err != nil {
		return Identity{}, err
	}
	return claims.Identity(), nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored by the auth middleware.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, ErrMissingToken
	}
	return id, nil
}

// IsAuthError reports whether err came from token handling.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken)
}
