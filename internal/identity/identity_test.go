package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret")
	for _, id := range []Identity{
		{UserID: 1, HashedEmail: "a1b2c3"},
		{UserID: 42, HashedEmail: "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"},
	} {
		token, err := svc.Issue(id)
		require.NoError(t, err)

		got, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewService("test-secret").WithClock(func() time.Time { return issuedAt })
	token, err := issuer.Issue(Identity{UserID: 7, HashedEmail: "h"})
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(TokenTTL), claims.ExpiresAt.Time.UTC())

	stillValid := NewService("test-secret").WithClock(func() time.Time { return issuedAt.Add(TokenTTL - time.Minute) })
	_, err = stillValid.Verify(token)
	assert.NoError(t, err)

	expired := NewService("test-secret").WithClock(func() time.Time { return issuedAt.Add(TokenTTL + time.Minute) })
	_, err = expired.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc := NewService("test-secret")
	good, err := svc.Issue(Identity{UserID: 3, HashedEmail: "h"})
	require.NoError(t, err)

	foreign, err := NewService("other-secret").Issue(Identity{UserID: 3, HashedEmail: "h"})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  3,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"malformed":       "not-a-jwt",
		"truncated":       good[:len(good)-4],
		"foreign secret":  foreign,
		"none algorithm":  noneToken,
		"three dots only": "..",
	} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err), name)
	}

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestIssueWithoutSecret(t *testing.T) {
	_, err := NewService("").Issue(Identity{UserID: 1})
	assert.ErrorIs(t, err, ErrNoSecret)
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc.def.ghi"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestContextRoundTrip(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingToken)

	ctx := WithIdentity(context.Background(), Identity{UserID: 9, HashedEmail: "h"})
	id, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(9), id.UserID)
}
