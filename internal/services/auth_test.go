package services

import (
	"testing"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.Register(f.ctx, "hash-a", "alice", "#00ff00")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	token, err := f.auth.Login(f.ctx, "hash-a")
	require.NoError(t, err)

	id, err := identity.NewService("test-secret").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity.Identity{UserID: user.ID, HashedEmail: "hash-a"}, id)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(f.ctx, "hash-a", "", "#000")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.auth.Register(f.ctx, "hash-a", "alice", "#000")
	require.NoError(t, err)
	_, err = f.auth.Register(f.ctx, "hash-a", "alice again", "#111")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(f.ctx, "  ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.auth.Login(f.ctx, "nobody")
	assert.True(t, apperr.Is(err, apperr.KindAuth))

	f.user(t, "hash-b")
	noSecret := NewAuthService(f.store, identity.NewService(""))
	_, err = noSecret.Login(f.ctx, "hash-b")
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}
