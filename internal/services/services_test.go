package services

import (
	"context"
	"testing"
	"time"

	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx        context.Context
	store      *repositories.MemoryStore
	auth       *AuthService
	parties    *PartyService
	groups     *GroupService
	challenges *ChallengeService
	messages   *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	log, _ := test.NewNullLogger()
	return &fixture{
		ctx:        context.Background(),
		store:      store,
		auth:       NewAuthService(store, identity.NewService("test-secret")),
		parties:    NewPartyService(store, "http://localhost:5173"),
		groups:     NewGroupService(store),
		challenges: NewChallengeService(store, nil, "https://cdn.example.com", log),
		messages:   NewMessageService(store),
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.auth.Register(f.ctx, email, "player-"+email, "#ff0000")
	require.NoError(t, err)
	return u
}

func (f *fixture) party(t *testing.T, admin uint) *models.Party {
	t.Helper()
	p, err := f.parties.CreateParty(f.ctx, admin)
	require.NoError(t, err)
	return p
}

func (f *fixture) group(t *testing.T, partyID uint) *models.Group {
	t.Helper()
	groups, err := f.groups.CreateGroups(f.ctx, partyID, 1)
	require.NoError(t, err)
	return &groups[0]
}

func (f *fixture) challenge(t *testing.T, flag string, points int) *models.Challenge {
	t.Helper()
	c := models.Challenge{Title: "Le portrait", Flag: flag, Hint: "look closer", Points: points}
	require.NoError(t, f.store.UpsertChallenge(f.ctx, &c))
	return &c
}

// sequence returns a generator that yields codes in order and then repeats the last one.
func sequence(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
