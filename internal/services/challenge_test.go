package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagMatches(t *testing.T) {
	assert.True(t, FlagMatches("dame verte", "Dame Verte"))
	assert.True(t, FlagMatches("DAME VERTE", "Dame Verte"))
	assert.True(t, FlagMatches("Dame Verte", "DAME VERTE"))

	assert.False(t, FlagMatches(" dame verte", "Dame Verte"), "no trimming")
	assert.False(t, FlagMatches("dame  verte", "Dame Verte"), "no whitespace folding")
	assert.False(t, FlagMatches("dame vérte", "Dame Verte"), "no accent folding")
	assert.False(t, FlagMatches("", "Dame Verte"))
}

func TestValidateAwardsPointsOnce(t *testing.T) {
	f := newFixture(t)
	group := f.group(t, f.party(t, 1).ID)
	challenge := f.challenge(t, "Dame Verte", 25)

	res, err := f.challenges.Validate(f.ctx, 1, group.ID, challenge.ID, "DAME VERTE")
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Points)
	assert.Equal(t, 25, *res.Points)
	assert.Equal(t, Completed, res.State)

	res, err = f.challenges.Validate(f.ctx, 1, group.ID, challenge.ID, "dame verte")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.Points)
	assert.Equal(t, "challenge already completed", res.Message)

	_, err = f.challenges.CompleteChallenge(f.ctx, 1, group.ID, challenge.ID)
	require.NoError(t, err)

	got, err := f.groups.GetGroup(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Score)
}

func TestValidateWrongFlag(t *testing.T) {
	f := newFixture(t)
	group := f.group(t, f.party(t, 1).ID)
	challenge := f.challenge(t, "Dame Verte", 25)

	res, err := f.challenges.Validate(f.ctx, 1, group.ID, challenge.ID, "dame rouge")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, InProgress, res.State)

	row, err := f.store.EnsureProgress(f.ctx, group.ID, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, InProgress, StateOf(row))

	_, err = f.challenges.Validate(f.ctx, 1, group.ID, challenge.ID, "dame verte")
	require.NoError(t, err)

	res, err = f.challenges.Validate(f.ctx, 1, group.ID, challenge.ID, "dame rouge")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, Completed, res.State, "a wrong flag never undoes completion")

	ids, err := f.groups.GetCompletedChallengeIDs(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{challenge.ID}, ids)
}

func TestValidateMissingEntities(t *testing.T) {
	f := newFixture(t)
	group := f.group(t, f.party(t, 1).ID)
	challenge := f.challenge(t, "x", 1)

	res, err := f.challenges.Validate(f.ctx, 1, group.ID, 999, "x")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "challenge not found", res.Message)

	_, err = f.challenges.Validate(f.ctx, 1, 999, challenge.ID, "x")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.challenges.CompleteChallenge(f.ctx, 1, group.ID, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestValidateRequiresGroupAccess(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin")
	member := f.user(t, "member")
	stranger := f.user(t, "stranger")
	group := f.group(t, f.party(t, admin.ID).ID)
	challenge := f.challenge(t, "Dame Verte", 25)
	_, err := f.groups.JoinGroup(f.ctx, group.ID, member.ID)
	require.NoError(t, err)

	_, err = f.challenges.Validate(f.ctx, stranger.ID, group.ID, challenge.ID, "dame verte")
	assert.ErrorIs(t, err, ErrNotGroupMember)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = f.challenges.CompleteChallenge(f.ctx, stranger.ID, group.ID, challenge.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)

	ids, err := f.groups.GetCompletedChallengeIDs(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	got, err := f.groups.GetGroup(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Score)

	res, err := f.challenges.Validate(f.ctx, member.ID, group.ID, challenge.ID, "dame verte")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = f.challenges.Validate(f.ctx, admin.ID, group.ID, challenge.ID, "dame verte")
	require.NoError(t, err)
	assert.Equal(t, "challenge already completed", res.Message)
}

func TestSeedChallengesBoundsPoints(t *testing.T) {
	f := newFixture(t)
	err := f.challenges.SeedChallenges(f.ctx, []models.Challenge{{Title: "t", Flag: "f", Points: MaxPointsPerAward + 1}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, Unvisited, StateOf(nil))
	assert.Equal(t, InProgress, StateOf(&models.ChallengeProgress{}))
	assert.Equal(t, Completed, StateOf(&models.ChallengeProgress{IsCompleted: true}))
	assert.Equal(t, "in_progress", InProgress.String())

	for _, state := range []ProgressState{Unvisited, InProgress, Completed} {
		data, err := json.Marshal(ValidationResult{State: state})
		require.NoError(t, err)
		var got ValidationResult
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, state, got.State)
	}
	var bad ProgressState
	assert.Error(t, bad.UnmarshalText([]byte("finished")))
}

type fakeSigner struct {
	err error
}

func (s fakeSigner) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.example.com/" + key + "?ttl=" + expires.String(), nil
}

func TestGetChallengeInfo(t *testing.T) {
	f := newFixture(t)
	c := models.Challenge{
		Title:  "Le portrait",
		Flag:   "secret",
		Hint:   "the frame",
		Points: 5,
		Illustrations: []models.ChallengeIllustration{
			{ObjectKey: "portrait/2.png", Position: 2},
			{ObjectKey: "portrait/1.png", Position: 1},
		},
	}
	require.NoError(t, f.challenges.SeedChallenges(f.ctx, []models.Challenge{c}))

	info, err := f.challenges.GetChallengeInfo(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "the frame", info.Hint)
	require.Len(t, info.Illustrations, 2)
	assert.Equal(t, "https://cdn.example.com/portrait/1.png", info.Illustrations[0].URL)

	log, _ := test.NewNullLogger()
	signed := NewChallengeService(f.store, fakeSigner{}, "", log)
	info, err = signed.GetChallengeInfo(f.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/portrait/1.png?ttl=15m0s", info.Illustrations[0].URL)

	broken := NewChallengeService(f.store, fakeSigner{err: errors.New("no creds")}, "", log)
	_, err = broken.GetChallengeInfo(f.ctx, 1)
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	_, err = f.challenges.GetChallengeInfo(f.ctx, 2)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSeedChallengesValidates(t *testing.T) {
	f := newFixture(t)
	err := f.challenges.SeedChallenges(f.ctx, []models.Challenge{{Title: "no flag"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = f.challenges.SeedChallenges(f.ctx, []models.Challenge{{Title: "t", Flag: "f", Points: -1}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	list, err := f.challenges.ListChallenges(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
