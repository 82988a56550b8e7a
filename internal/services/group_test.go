package services

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCreateGroups(t *testing.T) {
	f := newFixture(t)
	party := f.party(t, 1)

	groups, err := f.groups.CreateGroups(f.ctx, party.ID, 3)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	seen := map[string]bool{}
	for _, g := range groups {
		assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{4}$`), g.Code)
		assert.Equal(t, "Group "+g.Code, g.Name)
		assert.Equal(t, party.ID, g.PartyID)
		assert.Zero(t, g.Score)
		assert.False(t, seen[g.Code])
		seen[g.Code] = true
	}

	listed, err := f.groups.ListGroups(f.ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, groups, listed)
}

func TestCreateGroupsRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	party := f.party(t, 1)

	for _, amount := range []int{0, -1, MaxGroupsPerRequest + 1} {
		_, err := f.groups.CreateGroups(f.ctx, party.ID, amount)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "amount %d", amount)
	}

	_, err := f.groups.CreateGroups(f.ctx, 404, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestJoinGroupOneGroupPerParty(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "b")
	party := f.party(t, 1)
	groups, err := f.groups.CreateGroups(f.ctx, party.ID, 2)
	require.NoError(t, err)

	member, err := f.groups.JoinGroup(f.ctx, groups[0].ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, groups[0].ID, member.GroupID)
	assert.Equal(t, user.ID, member.UserID)

	again, err := f.groups.JoinGroup(f.ctx, groups[0].ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, again.ID)

	_, err = f.groups.JoinGroup(f.ctx, groups[1].ID, user.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	other := f.group(t, f.party(t, 1).ID)
	_, err = f.groups.JoinGroup(f.ctx, other.ID, user.ID)
	assert.NoError(t, err, "a different party is allowed")

	_, err = f.groups.JoinGroup(f.ctx, 999, user.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	users, err := f.groups.ListGroupUsers(f.ctx, groups[0].ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)
}

func TestJoinGroupConcurrently(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "racer")
	party := f.party(t, 1)
	groups, err := f.groups.CreateGroups(f.ctx, party.ID, 2)
	require.NoError(t, err)

	const n = 20
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, results[i] = f.groups.JoinGroup(f.ctx, groups[i%2].ID, user.ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	membership, err := f.store.FindPartyMembership(f.ctx, party.ID, user.ID)
	require.NoError(t, err)
	for i, err := range results {
		if groups[i%2].ID == membership.GroupID {
			assert.NoError(t, err, "join %d", i)
		} else {
			assert.True(t, apperr.Is(err, apperr.KindValidation), "join %d: %v", i, err)
		}
	}

	total := 0
	for _, group := range groups {
		users, err := f.groups.ListGroupUsers(f.ctx, group.ID)
		require.NoError(t, err)
		total += len(users)
	}
	assert.Equal(t, 1, total)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin")
	member := f.user(t, "member")
	stranger := f.user(t, "stranger")
	group := f.group(t, f.party(t, admin.ID).ID)
	_, err := f.groups.JoinGroup(f.ctx, group.ID, member.ID)
	require.NoError(t, err)

	for _, id := range []uint{admin.ID, member.ID} {
		got, err := f.groups.Authorize(f.ctx, group.ID, id)
		require.NoError(t, err)
		assert.Equal(t, group.ID, got.ID)
	}

	_, err = f.groups.Authorize(f.ctx, group.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)
	_, err = f.groups.Authorize(f.ctx, 999, member.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateGroupName(t *testing.T) {
	f := newFixture(t)
	group := f.group(t, f.party(t, 1).ID)

	updated, err := f.groups.UpdateGroupName(f.ctx, group.ID, "  Les Renards  ")
	require.NoError(t, err)
	assert.Equal(t, "Les Renards", updated.Name)

	_, err = f.groups.UpdateGroupName(f.ctx, group.ID, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.groups.UpdateGroupName(f.ctx, 999, "x")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAddPointsConcurrently(t *testing.T) {
	f := newFixture(t)
	group := f.group(t, f.party(t, 1).ID)

	const n, p = 50, 7
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := f.groups.AddPoints(f.ctx, group.ID, p)
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := f.groups.GetGroup(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, n*p, got.Score)

	_, err = f.groups.AddPoints(f.ctx, group.ID, -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.groups.AddPoints(f.ctx, 999, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAddPointsNeverWraps(t *testing.T) {
	f := newFixture(t)
	group := f.group(t, f.party(t, 1).ID)

	_, err := f.groups.AddPoints(f.ctx, group.ID, math.MaxInt)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.groups.AddPoints(f.ctx, group.ID, MaxPointsPerAward+1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, f.store.IncrementGroupScore(f.ctx, group.ID, math.MaxInt-5))
	_, err = f.groups.AddPoints(f.ctx, group.ID, 10)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := f.groups.GetGroup(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt-5, got.Score)
}

func seedGroupData(t *testing.T, f *fixture) (*models.Group, *models.Challenge) {
	t.Helper()
	user := f.user(t, "member")
	group := f.group(t, f.party(t, user.ID).ID)
	challenge := f.challenge(t, "Dame Verte", 10)

	_, err := f.groups.JoinGroup(f.ctx, group.ID, user.ID)
	require.NoError(t, err)
	_, err = f.messages.Send(f.ctx, group.ID, user.ID, "hello")
	require.NoError(t, err)
	_, err = f.challenges.Validate(f.ctx, user.ID, group.ID, challenge.ID, "dame verte")
	require.NoError(t, err)
	return group, challenge
}

func TestDeleteGroupCascades(t *testing.T) {
	f := newFixture(t)
	group, _ := seedGroupData(t, f)

	deleted, err := f.groups.DeleteGroup(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, deleted.ID)

	_, err = f.groups.GetGroup(f.ctx, group.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	msgs, err := f.store.ListMessages(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs, "no orphaned messages")

	users, err := f.store.ListGroupUsers(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, users)

	ids, err := f.store.CompletedChallengeIDs(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = f.groups.DeleteGroup(f.ctx, group.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

// brokenMessages fails message deletion inside transactions.
type brokenMessages struct {
	repositories.Store
}

func (b *brokenMessages) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return b.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(&brokenMessages{Store: tx})
	})
}

func (b *brokenMessages) DeleteGroupMessages(ctx context.Context, groupID uint) error {
	return apperr.Internal(errors.New("disk full"), "database error on message")
}

func TestDeleteGroupIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	group, challenge := seedGroupData(t, f)

	_, err := NewGroupService(&brokenMessages{Store: f.store}).DeleteGroup(f.ctx, group.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	_, err = f.groups.GetGroup(f.ctx, group.ID)
	assert.NoError(t, err)

	users, err := f.groups.ListGroupUsers(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1, "memberships deleted before the failure are restored")

	msgs, err := f.messages.History(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	ids, err := f.groups.GetCompletedChallengeIDs(f.ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{challenge.ID}, ids)
}

func TestGroupLookupsOnMissingGroup(t *testing.T) {
	f := newFixture(t)

	_, err := f.groups.GetCompletedChallengeIDs(f.ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.groups.ListGroupUsers(f.ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	groups, err := f.groups.ListGroups(f.ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
