package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/rohits-web03/escapegame/internal/utils"
)

const MaxGroupsPerRequest = 50

// MaxPointsPerAward bounds one AddPoints call and the points of one challenge.
const MaxPointsPerAward = 1_000_000

type GroupService struct {
	store   repositories.Store
	newCode utils.CodeGenerator
	now     func() time.Time
}

func NewGroupService(store repositories.Store) *GroupService {
	return &GroupService{store: store, newCode: utils.NewGroupCode, now: time.Now}
}

func (s *GroupService) WithCodeGenerator(gen utils.CodeGenerator) *GroupService {
	s.newCode = gen
	return s
}

func (s *GroupService) WithClock(now func() time.Time) *GroupService {
	s.now = now
	return s
}

// CreateGroups adds amount groups to the party. Each group is created on its
// own; a failure part way leaves the earlier groups in place.
func (s *GroupService) CreateGroups(ctx context.Context, partyID uint, amount int) ([]models.Group, error) {
	if amount < 1 || amount > MaxGroupsPerRequest {
		return nil, apperr.Validation("amount must be between 1 and %d", MaxGroupsPerRequest)
	}
	if _, err := s.store.GetParty(ctx, partyID); err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, amount)
	for i := 0; i < amount; i++ {
		code, err := uniqueCode(ctx, s.newCode, s.store.GroupCodeExists)
		if err != nil {
			return groups, err
		}
		group := models.Group{
			PartyID:   partyID,
			Code:      code,
			Name:      fmt.Sprintf("Group %s", code),
			CreatedAt: s.now().UTC(),
		}
		if err := s.store.CreateGroup(ctx, &group); err != nil {
			return groups, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *GroupService) ListGroups(ctx context.Context, partyID uint) ([]models.Group, error) {
	return s.store.ListGroupsByParty(ctx, partyID)
}

func (s *GroupService) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// JoinGroup adds userID to the group. A user holds one group per party:
// joining the same group again returns the existing membership, joining a
// different group of that party is rejected.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member *models.GroupMember
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		// Joins into the same party queue up here, so the lookup below
		// cannot race another join by the same user.
		if _, err := tx.LockParty(ctx, group.PartyID); err != nil {
			return err
		}

		existing, err := tx.FindPartyMembership(ctx, group.PartyID, userID)
		switch {
		case err == nil:
			if existing.GroupID != groupID {
				return apperr.Validation("user already belongs to another group of this party")
			}
			member = existing
			return nil
		case !apperr.Is(err, apperr.KindNotFound):
			return err
		}

		member = &models.GroupMember{PartyID: group.PartyID, GroupID: groupID, UserID: userID, JoinedAt: s.now().UTC()}
		return tx.AddGroupMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// Authorize returns the group when userID is one of its members or the
// admin of its party.
func (s *GroupService) Authorize(ctx context.Context, groupID, userID uint) (*models.Group, error) {
	return authorizeGroup(ctx, s.store, groupID, userID)
}

func (s *GroupService) UpdateGroupName(ctx context.Context, groupID uint, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name must not be empty")
	}
	if err := s.store.UpdateGroupName(ctx, groupID, name); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, groupID)
}

// AddPoints increments the score in the store. Scores never go down.
func (s *GroupService) AddPoints(ctx context.Context, groupID uint, points int) (*models.Group, error) {
	if points < 0 || points > MaxPointsPerAward {
		return nil, apperr.Validation("points must be between 0 and %d", MaxPointsPerAward)
	}
	if err := s.store.IncrementGroupScore(ctx, groupID, points); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, groupID)
}

// DeleteGroup removes the group together with its memberships, messages and
// progress rows. Either all of them go or none do.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	var deleted *models.Group
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := tx.DeleteGroupMembers(ctx, groupID); err != nil {
			return err
		}
		if err := tx.DeleteGroupMessages(ctx, groupID); err != nil {
			return err
		}
		if err := tx.DeleteGroupProgress(ctx, groupID); err != nil {
			return err
		}
		if err := tx.DeleteGroup(ctx, groupID); err != nil {
			return err
		}
		deleted = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *GroupService) GetCompletedChallengeIDs(ctx context.Context, groupID uint) ([]uint, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.CompletedChallengeIDs(ctx, groupID)
}

func (s *GroupService) ListGroupUsers(ctx context.Context, groupID uint) ([]models.User, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListGroupUsers(ctx, groupID)
}
