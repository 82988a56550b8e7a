package repositories

import (
	"context"
	"errors"
	"math"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Validation("%s already exists", entity)
	default:
		return apperr.Internal(err, "database error on "+entity)
	}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error, "user")
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *GormStore) GetUserByHashedEmail(ctx context.Context, hashedEmail string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("hashed_email = ?", hashedEmail).First(&user).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *GormStore) CreateParty(ctx context.Context, party *models.Party) error {
	return translate(s.db.WithContext(ctx).Create(party).Error, "party")
}

func (s *GormStore) GetParty(ctx context.Context, id uint) (*models.Party, error) {
	var party models.Party
	if err := s.db.WithContext(ctx).First(&party, id).Error; err != nil {
		return nil, translate(err, "party")
	}
	return &party, nil
}

func (s *GormStore) GetPartyByCode(ctx context.Context, code string) (*models.Party, error) {
	var party models.Party
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&party).Error; err != nil {
		return nil, translate(err, "party")
	}
	return &party, nil
}

func (s *GormStore) PartyCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Party{}).Where("code = ?", code).Count(&count).Error
	return count > 0, translate(err, "party")
}

func (s *GormStore) SavePartyEndTime(ctx context.Context, party *models.Party) error {
	res := s.db.WithContext(ctx).Model(&models.Party{}).
		Where("id = ?", party.ID).
		Update("end_time", party.EndTime)
	if res.Error != nil {
		return translate(res.Error, "party")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("party not found")
	}
	return nil
}

func (s *GormStore) LockParty(ctx context.Context, id uint) (*models.Party, error) {
	var party models.Party
	err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&party, id).Error
	if err != nil {
		return nil, translate(err, "party")
	}
	return &party, nil
}

func (s *GormStore) CreateGroup(ctx context.Context, group *models.Group) error {
	return translate(s.db.WithContext(ctx).Create(group).Error, "group")
}

func (s *GormStore) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translate(err, "group")
	}
	return &group, nil
}

func (s *GormStore) ListGroupsByParty(ctx context.Context, partyID uint) ([]models.Group, error) {
	groups := []models.Group{}
	err := s.db.WithContext(ctx).Where("party_id = ?", partyID).Order("id ASC").Find(&groups).Error
	return groups, translate(err, "group")
}

func (s *GormStore) GroupCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Group{}).Where("code = ?", code).Count(&count).Error
	return count > 0, translate(err, "group")
}

func (s *GormStore) UpdateGroupName(ctx context.Context, id uint, name string) error {
	res := s.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return translate(res.Error, "group")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("group not found")
	}
	return nil
}

func (s *GormStore) IncrementGroupScore(ctx context.Context, id uint, points int) error {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.Group{}).
		Where("id = ? AND score <= ?", id, math.MaxInt-points).
		UpdateColumn("score", gorm.Expr("score + ?", points))
	if res.Error != nil {
		return translate(res.Error, "group")
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var count int64
	if err := db.Model(&models.Group{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translate(err, "group")
	}
	if count == 0 {
		return apperr.NotFound("group not found")
	}
	return apperr.Validation("score would overflow")
}

func (s *GormStore) DeleteGroup(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Group{}, id)
	if res.Error != nil {
		return translate(res.Error, "group")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("group not found")
	}
	return nil
}

func (s *GormStore) AddGroupMember(ctx context.Context, member *models.GroupMember) error {
	return translate(s.db.WithContext(ctx).Create(member).Error, "group member")
}

func (s *GormStore) FindPartyMembership(ctx context.Context, partyID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := s.db.WithContext(ctx).
		Where("party_id = ? AND user_id = ?", partyID, userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err, "group member")
	}
	return &member, nil
}

func (s *GormStore) IsGroupMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, translate(err, "group member")
}

func (s *GormStore) ListGroupUsers(ctx context.Context, groupID uint) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.joined_at ASC").
		Find(&users).Error
	return users, translate(err, "user")
}

func (s *GormStore) DeleteGroupMembers(ctx context.Context, groupID uint) error {
	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error
	return translate(err, "group member")
}

func (s *GormStore) UpsertChallenge(ctx context.Context, challenge *models.Challenge) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(challenge).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id = ?", challenge.ID).Delete(&models.ChallengeIllustration{}).Error; err != nil {
			return err
		}
		for i := range challenge.Illustrations {
			challenge.Illustrations[i].ID = 0
			challenge.Illustrations[i].ChallengeID = challenge.ID
		}
		if len(challenge.Illustrations) == 0 {
			return nil
		}
		return tx.Create(&challenge.Illustrations).Error
	})
	return translate(err, "challenge")
}

func orderedIllustrations(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (s *GormStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	challenges := []models.Challenge{}
	err := s.db.WithContext(ctx).
		Preload("Illustrations", orderedIllustrations).
		Order("id ASC").
		Find(&challenges).Error
	return challenges, translate(err, "challenge")
}

func (s *GormStore) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.WithContext(ctx).Preload("Illustrations", orderedIllustrations).First(&challenge, id).Error
	if err != nil {
		return nil, translate(err, "challenge")
	}
	return &challenge, nil
}

func (s *GormStore) EnsureProgress(ctx context.Context, groupID, challengeID uint) (*models.ChallengeProgress, error) {
	db := s.db.WithContext(ctx)
	row := models.ChallengeProgress{GroupID: groupID, ChallengeID: challengeID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, translate(err, "challenge progress")
	}
	var progress models.ChallengeProgress
	err := db.Where("group_id = ? AND challenge_id = ?", groupID, challengeID).First(&progress).Error
	if err != nil {
		return nil, translate(err, "challenge progress")
	}
	return &progress, nil
}

func (s *GormStore) CompleteProgress(ctx context.Context, groupID, challengeID uint) (bool, error) {
	// Concurrent completions serialize on the row lock; only one sees is_completed = false.
	res := s.db.WithContext(ctx).Model(&models.ChallengeProgress{}).
		Where("group_id = ? AND challenge_id = ? AND is_completed = ?", groupID, challengeID, false).
		Update("is_completed", true)
	if res.Error != nil {
		return false, translate(res.Error, "challenge progress")
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) CompletedChallengeIDs(ctx context.Context, groupID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.ChallengeProgress{}).
		Where("group_id = ? AND is_completed = ?", groupID, true).
		Order("challenge_id ASC").
		Pluck("challenge_id", &ids).Error
	return ids, translate(err, "challenge progress")
}

func (s *GormStore) DeleteGroupProgress(ctx context.Context, groupID uint) error {
	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&models.ChallengeProgress{}).Error
	return translate(err, "challenge progress")
}

func (s *GormStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	return translate(s.db.WithContext(ctx).Create(msg).Error, "message")
}

func (s *GormStore) ListMessages(ctx context.Context, groupID uint) ([]models.Message, error) {
	messages := []models.Message{}
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("send_date ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, translate(err, "message")
}

func (s *GormStore) DeleteGroupMessages(ctx context.Context, groupID uint) error {
	err := s.db.WithContext(ctx).Where("group_id = ?", groupID).Delete(&models.Message{}).Error
	return translate(err, "message")
}
