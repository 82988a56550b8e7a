package repositories

import (
	"context"

	"github.com/rohits-web03/escapegame/internal/models"
)

// Store is the persistence gateway. Lookups of missing rows return an
// apperr NotFound error; every other failure is an apperr Internal error.
type Store interface {
	// Transaction runs fn against a transactional view of the store. If fn
	// returns an error nothing it wrote is kept.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByHashedEmail(ctx context.Context, hashedEmail string) (*models.User, error)

	CreateParty(ctx context.Context, party *models.Party) error
	GetParty(ctx context.Context, id uint) (*models.Party, error)
	GetPartyByCode(ctx context.Context, code string) (*models.Party, error)
	PartyCodeExists(ctx context.Context, code string) (bool, error)
	SavePartyEndTime(ctx context.Context, party *models.Party) error
	// LockParty reads the party and holds it until the surrounding
	// transaction ends. Outside a transaction it is a plain read.
	LockParty(ctx context.Context, id uint) (*models.Party, error)

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id uint) (*models.Group, error)
	ListGroupsByParty(ctx context.Context, partyID uint) ([]models.Group, error)
	GroupCodeExists(ctx context.Context, code string) (bool, error)
	UpdateGroupName(ctx context.Context, id uint, name string) error
	// IncrementGroupScore adds points to the stored score without reading it
	// first. A sum that would overflow the score is a validation error.
	IncrementGroupScore(ctx context.Context, id uint, points int) error
	DeleteGroup(ctx context.Context, id uint) error

	AddGroupMember(ctx context.Context, member *models.GroupMember) error
	// FindPartyMembership returns the membership userID holds in any group of partyID.
	FindPartyMembership(ctx context.Context, partyID, userID uint) (*models.GroupMember, error)
	IsGroupMember(ctx context.Context, groupID, userID uint) (bool, error)
	ListGroupUsers(ctx context.Context, groupID uint) ([]models.User, error)
	DeleteGroupMembers(ctx context.Context, groupID uint) error

	UpsertChallenge(ctx context.Context, challenge *models.Challenge) error
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	GetChallenge(ctx context.Context, id uint) (*models.Challenge, error)

	// EnsureProgress returns the progress row for the pair, creating an
	// incomplete one when none exists.
	EnsureProgress(ctx context.Context, groupID, challengeID uint) (*models.ChallengeProgress, error)
	// CompleteProgress flips an incomplete row to completed and reports
	// whether this call made the change.
	CompleteProgress(ctx context.Context, groupID, challengeID uint) (bool, error)
	CompletedChallengeIDs(ctx context.Context, groupID uint) ([]uint, error)
	DeleteGroupProgress(ctx context.Context, groupID uint) error

	CreateMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns the group's messages by ascending send date.
	ListMessages(ctx context.Context, groupID uint) ([]models.Message, error)
	DeleteGroupMessages(ctx context.Context, groupID uint) error
}
