package repositories

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
)

type memData struct {
	users      map[uint]models.User
	parties    map[uint]models.Party
	groups     map[uint]models.Group
	members    map[uint]models.GroupMember
	challenges map[uint]models.Challenge
	progress   map[uint]models.ChallengeProgress
	messages   map[uint]models.Message

	lastUser, lastParty, lastGroup, lastMember uint
	lastChallenge, lastIllustration            uint
	lastProgress, lastMessage                  uint
}

func newMemData() *memData {
	return &memData{
		users:      map[uint]models.User{},
		parties:    map[uint]models.Party{},
		groups:     map[uint]models.Group{},
		members:    map[uint]models.GroupMember{},
		challenges: map[uint]models.Challenge{},
		progress:   map[uint]models.ChallengeProgress{},
		messages:   map[uint]models.Message{},
	}
}

func cloneMap[V any](m map[uint]V) map[uint]V {
	out := make(map[uint]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	c := *d
	c.users = cloneMap(d.users)
	c.parties = cloneMap(d.parties)
	c.groups = cloneMap(d.groups)
	c.members = cloneMap(d.members)
	c.challenges = cloneMap(d.challenges)
	c.progress = cloneMap(d.progress)
	c.messages = cloneMap(d.messages)
	return &c
}

// MemoryStore is a process-local Store used by tests and by `serve --store
// memory`. Transactions hold the store lock for their whole duration and
// restore a snapshot when they fail.
type MemoryStore struct {
	mu   *sync.Mutex
	inTx bool
	data *memData
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemData()}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	unlock := s.lock()
	defer unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, inTx: true, data: s.data}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.data.users {
		if u.HashedEmail == user.HashedEmail {
			return apperr.Validation("user already exists")
		}
	}
	s.data.lastUser++
	user.ID = s.data.lastUser
	s.data.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	defer s.lock()()
	u, ok := s.data.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByHashedEmail(ctx context.Context, hashedEmail string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.data.users {
		if u.HashedEmail == hashedEmail {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *MemoryStore) CreateParty(ctx context.Context, party *models.Party) error {
	defer s.lock()()
	for _, p := range s.data.parties {
		if p.Code == party.Code {
			return apperr.Validation("party already exists")
		}
	}
	s.data.lastParty++
	party.ID = s.data.lastParty
	s.data.parties[party.ID] = *party
	return nil
}

func (s *MemoryStore) GetParty(ctx context.Context, id uint) (*models.Party, error) {
	defer s.lock()()
	p, ok := s.data.parties[id]
	if !ok {
		return nil, apperr.NotFound("party not found")
	}
	return &p, nil
}

func (s *MemoryStore) GetPartyByCode(ctx context.Context, code string) (*models.Party, error) {
	defer s.lock()()
	for _, p := range s.data.parties {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("party not found")
}

func (s *MemoryStore) PartyCodeExists(ctx context.Context, code string) (bool, error) {
	defer s.lock()()
	for _, p := range s.data.parties {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) SavePartyEndTime(ctx context.Context, party *models.Party) error {
	defer s.lock()()
	p, ok := s.data.parties[party.ID]
	if !ok {
		return apperr.NotFound("party not found")
	}
	if party.EndTime != nil {
		t := *party.EndTime
		p.EndTime = &t
	} else {
		p.EndTime = nil
	}
	s.data.parties[p.ID] = p
	return nil
}

// LockParty is GetParty: a transaction already holds the store's only lock.
func (s *MemoryStore) LockParty(ctx context.Context, id uint) (*models.Party, error) {
	return s.GetParty(ctx, id)
}

func (s *MemoryStore) CreateGroup(ctx context.Context, group *models.Group) error {
	defer s.lock()()
	for _, g := range s.data.groups {
		if g.Code == group.Code {
			return apperr.Validation("group already exists")
		}
	}
	s.data.lastGroup++
	group.ID = s.data.lastGroup
	s.data.groups[group.ID] = *group
	return nil
}

func (s *MemoryStore) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	defer s.lock()()
	g, ok := s.data.groups[id]
	if !ok {
		return nil, apperr.NotFound("group not found")
	}
	return &g, nil
}

func (s *MemoryStore) ListGroupsByParty(ctx context.Context, partyID uint) ([]models.Group, error) {
	defer s.lock()()
	groups := []models.Group{}
	for _, g := range s.data.groups {
		if g.PartyID == partyID {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (s *MemoryStore) GroupCodeExists(ctx context.Context, code string) (bool, error) {
	defer s.lock()()
	for _, g := range s.data.groups {
		if g.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) UpdateGroupName(ctx context.Context, id uint, name string) error {
	defer s.lock()()
	g, ok := s.data.groups[id]
	if !ok {
		return apperr.NotFound("group not found")
	}
	g.Name = name
	s.data.groups[id] = g
	return nil
}

func (s *MemoryStore) IncrementGroupScore(ctx context.Context, id uint, points int) error {
	defer s.lock()()
	g, ok := s.data.groups[id]
	if !ok {
		return apperr.NotFound("group not found")
	}
	if g.Score > math.MaxInt-points {
		return apperr.Validation("score would overflow")
	}
	g.Score += points
	s.data.groups[id] = g
	return nil
}

func (s *MemoryStore) DeleteGroup(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.data.groups[id]; !ok {
		return apperr.NotFound("group not found")
	}
	delete(s.data.groups, id)
	return nil
}

func (s *MemoryStore) AddGroupMember(ctx context.Context, member *models.GroupMember) error {
	defer s.lock()()
	for _, m := range s.data.members {
		if m.UserID == member.UserID && (m.GroupID == member.GroupID || m.PartyID == member.PartyID) {
			return apperr.Validation("group member already exists")
		}
	}
	s.data.lastMember++
	member.ID = s.data.lastMember
	s.data.members[member.ID] = *member
	return nil
}

func (s *MemoryStore) FindPartyMembership(ctx context.Context, partyID, userID uint) (*models.GroupMember, error) {
	defer s.lock()()
	for _, m := range s.data.members {
		if m.UserID == userID && m.PartyID == partyID {
			return &m, nil
		}
	}
	return nil, apperr.NotFound("group member not found")
}

func (s *MemoryStore) IsGroupMember(ctx context.Context, groupID, userID uint) (bool, error) {
	defer s.lock()()
	for _, m := range s.data.members {
		if m.GroupID == groupID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListGroupUsers(ctx context.Context, groupID uint) ([]models.User, error) {
	defer s.lock()()
	var members []models.GroupMember
	for _, m := range s.data.members {
		if m.GroupID == groupID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	users := []models.User{}
	for _, m := range members {
		if u, ok := s.data.users[m.UserID]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *MemoryStore) DeleteGroupMembers(ctx context.Context, groupID uint) error {
	defer s.lock()()
	for id, m := range s.data.members {
		if m.GroupID == groupID {
			delete(s.data.members, id)
		}
	}
	return nil
}

func (s *MemoryStore) UpsertChallenge(ctx context.Context, challenge *models.Challenge) error {
	defer s.lock()()
	if challenge.ID == 0 {
		s.data.lastChallenge++
		challenge.ID = s.data.lastChallenge
	} else if challenge.ID > s.data.lastChallenge {
		s.data.lastChallenge = challenge.ID
	}

	illustrations := make([]models.ChallengeIllustration, len(challenge.Illustrations))
	for i, ill := range challenge.Illustrations {
		s.data.lastIllustration++
		ill.ID = s.data.lastIllustration
		ill.ChallengeID = challenge.ID
		illustrations[i] = ill
	}
	sort.SliceStable(illustrations, func(i, j int) bool { return illustrations[i].Position < illustrations[j].Position })
	challenge.Illustrations = illustrations

	stored := *challenge
	stored.Illustrations = append([]models.ChallengeIllustration(nil), illustrations...)
	s.data.challenges[challenge.ID] = stored
	return nil
}

func copyChallenge(c models.Challenge) models.Challenge {
	c.Illustrations = append([]models.ChallengeIllustration(nil), c.Illustrations...)
	return c
}

func (s *MemoryStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	defer s.lock()()
	challenges := make([]models.Challenge, 0, len(s.data.challenges))
	for _, c := range s.data.challenges {
		challenges = append(challenges, copyChallenge(c))
	}
	sort.Slice(challenges, func(i, j int) bool { return challenges[i].ID < challenges[j].ID })
	return challenges, nil
}

func (s *MemoryStore) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	defer s.lock()()
	c, ok := s.data.challenges[id]
	if !ok {
		return nil, apperr.NotFound("challenge not found")
	}
	c = copyChallenge(c)
	return &c, nil
}

func (s *MemoryStore) findProgress(groupID, challengeID uint) (models.ChallengeProgress, bool) {
	for _, p := range s.data.progress {
		if p.GroupID == groupID && p.ChallengeID == challengeID {
			return p, true
		}
	}
	return models.ChallengeProgress{}, false
}

func (s *MemoryStore) EnsureProgress(ctx context.Context, groupID, challengeID uint) (*models.ChallengeProgress, error) {
	defer s.lock()()
	if p, ok := s.findProgress(groupID, challengeID); ok {
		return &p, nil
	}
	s.data.lastProgress++
	p := models.ChallengeProgress{ID: s.data.lastProgress, GroupID: groupID, ChallengeID: challengeID}
	s.data.progress[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) CompleteProgress(ctx context.Context, groupID, challengeID uint) (bool, error) {
	defer s.lock()()
	p, ok := s.findProgress(groupID, challengeID)
	if !ok || p.IsCompleted {
		return false, nil
	}
	p.IsCompleted = true
	s.data.progress[p.ID] = p
	return true, nil
}

func (s *MemoryStore) CompletedChallengeIDs(ctx context.Context, groupID uint) ([]uint, error) {
	defer s.lock()()
	ids := []uint{}
	for _, p := range s.data.progress {
		if p.GroupID == groupID && p.IsCompleted {
			ids = append(ids, p.ChallengeID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) DeleteGroupProgress(ctx context.Context, groupID uint) error {
	defer s.lock()()
	for id, p := range s.data.progress {
		if p.GroupID == groupID {
			delete(s.data.progress, id)
		}
	}
	return nil
}

func (s *MemoryStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	defer s.lock()()
	s.data.lastMessage++
	msg.ID = s.data.lastMessage
	s.data.messages[msg.ID] = *msg
	return nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, groupID uint) ([]models.Message, error) {
	defer s.lock()()
	messages := []models.Message{}
	for _, m := range s.data.messages {
		if m.GroupID == groupID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].SendDate.Equal(messages[j].SendDate) {
			return messages[i].SendDate.Before(messages[j].SendDate)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}

func (s *MemoryStore) DeleteGroupMessages(ctx context.Context, groupID uint) error {
	defer s.lock()()
	for id, m := range s.data.messages {
		if m.GroupID == groupID {
			delete(s.data.messages, id)
		}
	}
	return nil
}
