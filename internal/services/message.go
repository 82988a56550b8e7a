package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
)

const MaxMessageLength = 2000

type MessageService struct {
	store repositories.Store
	now   func() time.Time
}

func NewMessageService(store repositories.Store) *MessageService {
	return &MessageService{store: store, now: time.Now}
}

func (s *MessageService) WithClock(now func() time.Time) *MessageService {
	s.now = now
	return s
}

// History returns the group's messages oldest first.
func (s *MessageService) History(ctx context.Context, groupID uint) ([]models.Message, error) {
	return s.store.ListMessages(ctx, groupID)
}

// Send persists a message from senderID stamped with the server clock.
func (s *MessageService) Send(ctx context.Context, groupID, senderID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, apperr.Validation("content must be at most %d characters", MaxMessageLength)
	}
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		GroupID:  groupID,
		SenderID: senderID,
		Content:  content,
		SendDate: s.now().UTC(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
