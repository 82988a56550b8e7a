package services

import (
	"context"
	"strings"
	"time"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
)

type AuthService struct {
	store  repositories.Store
	tokens *identity.Service
	now    func() time.Time
}

func NewAuthService(store repositories.Store, tokens *identity.Service) *AuthService {
	return &AuthService{store: store, tokens: tokens, now: time.Now}
}

// Register creates a user. The email arrives already hashed by the client.
func (s *AuthService) Register(ctx context.Context, hashedEmail, username, color string) (*models.User, error) {
	hashedEmail = strings.TrimSpace(hashedEmail)
	username = strings.TrimSpace(username)
	color = strings.TrimSpace(color)
	if hashedEmail == "" || username == "" || color == "" {
		return nil, apperr.Validation("hashedEmail, username and color are required")
	}

	_, err := s.store.GetUserByHashedEmail(ctx, hashedEmail)
	switch {
	case err == nil:
		return nil, apperr.Validation("user already exists")
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}

	user := &models.User{
		HashedEmail: hashedEmail,
		Username:    username,
		Color:       color,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login issues a token for the user owning hashedEmail.
func (s *AuthService) Login(ctx context.Context, hashedEmail string) (string, error) {
	hashedEmail = strings.TrimSpace(hashedEmail)
	if hashedEmail == "" {
		return "", apperr.Validation("hashedEmail is required")
	}

	user, err := s.store.GetUserByHashedEmail(ctx, hashedEmail)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", apperr.Auth("unknown email")
		}
		return "", err
	}
	return s.tokens.Issue(identity.Identity{UserID: user.ID, HashedEmail: user.HashedEmail})
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}
