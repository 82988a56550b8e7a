package services

import (
	"context"
	"strings"
	"time"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/sirupsen/logrus"
)

const illustrationURLTTL = 15 * time.Minute

const (
	msgCorrect          = "correct flag"
	msgIncorrect        = "incorrect flag"
	msgAlreadyCompleted = "challenge already completed"
	msgChallengeMissing = "challenge not found"
)

// URLSigner hands out temporary download URLs for bucket objects.
type URLSigner interface {
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ValidationResult is what a flag submission reports back. Points is set only
// when this submission completed the challenge.
type ValidationResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Points  *int          `json:"points,omitempty"`
	State   ProgressState `json:"state"`
}

type Illustration struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ChallengeInfo struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Hint          string         `json:"hint"`
	Illustrations []Illustration `json:"illustrations"`
}

type ChallengeService struct {
	store         repositories.Store
	signer        URLSigner
	publicBaseURL string
	log           logrus.FieldLogger
}

// NewChallengeService builds the service. signer may be nil, in which case
// illustration URLs are built from publicBaseURL.
func NewChallengeService(store repositories.Store, signer URLSigner, publicBaseURL string, log logrus.FieldLogger) *ChallengeService {
	return &ChallengeService{
		store:         store,
		signer:        signer,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log.WithField("component", "challenges"),
	}
}

// FlagMatches compares a submission with the stored flag ignoring case only.
// Whitespace and accents must match exactly.
func FlagMatches(submitted, stored string) bool {
	return strings.ToLower(submitted) == strings.ToLower(stored)
}

// Validate checks a flag for the group and records the attempt. Completing a
// challenge awards its points once; later correct submissions are no-ops.
// userID must be allowed to act for the group (see GroupService.Authorize).
func (s *ChallengeService) Validate(ctx context.Context, userID, groupID, challengeID uint, flag string) (*ValidationResult, error) {
	challenge, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return &ValidationResult{Success: false, Message: msgChallengeMissing, State: Unvisited}, nil
		}
		return nil, err
	}
	return s.record(ctx, userID, groupID, challenge, FlagMatches(flag, challenge.Flag))
}

// CompleteChallenge marks the challenge solved for the group without a flag.
func (s *ChallengeService) CompleteChallenge(ctx context.Context, userID, groupID, challengeID uint) (*ValidationResult, error) {
	challenge, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, userID, groupID, challenge, true)
}

func (s *ChallengeService) record(ctx context.Context, userID, groupID uint, challenge *models.Challenge, correct bool) (*ValidationResult, error) {
	var result *ValidationResult
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := authorizeGroup(ctx, tx, groupID, userID); err != nil {
			return err
		}
		row, err := tx.EnsureProgress(ctx, groupID, challenge.ID)
		if err != nil {
			return err
		}

		if !correct {
			result = &ValidationResult{Success: false, Message: msgIncorrect, State: StateOf(row)}
			return nil
		}

		changed, err := tx.CompleteProgress(ctx, groupID, challenge.ID)
		if err != nil {
			return err
		}
		if !changed {
			result = &ValidationResult{Success: true, Message: msgAlreadyCompleted, State: Completed}
			return nil
		}
		if err := tx.IncrementGroupScore(ctx, groupID, challenge.Points); err != nil {
			return err
		}
		points := challenge.Points
		result = &ValidationResult{Success: true, Message: msgCorrect, Points: &points, State: Completed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"group_id":     groupID,
		"challenge_id": challenge.ID,
		"success":      result.Success,
		"state":        result.State.String(),
	}).Debug("challenge attempt recorded")
	return result, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	return s.store.ListChallenges(ctx)
}

func (s *ChallengeService) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

// GetChallengeInfo returns the public side of a challenge with download URLs
// for its illustrations.
func (s *ChallengeService) GetChallengeInfo(ctx context.Context, id uint) (*ChallengeInfo, error) {
	challenge, err := s.store.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	info := &ChallengeInfo{
		ID:            challenge.ID,
		Title:         challenge.Title,
		Hint:          challenge.Hint,
		Illustrations: make([]Illustration, 0, len(challenge.Illustrations)),
	}
	for _, ill := range challenge.Illustrations {
		url, err := s.illustrationURL(ctx, ill.ObjectKey)
		if err != nil {
			return nil, apperr.Internal(err, "failed to sign illustration url")
		}
		info.Illustrations = append(info.Illustrations, Illustration{Key: ill.ObjectKey, URL: url})
	}
	return info, nil
}

func (s *ChallengeService) illustrationURL(ctx context.Context, key string) (string, error) {
	if s.signer != nil {
		return s.signer.PresignGet(ctx, key, illustrationURLTTL)
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/"), nil
}

// SeedChallenges upserts challenge reference data.
func (s *ChallengeService) SeedChallenges(ctx context.Context, challenges []models.Challenge) error {
	for i := range challenges {
		c := &challenges[i]
		if strings.TrimSpace(c.Title) == "" || c.Flag == "" {
			return apperr.Validation("challenge %d needs a title and a flag", i)
		}
		if c.Points < 0 || c.Points > MaxPointsPerAward {
			return apperr.Validation("challenge %q points must be between 0 and %d", c.Title, MaxPointsPerAward)
		}
		if err := s.store.UpsertChallenge(ctx, c); err != nil {
			return err
		}
	}
	s.log.WithField("count", len(challenges)).Info("challenges seeded")
	return nil
}
