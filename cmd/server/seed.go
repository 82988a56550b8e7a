package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/rohits-web03/escapegame/internal/services"
	"github.com/sirupsen/logrus"
)

// seedChallenge is the file format for challenge reference data. The flag
// is never serialized on models.Challenge, so it gets its own shape here.
type seedChallenge struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	Flag          string   `json:"flag"`
	Hint          string   `json:"hint"`
	Points        int      `json:"points"`
	Illustrations []string `json:"illustrations"`
}

func readSeedFile(path string) ([]models.Challenge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var entries []seedChallenge
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	challenges := make([]models.Challenge, 0, len(entries))
	for _, e := range entries {
		c := models.Challenge{ID: e.ID, Title: e.Title, Flag: e.Flag, Hint: e.Hint, Points: e.Points}
		for i, key := range e.Illustrations {
			c.Illustrations = append(c.Illustrations, models.ChallengeIllustration{ObjectKey: key, Position: i})
		}
		challenges = append(challenges, c)
	}
	return challenges, nil
}

// seedChallenges upserts the file's challenges. When storage is set, keys
// missing from the bucket are reported but do not fail the seed.
func seedChallenges(ctx context.Context, st repositories.Store, storage *repositories.ObjectStorage, path string, log *logrus.Logger) error {
	challenges, err := readSeedFile(path)
	if err != nil {
		return err
	}

	if storage != nil {
		for _, c := range challenges {
			for _, ill := range c.Illustrations {
				ok, err := storage.ObjectExists(ctx, ill.ObjectKey)
				switch {
				case err != nil:
					log.WithError(err).WithField("key", ill.ObjectKey).Warn("could not check illustration")
				case !ok:
					log.WithFields(logrus.Fields{"key": ill.ObjectKey, "challenge": c.Title}).Warn("illustration missing from bucket")
				}
			}
		}
	}

	svc := services.NewChallengeService(st, nil, "", log)
	return svc.SeedChallenges(ctx, challenges)
}
