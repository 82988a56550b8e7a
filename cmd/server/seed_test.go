package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "challenges.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSeedChallengesFromFile(t *testing.T) {
	path := writeSeed(t, `[
		{"id": 1, "title": "La dame", "flag": "DAME VERTE", "hint": "green", "points": 30, "illustrations": ["dame/1.png", "dame/2.png"]},
		{"id": 2, "title": "Le tableau", "flag": "cadre", "points": 10}
	]`)
	st := repositories.NewMemoryStore()
	log, _ := test.NewNullLogger()

	require.NoError(t, seedChallenges(context.Background(), st, nil, path, log))

	c, err := st.GetChallenge(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "DAME VERTE", c.Flag)
	require.Len(t, c.Illustrations, 2)
	assert.Equal(t, "dame/2.png", c.Illustrations[1].ObjectKey)

	all, err := st.ListChallenges(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Seeding twice updates in place.
	require.NoError(t, seedChallenges(context.Background(), st, nil, path, log))
	all, err = st.ListChallenges(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSeedChallengesRejectsBadFiles(t *testing.T) {
	st := repositories.NewMemoryStore()
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	assert.Error(t, seedChallenges(ctx, st, nil, filepath.Join(t.TempDir(), "missing.json"), log))
	assert.Error(t, seedChallenges(ctx, st, nil, writeSeed(t, `{"not": "a list"}`), log))
	assert.Error(t, seedChallenges(ctx, st, nil, writeSeed(t, `[{"title": "no flag"}]`), log))
	assert.Error(t, seedChallenges(ctx, st, nil, writeSeed(t, `[{"title": "t", "flag": "f", "points": -1}]`), log))
}
