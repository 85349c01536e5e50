package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func masteryFixture(t *testing.T) *MasteryRepository {
	db := newTestDB(t)
	seedCatalog(t, db,
		seedProblem{id: 1, difficulty: "Easy", topics: []string{"arrays", "hash table"}},
		seedProblem{id: 2, difficulty: "Medium", topics: []string{"graphs"}},
	)
	return NewMasteryRepository(db)
}

func TestMasteryRepository_TopicMastery(t *testing.T) {
	repo := masteryFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, 7, map[string]float64{"arrays": 20}))

	got, err := repo.TopicMastery(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"arrays": 20, "hash table": -1}, got)

	got, err = repo.TopicMastery(ctx, 8, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"arrays": -1, "hash table": -1}, got)
}

func TestMasteryRepository_UpsertOverwrites(t *testing.T) {
	repo := masteryFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, 7, map[string]float64{"arrays": 20, "graphs": 90}))
	require.NoError(t, repo.Upsert(ctx, 7, map[string]float64{"arrays": 0}))

	views, err := repo.All(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []TopicMasteryView{
		{Topic: "arrays", Mastery: 0},
		{Topic: "graphs", Mastery: 90},
		{Topic: "hash table", Mastery: -1},
	}, views)
}

func TestMasteryRepository_LearningPath(t *testing.T) {
	repo := masteryFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, 7, map[string]float64{"arrays": 60, "graphs": 10}))

	path, err := repo.LearningPath(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"hash table", "graphs", "arrays"}, path)
}

func TestMasteryRepository_InitTopics(t *testing.T) {
	repo := masteryFixture(t)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, 7, map[string]float64{"graphs": 55}))

	created, err := repo.InitTopics(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	created, err = repo.InitTopics(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, created)

	views, err := repo.All(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []TopicMasteryView{
		{Topic: "arrays", Mastery: -1},
		{Topic: "graphs", Mastery: 55},
		{Topic: "hash table", Mastery: -1},
	}, views)
}
