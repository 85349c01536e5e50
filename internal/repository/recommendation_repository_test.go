package repository

import (
	"context"
	"testing"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationRepository_SaveReplaces(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecommendationRepository(db)
	ctx := context.Background()

	_, err := repo.FindByUser(ctx, 7)
	assert.ErrorIs(t, err, util.ErrRecommendationNotFound)

	require.NoError(t, repo.SaveRecommendation(ctx, 7, []uint{12, 4}))
	rec, err := repo.FindByUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint{12, 4}, rec.ProblemIDs())

	require.NoError(t, repo.SaveRecommendation(ctx, 7, []uint{9}))
	require.NoError(t, repo.SaveRecommendation(ctx, 7, []uint{9}))
	rec, err = repo.FindByUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint{9}, rec.ProblemIDs())

	require.NoError(t, repo.SaveRecommendation(ctx, 7, nil))
	rec, err = repo.FindByUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint{}, rec.ProblemIDs())

	var count int64
	require.NoError(t, db.Model(&model.Recommendation{}).Where("user_id = ?", 7).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
