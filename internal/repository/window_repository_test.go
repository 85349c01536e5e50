package repository

import (
	"context"
	"sync"
	"testing"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/recommend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mv(v float64) recommend.MetricVector {
	return recommend.MetricVector{v, 0, 0, 0, v, 0}
}

func TestWindowRepository_Advance(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)
	ctx := context.Background()

	got, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(1), mv(2)}, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(1), mv(2)}, got)

	got, err = repo.Advance(ctx, 7, []recommend.MetricVector{mv(3), mv(4), mv(5), mv(6)}, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(2), mv(3), mv(4), mv(5), mv(6)}, got)

	// 批量超过容量时只保留最新的
	got, err = repo.Advance(ctx, 7, []recommend.MetricVector{mv(7), mv(8), mv(9), mv(10), mv(11), mv(12), mv(13)}, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(9), mv(10), mv(11), mv(12), mv(13)}, got)

	var slots int64
	require.NoError(t, db.Model(&model.RecommendationWindowSlot{}).Where("user_id = ?", 7).Count(&slots).Error)
	assert.Equal(t, int64(5), slots)

	var hdr model.RecommendationWindow
	require.NoError(t, db.Where("user_id = ?", 7).First(&hdr).Error)
	assert.Equal(t, uint64(13), hdr.Seq)

	entries, err := repo.Entries(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, got, entries)

	entries, err = repo.Entries(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWindowRepository_EmptyAdvanceReadsWindow(t *testing.T) {
	repo := NewWindowRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(1)}, 5, 100)
	require.NoError(t, err)

	got, err := repo.Advance(ctx, 7, nil, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(1)}, got)
}

func TestWindowRepository_CapacityChange(t *testing.T) {
	repo := NewWindowRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(1), mv(2), mv(3), mv(4)}, 5, 100)
	require.NoError(t, err)

	got, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(5)}, 3, 100)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(3), mv(4), mv(5)}, got)

	got, err = repo.Advance(ctx, 7, []recommend.MetricVector{mv(6)}, 3, 100)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(4), mv(5), mv(6)}, got)
}

func TestWindowRepository_ConcurrentAdvance(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(float64(i))}, 5, 100)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var hdr model.RecommendationWindow
	require.NoError(t, db.Where("user_id = ?", 7).First(&hdr).Error)
	assert.Equal(t, uint64(20), hdr.Seq)

	entries, err := repo.Entries(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestWindowRepository_ScaleChange(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)
	ctx := context.Background()

	_, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(40), mv(100)}, 5, 100)
	require.NoError(t, err)

	got, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(10)}, 5, 50)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(20), mv(50), mv(10)}, got)

	var hdr model.RecommendationWindow
	require.NoError(t, db.Where("user_id = ?", 7).First(&hdr).Error)
	assert.Equal(t, 50.0, hdr.Scale)
	assert.Equal(t, uint64(3), hdr.Seq)
}

func TestWindowRepository_UnknownScaleClearsWindow(t *testing.T) {
	db := newTestDB(t)
	repo := NewWindowRepository(db)
	ctx := context.Background()

	_, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(1), mv(2)}, 5, 100)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.RecommendationWindow{}).Where("user_id = ?", 7).Update("scale", 0).Error)

	got, err := repo.Advance(ctx, 7, []recommend.MetricVector{mv(3)}, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, []recommend.MetricVector{mv(3)}, got)

	_, err = repo.Advance(ctx, 7, nil, 5, 0)
	assert.Error(t, err)
}
