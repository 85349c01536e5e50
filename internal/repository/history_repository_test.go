package repository

import (
	"context"
	"testing"
	"time"

	"codeshin_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepository_CreateSubmissionVersions(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		h := &model.UserHistory{UserID: 7, ProblemID: 1, SolutionCode: "print(1)"}
		require.NoError(t, repo.CreateSubmission(ctx, h))
		assert.Equal(t, i, h.Version)
		assert.False(t, h.Timestamp.IsZero())
	}

	other := &model.UserHistory{UserID: 7, ProblemID: 2, SolutionCode: "x"}
	require.NoError(t, repo.CreateSubmission(ctx, other))
	assert.Equal(t, 1, other.Version)

	rows, err := repo.ListByUser(ctx, 7, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestHistoryRepository_AttemptHistory(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db,
		seedProblem{id: 1, difficulty: "Easy", topics: []string{"arrays", "sorting"}},
		seedProblem{id: 2, difficulty: "Hard", topics: []string{"graphs"}},
	)
	repo := NewHistoryRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateSubmission(ctx, &model.UserHistory{
		UserID: 7, ProblemID: 2, SolutionCode: "a", Timestamp: base.Add(time.Hour),
	}))
	require.NoError(t, repo.CreateSubmission(ctx, &model.UserHistory{
		UserID: 7, ProblemID: 1, SolutionCode: "b", IsPassed: true, Timestamp: base,
	}))
	require.NoError(t, repo.CreateSubmission(ctx, &model.UserHistory{
		UserID: 8, ProblemID: 1, SolutionCode: "c", Timestamp: base,
	}))

	attempts, err := repo.AttemptHistory(ctx, 7)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	assert.Equal(t, uint(1), attempts[0].ProblemID)
	assert.True(t, attempts[0].Passed)
	assert.Equal(t, []string{"arrays", "sorting"}, attempts[0].Topics)
	assert.True(t, base.Equal(attempts[0].Timestamp))

	assert.Equal(t, uint(2), attempts[1].ProblemID)
	assert.False(t, attempts[1].Passed)
	assert.Equal(t, []string{"graphs"}, attempts[1].Topics)
}
