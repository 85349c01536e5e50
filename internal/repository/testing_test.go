package repository

import (
	"testing"

	"codeshin_backend/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

type seedProblem struct {
	id         uint
	difficulty string
	similar    string
	topics     []string
}

// seedCatalog 写入主题和题目，题目在每个主题下的难度与题目本身一致
func seedCatalog(t *testing.T, db *gorm.DB, problems ...seedProblem) {
	t.Helper()
	topicIDs := make(map[string]uint)
	for _, p := range problems {
		require.NoError(t, db.Create(&model.Problem{
			BaseModel:        model.BaseModel{ID: p.id},
			Title:            "problem",
			Difficulty:       p.difficulty,
			SimilarQuestions: p.similar,
		}).Error)
		for _, name := range p.topics {
			id, ok := topicIDs[name]
			if !ok {
				topic := model.Topic{Name: name}
				require.NoError(t, db.Create(&topic).Error)
				id = topic.ID
				topicIDs[name] = id
			}
			require.NoError(t, db.Create(&model.TopicProblem{
				TopicID:    id,
				ProblemID:  p.id,
				Difficulty: p.difficulty,
			}).Error)
		}
	}
}
