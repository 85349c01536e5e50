package repository

import (
	"context"
	"errors"
	"time"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

// SaveRecommendation 覆盖用户的推荐列表（空列表同样写入）
func (r *RecommendationRepository) SaveRecommendation(ctx context.Context, userID uint, problemIDs []uint) error {
	now := time.Now()
	rec := model.Recommendation{
		UserID:              userID,
		RecommendedProblems: model.FormatIDList(problemIDs),
		Timestamp:           now,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"recommended_problems", "timestamp", "updated_at"}),
	}).Create(&rec).Error
}

func (r *RecommendationRepository) FindByUser(ctx context.Context, userID uint) (*model.Recommendation, error) {
	var rec model.Recommendation
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRecommendationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
