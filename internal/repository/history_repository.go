package repository

import (
	"context"
	"time"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/recommend"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryRepository struct {
	DB *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

// AttemptHistory 用户全部提交记录（按时间升序），附带题目的主题
func (r *HistoryRepository) AttemptHistory(ctx context.Context, userID uint) ([]recommend.Attempt, error) {
	db := r.DB.WithContext(ctx)
	var rows []model.UserHistory
	err := db.Select("id", "problem_id", "is_passed", "timestamp").
		Where("user_id = ?", userID).
		Order("timestamp asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	seen := make(map[uint]bool)
	for _, h := range rows {
		if !seen[h.ProblemID] {
			seen[h.ProblemID] = true
			ids = append(ids, h.ProblemID)
		}
	}
	topics, err := topicsByProblem(db, ids)
	if err != nil {
		return nil, err
	}

	attempts := make([]recommend.Attempt, len(rows))
	for i, h := range rows {
		attempts[i] = recommend.Attempt{
			ProblemID: h.ProblemID,
			Passed:    h.IsPassed,
			Timestamp: h.Timestamp,
			Topics:    topics[h.ProblemID],
		}
	}
	return attempts, nil
}

// CreateSubmission 保存提交记录，版本号为该用户该题目的最大版本 + 1
func (r *HistoryRepository) CreateSubmission(ctx context.Context, h *model.UserHistory) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest model.UserHistory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND problem_id = ?", h.UserID, h.ProblemID).
			Order("version desc").
			Limit(1).
			Find(&latest).Error
		if err != nil {
			return err
		}
		h.Version = latest.Version + 1
		if h.Timestamp.IsZero() {
			h.Timestamp = time.Now()
		}
		return tx.Create(h).Error
	})
}

// ListByUser 最近的提交记录
func (r *HistoryRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.UserHistory, error) {
	var rows []model.UserHistory
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc, id desc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
