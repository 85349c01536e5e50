package repository

import (
	"context"
	"sort"
	"time"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/recommend"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

// TopicMasteryView 某个主题的掌握程度，未练习为 -1
type TopicMasteryView struct {
	Topic   string  `json:"topic"`
	Mastery float64 `json:"mastery"`
}

// TopicMastery 返回用户对题目相关主题的掌握程度，无记录的主题为 -1
func (r *MasteryRepository) TopicMastery(ctx context.Context, userID, problemID uint) (map[string]float64, error) {
	db := r.DB.WithContext(ctx)
	topics, err := problemTopics(db, problemID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(topics))
	if len(topics) == 0 {
		return out, nil
	}
	for _, t := range topics {
		out[t] = recommend.NeverAttempted
	}

	var records []model.UserTopicMastery
	err = db.Where("user_id = ? AND topic_name IN ?", userID, topics).Find(&records).Error
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.TopicName] = rec.MasteryLevel
	}
	return out, nil
}

// All 返回目录中每个主题的掌握程度，按主题名排序
func (r *MasteryRepository) All(ctx context.Context, userID uint) ([]TopicMasteryView, error) {
	db := r.DB.WithContext(ctx)
	var topics []string
	if err := db.Model(&model.Topic{}).Order("name asc").Pluck("name", &topics).Error; err != nil {
		return nil, err
	}

	var records []model.UserTopicMastery
	if err := db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, err
	}
	levels := make(map[string]float64, len(records))
	for _, rec := range records {
		levels[rec.TopicName] = rec.MasteryLevel
	}

	views := make([]TopicMasteryView, 0, len(topics))
	for _, t := range topics {
		v, ok := levels[t]
		if !ok {
			v = recommend.NeverAttempted
		}
		views = append(views, TopicMasteryView{Topic: t, Mastery: v})
	}
	return views, nil
}

// LearningPath 所有主题按掌握程度升序，相同掌握程度按名称排序
func (r *MasteryRepository) LearningPath(ctx context.Context, userID uint) ([]string, error) {
	views, err := r.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Mastery < views[j].Mastery
	})
	path := make([]string, len(views))
	for i, v := range views {
		path[i] = v.Topic
	}
	return path, nil
}

// Upsert 写入评测给出的主题评分
func (r *MasteryRepository) Upsert(ctx context.Context, userID uint, ratings map[string]float64) error {
	if len(ratings) == 0 {
		return nil
	}
	names := make([]string, 0, len(ratings))
	for name := range ratings {
		names = append(names, name)
	}
	sort.Strings(names)

	now := time.Now()
	records := make([]model.UserTopicMastery, 0, len(names))
	for _, name := range names {
		records = append(records, model.UserTopicMastery{
			BaseModel:    model.BaseModel{CreatedAt: now, UpdatedAt: now},
			UserID:       userID,
			TopicName:    name,
			MasteryLevel: ratings[name],
		})
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "topic_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"mastery_level", "updated_at"}),
	}).Create(&records).Error
}

// InitTopics 为用户创建所有主题的 -1 记录，已有记录保持不变
func (r *MasteryRepository) InitTopics(ctx context.Context, userID uint) (int64, error) {
	db := r.DB.WithContext(ctx)
	var topics []string
	if err := db.Model(&model.Topic{}).Order("name asc").Pluck("name", &topics).Error; err != nil {
		return 0, err
	}
	if len(topics) == 0 {
		return 0, nil
	}
	records := make([]model.UserTopicMastery, 0, len(topics))
	for _, t := range topics {
		records = append(records, model.UserTopicMastery{
			UserID:       userID,
			TopicName:    t,
			MasteryLevel: model.MasteryNeverAttempted,
		})
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records)
	return result.RowsAffected, result.Error
}
