package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// All 需要自动迁移的模型
func All() []interface{} {
	return []interface{}{
		&Topic{},
		&Problem{},
		&TopicProblem{},
		&UserTopicMastery{},
		&UserHistory{},
		&Recommendation{},
		&RecommendationWindow{},
		&RecommendationWindowSlot{},
	}
}
