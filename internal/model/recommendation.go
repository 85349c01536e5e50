package model

import "time"

// Recommendation 用户当前的推荐列表，每次推荐整体覆盖
type Recommendation struct {
	BaseModel
	UserID uint `gorm:"uniqueIndex;not null" json:"userId"`
	// RecommendedProblems 推荐题目ID，逗号分隔，按得分降序
	RecommendedProblems string    `gorm:"type:text;not null" json:"-"`
	Timestamp           time.Time `json:"timestamp"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

func (r *Recommendation) ProblemIDs() []uint {
	ids := ParseIDList(r.RecommendedProblems)
	if ids == nil {
		return []uint{}
	}
	return ids
}

// RecommendationWindow 每个用户的指标窗口头，Seq 为已写入的向量总数。
// Scale 为窗口内向量的指标上限，为 0 表示未知
type RecommendationWindow struct {
	BaseModel
	UserID   uint    `gorm:"uniqueIndex;not null" json:"userId"`
	Seq      uint64  `gorm:"not null;default:0" json:"seq"`
	Capacity int     `gorm:"not null" json:"capacity"`
	Scale    float64 `gorm:"not null;default:0" json:"scale"`
}

func (RecommendationWindow) TableName() string {
	return "recommendation_windows"
}

// RecommendationWindowSlot 环形窗口的一个槽位，Slot = Seq % Capacity
type RecommendationWindowSlot struct {
	ID      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  uint      `gorm:"uniqueIndex:idx_window_slot;not null" json:"userId"`
	Slot    int       `gorm:"uniqueIndex:idx_window_slot;not null" json:"slot"`
	Seq     uint64    `gorm:"not null" json:"seq"`
	Metrics []float64 `gorm:"serializer:json;type:text" json:"metrics"`
}

func (RecommendationWindowSlot) TableName() string {
	return "recommendation_window_slots"
}
