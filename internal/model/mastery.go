package model

// MasteryNeverAttempted 未练习过的主题
const MasteryNeverAttempted = -1.0

// UserTopicMastery 用户对主题的掌握程度（0-100，-1 表示未练习）
type UserTopicMastery struct {
	BaseModel
	UserID       uint    `gorm:"uniqueIndex:idx_user_topic;not null" json:"userId"`
	TopicName    string  `gorm:"size:255;uniqueIndex:idx_user_topic;not null" json:"topicName"`
	MasteryLevel float64 `gorm:"not null" json:"masteryLevel"`
}

func (UserTopicMastery) TableName() string {
	return "user_topic_mastery"
}
