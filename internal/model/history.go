package model

import "time"

// UserHistory 用户提交历史，同一题目的多次提交以 Version 递增区分
type UserHistory struct {
	BaseModel
	UserID           uint      `gorm:"index:idx_user_problem;not null" json:"userId"`
	ProblemID        uint      `gorm:"index:idx_user_problem;not null" json:"problemId"`
	SolutionCode     string    `gorm:"type:text;not null" json:"solutionCode"`
	Version          int       `gorm:"default:1" json:"version"`
	Timestamp        time.Time `gorm:"index" json:"timestamp"`
	IsPassed         bool      `gorm:"default:false" json:"isPassed"`
	SubmissionStatus string    `gorm:"size:50" json:"submissionStatus"`
	Score            *float64  `json:"score"`
	Feedback         string    `gorm:"type:text" json:"feedback"`
}

func (UserHistory) TableName() string {
	return "user_history"
}
