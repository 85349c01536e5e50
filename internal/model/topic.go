package model

// Topic 知识主题（如 arrays、linked list）
type Topic struct {
	BaseModel
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Topic) TableName() string {
	return "topics"
}

// TopicProblem 关联表：主题 <-> 题目，Difficulty 为该题在此主题下的难度分桶
type TopicProblem struct {
	BaseModel
	TopicID    uint   `gorm:"uniqueIndex:idx_topic_problem;not null" json:"topicId"`
	ProblemID  uint   `gorm:"uniqueIndex:idx_topic_problem;index;not null" json:"problemId"`
	Difficulty string `gorm:"size:10;index" json:"difficulty"`
}

func (TopicProblem) TableName() string {
	return "topic_problems"
}
