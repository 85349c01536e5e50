package model

import (
	"strconv"
	"strings"
)

// Problem 题目
type Problem struct {
	BaseModel
	Title          string  `gorm:"size:255;not null" json:"title"`
	Description    string  `gorm:"type:longtext" json:"description"`
	IsPremium      bool    `gorm:"default:false" json:"isPremium"`
	Difficulty     string  `gorm:"size:50;not null" json:"difficulty"`
	AcceptanceRate float64 `json:"acceptanceRate"`
	URL            string  `gorm:"size:255" json:"url"`
	// SimilarQuestions 相似题目ID，逗号分隔
	SimilarQuestions string `gorm:"type:text" json:"similarQuestions"`
}

func (Problem) TableName() string {
	return "problems"
}

// SimilarIDs 解析相似题目列表，忽略无法识别的项并去重
func (p *Problem) SimilarIDs() []uint {
	return ParseIDList(p.SimilarQuestions)
}

// ParseIDList 解析逗号分隔的ID列表
func ParseIDList(s string) []uint {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	seen := make(map[uint]bool)
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || n == 0 {
			continue
		}
		id := uint(n)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// FormatIDList 与 ParseIDList 相反
func FormatIDList(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
