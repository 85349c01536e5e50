package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrEvaluatorUnavailable 评测服务不可用（网络错误、空响应等）
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")
	// ErrInvalidEvaluation 评测结果无法解析
	ErrInvalidEvaluation = errors.New("invalid evaluation")
)

// Submission 一次代码提交的评测输入
type Submission struct {
	ProblemTitle       string
	ProblemDescription string
	Code               string
	Topics             []string
}

// Evaluation 评测结果，Ratings 为各主题掌握程度（0-100）
type Evaluation struct {
	Passed   bool               `json:"passed"`
	Feedback string             `json:"feedback"`
	Ratings  map[string]float64 `json:"ratings"`
	Score    *float64           `json:"score,omitempty"`
}

// Evaluator 代码评测
type Evaluator interface {
	Evaluate(ctx context.Context, sub Submission) (*Evaluation, error)
}

// StaticEvaluator 确定性评测器，用于测试和未配置 AI 时的离线运行。
// 非空代码视为通过，所有主题评分为 Rating；空代码不通过，评分为 0。
type StaticEvaluator struct {
	Rating float64
}

func NewStaticEvaluator(rating float64) *StaticEvaluator {
	return &StaticEvaluator{Rating: rating}
}

func (e *StaticEvaluator) Evaluate(ctx context.Context, sub Submission) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rating := e.Rating
	passed := strings.TrimSpace(sub.Code) != ""
	feedback := "Solution received."
	if !passed {
		rating = 0
		feedback = "No code was submitted, please submit your solution again."
	}
	ratings := make(map[string]float64, len(sub.Topics))
	for _, t := range sub.Topics {
		ratings[t] = rating
	}
	score := rating
	return &Evaluation{Passed: passed, Feedback: feedback, Ratings: ratings, Score: &score}, nil
}

// gradeReply 评测模型返回的 JSON 结构
type gradeReply struct {
	Passed   interface{}        `json:"Passed"`
	Feedback string             `json:"Feedback"`
	Ratings  map[string]float64 `json:"Ratings of related topics"`
	Score    *float64           `json:"score"`
}

// ParseEvaluation 解析评测模型的回复。
// 直接解析失败时截取第一个 '{' 到最后一个 '}' 之间的内容，补齐不成对的花括号后再解析。
func ParseEvaluation(reply string) (*Evaluation, error) {
	var raw gradeReply
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		start := strings.Index(reply, "{")
		end := strings.LastIndex(reply, "}")
		if start < 0 || end < start {
			return nil, fmt.Errorf("%w: no JSON object in reply", ErrInvalidEvaluation)
		}
		fixed := balanceBraces(reply[start : end+1])
		raw = gradeReply{}
		if err := json.Unmarshal([]byte(fixed), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEvaluation, err)
		}
	}

	ev := &Evaluation{
		Passed:   parsePassed(raw.Passed),
		Feedback: raw.Feedback,
		Ratings:  make(map[string]float64, len(raw.Ratings)),
	}
	for topic, v := range raw.Ratings {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		ev.Ratings[topic] = clampRating(v)
	}
	if raw.Score != nil {
		s := clampRating(*raw.Score)
		ev.Score = &s
	}
	return ev, nil
}

// balanceBraces 为无法配对的 '}' 在开头补 '{'，末尾补齐未闭合的 '{'
func balanceBraces(text string) string {
	var b strings.Builder
	open, extraClose := 0, 0
	for _, ch := range text {
		switch ch {
		case '{':
			open++
			b.WriteRune(ch)
		case '}':
			if open > 0 {
				open--
				b.WriteRune(ch)
			} else {
				extraClose++
				b.WriteRune(ch)
			}
		default:
			b.WriteRune(ch)
		}
	}
	return strings.Repeat("{", extraClose) + b.String() + strings.Repeat("}", open)
}

func parsePassed(v interface{}) bool {
	switch p := v.(type) {
	case bool:
		return p
	case string:
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "yes", "true", "passed":
			return true
		}
	}
	return false
}

func clampRating(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
