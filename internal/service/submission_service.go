package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/repository"
	"codeshin_backend/internal/util"
	"codeshin_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	StatusEvaluated   = "evaluated"
	StatusUnevaluated = "unevaluated"
)

type SubmitRequest struct {
	ProblemID    uint   `json:"problemId" binding:"required"`
	SolutionCode string `json:"solutionCode"`
}

type SubmitResult struct {
	Version         int                  `json:"version"`
	Passed          bool                 `json:"passed"`
	Evaluated       bool                 `json:"evaluated"`
	Score           *float64             `json:"score,omitempty"`
	Feedback        string               `json:"feedback"`
	Ratings         map[string]float64   `json:"ratings"`
	Recommendations []RecommendedProblem `json:"recommendations"`
	RecommendError  string               `json:"recommendError,omitempty"`
}

type SubmissionService struct {
	ProblemRepo     *repository.ProblemRepository
	MasteryRepo     *repository.MasteryRepository
	HistoryRepo     *repository.HistoryRepository
	Evaluator       Evaluator
	Recommendations *RecommendationService
}

func NewSubmissionService(
	problemRepo *repository.ProblemRepository,
	masteryRepo *repository.MasteryRepository,
	historyRepo *repository.HistoryRepository,
	evaluator Evaluator,
	recs *RecommendationService,
) *SubmissionService {
	return &SubmissionService{
		ProblemRepo:     problemRepo,
		MasteryRepo:     masteryRepo,
		HistoryRepo:     historyRepo,
		Evaluator:       evaluator,
		Recommendations: recs,
	}
}

// Submit 评测代码、记录提交、更新主题掌握程度，然后以该题为当前题目重新生成推荐
func (s *SubmissionService) Submit(ctx context.Context, userID uint, req SubmitRequest) (*SubmitResult, error) {
	if req.ProblemID == 0 || strings.TrimSpace(req.SolutionCode) == "" {
		return nil, util.ErrInvalidSubmission
	}
	problem, err := s.ProblemRepo.FindByID(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}
	topics, err := s.ProblemRepo.RelatedTopics(ctx, req.ProblemID)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}

	// 是否通过只由评测结果决定，未评测的提交记为未通过
	result := &SubmitResult{Ratings: map[string]float64{}}
	history := &model.UserHistory{
		UserID:           userID,
		ProblemID:        req.ProblemID,
		SolutionCode:     req.SolutionCode,
		Timestamp:        time.Now(),
		SubmissionStatus: StatusUnevaluated,
	}

	eval, err := s.Evaluator.Evaluate(ctx, Submission{
		ProblemTitle:       problem.Title,
		ProblemDescription: problem.Description,
		Code:               req.SolutionCode,
		Topics:             topics,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		logger.Log.Warn("代码评测失败，按未评测记录提交",
			zap.Uint("userID", userID),
			zap.Uint("problemID", req.ProblemID),
			zap.Error(err))
	} else {
		result.Evaluated = true
		result.Passed = eval.Passed
		result.Score = eval.Score
		result.Feedback = eval.Feedback
		result.Ratings = relatedRatings(eval.Ratings, topics)

		history.IsPassed = eval.Passed
		history.Score = eval.Score
		history.Feedback = eval.Feedback
		history.SubmissionStatus = StatusEvaluated
	}

	if err := s.HistoryRepo.CreateSubmission(ctx, history); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	result.Version = history.Version

	if result.Evaluated {
		if err := s.MasteryRepo.Upsert(ctx, userID, result.Ratings); err != nil {
			return nil, fmt.Errorf("update mastery: %w", err)
		}
	}

	// 推荐失败不影响提交本身
	result.Recommendations = []RecommendedProblem{}
	run, err := s.Recommendations.Recommend(ctx, userID, req.ProblemID)
	if err != nil {
		logger.Log.Error("生成推荐失败",
			zap.Uint("userID", userID),
			zap.Uint("problemID", req.ProblemID),
			zap.Error(err))
		result.RecommendError = "recommendation unavailable"
		return result, nil
	}
	result.Recommendations = run.Problems
	return result, nil
}

// History 用户最近的提交
func (s *SubmissionService) History(ctx context.Context, userID uint, limit int) ([]model.UserHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.HistoryRepo.ListByUser(ctx, userID, limit)
}

// relatedRatings 只保留题目相关主题的评分
func relatedRatings(ratings map[string]float64, topics []string) map[string]float64 {
	byLower := make(map[string]float64, len(ratings))
	for name, v := range ratings {
		byLower[strings.ToLower(strings.TrimSpace(name))] = v
	}
	out := make(map[string]float64, len(topics))
	for _, t := range topics {
		if v, ok := byLower[strings.ToLower(t)]; ok {
			out[t] = clampRating(v)
		}
	}
	return out
}
