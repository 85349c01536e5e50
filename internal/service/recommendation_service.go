package service

import (
	"context"
	"fmt"
	"time"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/recommend"
	"codeshin_backend/internal/repository"
	"codeshin_backend/pkg/logger"
	"codeshin_backend/pkg/monitoring"
	"codeshin_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// learnerData 组合掌握度和提交历史两个仓储，实现 recommend.LearnerData
type learnerData struct {
	mastery *repository.MasteryRepository
	history *repository.HistoryRepository
}

func (l learnerData) TopicMastery(ctx context.Context, userID, problemID uint) (map[string]float64, error) {
	return l.mastery.TopicMastery(ctx, userID, problemID)
}

func (l learnerData) AttemptHistory(ctx context.Context, userID uint) ([]recommend.Attempt, error) {
	return l.history.AttemptHistory(ctx, userID)
}

func (l learnerData) LearningPath(ctx context.Context, userID uint) ([]string, error) {
	return l.mastery.LearningPath(ctx, userID)
}

type RecommendationService struct {
	Engine          *recommend.Engine
	ProblemRepo     *repository.ProblemRepository
	Recommendations *repository.RecommendationRepository
	timeout         time.Duration
}

func NewRecommendationService(
	problemRepo *repository.ProblemRepository,
	masteryRepo *repository.MasteryRepository,
	historyRepo *repository.HistoryRepository,
	recRepo *repository.RecommendationRepository,
	windows recommend.WindowStore,
	params recommend.Params,
	timeout time.Duration,
	log *zap.Logger,
) (*RecommendationService, error) {
	if log == nil {
		log = logger.Log
	}
	engine, err := recommend.NewEngine(
		newBreakerCatalog(problemRepo),
		learnerData{mastery: masteryRepo, history: historyRepo},
		windows,
		recRepo,
		log.Named("recommend"),
		params,
	)
	if err != nil {
		return nil, err
	}
	return &RecommendationService{
		Engine:          engine,
		ProblemRepo:     problemRepo,
		Recommendations: recRepo,
		timeout:         timeout,
	}, nil
}

// RecommendedProblem 推荐结果中的题目摘要
type RecommendedProblem struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	URL        string `json:"url,omitempty"`
}

type RecommendationView struct {
	ProblemIDs []uint               `json:"problemIds"`
	Problems   []RecommendedProblem `json:"problems"`
	Timestamp  time.Time            `json:"timestamp"`
}

// RunResult 一次推荐的摘要
type RunResult struct {
	RunID          string               `json:"runId"`
	ProblemIDs     []uint               `json:"problemIds"`
	Problems       []RecommendedProblem `json:"problems"`
	Weights        map[string]float64   `json:"weights"`
	DefaultWeights bool                 `json:"defaultWeights"`
	Candidates     int                  `json:"candidates"`
	SkippedCount   int                  `json:"skipped"`
	WindowSize     int                  `json:"windowSize"`
}

// Recommend 以 problemID 为当前题目为用户生成推荐，结果覆盖之前的推荐
func (s *RecommendationService) Recommend(ctx context.Context, userID, problemID uint) (*RunResult, error) {
	if _, err := s.ProblemRepo.FindByID(ctx, problemID); err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := tracing.StartSpan(ctx, "recommend.run",
		attribute.Int64("learner.id", int64(userID)),
		attribute.Int64("problem.id", int64(problemID)))
	start := time.Now()

	res, err := s.Engine.Recommend(ctx, userID, problemID)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case len(res.Recommendations) == 0:
		outcome = "empty"
	}
	var candidates, skipped int
	var fallback bool
	if res != nil {
		candidates, skipped, fallback = res.Candidates, res.Skipped, res.WeightsFallback
		span.SetAttributes(
			attribute.String("run.id", res.RunID),
			attribute.Int("candidates", res.Candidates),
			attribute.Int("skipped", res.Skipped))
	}
	monitoring.ObserveRecommendation(outcome, candidates, skipped, fallback, time.Since(start))
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	problems, err := s.describe(ctx, res.Recommendations)
	if err != nil {
		return nil, err
	}
	weights := make(map[string]float64, recommend.NumMetrics)
	for i, w := range res.Weights {
		weights[recommend.MetricNames[i]] = w
	}
	return &RunResult{
		RunID:          res.RunID,
		ProblemIDs:     res.Recommendations,
		Problems:       problems,
		Weights:        weights,
		DefaultWeights: res.WeightsFallback,
		Candidates:     res.Candidates,
		SkippedCount:   res.Skipped,
		WindowSize:     res.WindowSize,
	}, nil
}

// Get 读取用户当前保存的推荐
func (s *RecommendationService) Get(ctx context.Context, userID uint) (*RecommendationView, error) {
	rec, err := s.Recommendations.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := rec.ProblemIDs()
	problems, err := s.describe(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &RecommendationView{ProblemIDs: ids, Problems: problems, Timestamp: rec.Timestamp}, nil
}

// UpdateParams 配置热更新时替换引擎参数
func (s *RecommendationService) UpdateParams(p recommend.Params) error {
	return s.Engine.SetParams(p)
}

func (s *RecommendationService) describe(ctx context.Context, ids []uint) ([]RecommendedProblem, error) {
	// 已删除的题目直接略过
	rows, err := s.ProblemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load problems: %w", err)
	}
	out := make([]RecommendedProblem, 0, len(rows))
	for i := range rows {
		out = append(out, toRecommendedProblem(&rows[i]))
	}
	return out, nil
}

func toRecommendedProblem(p *model.Problem) RecommendedProblem {
	return RecommendedProblem{ID: p.ID, Title: p.Title, Difficulty: p.Difficulty, URL: p.URL}
}
