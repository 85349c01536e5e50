package service

import (
	"context"
	"errors"
	"time"

	"codeshin_backend/internal/recommend"
	"codeshin_backend/internal/util"
	"codeshin_backend/pkg/logger"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// breakerCatalog 为题目目录查询加熔断：数据库连续失败时直接拒绝，
// 被拒绝的候选题在打分阶段跳过，不拖慢整次推荐。
type breakerCatalog struct {
	next recommend.Catalog
	cb   *gobreaker.CircuitBreaker[any]
}

func newBreakerCatalog(next recommend.Catalog) *breakerCatalog {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 题目不存在或请求被取消不算故障
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, util.ErrProblemNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &breakerCatalog{next: next, cb: cb}
}

func (c *breakerCatalog) RelatedTopics(ctx context.Context, problemID uint) ([]string, error) {
	v, err := c.cb.Execute(func() (any, error) { return c.next.RelatedTopics(ctx, problemID) })
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (c *breakerCatalog) SimilarProblems(ctx context.Context, problemID uint) ([]uint, error) {
	v, err := c.cb.Execute(func() (any, error) { return c.next.SimilarProblems(ctx, problemID) })
	if err != nil {
		return nil, err
	}
	return v.([]uint), nil
}

func (c *breakerCatalog) ProblemDifficulty(ctx context.Context, problemID uint) (recommend.Difficulty, error) {
	v, err := c.cb.Execute(func() (any, error) { return c.next.ProblemDifficulty(ctx, problemID) })
	if err != nil {
		return recommend.DifficultyUnknown, err
	}
	return v.(recommend.Difficulty), nil
}

func (c *breakerCatalog) DifficultyBucket(ctx context.Context, topic string) (map[recommend.Level][]uint, error) {
	v, err := c.cb.Execute(func() (any, error) { return c.next.DifficultyBucket(ctx, topic) })
	if err != nil {
		return nil, err
	}
	return v.(map[recommend.Level][]uint), nil
}

func (c *breakerCatalog) State() gobreaker.State {
	return c.cb.State()
}
