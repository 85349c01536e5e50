package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine produces recommendations for one learner at a time. It is safe for concurrent use.
type Engine struct {
	catalog  Catalog
	learners LearnerData
	windows  WindowStore
	sink     RecommendationSink
	log      *zap.Logger
	now      func() time.Time

	params atomic.Pointer[Params]
}

type Option func(*Engine)

// WithClock replaces time.Now for the interest decay.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(catalog Catalog, learners LearnerData, windows WindowStore, sink RecommendationSink,
	log *zap.Logger, params Params, opts ...Option) (*Engine, error) {
	if catalog == nil || learners == nil || windows == nil || sink == nil {
		return nil, errors.New("recommend: catalog, learner data, window store and sink are required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		catalog:  catalog,
		learners: learners,
		windows:  windows,
		sink:     sink,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.params.Store(&params)
	return e, nil
}

// Params returns the parameters the next run will use.
func (e *Engine) Params() Params {
	return *e.params.Load()
}

// SetParams swaps the parameters for subsequent runs. Runs in flight keep their snapshot.
func (e *Engine) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.params.Store(&p)
	return nil
}

// Recommend generates, scores and ranks candidates for the learner relative to problemID,
// stores the result and returns it. Data problems degrade the result; only a failure to
// store the recommendation is returned as an error.
func (e *Engine) Recommend(ctx context.Context, learnerID, problemID uint) (*Result, error) {
	params := e.Params()
	res := &Result{
		RunID:     uuid.NewString(),
		LearnerID: learnerID,
		ProblemID: problemID,
		Weights:   params.DefaultWeights,
	}
	log := e.log.With(
		zap.String("run_id", res.RunID),
		zap.Uint("learner_id", learnerID),
		zap.Uint("problem_id", problemID))

	if err := e.run(ctx, log, params, res); err != nil {
		log.Warn("Recommendation degraded to empty list", zap.Error(err))
		res.Recommendations = nil
		res.Ranked = nil
	}

	if res.Recommendations == nil {
		res.Recommendations = []uint{}
	}
	if err := e.sink.SaveRecommendation(ctx, learnerID, res.Recommendations); err != nil {
		log.Error("Failed to save recommendation", zap.Error(err))
		return res, fmt.Errorf("save recommendation: %w", err)
	}

	log.Info("Recommendation generated",
		zap.Uints("recommendations", res.Recommendations),
		zap.Int("candidates", res.Candidates),
		zap.Int("skipped", res.Skipped),
		zap.Int("window", res.WindowSize),
		zap.Bool("default_weights", res.WeightsFallback))
	return res, nil
}

func (e *Engine) run(ctx context.Context, log *zap.Logger, params Params, res *Result) error {
	attempts, err := e.learners.AttemptHistory(ctx, res.LearnerID)
	if err != nil {
		return fmt.Errorf("attempt history: %w", err)
	}
	cur, err := e.loadCurrent(ctx, res.LearnerID, res.ProblemID, params)
	if err != nil {
		return err
	}

	path, err := e.learners.LearningPath(ctx, res.LearnerID)
	if err != nil {
		log.Warn("Learning path unavailable", zap.Error(err))
		path = nil
	}
	pathSet := make(map[string]bool, len(path))
	for _, t := range path {
		pathSet[t] = true
	}

	passed := make(map[uint]bool)
	for _, a := range attempts {
		if a.Passed {
			passed[a.ProblemID] = true
		}
	}

	pool := generateCandidates(ctx, e.catalog, cur, params.SimilarThreshold, log)
	candidates := pool[:0]
	for _, id := range pool {
		if !passed[id] {
			candidates = append(candidates, id)
		}
	}
	res.Candidates = len(candidates)
	if len(candidates) == 0 {
		return nil
	}

	s := &scorer{
		catalog:   e.catalog,
		learners:  e.learners,
		params:    params,
		learnerID: res.LearnerID,
		current:   cur,
		interest:  BuildInterestProfile(attempts, e.now(), params.DecayBase),
		path:      pathSet,
	}
	scored := e.scoreAll(ctx, log, s, candidates)
	res.Skipped = len(candidates) - len(scored)
	if len(scored) == 0 {
		return nil
	}

	fresh := make([]MetricVector, len(scored))
	for i, c := range scored {
		fresh[i] = c.Metrics
	}
	window, err := e.windows.Advance(ctx, res.LearnerID, fresh, params.WindowSize, params.ScoreScale)
	if err != nil {
		log.Warn("Metric window unavailable, using default weights", zap.Error(err))
		res.WeightsFallback = true
	} else {
		res.WindowSize = len(window)
		w, err := DeriveWeights(window, params.Rho, params.DefaultWeights)
		if err != nil {
			log.Warn("Weight derivation failed, using default weights", zap.Error(err))
			res.WeightsFallback = true
		}
		res.Weights = w
	}

	res.Ranked = Rank(scored, res.Weights)
	res.Recommendations = Top(res.Ranked, params.MaxResults)
	return nil
}

func (e *Engine) loadCurrent(ctx context.Context, learnerID, problemID uint, params Params) (*currentProblem, error) {
	topics, err := e.catalog.RelatedTopics(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("current problem topics: %w", err)
	}
	similar, err := e.catalog.SimilarProblems(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("current problem similar list: %w", err)
	}
	mastery, err := e.learners.TopicMastery(ctx, learnerID, problemID)
	if err != nil {
		return nil, fmt.Errorf("current problem mastery: %w", err)
	}

	cur := &currentProblem{
		ID:          problemID,
		Topics:      topics,
		Levels:      make(map[string]Level, len(topics)),
		Similar:     make(map[uint]bool, len(similar)),
		SimilarList: similar,
	}
	for _, t := range topics {
		v, ok := mastery[t]
		if !ok {
			v = NeverAttempted
		}
		cur.Levels[t] = MasteryLevel(v, params.MasteryScale)
	}
	for _, id := range similar {
		cur.Similar[id] = true
	}
	return cur, nil
}

// scoreAll scores candidates concurrently and returns the successful ones in input order.
func (e *Engine) scoreAll(ctx context.Context, log *zap.Logger, s *scorer, candidates []uint) []Scored {
	type outcome struct {
		metrics MetricVector
		ok      bool
	}
	outcomes := make([]outcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.params.Concurrency)
	for i, id := range candidates {
		i, id := i, id
		g.Go(func() error {
			m, err := s.score(gctx, id)
			if err != nil {
				log.Warn("Skipping candidate", zap.Uint("candidate_id", id), zap.Error(err))
				return nil
			}
			outcomes[i] = outcome{metrics: m, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	scored := make([]Scored, 0, len(candidates))
	for i, o := range outcomes {
		if o.ok {
			scored = append(scored, Scored{ProblemID: candidates[i], Metrics: o.metrics})
		}
	}
	return scored
}
