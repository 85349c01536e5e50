package recommend

import (
	"context"
	"errors"
	"sync"
)

var errLookup = errors.New("lookup failed")

type fakeProblem struct {
	topics     []string
	similar    []uint
	difficulty Difficulty
}

type fakeCatalog struct {
	problems map[uint]fakeProblem
	buckets  map[string]map[Level][]uint
	// failing candidates return errLookup from RelatedTopics.
	failing map[uint]bool

	mu          sync.Mutex
	bucketCalls []string
}

func (c *fakeCatalog) RelatedTopics(_ context.Context, id uint) ([]string, error) {
	if c.failing[id] {
		return nil, errLookup
	}
	return c.problems[id].topics, nil
}

func (c *fakeCatalog) SimilarProblems(_ context.Context, id uint) ([]uint, error) {
	return c.problems[id].similar, nil
}

func (c *fakeCatalog) ProblemDifficulty(_ context.Context, id uint) (Difficulty, error) {
	return c.problems[id].difficulty, nil
}

func (c *fakeCatalog) DifficultyBucket(_ context.Context, topic string) (map[Level][]uint, error) {
	c.mu.Lock()
	c.bucketCalls = append(c.bucketCalls, topic)
	c.mu.Unlock()
	return c.buckets[topic], nil
}

type fakeLearners struct {
	catalog    *fakeCatalog
	mastery    map[string]float64
	attempts   []Attempt
	path       []string
	historyErr error
}

func (l *fakeLearners) TopicMastery(_ context.Context, _ uint, problemID uint) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, t := range l.catalog.problems[problemID].topics {
		v, ok := l.mastery[t]
		if !ok {
			v = NeverAttempted
		}
		out[t] = v
	}
	return out, nil
}

func (l *fakeLearners) AttemptHistory(context.Context, uint) ([]Attempt, error) {
	if l.historyErr != nil {
		return nil, l.historyErr
	}
	return l.attempts, nil
}

func (l *fakeLearners) LearningPath(context.Context, uint) ([]string, error) {
	return l.path, nil
}

type fakeSink struct {
	mu    sync.Mutex
	saved map[uint][]uint
	calls int
	err   error
}

func (s *fakeSink) SaveRecommendation(_ context.Context, learnerID uint, ids []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = make(map[uint][]uint)
	}
	s.saved[learnerID] = append([]uint(nil), ids...)
	return nil
}

type failingWindows struct{}

func (failingWindows) Advance(context.Context, uint, []MetricVector, int, float64) ([]MetricVector, error) {
	return nil, errLookup
}
