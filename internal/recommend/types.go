package recommend

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Metric indexes into MetricVector and WeightVector.
const (
	MetricSimilarity = iota
	MetricCommonTopics
	MetricDifficultyMatch
	MetricKnowledgeGap
	MetricInterest
	MetricLearningPath

	NumMetrics
)

// MetricNames is used for logging and metric labels, in vector order.
var MetricNames = [NumMetrics]string{
	"similarity",
	"common_topics",
	"difficulty_match",
	"knowledge_gap",
	"interest",
	"learning_path_match",
}

// NeverAttempted is the mastery sentinel for a topic the learner has not practised.
const NeverAttempted = -1.0

var ErrDegenerateWindow = errors.New("degenerate metric window")

// MetricVector holds the six per-candidate scores of one scoring run.
type MetricVector [NumMetrics]float64

// WeightVector holds one non-negative weight per metric; the components sum to 1.
type WeightVector [NumMetrics]float64

// DefaultWeights is used while a learner has no scoring history.
var DefaultWeights = WeightVector{0.25, 0.20, 0.15, 0.15, 0.15, 0.10}

// Dot returns the weighted sum of m.
func (w WeightVector) Dot(m MetricVector) float64 {
	var total float64
	for i := range w {
		total += w[i] * m[i]
	}
	return total
}

// Sum returns the sum of all components.
func (w WeightVector) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Difficulty is the catalog difficulty of a problem as an ordinal.
type Difficulty int

const (
	DifficultyUnknown Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
)

// ParseDifficulty maps the catalog labels Easy/Medium/Hard onto ordinals.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	}
	return DifficultyUnknown
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return "Unknown"
}

// Level is a discretized mastery value: 1 low, 2 medium, 3 high.
type Level int

const (
	LevelLow    Level = 1
	LevelMedium Level = 2
	LevelHigh   Level = 3
)

// MasteryLevel thresholds a raw mastery value at 1/3 and 2/3 of scale.
// Negative values (the NeverAttempted sentinel) map to LevelLow.
func MasteryLevel(value, scale float64) Level {
	if value < 0 || scale <= 0 {
		return LevelLow
	}
	ratio := value / scale
	switch {
	case ratio < 1.0/3.0:
		return LevelLow
	case ratio < 2.0/3.0:
		return LevelMedium
	}
	return LevelHigh
}

// Attempt is one past submission of a learner.
type Attempt struct {
	ProblemID uint
	Passed    bool
	Timestamp time.Time
	Topics    []string
}

// Catalog is the read-only problem catalog.
type Catalog interface {
	RelatedTopics(ctx context.Context, problemID uint) ([]string, error)
	SimilarProblems(ctx context.Context, problemID uint) ([]uint, error)
	ProblemDifficulty(ctx context.Context, problemID uint) (Difficulty, error)
	// DifficultyBucket returns the topic's problems grouped by difficulty level.
	DifficultyBucket(ctx context.Context, topic string) (map[Level][]uint, error)
}

// LearnerData is the read-only view over a learner's mastery and attempts.
type LearnerData interface {
	// TopicMastery returns the learner's mastery for every topic related to problemID.
	// Topics without a record carry NeverAttempted.
	TopicMastery(ctx context.Context, learnerID, problemID uint) (map[string]float64, error)
	AttemptHistory(ctx context.Context, learnerID uint) ([]Attempt, error)
	// LearningPath lists the learner's topics from least to most mastered.
	LearningPath(ctx context.Context, learnerID uint) ([]string, error)
}

// WindowStore persists each learner's trailing metric window.
type WindowStore interface {
	// Advance appends fresh to the learner's window, evicting the oldest entries past
	// capacity, and returns the resulting window oldest first. Every returned vector is
	// on scale: entries stored under another scale are converted first. Concurrent calls
	// for the same learner are serialized.
	Advance(ctx context.Context, learnerID uint, fresh []MetricVector, capacity int, scale float64) ([]MetricVector, error)
}

// RecommendationSink stores the final list, replacing any previous one.
type RecommendationSink interface {
	SaveRecommendation(ctx context.Context, learnerID uint, problemIDs []uint) error
}

// Scored is a candidate with its metrics and final score.
type Scored struct {
	ProblemID uint
	Metrics   MetricVector
	Score     float64
}

// Result describes one recommendation run.
type Result struct {
	RunID           string
	LearnerID       uint
	ProblemID       uint
	Recommendations []uint
	Ranked          []Scored
	Weights         WeightVector
	WeightsFallback bool
	Candidates      int
	Skipped         int
	WindowSize      int
}
