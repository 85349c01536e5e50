package recommend

import (
	"context"
	"fmt"
	"math"
	"time"
)

// currentProblem is what the engine knows about the problem the learner just worked on.
type currentProblem struct {
	ID      uint
	Topics  []string
	Levels  map[string]Level
	Similar map[uint]bool
	// SimilarList keeps catalog order for logging.
	SimilarList []uint
}

// meanLevel is the average mastery level over the current problem's topics.
func (c *currentProblem) meanLevel() (float64, bool) {
	if len(c.Topics) == 0 {
		return 0, false
	}
	var total float64
	for _, t := range c.Topics {
		total += float64(c.Levels[t])
	}
	return total / float64(len(c.Topics)), true
}

// InterestProfile is the time-decayed attempt weight accumulated per topic.
type InterestProfile struct {
	Weights map[string]float64
	Max     float64
}

// BuildInterestProfile weighs every attempt by base^days and accumulates the weight on
// each of the attempt's topics.
func BuildInterestProfile(attempts []Attempt, now time.Time, base float64) InterestProfile {
	p := InterestProfile{Weights: make(map[string]float64)}
	for _, a := range attempts {
		days := now.Sub(a.Timestamp).Hours() / 24
		if days < 0 {
			days = 0
		}
		w := math.Pow(base, days)
		for _, t := range a.Topics {
			p.Weights[t] += w
		}
	}
	for _, w := range p.Weights {
		if w > p.Max {
			p.Max = w
		}
	}
	return p
}

func similarityScore(inSimilar bool, scale float64) float64 {
	if inSimilar {
		return scale
	}
	return 0
}

func commonTopicsScore(candTopics []string, cur *currentProblem, scale float64) float64 {
	var shared, poor int
	for _, t := range candTopics {
		lvl, ok := cur.Levels[t]
		if !ok {
			continue
		}
		shared++
		if lvl < LevelHigh {
			poor++
		}
	}
	if shared == 0 {
		return 0
	}
	return float64(poor) / float64(shared) * scale
}

func difficultyMatchScore(d Difficulty, cur *currentProblem, scale float64) float64 {
	if d == DifficultyUnknown {
		return 0
	}
	mean, ok := cur.meanLevel()
	if !ok {
		return 0
	}
	diff := math.Abs(float64(d)/3.0 - mean/3.0)
	return math.Max(0, 1-diff/2) * scale
}

func knowledgeGapScore(candTopics []string, mastery map[string]float64, masteryScale, scale float64) float64 {
	if len(candTopics) == 0 {
		return 0
	}
	var poor int
	for _, t := range candTopics {
		v, ok := mastery[t]
		if !ok {
			v = NeverAttempted
		}
		if MasteryLevel(v, masteryScale) < LevelHigh {
			poor++
		}
	}
	return float64(poor) / float64(len(candTopics)) * scale
}

func interestScore(candTopics []string, profile InterestProfile, scale float64) float64 {
	var total float64
	var seen bool
	for _, t := range candTopics {
		if w, ok := profile.Weights[t]; ok {
			total += w
			seen = true
		}
	}
	if !seen || profile.Max <= 0 {
		return scale / 2
	}
	return math.Min(1, total/profile.Max) * scale
}

func learningPathScore(candTopics []string, path map[string]bool, scale float64) float64 {
	if len(candTopics) == 0 {
		return 0
	}
	var matching int
	for _, t := range candTopics {
		if path[t] {
			matching++
		}
	}
	return float64(matching) / float64(len(candTopics)) * scale
}

// scorer computes metric vectors for one run.
type scorer struct {
	catalog   Catalog
	learners  LearnerData
	params    Params
	learnerID uint
	current   *currentProblem
	interest  InterestProfile
	path      map[string]bool
}

// score fetches the candidate's topics, mastery and difficulty and computes its metrics.
// Any lookup failure is returned so the caller can skip the candidate.
func (s *scorer) score(ctx context.Context, candidateID uint) (MetricVector, error) {
	var m MetricVector

	topics, err := s.catalog.RelatedTopics(ctx, candidateID)
	if err != nil {
		return m, fmt.Errorf("related topics: %w", err)
	}
	mastery, err := s.learners.TopicMastery(ctx, s.learnerID, candidateID)
	if err != nil {
		return m, fmt.Errorf("topic mastery: %w", err)
	}
	difficulty, err := s.catalog.ProblemDifficulty(ctx, candidateID)
	if err != nil {
		return m, fmt.Errorf("problem difficulty: %w", err)
	}

	scale := s.params.ScoreScale
	m[MetricSimilarity] = similarityScore(s.current.Similar[candidateID], scale)
	m[MetricCommonTopics] = commonTopicsScore(topics, s.current, scale)
	m[MetricDifficultyMatch] = difficultyMatchScore(difficulty, s.current, scale)
	m[MetricKnowledgeGap] = knowledgeGapScore(topics, mastery, s.params.MasteryScale, scale)
	m[MetricInterest] = interestScore(topics, s.interest, scale)
	m[MetricLearningPath] = learningPathScore(topics, s.path, scale)
	return m, nil
}
