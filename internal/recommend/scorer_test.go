package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasteryLevel(t *testing.T) {
	assert.Equal(t, LevelLow, MasteryLevel(NeverAttempted, 100))
	assert.Equal(t, LevelLow, MasteryLevel(0, 100))
	assert.Equal(t, LevelLow, MasteryLevel(20, 100))
	assert.Equal(t, LevelMedium, MasteryLevel(50, 100))
	assert.Equal(t, LevelHigh, MasteryLevel(70, 100))
	assert.Equal(t, LevelHigh, MasteryLevel(100, 100))
	assert.Equal(t, LevelMedium, MasteryLevel(0.5, 1))
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, DifficultyEasy, ParseDifficulty("Easy"))
	assert.Equal(t, DifficultyMedium, ParseDifficulty(" medium "))
	assert.Equal(t, DifficultyHard, ParseDifficulty("HARD"))
	assert.Equal(t, DifficultyUnknown, ParseDifficulty("extreme"))
}

func TestSimilarityScore(t *testing.T) {
	assert.Equal(t, 100.0, similarityScore(true, 100))
	assert.Equal(t, 0.0, similarityScore(false, 100))
}

func TestCommonTopicsScore(t *testing.T) {
	cur := &currentProblem{
		Topics: []string{"arrays", "sorting", "graphs"},
		Levels: map[string]Level{"arrays": LevelLow, "sorting": LevelHigh, "graphs": LevelMedium},
	}
	assert.InDelta(t, 50.0, commonTopicsScore([]string{"arrays", "sorting", "strings"}, cur, 100), 1e-9)
	assert.InDelta(t, 100.0, commonTopicsScore([]string{"graphs"}, cur, 100), 1e-9)
	assert.Equal(t, 0.0, commonTopicsScore([]string{"strings"}, cur, 100))
}

func TestDifficultyMatchScore(t *testing.T) {
	cur := &currentProblem{
		Topics: []string{"arrays", "sorting"},
		Levels: map[string]Level{"arrays": LevelLow, "sorting": LevelMedium},
	}
	// mean level 1.5 -> 0.5, easy -> 1/3
	assert.InDelta(t, (1-(0.5-1.0/3.0)/2)*100, difficultyMatchScore(DifficultyEasy, cur, 100), 1e-9)
	assert.InDelta(t, 100.0, difficultyMatchScore(DifficultyHard, &currentProblem{
		Topics: []string{"arrays"},
		Levels: map[string]Level{"arrays": LevelHigh},
	}, 100), 1e-9)
	assert.Equal(t, 0.0, difficultyMatchScore(DifficultyUnknown, cur, 100))
	assert.Equal(t, 0.0, difficultyMatchScore(DifficultyEasy, &currentProblem{}, 100))
}

func TestKnowledgeGapScore(t *testing.T) {
	mastery := map[string]float64{"arrays": 90, "sorting": 10}
	assert.InDelta(t, 100.0*2/3, knowledgeGapScore([]string{"arrays", "sorting", "graphs"}, mastery, 100, 100), 1e-9)
	assert.Equal(t, 0.0, knowledgeGapScore(nil, mastery, 100, 100))
	assert.Equal(t, 0.0, knowledgeGapScore([]string{"arrays"}, mastery, 100, 100))
}

func TestBuildInterestProfile(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	attempts := []Attempt{
		{ProblemID: 1, Timestamp: now, Topics: []string{"arrays"}},
		{ProblemID: 2, Timestamp: now.Add(-48 * time.Hour), Topics: []string{"arrays", "graphs"}},
		{ProblemID: 3, Timestamp: now.Add(time.Hour), Topics: []string{"graphs"}},
	}

	p := BuildInterestProfile(attempts, now, 0.9)

	assert.InDelta(t, 1+0.81, p.Weights["arrays"], 1e-9)
	assert.InDelta(t, 0.81+1, p.Weights["graphs"], 1e-9)
	assert.InDelta(t, 1.81, p.Max, 1e-9)
}

func TestInterestScore(t *testing.T) {
	profile := InterestProfile{Weights: map[string]float64{"arrays": 2, "graphs": 1}, Max: 2}

	assert.InDelta(t, 50.0, interestScore([]string{"graphs"}, profile, 100), 1e-9)
	assert.InDelta(t, 100.0, interestScore([]string{"arrays", "graphs"}, profile, 100), 1e-9)
	assert.Equal(t, 50.0, interestScore([]string{"strings"}, profile, 100))
	assert.Equal(t, 50.0, interestScore([]string{"arrays"}, InterestProfile{}, 100))
}

func TestLearningPathScore(t *testing.T) {
	path := map[string]bool{"arrays": true, "graphs": true}
	assert.InDelta(t, 50.0, learningPathScore([]string{"arrays", "strings"}, path, 100), 1e-9)
	assert.Equal(t, 0.0, learningPathScore(nil, path, 100))
}

func TestScorer_Score(t *testing.T) {
	catalog := &fakeCatalog{problems: map[uint]fakeProblem{
		10: {topics: []string{"arrays", "graphs"}, difficulty: DifficultyMedium},
	}}
	learners := &fakeLearners{catalog: catalog, mastery: map[string]float64{"arrays": 80}}
	s := &scorer{
		catalog:   catalog,
		learners:  learners,
		params:    DefaultParams(),
		learnerID: 1,
		current: &currentProblem{
			Topics:  []string{"arrays"},
			Levels:  map[string]Level{"arrays": LevelHigh},
			Similar: map[uint]bool{10: true},
		},
		interest: InterestProfile{Weights: map[string]float64{}},
		path:     map[string]bool{"graphs": true},
	}

	m, err := s.score(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 100.0, m[MetricSimilarity])
	assert.Equal(t, 0.0, m[MetricCommonTopics])
	assert.InDelta(t, (1-(1-2.0/3.0)/2)*100, m[MetricDifficultyMatch], 1e-9)
	assert.InDelta(t, 50.0, m[MetricKnowledgeGap], 1e-9)
	assert.Equal(t, 50.0, m[MetricInterest])
	assert.InDelta(t, 50.0, m[MetricLearningPath], 1e-9)
}

func TestScorer_LookupFailure(t *testing.T) {
	catalog := &fakeCatalog{failing: map[uint]bool{10: true}}
	s := &scorer{
		catalog:  catalog,
		learners: &fakeLearners{catalog: catalog},
		params:   DefaultParams(),
		current:  &currentProblem{},
	}

	_, err := s.score(context.Background(), 10)
	assert.ErrorIs(t, err, errLookup)
}
