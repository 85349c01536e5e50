package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIDList(t *testing.T) {
	assert.Nil(t, ParseIDList(""))
	assert.Nil(t, ParseIDList("  "))
	assert.Equal(t, []uint{3, 1, 7}, ParseIDList("3, 1,x,7,3,0"))
}

func TestFormatIDList(t *testing.T) {
	assert.Equal(t, "", FormatIDList(nil))
	assert.Equal(t, "12,4", FormatIDList([]uint{12, 4}))
}

func TestRecommendation_ProblemIDs(t *testing.T) {
	r := Recommendation{RecommendedProblems: ""}
	assert.Equal(t, []uint{}, r.ProblemIDs())
	r.RecommendedProblems = "5,2"
	assert.Equal(t, []uint{5, 2}, r.ProblemIDs())
}
