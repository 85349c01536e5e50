package util

import "errors"

var (
	ErrProblemNotFound        = errors.New("problem not found")
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrInvalidSubmission      = errors.New("invalid submission")
)
