package utils

import (
	"fmt"

	"groomosphere-backend/internal/domain"
)

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// ValidateScore checks that score is an integer star rating in [1,5].
func ValidateScore(score int) error {
	if score < MinRatingScore || score > MaxRatingScore {
		return fmt.Errorf("%w: rating score %d must be between %d and %d", domain.ErrValidation, score, MinRatingScore, MaxRatingScore)
	}
	return nil
}

// NextRating folds one score into a running average.
func NextRating(current domain.RatingSummary, score int) domain.RatingSummary {
	count := current.Count + 1
	return domain.RatingSummary{
		Average: (current.Average*float64(current.Count) + float64(score)) / float64(count),
		Count:   count,
	}
}

// AggregateRatings rebuilds a summary from individual scores.
func AggregateRatings(scores []int) domain.RatingSummary {
	var sum domain.RatingSummary
	for _, s := range scores {
		sum = NextRating(sum, s)
	}
	return sum
}
