package utils

import (
	"errors"
	"testing"

	"groomosphere-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNextRating(t *testing.T) {
	t.Run("First score", func(t *testing.T) {
		r := NextRating(domain.RatingSummary{}, 4)
		assert.Equal(t, 4.0, r.Average)
		assert.Equal(t, int64(1), r.Count)
	})

	t.Run("Sequence 5 3 4", func(t *testing.T) {
		r := domain.RatingSummary{}
		for _, s := range []int{5, 3, 4} {
			r = NextRating(r, s)
		}
		assert.InDelta(t, 4.0, r.Average, 1e-9)
		assert.Equal(t, int64(3), r.Count)
	})

	t.Run("Stays within bounds", func(t *testing.T) {
		r := domain.RatingSummary{}
		for i := 0; i < 100; i++ {
			r = NextRating(r, 1+i%5)
			assert.GreaterOrEqual(t, r.Average, 1.0)
			assert.LessOrEqual(t, r.Average, 5.0)
		}
	})
}

func TestAggregateRatings(t *testing.T) {
	assert.Equal(t, domain.RatingSummary{}, AggregateRatings(nil))

	r := AggregateRatings([]int{5, 3, 4})
	assert.InDelta(t, 4.0, r.Average, 1e-9)
	assert.Equal(t, int64(3), r.Count)
}

func TestValidateScore(t *testing.T) {
	for _, s := range []int{1, 2, 3, 4, 5} {
		assert.NoError(t, ValidateScore(s))
	}
	for _, s := range []int{-1, 0, 6, 10} {
		err := ValidateScore(s)
		assert.True(t, errors.Is(err, domain.ErrValidation), "score %d", s)
	}
}
