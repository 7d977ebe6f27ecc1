package service

import (
	"context"

	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository"
)

// ratingAggregator owns the rebuild side of rating aggregation. Individual scores are
// folded in by BookingRepository.Rate, in the same transaction that stores the booking
// rating.
type ratingAggregator struct {
	barberRepo repository.BarberRepository
}

func NewRatingAggregator(barberRepo repository.BarberRepository) RatingAggregator {
	return &ratingAggregator{barberRepo: barberRepo}
}

// Recompute rebuilds every aggregate from the ratings kept on bookings and returns the
// number of barbers whose aggregate changed.
func (a *ratingAggregator) Recompute(ctx context.Context) (int64, error) {
	n, err := a.barberRepo.RecomputeRatings(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("rating aggregates recomputed", "changed", n)
	return n, nil
}
