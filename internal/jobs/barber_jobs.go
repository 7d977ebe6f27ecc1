package jobs

import (
	"context"

	"groomosphere-backend/internal/logger"
)

// ResetMonthlyEarnings zeroes every barber's this-month earnings at the start of a month.
func (jr *JobRunner) ResetMonthlyEarnings() bool {
	return jr.runWithRecovery("ResetMonthlyEarnings", func(ctx context.Context) error {
		n, err := jr.services.Admin.ResetMonthlyEarnings(ctx)
		if err != nil {
			return err
		}
		logger.Info("Reset monthly earnings", "barbers", n)
		return nil
	})
}

// RefreshGeoIndex reloads this process's geo index from the store, picking up barber
// changes written by other server instances.
func (jr *JobRunner) RefreshGeoIndex() bool {
	return jr.runWithRecovery("RefreshGeoIndex", func(ctx context.Context) error {
		n, err := jr.services.Barber.RefreshIndex(ctx)
		if err != nil {
			return err
		}
		logger.Debug("Geo index refreshed", "entries", n)
		return nil
	})
}

// RecomputeRatings rebuilds rating aggregates from the per-booking ratings.
func (jr *JobRunner) RecomputeRatings() bool {
	return jr.runWithRecovery("RecomputeRatings", func(ctx context.Context) error {
		n, err := jr.services.Rating.Recompute(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Warn("Rating aggregates drifted and were rebuilt", "barbers", n)
		}
		return nil
	})
}
