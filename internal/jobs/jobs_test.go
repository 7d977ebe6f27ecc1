package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groomosphere-backend/internal/config"
	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/geo"
	"groomosphere-backend/internal/repository/memory"
	"groomosphere-backend/internal/service"
)

// nilAdmin panics on every call.
type nilAdmin struct {
	service.AdminService
}

func newRunner(t *testing.T) (*JobRunner, *memory.Store, *geo.Index) {
	t.Helper()
	store := memory.NewStore()
	index := geo.NewIndex()
	runner := NewJobRunner(&Services{
		Barber: service.NewBarberService(store.Barbers(), store.Bookings(), index, 10),
		Admin:  service.NewAdminService(store.Barbers(), store.Bookings(), index),
		Rating: service.NewRatingAggregator(store.Barbers()),
	}, &config.Config{})
	return runner, store, index
}

func TestRefreshGeoIndex(t *testing.T) {
	runner, store, index := newRunner(t)
	ctx := context.Background()

	require.NoError(t, store.Barbers().Create(ctx, &domain.Barber{
		UserID:   "u-1",
		Location: &domain.Coordinate{Latitude: 6.5, Longitude: 3.4},
	}))
	require.NoError(t, store.Barbers().Create(ctx, &domain.Barber{UserID: "u-2"}))

	assert.True(t, runner.RefreshGeoIndex())
	assert.Equal(t, 1, index.Len())
}

func TestResetMonthlyAndRecompute(t *testing.T) {
	runner, store, _ := newRunner(t)
	ctx := context.Background()

	// The aggregate has no rated booking behind it.
	b := &domain.Barber{
		UserID:   "u-1",
		Earnings: domain.Earnings{Total: 900, ThisMonth: 400},
		Rating:   domain.RatingSummary{Average: 5, Count: 1},
	}
	require.NoError(t, store.Barbers().Create(ctx, b))

	assert.True(t, runner.ResetMonthlyEarnings())
	assert.True(t, runner.RecomputeRatings())

	got, err := store.Barbers().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Earnings.ThisMonth)
	assert.Equal(t, int64(900), got.Earnings.Total)
	assert.Equal(t, domain.RatingSummary{}, got.Rating)
}

func TestRunWithRecovery(t *testing.T) {
	runner := NewJobRunner(&Services{Admin: nilAdmin{}}, &config.Config{})
	assert.False(t, runner.ResetMonthlyEarnings())
}

func TestJobSets(t *testing.T) {
	runner, _, _ := newRunner(t)

	names := func(js []Job) []string {
		out := make([]string, len(js))
		for i, j := range js {
			out[i] = j.Name
		}
		return out
	}
	assert.Equal(t, []string{"refresh-geo-index"}, names(runner.IndexJobs()))
	assert.Equal(t, []string{"reset-monthly-earnings", "recompute-ratings"}, names(runner.StoreJobs()))
}
