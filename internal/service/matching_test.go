package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/geo"
)

func indexedBarber(id string, lat, lng, rating float64) *domain.Barber {
	return &domain.Barber{
		ID:                 id,
		DisplayName:        id,
		ServiceRadiusKm:    25,
		Location:           &domain.Coordinate{Latitude: lat, Longitude: lng},
		IsActive:           true,
		IsAvailable:        true,
		VerificationStatus: domain.VerificationStatusApproved,
		Rating:             domain.RatingSummary{Average: rating, Count: 10},
	}
}

func radius(km float64) *float64 { return &km }

func TestFindNearbyBarbers(t *testing.T) {
	idx := geo.NewIndex()
	idx.Upsert(indexedBarber("at-point", lagos.Latitude, lagos.Longitude, 3.0))
	idx.Upsert(indexedBarber("near-b", 6.54, 3.38, 4.0))
	idx.Upsert(indexedBarber("near-a", 6.54, 3.38, 4.0))
	idx.Upsert(indexedBarber("near-top", 6.54, 3.38, 4.9))
	idx.Upsert(indexedBarber("far", 6.70, 3.38, 5.0))

	unavailable := indexedBarber("unavailable", 6.53, 3.38, 5.0)
	unavailable.IsAvailable = false
	idx.Upsert(unavailable)

	pending := indexedBarber("pending", 6.53, 3.38, 5.0)
	pending.VerificationStatus = domain.VerificationStatusPending
	idx.Upsert(pending)

	inactive := indexedBarber("inactive", 6.53, 3.38, 5.0)
	inactive.IsActive = false
	idx.Upsert(inactive)

	svc := NewMatchingService(idx, MatchingOptions{DefaultRadiusKm: 10, MaxRadiusKm: 50, MaxResults: 50})
	ctx := context.Background()

	t.Run("Sorted by distance then rating then id", func(t *testing.T) {
		got, err := svc.FindNearbyBarbers(ctx, lagos, nil)
		require.NoError(t, err)

		ids := make([]string, len(got))
		for i, b := range got {
			ids[i] = b.BarberID
		}
		assert.Equal(t, []string{"at-point", "near-top", "near-a", "near-b"}, ids)
		assert.Equal(t, 0.0, got[0].DistanceKm)
	})

	t.Run("Larger radius reaches further", func(t *testing.T) {
		got, err := svc.FindNearbyBarbers(ctx, lagos, radius(25))
		require.NoError(t, err)
		assert.Len(t, got, 5)
		assert.Equal(t, "far", got[4].BarberID)
	})

	t.Run("Zero radius", func(t *testing.T) {
		got, err := svc.FindNearbyBarbers(ctx, lagos, radius(0))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Negative radius", func(t *testing.T) {
		_, err := svc.FindNearbyBarbers(ctx, lagos, radius(-1))
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Invalid coordinate", func(t *testing.T) {
		_, err := svc.FindNearbyBarbers(ctx, domain.Coordinate{Latitude: 91}, nil)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Nothing nearby", func(t *testing.T) {
		got, err := svc.FindNearbyBarbers(ctx, domain.Coordinate{Latitude: -33.9, Longitude: 18.4}, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestFindNearbyBarbers_ClampsAndCaps(t *testing.T) {
	idx := geo.NewIndex()
	for i := 0; i < 8; i++ {
		b := indexedBarber(fmt.Sprintf("b%d", i), lagos.Latitude+float64(i)*0.01, lagos.Longitude, 4)
		b.ServiceRadiusKm = 1000
		idx.Upsert(b)
	}
	// Roughly 111 km north, beyond the clamped radius.
	distant := indexedBarber("distant", lagos.Latitude+1, lagos.Longitude, 5)
	distant.ServiceRadiusKm = 1000
	idx.Upsert(distant)

	svc := NewMatchingService(idx, MatchingOptions{DefaultRadiusKm: 10, MaxRadiusKm: 50, MaxResults: 5})

	got, err := svc.FindNearbyBarbers(context.Background(), lagos, radius(500))
	require.NoError(t, err)
	assert.Len(t, got, 5)
	for _, b := range got {
		assert.NotEqual(t, "distant", b.BarberID)
		assert.LessOrEqual(t, b.DistanceKm, 50.0)
	}
}
