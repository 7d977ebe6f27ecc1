package service

import (
	"context"
	"fmt"
	"sort"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/geo"
	"groomosphere-backend/internal/logger"
)

type MatchingOptions struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	MaxResults      int
}

type matchingService struct {
	index *geo.Index
	opts  MatchingOptions
}

func NewMatchingService(index *geo.Index, opts MatchingOptions) MatchingService {
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = 10
	}
	if opts.MaxRadiusKm < opts.DefaultRadiusKm {
		opts.MaxRadiusKm = opts.DefaultRadiusKm
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 50
	}
	return &matchingService{index: index, opts: opts}
}

func (s *matchingService) FindNearbyBarbers(ctx context.Context, point domain.Coordinate, radiusKm *float64) ([]domain.NearbyBarber, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("%w: coordinate (%v, %v) out of range", domain.ErrValidation, point.Latitude, point.Longitude)
	}
	radius := s.opts.DefaultRadiusKm
	if radiusKm != nil {
		radius = *radiusKm
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", domain.ErrValidation)
	}
	if radius > s.opts.MaxRadiusKm {
		radius = s.opts.MaxRadiusKm
	}

	matches := s.index.QueryNearby(point, radius)
	eligible := matches[:0]
	for _, m := range matches {
		if m.IsActive && m.IsAvailable && m.VerificationStatus == domain.VerificationStatusApproved {
			eligible = append(eligible, m)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.Rating.Average != b.Rating.Average {
			return a.Rating.Average > b.Rating.Average
		}
		return a.BarberID < b.BarberID
	})
	if len(eligible) > s.opts.MaxResults {
		eligible = eligible[:s.opts.MaxResults]
	}

	out := make([]domain.NearbyBarber, 0, len(eligible))
	for _, m := range eligible {
		out = append(out, domain.NearbyBarber{
			BarberID:        m.BarberID,
			DisplayName:     m.DisplayName,
			Specialties:     m.Specialties,
			Pricing:         m.Pricing,
			ExperienceYears: m.ExperienceYears,
			Rating:          m.Rating,
			DistanceKm:      m.DistanceKm,
		})
	}

	logger.Debug("nearby search", "lat", point.Latitude, "lng", point.Longitude, "radiusKm", radius, "results", len(out))
	return out, nil
}
