package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/geo"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository"
)

type barberService struct {
	barberRepo    repository.BarberRepository
	bookingRepo   repository.BookingRepository
	index         *geo.Index
	defaultRadius float64
}

func NewBarberService(
	barberRepo repository.BarberRepository,
	bookingRepo repository.BookingRepository,
	index *geo.Index,
	defaultRadiusKm float64,
) BarberService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 10
	}
	return &barberService{
		barberRepo:    barberRepo,
		bookingRepo:   bookingRepo,
		index:         index,
		defaultRadius: defaultRadiusKm,
	}
}

func (s *barberService) Onboard(ctx context.Context, actor domain.Actor, in OnboardBarberInput) (*domain.Barber, error) {
	logger.EnterMethod("barberService.Onboard", "userID", actor.UserID)

	if actor.Role != domain.RoleBarber {
		return nil, fmt.Errorf("%w: only barber accounts can onboard", domain.ErrAuthorization)
	}
	if err := validateProfile(in.DisplayName, in.Pricing, in.ExperienceYears); err != nil {
		return nil, err
	}
	if in.ServiceRadiusKm < 0 {
		return nil, fmt.Errorf("%w: service radius must not be negative", domain.ErrValidation)
	}
	radius := in.ServiceRadiusKm
	if radius == 0 {
		radius = s.defaultRadius
	}

	barber := &domain.Barber{
		UserID:             actor.UserID,
		DisplayName:        strings.TrimSpace(in.DisplayName),
		Pricing:            in.Pricing,
		Specialties:        in.Specialties,
		ExperienceYears:    in.ExperienceYears,
		ServiceRadiusKm:    radius,
		IsActive:           true,
		VerificationStatus: domain.VerificationStatusPending,
	}
	if barber.Pricing == nil {
		barber.Pricing = map[string]int64{}
	}
	if barber.Specialties == nil {
		barber.Specialties = []string{}
	}
	if in.Location != nil {
		if !in.Location.Valid() {
			return nil, fmt.Errorf("%w: invalid location", domain.ErrValidation)
		}
		loc := *in.Location
		now := time.Now().UTC()
		barber.Location = &loc
		barber.LocationUpdatedAt = &now
	}

	if err := s.barberRepo.Create(ctx, barber); err != nil {
		logger.ExitMethodWithError("barberService.Onboard", err, "userID", actor.UserID)
		return nil, err
	}
	s.index.Upsert(barber)

	logger.Event(ctx, "barber.onboarded", "barber_id", barber.ID, "user_id", barber.UserID)
	logger.ExitMethod("barberService.Onboard", "barberID", barber.ID)
	return barber, nil
}

func (s *barberService) GetProfile(ctx context.Context, barberID string) (*domain.Barber, error) {
	return s.barberRepo.GetByID(ctx, barberID)
}

func (s *barberService) UpdateLocation(ctx context.Context, actor domain.Actor, location domain.Coordinate) (*domain.Barber, error) {
	if !location.Valid() {
		return nil, fmt.Errorf("%w: coordinate (%v, %v) out of range", domain.ErrValidation, location.Latitude, location.Longitude)
	}
	barber, err := s.ownProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := s.barberRepo.UpdateLocation(ctx, barber.ID, location, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.reindex(ctx, barber.ID)
}

func (s *barberService) SetAvailability(ctx context.Context, actor domain.Actor, available bool) (*domain.Barber, error) {
	barber, err := s.ownProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := s.barberRepo.SetAvailability(ctx, barber.ID, available); err != nil {
		return nil, err
	}
	logger.Event(ctx, "barber.availability", "barber_id", barber.ID, "available", available)
	return s.reindex(ctx, barber.ID)
}

// UpdateProfile edits the caller's own profile. A new service radius takes effect in
// matching immediately.
func (s *barberService) UpdateProfile(ctx context.Context, actor domain.Actor, in domain.BarberProfileUpdate) (*domain.Barber, error) {
	logger.EnterMethod("barberService.UpdateProfile", "userID", actor.UserID)

	barber, err := s.ownProfile(ctx, actor)
	if err != nil {
		logger.ExitMethodWithError("barberService.UpdateProfile", err, "userID", actor.UserID)
		return nil, err
	}

	if in.DisplayName != nil {
		barber.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Pricing != nil {
		barber.Pricing = in.Pricing
	}
	if in.Specialties != nil {
		barber.Specialties = in.Specialties
	}
	if in.ExperienceYears != nil {
		barber.ExperienceYears = *in.ExperienceYears
	}
	if in.ServiceRadiusKm != nil {
		if *in.ServiceRadiusKm <= 0 {
			return nil, fmt.Errorf("%w: service radius must be positive", domain.ErrValidation)
		}
		barber.ServiceRadiusKm = *in.ServiceRadiusKm
	}
	if err := validateProfile(barber.DisplayName, barber.Pricing, barber.ExperienceYears); err != nil {
		return nil, err
	}

	if err := s.barberRepo.UpdateProfile(ctx, barber); err != nil {
		logger.ExitMethodWithError("barberService.UpdateProfile", err, "barberID", barber.ID)
		return nil, err
	}
	logger.Event(ctx, "barber.profile_updated", "barber_id", barber.ID)
	logger.ExitMethod("barberService.UpdateProfile", "barberID", barber.ID)
	return s.reindex(ctx, barber.ID)
}

func (s *barberService) GetStats(ctx context.Context, actor domain.Actor) (*domain.BarberStats, error) {
	barber, err := s.ownProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	pending, err := s.bookingRepo.SumPendingEarnings(ctx, barber.ID)
	if err != nil {
		return nil, err
	}
	return &domain.BarberStats{
		TotalEarnings:      barber.Earnings.Total,
		PendingEarnings:    pending,
		ThisMonthEarnings:  barber.Earnings.ThisMonth,
		CompletedBookings:  barber.CompletedBookings,
		Rating:             barber.Rating,
		VerificationStatus: barber.VerificationStatus,
	}, nil
}

// RefreshIndex rebuilds the geo index from the store.
func (s *barberService) RefreshIndex(ctx context.Context) (int, error) {
	barbers, err := s.barberRepo.ListLocated(ctx)
	if err != nil {
		return 0, err
	}
	ptrs := make([]*domain.Barber, len(barbers))
	for i := range barbers {
		ptrs[i] = &barbers[i]
	}
	s.index.Replace(ptrs)
	return s.index.Len(), nil
}

func (s *barberService) ownProfile(ctx context.Context, actor domain.Actor) (*domain.Barber, error) {
	if actor.Role != domain.RoleBarber {
		return nil, fmt.Errorf("%w: barber account required", domain.ErrAuthorization)
	}
	return s.barberRepo.GetByUserID(ctx, actor.UserID)
}

func (s *barberService) reindex(ctx context.Context, barberID string) (*domain.Barber, error) {
	barber, err := s.barberRepo.GetByID(ctx, barberID)
	if err != nil {
		return nil, err
	}
	s.index.Upsert(barber)
	return barber, nil
}

func validateProfile(displayName string, pricing map[string]int64, experienceYears int32) error {
	if strings.TrimSpace(displayName) == "" {
		return fmt.Errorf("%w: display name is required", domain.ErrValidation)
	}
	for name, price := range pricing {
		if strings.TrimSpace(name) == "" || price < 0 {
			return fmt.Errorf("%w: invalid price for service %q", domain.ErrValidation, name)
		}
	}
	if experienceYears < 0 {
		return fmt.Errorf("%w: experience years must not be negative", domain.ErrValidation)
	}
	return nil
}
