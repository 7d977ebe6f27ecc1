package service

import (
	"context"
	"fmt"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/geo"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository"
)

// revenueBuckets is how many periods the revenue report goes back.
var revenueBuckets = map[domain.RevenuePeriod]int32{
	domain.RevenuePeriodDay:   30,
	domain.RevenuePeriodWeek:  12,
	domain.RevenuePeriodMonth: 12,
}

type adminService struct {
	barberRepo  repository.BarberRepository
	bookingRepo repository.BookingRepository
	index       *geo.Index
}

func NewAdminService(barberRepo repository.BarberRepository, bookingRepo repository.BookingRepository, index *geo.Index) AdminService {
	return &adminService{
		barberRepo:  barberRepo,
		bookingRepo: bookingRepo,
		index:       index,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	counts, err := s.barberRepo.CountByVerification(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.bookingRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		PendingBarbers:  counts[domain.VerificationStatusPending],
		ApprovedBarbers: counts[domain.VerificationStatusApproved],
		BookingSummary:  *summary,
	}
	for _, n := range counts {
		stats.TotalBarbers += n
	}
	return stats, nil
}

func (s *adminService) ListPendingBarbers(ctx context.Context) ([]domain.Barber, error) {
	return s.barberRepo.ListByVerification(ctx, domain.VerificationStatusPending)
}

func (s *adminService) VerifyBarber(ctx context.Context, barberID string, status domain.VerificationStatus, notes string) (*domain.Barber, error) {
	logger.EnterMethod("adminService.VerifyBarber", "barberID", barberID, "status", status)

	if status != domain.VerificationStatusApproved && status != domain.VerificationStatusRejected {
		return nil, fmt.Errorf("%w: verification status must be approved or rejected", domain.ErrValidation)
	}
	if err := s.barberRepo.SetVerification(ctx, barberID, status, notes); err != nil {
		logger.ExitMethodWithError("adminService.VerifyBarber", err, "barberID", barberID)
		return nil, err
	}
	barber, err := s.barberRepo.GetByID(ctx, barberID)
	if err != nil {
		return nil, err
	}
	s.index.Upsert(barber)

	logger.Event(ctx, "barber."+string(status), "barber_id", barberID)
	logger.ExitMethod("adminService.VerifyBarber", "barberID", barberID)
	return barber, nil
}

func (s *adminService) SetBarberActive(ctx context.Context, barberID string, active bool) (*domain.Barber, error) {
	logger.EnterMethod("adminService.SetBarberActive", "barberID", barberID, "active", active)

	if err := s.barberRepo.SetActive(ctx, barberID, active); err != nil {
		logger.ExitMethodWithError("adminService.SetBarberActive", err, "barberID", barberID)
		return nil, err
	}
	barber, err := s.barberRepo.GetByID(ctx, barberID)
	if err != nil {
		return nil, err
	}
	s.index.Upsert(barber)

	event := "barber.deactivated"
	if active {
		event = "barber.activated"
	}
	logger.Event(ctx, event, "barber_id", barberID)
	logger.ExitMethod("adminService.SetBarberActive", "barberID", barberID)
	return barber, nil
}

func (s *adminService) ListBookings(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.bookingRepo.List(ctx, domain.BookingFilter{Status: status, Page: page, PageSize: pageSize})
}

func (s *adminService) Revenue(ctx context.Context, period domain.RevenuePeriod) ([]domain.RevenuePoint, error) {
	if period == "" {
		period = domain.RevenuePeriodMonth
	}
	if !period.Valid() {
		return nil, fmt.Errorf("%w: period must be day, week or month", domain.ErrValidation)
	}
	return s.bookingRepo.Revenue(ctx, period, revenueBuckets[period])
}

func (s *adminService) ResetMonthlyEarnings(ctx context.Context) (int64, error) {
	n, err := s.barberRepo.ResetMonthlyEarnings(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("monthly earnings reset", "barbers", n)
	return n, nil
}
