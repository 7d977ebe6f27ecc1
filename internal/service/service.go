package service

import (
	"context"
	"time"

	"groomosphere-backend/internal/domain"
)

type CreateBookingInput struct {
	CustomerID   string
	BarberID     string
	Services     []domain.BookingService
	ScheduledFor time.Time
	Location     domain.BookingLocation
	Notes        string
}

type OnboardBarberInput struct {
	DisplayName     string
	Pricing         map[string]int64
	Specialties     []string
	ExperienceYears int32
	ServiceRadiusKm float64
	Location        *domain.Coordinate
}

// BookingService is the booking ledger: it owns the booking state machine and the
// money that moves with it.
type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Booking, error)
	TransitionBooking(ctx context.Context, bookingID string, actor domain.Actor, target domain.BookingStatus, notes string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, actor domain.Actor, reason string) (*domain.Booking, error)
	RateBooking(ctx context.Context, bookingID, customerID string, score int, review string) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error)
	ListMyBookings(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	ReconcilePayment(ctx context.Context, bookingID string, status domain.PaymentStatus, reference string) (*domain.Booking, error)
}

type MatchingService interface {
	// FindNearbyBarbers uses the configured default radius when radiusKm is nil.
	FindNearbyBarbers(ctx context.Context, point domain.Coordinate, radiusKm *float64) ([]domain.NearbyBarber, error)
}

type BarberService interface {
	Onboard(ctx context.Context, actor domain.Actor, in OnboardBarberInput) (*domain.Barber, error)
	GetProfile(ctx context.Context, barberID string) (*domain.Barber, error)
	UpdateLocation(ctx context.Context, actor domain.Actor, location domain.Coordinate) (*domain.Barber, error)
	SetAvailability(ctx context.Context, actor domain.Actor, available bool) (*domain.Barber, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, in domain.BarberProfileUpdate) (*domain.Barber, error)
	GetStats(ctx context.Context, actor domain.Actor) (*domain.BarberStats, error)
	RefreshIndex(ctx context.Context) (int, error)
}

type RatingAggregator interface {
	Recompute(ctx context.Context) (int64, error)
}

type AdminService interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
	ListPendingBarbers(ctx context.Context) ([]domain.Barber, error)
	VerifyBarber(ctx context.Context, barberID string, status domain.VerificationStatus, notes string) (*domain.Barber, error)
	// SetBarberActive deactivates or reactivates a barber. Barbers are never deleted.
	SetBarberActive(ctx context.Context, barberID string, active bool) (*domain.Barber, error)
	ListBookings(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	Revenue(ctx context.Context, period domain.RevenuePeriod) ([]domain.RevenuePoint, error)
	ResetMonthlyEarnings(ctx context.Context) (int64, error)
}

type PaymentResult struct {
	Reference string
	Status    domain.PaymentStatus
}

// PaymentProcessor settles a completed booking with the payment gateway.
type PaymentProcessor interface {
	ChargeOrSettle(ctx context.Context, bookingID string, amount int64) (PaymentResult, error)
}
