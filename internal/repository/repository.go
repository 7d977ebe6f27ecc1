package repository

import (
	"context"
	"time"

	"groomosphere-backend/internal/domain"
)

// BookingRepository persists bookings. Every write except Create is a compare-and-swap
// on expectedVersion: on success the booking's Version is bumped in place, and a stale
// version yields domain.ErrConcurrentModification.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking, expectedVersion int64) error

	// Complete writes the completed booking and credits the barber's earnings and
	// completed counter in the same transaction.
	Complete(ctx context.Context, booking *domain.Booking, expectedVersion int64) error
	// Rate writes the booking rating and folds the score into the barber's aggregate
	// in the same transaction.
	Rate(ctx context.Context, booking *domain.Booking, expectedVersion int64) error

	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	SumPendingEarnings(ctx context.Context, barberID string) (int64, error)
	Summary(ctx context.Context) (*domain.BookingSummary, error)
	Revenue(ctx context.Context, period domain.RevenuePeriod, limit int32) ([]domain.RevenuePoint, error)
}

type BarberRepository interface {
	Create(ctx context.Context, barber *domain.Barber) error
	GetByID(ctx context.Context, id string) (*domain.Barber, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Barber, error)
	UpdateLocation(ctx context.Context, id string, location domain.Coordinate, at time.Time) error
	SetAvailability(ctx context.Context, id string, available bool) error
	// UpdateProfile writes the owner-editable fields of b. Counters are left alone.
	UpdateProfile(ctx context.Context, b *domain.Barber) error
	SetActive(ctx context.Context, id string, active bool) error
	SetVerification(ctx context.Context, id string, status domain.VerificationStatus, notes string) error
	ListByVerification(ctx context.Context, status domain.VerificationStatus) ([]domain.Barber, error)
	ListLocated(ctx context.Context) ([]domain.Barber, error)
	CountByVerification(ctx context.Context) (map[domain.VerificationStatus]int64, error)

	ResetMonthlyEarnings(ctx context.Context) (int64, error)
	// RecomputeRatings rebuilds every barber's aggregate from the scores stored on bookings.
	RecomputeRatings(ctx context.Context) (int64, error)
}

// Store groups the repositories a backend provides.
type Store interface {
	Bookings() BookingRepository
	Barbers() BarberRepository
	Ping(ctx context.Context) error
	Close() error
}
