// Package memory is a single-process store that keeps bookings and barbers in maps
// behind one mutex. It honours the same compare-and-swap and atomic counter contract
// as the postgres store and backs local runs and service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/repository"
	"groomosphere-backend/internal/utils"
)

type Store struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	barbers  map[string]*domain.Barber
	byUser   map[string]string
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		bookings: make(map[string]*domain.Booking),
		barbers:  make(map[string]*domain.Barber),
		byUser:   make(map[string]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Bookings() repository.BookingRepository { return (*bookingRepository)(s) }
func (s *Store) Barbers() repository.BarberRepository   { return (*barberRepository)(s) }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

type bookingRepository Store

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if !b.Balanced() {
		return fmt.Errorf("%w: fees of booking do not add up to its total", domain.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, exists := r.bookings[b.ID]; exists {
		return fmt.Errorf("%w: booking %s already exists", domain.ErrValidation, b.ID)
	}
	if _, ok := r.barbers[b.BarberID]; !ok {
		return fmt.Errorf("%w: barber %s", domain.ErrNotFound, b.BarberID)
	}
	now := r.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if b.Version == 0 {
		b.Version = 1
	}
	r.bookings[b.ID] = b.Clone()
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id)
	}
	return b.Clone(), nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swap(b, expectedVersion)
}

func (r *bookingRepository) Complete(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	barber, ok := r.barbers[b.BarberID]
	if !ok {
		return fmt.Errorf("%w: barber %s", domain.ErrNotFound, b.BarberID)
	}
	if err := r.swap(b, expectedVersion); err != nil {
		return err
	}
	barber.Earnings.Total += b.BarberEarnings
	barber.Earnings.ThisMonth += b.BarberEarnings
	barber.CompletedBookings++
	barber.UpdatedAt = b.UpdatedAt
	return nil
}

func (r *bookingRepository) Rate(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	if b.Rating == nil {
		return fmt.Errorf("%w: booking %s has no rating to store", domain.ErrValidation, b.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	barber, ok := r.barbers[b.BarberID]
	if !ok {
		return fmt.Errorf("%w: barber %s", domain.ErrNotFound, b.BarberID)
	}
	if err := r.swap(b, expectedVersion); err != nil {
		return err
	}
	barber.Rating = utils.NextRating(barber.Rating, b.Rating.Score)
	barber.UpdatedAt = b.UpdatedAt
	return nil
}

// swap must be called with the lock held.
func (r *bookingRepository) swap(b *domain.Booking, expectedVersion int64) error {
	current, ok := r.bookings[b.ID]
	if !ok {
		return fmt.Errorf("%w: booking %s", domain.ErrNotFound, b.ID)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: booking %s at version %d", domain.ErrConcurrentModification, b.ID, expectedVersion)
	}
	b.Version = expectedVersion + 1
	b.UpdatedAt = r.now()
	// Creation-time fields are immutable.
	stored := b.Clone()
	stored.CreatedAt = current.CreatedAt
	stored.Services = current.Services
	stored.TotalAmount = current.TotalAmount
	stored.PlatformFee = current.PlatformFee
	stored.BarberEarnings = current.BarberEarnings
	stored.CommissionRate = current.CommissionRate
	r.bookings[b.ID] = stored
	return nil
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	limit, offset, err := filter.Bounds()
	if err != nil {
		return nil, 0, err
	}

	r.mu.Lock()
	matched := []domain.Booking{}
	for _, b := range r.bookings {
		if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.BarberID != "" && b.BarberID != filter.BarberID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		matched = append(matched, *b.Clone())
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	if offset >= total {
		return []domain.Booking{}, int32(total), nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], int32(total), nil
}

func (r *bookingRepository) SumPendingEarnings(ctx context.Context, barberID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sum int64
	for _, b := range r.bookings {
		if b.BarberID == barberID && (b.Status == domain.BookingStatusAccepted || b.Status == domain.BookingStatusInProgress) {
			sum += b.BarberEarnings
		}
	}
	return sum, nil
}

func (r *bookingRepository) Summary(ctx context.Context) (*domain.BookingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &domain.BookingSummary{TotalBookings: int64(len(r.bookings))}
	for _, b := range r.bookings {
		switch b.Status {
		case domain.BookingStatusCompleted:
			s.CompletedBookings++
			s.PlatformRevenue += b.PlatformFee
		case domain.BookingStatusCancelled:
			s.CancelledBookings++
		}
	}
	return s, nil
}

func (r *bookingRepository) Revenue(ctx context.Context, period domain.RevenuePeriod, limit int32) ([]domain.RevenuePoint, error) {
	r.mu.Lock()
	buckets := map[time.Time]*domain.RevenuePoint{}
	for _, b := range r.bookings {
		if b.Status != domain.BookingStatusCompleted || b.ActualEndTime == nil {
			continue
		}
		start := period.BucketStart(*b.ActualEndTime)
		p, ok := buckets[start]
		if !ok {
			p = &domain.RevenuePoint{PeriodStart: start}
			buckets[start] = p
		}
		p.Bookings++
		p.GrossAmount += b.TotalAmount
		p.PlatformFees += b.PlatformFee
		p.BarberEarnings += b.BarberEarnings
	}
	r.mu.Unlock()

	points := make([]domain.RevenuePoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].PeriodStart.After(points[j].PeriodStart) })
	if limit > 0 && int(limit) < len(points) {
		points = points[:limit]
	}
	return points, nil
}
