package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/geo"
	"groomosphere-backend/internal/repository"
	"groomosphere-backend/internal/repository/memory"
)

type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) ChargeOrSettle(ctx context.Context, bookingID string, amount int64) (PaymentResult, error) {
	args := m.Called(ctx, bookingID, amount)
	return args.Get(0).(PaymentResult), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, key string, v any) (string, error) {
	args := m.Called(ctx, key, v)
	return args.String(0), args.Error(1)
}

// conflictingBookingRepo loses every compare-and-swap.
type conflictingBookingRepo struct {
	repository.BookingRepository
	attempts int32
}

func (r *conflictingBookingRepo) Update(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	atomic.AddInt32(&r.attempts, 1)
	return domain.ErrConcurrentModification
}

const (
	barberUser = "barber-user"
	customer   = "cust-1"
)

var (
	barberActor   = domain.Actor{UserID: barberUser, Role: domain.RoleBarber}
	customerActor = domain.Actor{UserID: customer, Role: domain.RoleCustomer}
	adminActor    = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	lagos         = domain.Coordinate{Latitude: 6.5244, Longitude: 3.3792}
)

type fixture struct {
	store    *memory.Store
	index    *geo.Index
	payments *MockPaymentProcessor
	bookings BookingService
	barber   *domain.Barber
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	payments := &MockPaymentProcessor{}

	loc := lagos
	barber := &domain.Barber{
		UserID:             barberUser,
		DisplayName:        "Fade Master",
		Pricing:            map[string]int64{"haircut": 5000, "beard trim": 2000},
		ServiceRadiusKm:    10,
		Location:           &loc,
		IsActive:           true,
		IsAvailable:        true,
		VerificationStatus: domain.VerificationStatusApproved,
	}
	require.NoError(t, store.Barbers().Create(context.Background(), barber))
	index := geo.NewIndex()
	index.Upsert(barber)

	return &fixture{
		store:    store,
		index:    index,
		payments: payments,
		bookings: NewBookingService(store.Bookings(), store.Barbers(), payments, BookingOptions{
			CommissionRate: func() float64 { return 0.2 },
			MaxRetries:     3,
			Index:          index,
		}),
		barber: barber,
	}
}

func (f *fixture) createBooking(t *testing.T) *domain.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), CreateBookingInput{
		CustomerID: customer,
		BarberID:   f.barber.ID,
		Services: []domain.BookingService{
			{Name: "haircut", UnitPrice: 5000},
			{Name: "beard trim", UnitPrice: 2000},
		},
		ScheduledFor: time.Now().Add(2 * time.Hour),
		Location:     domain.BookingLocation{Address: "12 Allen Ave, Ikeja", Latitude: 6.6, Longitude: 3.35},
	})
	require.NoError(t, err)
	return b
}

// expectSettlement registers a pending settlement and returns a channel that receives
// once the processor has been called.
func (f *fixture) expectSettlement(bookingID string, amount int64) <-chan struct{} {
	done := make(chan struct{}, 8)
	f.payments.On("ChargeOrSettle", mock.Anything, bookingID, amount).
		Return(PaymentResult{Reference: "ref-1", Status: domain.PaymentStatusPending}, nil).
		Run(func(mock.Arguments) { done <- struct{}{} })
	return done
}

// complete drives a booking from pending to completed.
func (f *fixture) complete(t *testing.T, b *domain.Booking) *domain.Booking {
	t.Helper()
	ctx := context.Background()
	done := f.expectSettlement(b.ID, b.TotalAmount)
	var err error
	for _, target := range []domain.BookingStatus{domain.BookingStatusAccepted, domain.BookingStatusInProgress, domain.BookingStatusCompleted} {
		b, err = f.bookings.TransitionBooking(ctx, b.ID, barberActor, target, "")
		require.NoError(t, err)
	}
	waitFor(t, done)
	return b
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("payment processor was not called")
	}
}
