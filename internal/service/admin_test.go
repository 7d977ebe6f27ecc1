package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groomosphere-backend/internal/domain"
)

func TestAdminService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewAdminService(f.store.Barbers(), f.store.Bookings(), f.index)

	f.complete(t, f.createBooking(t))
	f.complete(t, f.createBooking(t))
	cancelled := f.createBooking(t)
	_, err := f.bookings.CancelBooking(ctx, cancelled.ID, customerActor, "")
	require.NoError(t, err)
	f.createBooking(t)

	t.Run("Dashboard", func(t *testing.T) {
		stats, err := admin.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalBarbers)
		assert.Equal(t, int64(1), stats.ApprovedBarbers)
		assert.Equal(t, int64(4), stats.TotalBookings)
		assert.Equal(t, int64(2), stats.CompletedBookings)
		assert.Equal(t, int64(1), stats.CancelledBookings)
		assert.Equal(t, int64(2800), stats.PlatformRevenue)
	})

	t.Run("List bookings by status", func(t *testing.T) {
		list, total, err := admin.ListBookings(ctx, domain.BookingStatusCompleted, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int32(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("List bookings past the addressable range", func(t *testing.T) {
		list, total, err := admin.ListBookings(ctx, "", 3, math.MaxInt32)
		require.NoError(t, err)
		assert.Equal(t, int32(4), total)
		assert.Empty(t, list)

		_, _, err = admin.ListBookings(ctx, "", math.MaxInt32, 100)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Revenue", func(t *testing.T) {
		points, err := admin.Revenue(ctx, domain.RevenuePeriodDay)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, int64(14000), points[0].GrossAmount)
		assert.Equal(t, int64(2800), points[0].PlatformFees)

		_, err = admin.Revenue(ctx, "year")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Verify rejects unknown status", func(t *testing.T) {
		_, err := admin.VerifyBarber(ctx, f.barber.ID, domain.VerificationStatusPending, "")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Reset monthly earnings", func(t *testing.T) {
		n, err := admin.ResetMonthlyEarnings(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		b, err := f.store.Barbers().GetByID(ctx, f.barber.ID)
		require.NoError(t, err)
		assert.Zero(t, b.Earnings.ThisMonth)
		assert.Equal(t, int64(11200), b.Earnings.Total)
	})
}

func TestAdminService_SetBarberActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := NewAdminService(f.store.Barbers(), f.store.Bookings(), f.index)
	matching := NewMatchingService(f.index, MatchingOptions{})

	b, err := admin.SetBarberActive(ctx, f.barber.ID, false)
	require.NoError(t, err)
	assert.False(t, b.IsActive)

	found, err := matching.FindNearbyBarbers(ctx, lagos, nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = f.bookings.CreateBooking(ctx, CreateBookingInput{
		CustomerID:   customer,
		BarberID:     f.barber.ID,
		Services:     []domain.BookingService{{Name: "haircut", UnitPrice: 5000}},
		ScheduledFor: time.Now().Add(time.Hour),
		Location:     domain.BookingLocation{Latitude: 6.6, Longitude: 3.35},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	b, err = admin.SetBarberActive(ctx, f.barber.ID, true)
	require.NoError(t, err)
	assert.True(t, b.IsActive)

	found, err = matching.FindNearbyBarbers(ctx, lagos, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	f.createBooking(t)

	_, err = admin.SetBarberActive(ctx, "missing", false)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAMQPPaymentProcessor(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishJSON", mock.Anything, "payment.settle", mock.MatchedBy(func(v any) bool {
		req, ok := v.(SettlementRequest)
		return ok && req.BookingID == "bk-1" && req.Amount == 7000 && req.Reference != ""
	})).Return("msg-1", nil)

	res, err := NewAMQPPaymentProcessor(pub, "").ChargeOrSettle(context.Background(), "bk-1", 7000)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, res.Status)
	assert.NotEmpty(t, res.Reference)
	pub.AssertExpectations(t)
}

func TestAMQPPaymentProcessor_PublishFails(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("PublishJSON", mock.Anything, "settle", mock.Anything).Return("", errors.New("channel closed"))

	_, err := NewAMQPPaymentProcessor(pub, "settle").ChargeOrSettle(context.Background(), "bk-1", 7000)
	assert.Error(t, err)
}

func TestLogPaymentProcessor(t *testing.T) {
	res, err := NewLogPaymentProcessor().ChargeOrSettle(context.Background(), "bk-1", 100)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, res.Status)
	assert.NotEmpty(t, res.Reference)
}
