package utils

import (
	"errors"
	"testing"

	"groomosphere-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func services(prices ...int64) []domain.BookingService {
	out := make([]domain.BookingService, 0, len(prices))
	for i, p := range prices {
		out = append(out, domain.BookingService{Name: string(rune('a' + i)), UnitPrice: p})
	}
	return out
}

func TestComputeFees(t *testing.T) {
	t.Run("Haircut and beard trim", func(t *testing.T) {
		fees, err := ComputeFees([]domain.BookingService{
			{Name: "haircut", UnitPrice: 5000},
			{Name: "beard trim", UnitPrice: 2000},
		}, 0.2)
		require.NoError(t, err)
		assert.Equal(t, int64(7000), fees.TotalAmount)
		assert.Equal(t, int64(1400), fees.PlatformFee)
		assert.Equal(t, int64(5600), fees.BarberEarnings)
	})

	t.Run("Zero rate", func(t *testing.T) {
		fees, err := ComputeFees(services(999), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), fees.PlatformFee)
		assert.Equal(t, int64(999), fees.BarberEarnings)
	})

	t.Run("Full rate", func(t *testing.T) {
		fees, err := ComputeFees(services(999), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(999), fees.PlatformFee)
		assert.Equal(t, int64(0), fees.BarberEarnings)
	})

	t.Run("Free services", func(t *testing.T) {
		fees, err := ComputeFees(services(0, 0), 0.2)
		require.NoError(t, err)
		assert.Equal(t, Fees{}, fees)
	})
}

func TestComputeFees_BankersRounding(t *testing.T) {
	tests := []struct {
		total    int64
		rate     float64
		expected int64
	}{
		{25, 0.1, 2},     // 2.5 -> 2
		{35, 0.1, 4},     // 3.5 -> 4
		{15, 0.1, 2},     // 1.5 -> 2
		{5, 0.5, 2},      // 2.5 -> 2
		{7, 0.5, 4},      // 3.5 -> 4
		{1001, 0.2, 200}, // 200.2 -> 200
		{1003, 0.2, 201}, // 200.6 -> 201
	}

	for _, tt := range tests {
		fees, err := ComputeFees(services(tt.total), tt.rate)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, fees.PlatformFee, "total=%d rate=%v", tt.total, tt.rate)
		assert.Equal(t, tt.total, fees.PlatformFee+fees.BarberEarnings)
	}
}

func TestComputeFees_Conservation(t *testing.T) {
	rates := []float64{0, 0.05, 0.125, 0.15, 0.2, 0.333, 0.5, 0.99, 1}
	for _, rate := range rates {
		for total := int64(0); total < 2000; total += 7 {
			fees, err := ComputeFees(services(total/2, total-total/2), rate)
			require.NoError(t, err)
			assert.Equal(t, total, fees.TotalAmount)
			assert.Equal(t, fees.TotalAmount, fees.PlatformFee+fees.BarberEarnings)
			assert.GreaterOrEqual(t, fees.PlatformFee, int64(0))
			assert.GreaterOrEqual(t, fees.BarberEarnings, int64(0))
		}
	}
}

func TestComputeFees_Validation(t *testing.T) {
	tests := []struct {
		name     string
		services []domain.BookingService
		rate     float64
	}{
		{"Empty services", nil, 0.2},
		{"Negative price", services(100, -1), 0.2},
		{"Blank name", []domain.BookingService{{Name: " ", UnitPrice: 10}}, 0.2},
		{"Rate below zero", services(100), -0.01},
		{"Rate above one", services(100), 1.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeFees(tt.services, tt.rate)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}
