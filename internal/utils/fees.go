package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"groomosphere-backend/internal/domain"
)

// Fees is the commission split of a booking total, all in minor currency units.
type Fees struct {
	TotalAmount    int64
	PlatformFee    int64
	BarberEarnings int64
}

// ComputeFees sums the service prices and splits the total into the platform fee and
// the barber's earnings. The platform fee is total*rate rounded half-to-even to whole
// minor units; earnings take the remainder so the two always add up to the total.
func ComputeFees(services []domain.BookingService, commissionRate float64) (Fees, error) {
	if len(services) == 0 {
		return Fees{}, fmt.Errorf("%w: at least one service is required", domain.ErrValidation)
	}
	if commissionRate < 0 || commissionRate > 1 {
		return Fees{}, fmt.Errorf("%w: commission rate %v must be between 0 and 1", domain.ErrValidation, commissionRate)
	}

	var total int64
	for i, s := range services {
		if strings.TrimSpace(s.Name) == "" {
			return Fees{}, fmt.Errorf("%w: service %d has no name", domain.ErrValidation, i)
		}
		if s.UnitPrice < 0 {
			return Fees{}, fmt.Errorf("%w: service %q has negative price", domain.ErrValidation, s.Name)
		}
		total += s.UnitPrice
	}

	// decimal keeps the multiplication exact so e.g. 2.5 rounds to 2, not 3.
	fee := decimal.NewFromInt(total).
		Mul(decimal.NewFromFloat(commissionRate)).
		RoundBank(0).
		IntPart()

	return Fees{
		TotalAmount:    total,
		PlatformFee:    fee,
		BarberEarnings: total - fee,
	}, nil
}
