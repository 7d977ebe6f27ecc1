package domain

import "time"

type RevenuePeriod string

const (
	RevenuePeriodDay   RevenuePeriod = "day"
	RevenuePeriodWeek  RevenuePeriod = "week"
	RevenuePeriodMonth RevenuePeriod = "month"
)

func (p RevenuePeriod) Valid() bool {
	return p == RevenuePeriodDay || p == RevenuePeriodWeek || p == RevenuePeriodMonth
}

// BucketStart truncates t to the start of its period in UTC. Weeks start on Monday.
func (p RevenuePeriod) BucketStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case RevenuePeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case RevenuePeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

type RevenuePoint struct {
	PeriodStart    time.Time `json:"period_start"`
	Bookings       int64     `json:"bookings"`
	GrossAmount    int64     `json:"gross_amount"`
	PlatformFees   int64     `json:"platform_fees"`
	BarberEarnings int64     `json:"barber_earnings"`
}

type BookingSummary struct {
	TotalBookings     int64 `json:"total_bookings"`
	CompletedBookings int64 `json:"completed_bookings"`
	CancelledBookings int64 `json:"cancelled_bookings"`
	// PlatformRevenue is the sum of platform fees over completed bookings.
	PlatformRevenue int64 `json:"platform_revenue"`
}

type DashboardStats struct {
	TotalBarbers    int64 `json:"total_barbers"`
	PendingBarbers  int64 `json:"pending_barbers"`
	ApprovedBarbers int64 `json:"approved_barbers"`
	BookingSummary
}
