package domain

import (
	"fmt"
	"math"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// BookingService is one line item of a booking. Prices are in minor currency units.
type BookingService struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
}

type BookingLocation struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type BookingRating struct {
	Score   int       `json:"score"`
	Review  string    `json:"review,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

type Booking struct {
	ID         string           `json:"id"`
	CustomerID string           `json:"customer_id"`
	BarberID   string           `json:"barber_id"`
	Services   []BookingService `json:"services"`
	// Amounts are snapshotted at creation time and never recomputed.
	TotalAmount    int64   `json:"total_amount"`
	PlatformFee    int64   `json:"platform_fee"`
	BarberEarnings int64   `json:"barber_earnings"`
	CommissionRate float64 `json:"commission_rate"`

	Status             BookingStatus   `json:"status"`
	ScheduledFor       time.Time       `json:"scheduled_for"`
	Location           BookingLocation `json:"location"`
	CustomerNotes      string          `json:"customer_notes,omitempty"`
	BarberNotes        string          `json:"barber_notes,omitempty"`
	ActualStartTime    *time.Time      `json:"actual_start_time,omitempty"`
	ActualEndTime      *time.Time      `json:"actual_end_time,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CancelledBy        *Role           `json:"cancelled_by,omitempty"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	PaymentReference   string          `json:"payment_reference,omitempty"`
	Rating             *BookingRating  `json:"rating,omitempty"`

	// Version is bumped on every successful write and used for compare-and-swap updates.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// transitionRoles lists, per legal edge, the roles allowed to drive it.
var transitionRoles = map[BookingStatus]map[BookingStatus][]Role{
	BookingStatusPending: {
		BookingStatusAccepted:  {RoleBarber},
		BookingStatusCancelled: {RoleCustomer, RoleBarber, RoleAdmin},
	},
	BookingStatusAccepted: {
		BookingStatusInProgress: {RoleBarber},
		BookingStatusCancelled:  {RoleCustomer, RoleBarber, RoleAdmin},
	},
	BookingStatusInProgress: {
		BookingStatusCompleted: {RoleBarber},
		BookingStatusCancelled: {RoleCustomer, RoleBarber, RoleAdmin},
	},
}

// CanTransition reports whether from -> to is an edge of the booking state machine.
func CanTransition(from, to BookingStatus) bool {
	_, ok := transitionRoles[from][to]
	return ok
}

// RoleMayTransition reports whether role is allowed to drive the from -> to edge.
// It returns false for edges that do not exist.
func RoleMayTransition(role Role, from, to BookingStatus) bool {
	for _, r := range transitionRoles[from][to] {
		if r == role {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Balanced checks the fee conservation invariant.
func (b *Booking) Balanced() bool {
	return b.PlatformFee+b.BarberEarnings == b.TotalAmount
}

// Clone returns a deep copy so callers can mutate a booking without aliasing stored state.
func (b *Booking) Clone() *Booking {
	c := *b
	c.Services = append([]BookingService(nil), b.Services...)
	if b.ActualStartTime != nil {
		t := *b.ActualStartTime
		c.ActualStartTime = &t
	}
	if b.ActualEndTime != nil {
		t := *b.ActualEndTime
		c.ActualEndTime = &t
	}
	if b.CancelledBy != nil {
		r := *b.CancelledBy
		c.CancelledBy = &r
	}
	if b.Rating != nil {
		r := *b.Rating
		c.Rating = &r
	}
	return &c
}

type BookingFilter struct {
	CustomerID string
	BarberID   string
	Status     BookingStatus
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Bounds resolves the filter's page into a limit and offset. A zero page or page size
// falls back to the first page and DefaultPageSize, and oversized pages are capped at
// MaxPageSize.
func (f BookingFilter) Bounds() (limit, offset int64, err error) {
	page, size := int64(f.Page), int64(f.PageSize)
	if page < 0 || size < 0 {
		return 0, 0, fmt.Errorf("%w: page and page size must not be negative", ErrValidation)
	}
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	offset = (page - 1) * size
	if offset > math.MaxInt32 {
		return 0, 0, fmt.Errorf("%w: page %d is out of range", ErrValidation, f.Page)
	}
	return size, offset, nil
}
