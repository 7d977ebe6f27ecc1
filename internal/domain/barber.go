package domain

import "time"

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within latitude/longitude bounds.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type Earnings struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	ThisMonth int64 `json:"this_month"`
}

type Barber struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	DisplayName        string             `json:"display_name"`
	Pricing            map[string]int64   `json:"pricing"`
	Specialties        []string           `json:"specialties"`
	ExperienceYears    int32              `json:"experience_years"`
	ServiceRadiusKm    float64            `json:"service_radius_km"`
	Location           *Coordinate        `json:"location,omitempty"`
	LocationUpdatedAt  *time.Time         `json:"location_updated_at,omitempty"`
	IsAvailable        bool               `json:"is_available"`
	IsActive           bool               `json:"is_active"`
	Rating             RatingSummary      `json:"rating"`
	Earnings           Earnings           `json:"earnings"`
	CompletedBookings  int64              `json:"completed_bookings"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerificationNotes  string             `json:"verification_notes,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (b *Barber) Clone() *Barber {
	c := *b
	if b.Pricing != nil {
		c.Pricing = make(map[string]int64, len(b.Pricing))
		for k, v := range b.Pricing {
			c.Pricing[k] = v
		}
	}
	c.Specialties = append([]string(nil), b.Specialties...)
	if b.Location != nil {
		l := *b.Location
		c.Location = &l
	}
	if b.LocationUpdatedAt != nil {
		t := *b.LocationUpdatedAt
		c.LocationUpdatedAt = &t
	}
	return &c
}

// BarberProfileUpdate carries the owner-editable profile fields. Nil fields are left
// unchanged.
type BarberProfileUpdate struct {
	DisplayName     *string
	Pricing         map[string]int64
	Specialties     []string
	ExperienceYears *int32
	ServiceRadiusKm *float64
}

// BarberStats is the dashboard view of a barber's counters.
type BarberStats struct {
	TotalEarnings      int64              `json:"total_earnings"`
	PendingEarnings    int64              `json:"pending_earnings"`
	ThisMonthEarnings  int64              `json:"this_month_earnings"`
	CompletedBookings  int64              `json:"completed_bookings"`
	Rating             RatingSummary      `json:"rating"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

// NearbyBarber is a barber summary annotated with its distance from the search point.
type NearbyBarber struct {
	BarberID        string           `json:"barber_id"`
	DisplayName     string           `json:"display_name"`
	Specialties     []string         `json:"specialties"`
	Pricing         map[string]int64 `json:"pricing"`
	ExperienceYears int32            `json:"experience_years"`
	Rating          RatingSummary    `json:"rating"`
	DistanceKm      float64          `json:"distance_km"`
}
