package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/service"
)

type createBookingRequest struct {
	BarberID     string                  `json:"barber_id"`
	Services     []domain.BookingService `json:"services"`
	ScheduledFor time.Time               `json:"scheduled_for"`
	Location     domain.BookingLocation  `json:"location"`
	Notes        string                  `json:"notes"`
}

func (req createBookingRequest) toInput(customerID string) service.CreateBookingInput {
	return service.CreateBookingInput{
		CustomerID:   customerID,
		BarberID:     req.BarberID,
		Services:     req.Services,
		ScheduledFor: req.ScheduledFor,
		Location:     req.Location,
		Notes:        req.Notes,
	}
}

type transitionRequest struct {
	Status domain.BookingStatus `json:"status"`
	Notes  string               `json:"notes"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type rateRequest struct {
	Score  int    `json:"score"`
	Review string `json:"review"`
}

type onboardRequest struct {
	DisplayName     string             `json:"display_name"`
	Pricing         map[string]int64   `json:"pricing"`
	Specialties     []string           `json:"specialties"`
	ExperienceYears int32              `json:"experience_years"`
	ServiceRadiusKm float64            `json:"service_radius_km"`
	Location        *domain.Coordinate `json:"location"`
}

func (req onboardRequest) toInput() service.OnboardBarberInput {
	return service.OnboardBarberInput{
		DisplayName:     req.DisplayName,
		Pricing:         req.Pricing,
		Specialties:     req.Specialties,
		ExperienceYears: req.ExperienceYears,
		ServiceRadiusKm: req.ServiceRadiusKm,
		Location:        req.Location,
	}
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type profileUpdateRequest struct {
	DisplayName     *string          `json:"display_name"`
	Pricing         map[string]int64 `json:"pricing"`
	Specialties     []string         `json:"specialties"`
	ExperienceYears *int32           `json:"experience_years"`
	ServiceRadiusKm *float64         `json:"service_radius_km"`
}

func (req profileUpdateRequest) toUpdate() domain.BarberProfileUpdate {
	return domain.BarberProfileUpdate{
		DisplayName:     req.DisplayName,
		Pricing:         req.Pricing,
		Specialties:     req.Specialties,
		ExperienceYears: req.ExperienceYears,
		ServiceRadiusKm: req.ServiceRadiusKm,
	}
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

type verifyRequest struct {
	Status domain.VerificationStatus `json:"status"`
	Notes  string                    `json:"notes"`
}

type paymentWebhookRequest struct {
	BookingID string               `json:"booking_id"`
	Status    domain.PaymentStatus `json:"status"`
	Reference string               `json:"reference"`
}

type bookingPage struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
	Page     int32            `json:"page"`
	PageSize int32            `json:"page_size"`
}

// barberProfile is the public view of a barber. Earnings and review notes stay private.
type barberProfile struct {
	ID                 string                    `json:"id"`
	DisplayName        string                    `json:"display_name"`
	Pricing            map[string]int64          `json:"pricing"`
	Specialties        []string                  `json:"specialties"`
	ExperienceYears    int32                     `json:"experience_years"`
	ServiceRadiusKm    float64                   `json:"service_radius_km"`
	IsAvailable        bool                      `json:"is_available"`
	Rating             domain.RatingSummary      `json:"rating"`
	CompletedBookings  int64                     `json:"completed_bookings"`
	VerificationStatus domain.VerificationStatus `json:"verification_status"`
}

func mapBarberProfile(b *domain.Barber) barberProfile {
	return barberProfile{
		ID:                 b.ID,
		DisplayName:        b.DisplayName,
		Pricing:            b.Pricing,
		Specialties:        b.Specialties,
		ExperienceYears:    b.ExperienceYears,
		ServiceRadiusKm:    b.ServiceRadiusKm,
		IsAvailable:        b.IsAvailable,
		Rating:             b.Rating,
		CompletedBookings:  b.CompletedBookings,
		VerificationStatus: b.VerificationStatus,
	}
}

func mapBookings(list []domain.Booking) []domain.Booking {
	if list == nil {
		return []domain.Booking{}
	}
	return list
}

func pageParams(r *http.Request) (page, pageSize int32, err error) {
	q := r.URL.Query()
	if page, err = int32Param(q.Get("page"), "page"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = int32Param(q.Get("page_size"), "page_size"); err != nil {
		return 0, 0, err
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}
	return page, pageSize, nil
}

func int32Param(raw, name string) (int32, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrValidation, name)
	}
	return int32(n), nil
}

func floatParam(raw, name string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, name)
	}
	return f, nil
}
