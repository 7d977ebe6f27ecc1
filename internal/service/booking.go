package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/geo"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository"
	"groomosphere-backend/internal/utils"
)

const settleTimeout = 30 * time.Second

type BookingOptions struct {
	CommissionRate func() float64
	MaxRetries     int
	// Index, when set, is refreshed with the barber's counters after completion and rating.
	Index *geo.Index
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	barberRepo  repository.BarberRepository
	payments    PaymentProcessor
	opts        BookingOptions
	now         func() time.Time
}

// NewBookingService builds the ledger. CommissionRate is read on every CreateBooking so
// a config reload applies to new bookings only.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	barberRepo repository.BarberRepository,
	payments PaymentProcessor,
	opts BookingOptions,
) BookingService {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.CommissionRate == nil {
		opts.CommissionRate = func() float64 { return 0.2 }
	}
	return &bookingService{
		bookingRepo: bookingRepo,
		barberRepo:  barberRepo,
		payments:    payments,
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "customerID", in.CustomerID, "barberID", in.BarberID)

	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	if in.ScheduledFor.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required", domain.ErrValidation)
	}
	loc := domain.Coordinate{Latitude: in.Location.Latitude, Longitude: in.Location.Longitude}
	if !loc.Valid() {
		return nil, fmt.Errorf("%w: invalid booking location", domain.ErrValidation)
	}

	rate := s.opts.CommissionRate()
	fees, err := utils.ComputeFees(in.Services, rate)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	barber, err := s.barberRepo.GetByID(ctx, in.BarberID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err, "barberID", in.BarberID)
		return nil, err
	}
	if !barber.IsActive {
		return nil, fmt.Errorf("%w: barber %s is not accepting bookings", domain.ErrInvalidState, barber.ID)
	}

	booking := &domain.Booking{
		CustomerID:     in.CustomerID,
		BarberID:       barber.ID,
		Services:       append([]domain.BookingService(nil), in.Services...),
		TotalAmount:    fees.TotalAmount,
		PlatformFee:    fees.PlatformFee,
		BarberEarnings: fees.BarberEarnings,
		CommissionRate: rate,
		Status:         domain.BookingStatusPending,
		ScheduledFor:   in.ScheduledFor.UTC(),
		Location:       in.Location,
		CustomerNotes:  in.Notes,
		PaymentStatus:  domain.PaymentStatusPending,
		Version:        1,
		CreatedAt:      s.now(),
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	logger.Event(ctx, "booking.created", "booking_id", booking.ID, "barber_id", booking.BarberID, "total", booking.TotalAmount)
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", booking.ID)
	return booking, nil
}

func (s *bookingService) TransitionBooking(ctx context.Context, bookingID string, actor domain.Actor, target domain.BookingStatus, notes string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.TransitionBooking", "bookingID", bookingID, "actor", actor.UserID, "role", actor.Role, "target", target)

	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, target)
	}

	var result *domain.Booking
	err := s.withRetry(ctx, func() error {
		b, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.checkParticipant(ctx, b, actor); err != nil {
			return err
		}
		if b.Status.Terminal() {
			if b.Status == domain.BookingStatusCompleted && target == domain.BookingStatusCancelled {
				return fmt.Errorf("%w: completed bookings cannot be cancelled", domain.ErrInvalidState)
			}
			return fmt.Errorf("%w: booking is already %s", domain.ErrIllegalTransition, b.Status)
		}
		if !domain.CanTransition(b.Status, target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, b.Status, target)
		}
		if !domain.RoleMayTransition(actor.Role, b.Status, target) {
			return fmt.Errorf("%w: %s may not move a booking from %s to %s", domain.ErrAuthorization, actor.Role, b.Status, target)
		}

		expected := b.Version
		now := s.now()
		if actor.Role == domain.RoleBarber && notes != "" && target != domain.BookingStatusCancelled {
			b.BarberNotes = notes
		}
		b.Status = target

		switch target {
		case domain.BookingStatusInProgress:
			b.ActualStartTime = &now
		case domain.BookingStatusCompleted:
			b.ActualEndTime = &now
			b.PaymentStatus = domain.PaymentStatusPaid
		case domain.BookingStatusCancelled:
			role := actor.Role
			b.CancelledBy = &role
			b.CancellationReason = notes
		}

		if target == domain.BookingStatusCompleted {
			err = s.bookingRepo.Complete(ctx, b, expected)
		} else {
			err = s.bookingRepo.Update(ctx, b, expected)
		}
		if err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.TransitionBooking", err, "bookingID", bookingID)
		return nil, err
	}

	logger.Event(ctx, "booking."+string(result.Status), "booking_id", result.ID, "actor", actor.UserID, "role", actor.Role, "version", result.Version)
	if result.Status == domain.BookingStatusCompleted {
		s.reindexBarber(ctx, result.BarberID)
		s.settleAsync(ctx, result.ID, result.TotalAmount)
	}

	logger.ExitMethod("bookingService.TransitionBooking", "bookingID", bookingID, "status", result.Status)
	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, actor domain.Actor, reason string) (*domain.Booking, error) {
	return s.TransitionBooking(ctx, bookingID, actor, domain.BookingStatusCancelled, reason)
}

func (s *bookingService) RateBooking(ctx context.Context, bookingID, customerID string, score int, review string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RateBooking", "bookingID", bookingID, "customerID", customerID, "score", score)

	var result *domain.Booking
	err := s.withRetry(ctx, func() error {
		b, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusCompleted {
			return fmt.Errorf("%w: only completed bookings can be rated", domain.ErrInvalidState)
		}
		if b.CustomerID != customerID {
			return fmt.Errorf("%w: only the booking customer can rate it", domain.ErrAuthorization)
		}
		if err := utils.ValidateScore(score); err != nil {
			return err
		}
		if b.Rating != nil {
			return fmt.Errorf("%w: booking %s", domain.ErrAlreadyRated, b.ID)
		}

		expected := b.Version
		b.Rating = &domain.BookingRating{Score: score, Review: review, RatedAt: s.now()}
		if err := s.bookingRepo.Rate(ctx, b, expected); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.RateBooking", err, "bookingID", bookingID)
		return nil, err
	}

	logger.Event(ctx, "booking.rated", "booking_id", result.ID, "barber_id", result.BarberID, "score", score)
	s.reindexBarber(ctx, result.BarberID)
	logger.ExitMethod("bookingService.RateBooking", "bookingID", bookingID)
	return result, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkParticipant(ctx, b, actor); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	filter := domain.BookingFilter{Status: status, Page: page, PageSize: pageSize}

	switch actor.Role {
	case domain.RoleCustomer:
		filter.CustomerID = actor.UserID
	case domain.RoleBarber:
		barber, err := s.barberRepo.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		filter.BarberID = barber.ID
	case domain.RoleAdmin:
	default:
		return nil, 0, fmt.Errorf("%w: unknown role %q", domain.ErrAuthorization, actor.Role)
	}
	return s.bookingRepo.List(ctx, filter)
}

func (s *bookingService) ReconcilePayment(ctx context.Context, bookingID string, status domain.PaymentStatus, reference string) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.ReconcilePayment", "bookingID", bookingID, "status", status)

	if status != domain.PaymentStatusPaid && status != domain.PaymentStatusFailed {
		return nil, fmt.Errorf("%w: payment status must be paid or failed", domain.ErrValidation)
	}

	var result *domain.Booking
	err := s.withRetry(ctx, func() error {
		b, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusCompleted {
			return fmt.Errorf("%w: payments settle only for completed bookings", domain.ErrInvalidState)
		}
		expected := b.Version
		b.PaymentStatus = status
		if reference != "" {
			b.PaymentReference = reference
		}
		if err := s.bookingRepo.Update(ctx, b, expected); err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.ReconcilePayment", err, "bookingID", bookingID)
		return nil, err
	}

	logger.Event(ctx, "booking.payment_"+string(status), "booking_id", result.ID, "reference", result.PaymentReference)
	logger.ExitMethod("bookingService.ReconcilePayment", "bookingID", bookingID)
	return result, nil
}

// checkParticipant allows admins, the booking's customer and the user behind the
// booking's barber profile.
func (s *bookingService) checkParticipant(ctx context.Context, b *domain.Booking, actor domain.Actor) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleCustomer:
		if b.CustomerID == actor.UserID {
			return nil
		}
	case domain.RoleBarber:
		barber, err := s.barberRepo.GetByID(ctx, b.BarberID)
		if err != nil {
			return err
		}
		if barber.UserID == actor.UserID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s is not a participant of booking %s", domain.ErrAuthorization, actor.Role, actor.UserID, b.ID)
}

// reindexBarber pushes the barber's committed counters into the geo index. The booking
// write has already succeeded, so a failed read only leaves the entry stale until the
// next index refresh.
func (s *bookingService) reindexBarber(ctx context.Context, barberID string) {
	if s.opts.Index == nil {
		return
	}
	barber, err := s.barberRepo.GetByID(ctx, barberID)
	if err != nil {
		logger.WarnContext(ctx, "geo index refresh skipped", "barber_id", barberID, "error", err)
		return
	}
	s.opts.Index.Upsert(barber)
}

// withRetry re-runs fn against fresh state while it loses compare-and-swap races, up to
// the configured number of attempts.
func (s *bookingService) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
		logger.Debug("retrying after concurrent modification", "attempt", attempt, "error", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return err
		}
	}
	return err
}

// settleAsync hands the completed booking to the payment processor without blocking the
// caller. A definitive result is written back through ReconcilePayment.
func (s *bookingService) settleAsync(ctx context.Context, bookingID string, amount int64) {
	if s.payments == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, settleTimeout)
		defer cancel()
		log := logger.WithBooking(bookingID)

		res, err := s.payments.ChargeOrSettle(ctx, bookingID, amount)
		if err != nil {
			log.Error("payment settlement failed", "amount", amount, "error", err)
			return
		}
		log.Debug("payment handed off", "reference", res.Reference, "status", res.Status)
		if res.Status == domain.PaymentStatusPaid || res.Status == domain.PaymentStatusFailed {
			if _, err := s.ReconcilePayment(ctx, bookingID, res.Status, res.Reference); err != nil {
				log.Error("recording payment result failed", "error", err)
			}
		}
	}()
}
