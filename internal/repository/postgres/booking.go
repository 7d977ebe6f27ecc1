package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository"
)

const bookingColumns = `id, customer_id, barber_id, services, total_amount, platform_fee, barber_earnings,
	commission_rate, status, scheduled_for, address, latitude, longitude, customer_notes, barber_notes,
	actual_start_time, actual_end_time, cancellation_reason, cancelled_by, payment_status, payment_reference,
	rating_score, rating_review, rated_at, version, created_at, updated_at`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "customerID", b.CustomerID, "barberID", b.BarberID)

	if !b.Balanced() {
		return fmt.Errorf("%w: fees of booking do not add up to its total", domain.ErrValidation)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	services, err := json.Marshal(b.Services)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if b.Version == 0 {
		b.Version = 1
	}

	query := `
		INSERT INTO bookings (
			id, customer_id, barber_id, services, total_amount, platform_fee, barber_earnings,
			commission_rate, status, scheduled_for, address, latitude, longitude, customer_notes,
			payment_status, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	logger.DatabaseCall("insert", "bookings", "bookingID", b.ID)
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.CustomerID, b.BarberID, services, b.TotalAmount, b.PlatformFee, b.BarberEarnings,
		b.CommissionRate, b.Status, b.ScheduledFor, b.Location.Address, b.Location.Latitude, b.Location.Longitude,
		b.CustomerNotes, b.PaymentStatus, b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Create", err, "bookingID", b.ID)
		return storeErr(err)
	}

	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	logger.EnterMethod("bookingRepository.GetByID", "bookingID", id)

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.GetByID", err, "bookingID", id)
		err = storeErr(err)
		if err == domain.ErrNotFound {
			return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id)
		}
		return nil, err
	}

	logger.ExitMethod("bookingRepository.GetByID", "bookingID", id, "status", b.Status, "version", b.Version)
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	logger.EnterMethod("bookingRepository.Update", "bookingID", b.ID, "status", b.Status, "version", expectedVersion)

	if err := casBooking(ctx, r.db, b, expectedVersion); err != nil {
		logger.ExitMethodWithError("bookingRepository.Update", err, "bookingID", b.ID)
		return err
	}

	logger.ExitMethod("bookingRepository.Update", "bookingID", b.ID, "version", b.Version)
	return nil
}

func (r *bookingRepository) Complete(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	logger.EnterMethod("bookingRepository.Complete", "bookingID", b.ID, "barberID", b.BarberID, "earnings", b.BarberEarnings)

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := casBooking(ctx, tx, b, expectedVersion); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE barbers SET
				earnings_total = earnings_total + $1,
				earnings_this_month = earnings_this_month + $1,
				completed_bookings = completed_bookings + 1,
				updated_at = $2
			WHERE id = $3
		`, b.BarberEarnings, b.UpdatedAt, b.BarberID)
		if err != nil {
			return storeErr(err)
		}
		return expectOne(res, fmt.Errorf("%w: barber %s", domain.ErrNotFound, b.BarberID))
	})
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Complete", err, "bookingID", b.ID)
		return err
	}

	logger.ExitMethod("bookingRepository.Complete", "bookingID", b.ID, "version", b.Version)
	return nil
}

func (r *bookingRepository) Rate(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	logger.EnterMethod("bookingRepository.Rate", "bookingID", b.ID, "barberID", b.BarberID)

	if b.Rating == nil {
		return fmt.Errorf("%w: booking %s has no rating to store", domain.ErrValidation, b.ID)
	}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := casBooking(ctx, tx, b, expectedVersion); err != nil {
			return err
		}
		return applyRating(ctx, tx, b.BarberID, b.Rating.Score, b.UpdatedAt)
	})
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Rate", err, "bookingID", b.ID)
		return err
	}

	logger.ExitMethod("bookingRepository.Rate", "bookingID", b.ID, "score", b.Rating.Score)
	return nil
}

func (r *bookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	logger.EnterMethod("bookingRepository.List", "customerID", filter.CustomerID, "barberID", filter.BarberID, "status", filter.Status)

	limit, offset, err := filter.Bounds()
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.List", err)
		return nil, 0, err
	}

	where := ` FROM bookings WHERE 1=1`
	var args []any
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		where += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filter.BarberID != "" {
		args = append(args, filter.BarberID)
		where += fmt.Sprintf(" AND barber_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*)"+where, args...).Scan(&count); err != nil {
		logger.ExitMethodWithError("bookingRepository.List", err)
		return nil, 0, storeErr(err)
	}

	query := "SELECT " + bookingColumns + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.List", err)
		return nil, 0, storeErr(err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, storeErr(err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr(err)
	}

	logger.ExitMethod("bookingRepository.List", "count", len(bookings), "total", count)
	return bookings, count, nil
}

func (r *bookingRepository) SumPendingEarnings(ctx context.Context, barberID string) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(barber_earnings), 0) FROM bookings
		WHERE barber_id = $1 AND status IN ('accepted', 'in_progress')
	`, barberID).Scan(&sum)
	if err != nil {
		return 0, storeErr(err)
	}
	return sum, nil
}

func (r *bookingRepository) Summary(ctx context.Context) (*domain.BookingSummary, error) {
	s := &domain.BookingSummary{}
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'completed'),
		       count(*) FILTER (WHERE status = 'cancelled'),
		       COALESCE(SUM(platform_fee) FILTER (WHERE status = 'completed'), 0)
		FROM bookings
	`).Scan(&s.TotalBookings, &s.CompletedBookings, &s.CancelledBookings, &s.PlatformRevenue)
	if err != nil {
		return nil, storeErr(err)
	}
	return s, nil
}

func (r *bookingRepository) Revenue(ctx context.Context, period domain.RevenuePeriod, limit int32) ([]domain.RevenuePoint, error) {
	logger.EnterMethod("bookingRepository.Revenue", "period", period, "limit", limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT date_trunc($1, actual_end_time AT TIME ZONE 'UTC') AS bucket,
		       count(*), SUM(total_amount), SUM(platform_fee), SUM(barber_earnings)
		FROM bookings
		WHERE status = 'completed' AND actual_end_time IS NOT NULL
		GROUP BY bucket
		ORDER BY bucket DESC
		LIMIT $2
	`, string(period), limit)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.Revenue", err)
		return nil, storeErr(err)
	}
	defer rows.Close()

	points := []domain.RevenuePoint{}
	for rows.Next() {
		var p domain.RevenuePoint
		if err := rows.Scan(&p.PeriodStart, &p.Bookings, &p.GrossAmount, &p.PlatformFees, &p.BarberEarnings); err != nil {
			return nil, storeErr(err)
		}
		p.PeriodStart = p.PeriodStart.UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	logger.ExitMethod("bookingRepository.Revenue", "points", len(points))
	return points, nil
}

func (r *bookingRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}
	return nil
}

// casBooking writes the mutable booking fields only if the stored version still equals
// expectedVersion, then advances b.Version.
func casBooking(ctx context.Context, ex execer, b *domain.Booking, expectedVersion int64) error {
	var cancelledBy sql.NullString
	if b.CancelledBy != nil {
		cancelledBy = sql.NullString{String: string(*b.CancelledBy), Valid: true}
	}
	var score sql.NullInt64
	var review string
	var ratedAt *time.Time
	if b.Rating != nil {
		score = sql.NullInt64{Int64: int64(b.Rating.Score), Valid: true}
		review = b.Rating.Review
		ratedAt = &b.Rating.RatedAt
	}
	updatedAt := time.Now().UTC()

	logger.DatabaseCall("update", "bookings", "bookingID", b.ID, "expectedVersion", expectedVersion)
	res, err := ex.ExecContext(ctx, `
		UPDATE bookings SET
			status = $1,
			barber_notes = $2,
			actual_start_time = $3,
			actual_end_time = $4,
			cancellation_reason = $5,
			cancelled_by = $6,
			payment_status = $7,
			payment_reference = $8,
			rating_score = $9,
			rating_review = $10,
			rated_at = $11,
			version = version + 1,
			updated_at = $12
		WHERE id = $13 AND version = $14
	`,
		b.Status, b.BarberNotes, b.ActualStartTime, b.ActualEndTime, b.CancellationReason, cancelledBy,
		b.PaymentStatus, b.PaymentReference, score, review, ratedAt, updatedAt, b.ID, expectedVersion,
	)
	if err != nil {
		logger.DatabaseResult("update", 0, err)
		return storeErr(err)
	}
	if err := expectOne(res, fmt.Errorf("%w: booking %s at version %d", domain.ErrConcurrentModification, b.ID, expectedVersion)); err != nil {
		return err
	}
	logger.DatabaseResult("update", 1, nil)

	b.Version = expectedVersion + 1
	b.UpdatedAt = updatedAt
	return nil
}

func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		b           domain.Booking
		services    []byte
		cancelledBy sql.NullString
		score       sql.NullInt64
		review      string
		ratedAt     *time.Time
	)
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.BarberID, &services, &b.TotalAmount, &b.PlatformFee, &b.BarberEarnings,
		&b.CommissionRate, &b.Status, &b.ScheduledFor, &b.Location.Address, &b.Location.Latitude, &b.Location.Longitude,
		&b.CustomerNotes, &b.BarberNotes, &b.ActualStartTime, &b.ActualEndTime, &b.CancellationReason, &cancelledBy,
		&b.PaymentStatus, &b.PaymentReference, &score, &review, &ratedAt, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(services, &b.Services); err != nil {
		return nil, fmt.Errorf("decode services of booking %s: %w", b.ID, err)
	}
	if cancelledBy.Valid {
		role := domain.Role(cancelledBy.String)
		b.CancelledBy = &role
	}
	if score.Valid {
		b.Rating = &domain.BookingRating{Score: int(score.Int64), Review: review}
		if ratedAt != nil {
			b.Rating.RatedAt = *ratedAt
		}
	}
	return &b, nil
}
