package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository"
)

const barberColumns = `id, user_id, display_name, pricing, specialties, experience_years, service_radius_km,
	latitude, longitude, location_updated_at, is_available, is_active, rating_average, rating_count,
	earnings_total, earnings_this_month, completed_bookings, verification_status, verification_notes,
	created_at, updated_at`

type barberRepository struct {
	db *sql.DB
}

func NewBarberRepository(db *sql.DB) repository.BarberRepository {
	return &barberRepository{db: db}
}

func (r *barberRepository) Create(ctx context.Context, b *domain.Barber) error {
	logger.EnterMethod("barberRepository.Create", "userID", b.UserID)

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	pricing, err := json.Marshal(b.Pricing)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	var lat, lng sql.NullFloat64
	if b.Location != nil {
		lat = sql.NullFloat64{Float64: b.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: b.Location.Longitude, Valid: true}
	}

	query := `
		INSERT INTO barbers (
			id, user_id, display_name, pricing, specialties, experience_years, service_radius_km,
			latitude, longitude, location_updated_at, is_available, is_active, verification_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.db.ExecContext(ctx, query,
		b.ID, b.UserID, b.DisplayName, pricing, pq.Array(b.Specialties), b.ExperienceYears, b.ServiceRadiusKm,
		lat, lng, b.LocationUpdatedAt, b.IsAvailable, b.IsActive, b.VerificationStatus, now, now,
	)
	if err != nil {
		logger.ExitMethodWithError("barberRepository.Create", err, "userID", b.UserID)
		return storeErr(err)
	}

	logger.ExitMethod("barberRepository.Create", "barberID", b.ID)
	return nil
}

func (r *barberRepository) GetByID(ctx context.Context, id string) (*domain.Barber, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: barber %s", domain.ErrNotFound, id)
	}
	return r.getOne(ctx, "barberRepository.GetByID", `SELECT `+barberColumns+` FROM barbers WHERE id = $1`, id)
}

func (r *barberRepository) GetByUserID(ctx context.Context, userID string) (*domain.Barber, error) {
	return r.getOne(ctx, "barberRepository.GetByUserID", `SELECT `+barberColumns+` FROM barbers WHERE user_id = $1`, userID)
}

func (r *barberRepository) getOne(ctx context.Context, method, query, key string) (*domain.Barber, error) {
	logger.EnterMethod(method, "key", key)

	b, err := scanBarber(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		logger.ExitMethodWithError(method, err, "key", key)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: barber %s", domain.ErrNotFound, key)
		}
		return nil, storeErr(err)
	}

	logger.ExitMethod(method, "barberID", b.ID)
	return b, nil
}

func (r *barberRepository) UpdateLocation(ctx context.Context, id string, location domain.Coordinate, at time.Time) error {
	return r.execOne(ctx, "barberRepository.UpdateLocation", id, `
		UPDATE barbers SET latitude = $1, longitude = $2, location_updated_at = $3, updated_at = $3
		WHERE id = $4
	`, location.Latitude, location.Longitude, at, id)
}

func (r *barberRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.execOne(ctx, "barberRepository.SetAvailability", id, `
		UPDATE barbers SET is_available = $1, updated_at = $2 WHERE id = $3
	`, available, time.Now().UTC(), id)
}

func (r *barberRepository) SetVerification(ctx context.Context, id string, status domain.VerificationStatus, notes string) error {
	return r.execOne(ctx, "barberRepository.SetVerification", id, `
		UPDATE barbers SET verification_status = $1, verification_notes = $2, updated_at = $3 WHERE id = $4
	`, status, notes, time.Now().UTC(), id)
}

func (r *barberRepository) UpdateProfile(ctx context.Context, b *domain.Barber) error {
	pricing, err := json.Marshal(b.Pricing)
	if err != nil {
		return err
	}
	return r.execOne(ctx, "barberRepository.UpdateProfile", b.ID, `
		UPDATE barbers SET display_name = $1, pricing = $2, specialties = $3, experience_years = $4,
			service_radius_km = $5, updated_at = $6
		WHERE id = $7
	`, b.DisplayName, pricing, pq.Array(b.Specialties), b.ExperienceYears, b.ServiceRadiusKm, time.Now().UTC(), b.ID)
}

func (r *barberRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, "barberRepository.SetActive", id, `
		UPDATE barbers SET is_active = $1, updated_at = $2 WHERE id = $3
	`, active, time.Now().UTC(), id)
}

func (r *barberRepository) ListByVerification(ctx context.Context, status domain.VerificationStatus) ([]domain.Barber, error) {
	return r.list(ctx, `SELECT `+barberColumns+` FROM barbers WHERE verification_status = $1 ORDER BY created_at ASC`, status)
}

func (r *barberRepository) ListLocated(ctx context.Context) ([]domain.Barber, error) {
	return r.list(ctx, `SELECT `+barberColumns+` FROM barbers WHERE latitude IS NOT NULL AND longitude IS NOT NULL`)
}

func (r *barberRepository) CountByVerification(ctx context.Context) (map[domain.VerificationStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT verification_status, count(*) FROM barbers GROUP BY verification_status`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	counts := map[domain.VerificationStatus]int64{}
	for rows.Next() {
		var status domain.VerificationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storeErr(err)
		}
		counts[status] = n
	}
	return counts, storeErr(rows.Err())
}

func (r *barberRepository) ResetMonthlyEarnings(ctx context.Context) (int64, error) {
	logger.DatabaseCall("update", "barbers.earnings_this_month")
	res, err := r.db.ExecContext(ctx, `UPDATE barbers SET earnings_this_month = 0, updated_at = $1 WHERE earnings_this_month <> 0`, time.Now().UTC())
	if err != nil {
		logger.DatabaseResult("update", 0, err)
		return 0, storeErr(err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("update", n, nil)
	return n, nil
}

func (r *barberRepository) RecomputeRatings(ctx context.Context) (int64, error) {
	logger.DatabaseCall("update", "barbers.rating")
	res, err := r.db.ExecContext(ctx, `
		UPDATE barbers b SET
			rating_average = COALESCE(agg.avg_score, 0),
			rating_count = COALESCE(agg.cnt, 0),
			updated_at = $1
		FROM barbers b2
		LEFT JOIN (
			SELECT barber_id, AVG(rating_score)::DOUBLE PRECISION AS avg_score, count(*) AS cnt
			FROM bookings WHERE rating_score IS NOT NULL
			GROUP BY barber_id
		) agg ON agg.barber_id = b2.id
		WHERE b.id = b2.id
		  AND (b.rating_count <> COALESCE(agg.cnt, 0) OR b.rating_average <> COALESCE(agg.avg_score, 0))
	`, time.Now().UTC())
	if err != nil {
		logger.DatabaseResult("update", 0, err)
		return 0, storeErr(err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("update", n, nil)
	return n, nil
}

func (r *barberRepository) execOne(ctx context.Context, method, id, query string, args ...any) error {
	logger.EnterMethod(method, "barberID", id)

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: barber %s", domain.ErrNotFound, id)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err == nil {
		err = expectOne(res, fmt.Errorf("%w: barber %s", domain.ErrNotFound, id))
	} else {
		err = storeErr(err)
	}
	if err != nil {
		logger.ExitMethodWithError(method, err, "barberID", id)
		return err
	}

	logger.ExitMethod(method, "barberID", id)
	return nil
}

func (r *barberRepository) list(ctx context.Context, query string, args ...any) ([]domain.Barber, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	barbers := []domain.Barber{}
	for rows.Next() {
		b, err := scanBarber(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		barbers = append(barbers, *b)
	}
	return barbers, storeErr(rows.Err())
}

// applyRating folds score into the running average in a single statement. The SET
// expressions all see the pre-update row, so the average uses the old count.
func applyRating(ctx context.Context, ex execer, barberID string, score int, at time.Time) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE barbers SET
			rating_average = (rating_average * rating_count + $1) / (rating_count + 1),
			rating_count = rating_count + 1,
			updated_at = $2
		WHERE id = $3
	`, float64(score), at, barberID)
	if err != nil {
		return storeErr(err)
	}
	return expectOne(res, fmt.Errorf("%w: barber %s", domain.ErrNotFound, barberID))
}

func scanBarber(row scanner) (*domain.Barber, error) {
	var (
		b        domain.Barber
		pricing  []byte
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.DisplayName, &pricing, pq.Array(&b.Specialties), &b.ExperienceYears, &b.ServiceRadiusKm,
		&lat, &lng, &b.LocationUpdatedAt, &b.IsAvailable, &b.IsActive, &b.Rating.Average, &b.Rating.Count,
		&b.Earnings.Total, &b.Earnings.ThisMonth, &b.CompletedBookings, &b.VerificationStatus, &b.VerificationNotes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(pricing) > 0 {
		if err := json.Unmarshal(pricing, &b.Pricing); err != nil {
			return nil, fmt.Errorf("decode pricing of barber %s: %w", b.ID, err)
		}
	}
	if lat.Valid && lng.Valid {
		b.Location = &domain.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	return &b, nil
}
