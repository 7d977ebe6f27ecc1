package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

type Store struct {
	db       *sql.DB
	bookings repository.BookingRepository
	barbers  repository.BarberRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		bookings: NewBookingRepository(db),
		barbers:  NewBarberRepository(db),
	}
}

func (s *Store) Bookings() repository.BookingRepository { return s.bookings }
func (s *Store) Barbers() repository.BarberRepository   { return s.barbers }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("migrate", "schema.sql")
	_, err := db.ExecContext(ctx, schema)
	logger.DatabaseResult("migrate", 0, err)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// storeErr translates driver errors into domain errors. Missing rows become
// ErrNotFound; everything else is reported as the store being unavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrValidation, pqErr.Detail)
	}
	return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
}

// expectOne checks that a conditional update touched exactly one row.
func expectOne(res sql.Result, miss error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if n == 0 {
		return miss
	}
	return nil
}
