package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/utils"
)

type barberRepository Store

func (r *barberRepository) Create(ctx context.Context, b *domain.Barber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUser[b.UserID]; taken {
		return fmt.Errorf("%w: user %s already has a barber profile", domain.ErrValidation, b.UserID)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := r.now()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.barbers[b.ID] = b.Clone()
	r.byUser[b.UserID] = b.ID
	return nil
}

func (r *barberRepository) GetByID(ctx context.Context, id string) (*domain.Barber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.barbers[id]
	if !ok {
		return nil, fmt.Errorf("%w: barber %s", domain.ErrNotFound, id)
	}
	return b.Clone(), nil
}

func (r *barberRepository) GetByUserID(ctx context.Context, userID string) (*domain.Barber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("%w: barber for user %s", domain.ErrNotFound, userID)
	}
	return r.barbers[id].Clone(), nil
}

func (r *barberRepository) UpdateLocation(ctx context.Context, id string, location domain.Coordinate, at time.Time) error {
	return r.mutate(id, func(b *domain.Barber) {
		loc := location
		b.Location = &loc
		b.LocationUpdatedAt = &at
		b.UpdatedAt = at
	})
}

func (r *barberRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.mutate(id, func(b *domain.Barber) {
		b.IsAvailable = available
		b.UpdatedAt = r.now()
	})
}

func (r *barberRepository) SetVerification(ctx context.Context, id string, status domain.VerificationStatus, notes string) error {
	return r.mutate(id, func(b *domain.Barber) {
		b.VerificationStatus = status
		b.VerificationNotes = notes
		b.UpdatedAt = r.now()
	})
}

func (r *barberRepository) UpdateProfile(ctx context.Context, p *domain.Barber) error {
	next := p.Clone()
	return r.mutate(p.ID, func(b *domain.Barber) {
		b.DisplayName = next.DisplayName
		b.Pricing = next.Pricing
		b.Specialties = next.Specialties
		b.ExperienceYears = next.ExperienceYears
		b.ServiceRadiusKm = next.ServiceRadiusKm
		b.UpdatedAt = r.now()
	})
}

func (r *barberRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.mutate(id, func(b *domain.Barber) {
		b.IsActive = active
		b.UpdatedAt = r.now()
	})
}

func (r *barberRepository) mutate(id string, fn func(b *domain.Barber)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.barbers[id]
	if !ok {
		return fmt.Errorf("%w: barber %s", domain.ErrNotFound, id)
	}
	fn(b)
	return nil
}

func (r *barberRepository) ListByVerification(ctx context.Context, status domain.VerificationStatus) ([]domain.Barber, error) {
	return r.list(func(b *domain.Barber) bool { return b.VerificationStatus == status }), nil
}

func (r *barberRepository) ListLocated(ctx context.Context) ([]domain.Barber, error) {
	return r.list(func(b *domain.Barber) bool { return b.Location != nil }), nil
}

func (r *barberRepository) list(keep func(b *domain.Barber) bool) []domain.Barber {
	r.mu.Lock()
	out := []domain.Barber{}
	for _, b := range r.barbers {
		if keep(b) {
			out = append(out, *b.Clone())
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *barberRepository) CountByVerification(ctx context.Context) (map[domain.VerificationStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[domain.VerificationStatus]int64{}
	for _, b := range r.barbers {
		counts[b.VerificationStatus]++
	}
	return counts, nil
}

func (r *barberRepository) ResetMonthlyEarnings(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, b := range r.barbers {
		if b.Earnings.ThisMonth != 0 {
			b.Earnings.ThisMonth = 0
			b.UpdatedAt = r.now()
			n++
		}
	}
	return n, nil
}

func (r *barberRepository) RecomputeRatings(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scores := map[string][]int{}
	for _, bk := range r.bookings {
		if bk.Rating != nil {
			scores[bk.BarberID] = append(scores[bk.BarberID], bk.Rating.Score)
		}
	}

	var n int64
	for id, b := range r.barbers {
		next := utils.AggregateRatings(scores[id])
		if next != b.Rating {
			b.Rating = next
			b.UpdatedAt = r.now()
			n++
		}
	}
	return n, nil
}
