package geo

import (
	"sync"

	"groomosphere-backend/internal/domain"
)

// Entry is the searchable projection of a barber.
type Entry struct {
	BarberID           string
	Location           domain.Coordinate
	ServiceRadiusKm    float64
	IsAvailable        bool
	IsActive           bool
	VerificationStatus domain.VerificationStatus
	Rating             domain.RatingSummary
	DisplayName        string
	Specialties        []string
	Pricing            map[string]int64
	ExperienceYears    int32
}

// Match is an index entry annotated with its distance from the query point.
type Match struct {
	Entry
	DistanceKm float64
}

// Index is an in-memory spatial index of barbers. Readers run in parallel and may
// observe slightly stale entries.
type Index struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewIndex() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// EntryFromBarber projects b into an index entry. ok is false when the barber has no
// coordinate yet and therefore cannot be located.
func EntryFromBarber(b *domain.Barber) (Entry, bool) {
	if b == nil || b.Location == nil {
		return Entry{}, false
	}
	return Entry{
		BarberID:           b.ID,
		Location:           *b.Location,
		ServiceRadiusKm:    b.ServiceRadiusKm,
		IsAvailable:        b.IsAvailable,
		IsActive:           b.IsActive,
		VerificationStatus: b.VerificationStatus,
		Rating:             b.Rating,
		DisplayName:        b.DisplayName,
		Specialties:        append([]string(nil), b.Specialties...),
		Pricing:            copyPricing(b.Pricing),
		ExperienceYears:    b.ExperienceYears,
	}, true
}

// Upsert refreshes the entry for b, or removes it if b has no location. A nil Index
// ignores updates, for processes that never serve matching.
func (i *Index) Upsert(b *domain.Barber) {
	if i == nil {
		return
	}
	e, ok := EntryFromBarber(b)
	i.mu.Lock()
	defer i.mu.Unlock()
	if !ok {
		if b != nil {
			delete(i.entries, b.ID)
		}
		return
	}
	i.entries[e.BarberID] = e
}

func (i *Index) Remove(barberID string) {
	if i == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, barberID)
}

// Replace swaps the whole index content in one step.
func (i *Index) Replace(barbers []*domain.Barber) {
	next := make(map[string]Entry, len(barbers))
	for _, b := range barbers {
		if e, ok := EntryFromBarber(b); ok {
			next[e.BarberID] = e
		}
	}
	i.mu.Lock()
	i.entries = next
	i.mu.Unlock()
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// QueryNearby returns every entry within min(maxRadiusKm, entry service radius) of point.
// A non-positive radius matches nothing.
func (i *Index) QueryNearby(point domain.Coordinate, maxRadiusKm float64) []Match {
	matches := []Match{}
	if maxRadiusKm <= 0 {
		return matches
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, e := range i.entries {
		limit := maxRadiusKm
		if e.ServiceRadiusKm < limit {
			limit = e.ServiceRadiusKm
		}
		d := HaversineKm(point, e.Location)
		if d <= limit {
			matches = append(matches, Match{Entry: e, DistanceKm: d})
		}
	}
	return matches
}

func copyPricing(p map[string]int64) map[string]int64 {
	if p == nil {
		return nil
	}
	out := make(map[string]int64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
