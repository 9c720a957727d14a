package repository

import (
	"context"
	"sync"

	"github.com/brajcamp/camp-registration/internal/model"
)

// MemoryStore keeps registrations in process memory.  Its lifecycle is
// process start to process end: a restart loses all records.  It exists for
// development and as the fallback when no database is configured; the
// handlers are indifferent to which implementation they receive.
type MemoryStore struct {
	mu   sync.Mutex
	recs []model.RegistrationRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Append stores a copy of the record.
func (s *MemoryStore) Append(ctx context.Context, rec *model.RegistrationRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, *rec)
	return nil
}

// List returns a copy of all records in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.RegistrationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RegistrationRecord, len(s.recs))
	copy(out, s.recs)
	return out, nil
}

// Stats computes the aggregate counts and revenue in one pass.
func (s *MemoryStore) Stats(ctx context.Context) (model.RegistrationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.RegistrationStats{
		TotalRegistrations:   len(s.recs),
		FacilitatorBreakdown: map[string]int{},
		AreaBreakdown:        map[string]int{},
		LevelBreakdown:       map[string]int{},
	}
	for _, r := range s.recs {
		switch r.Devotee.Accommodation {
		case model.AccommodationRoom:
			stats.RoomBookings++
		case model.AccommodationDormitory:
			stats.DormitoryBookings++
		}
		stats.TotalRevenue += r.Payment.Amount
		stats.FacilitatorBreakdown[r.Devotee.Facilitator]++
		stats.AreaBreakdown[r.Devotee.Area]++
		stats.LevelBreakdown[r.Devotee.Level]++
	}
	return stats, nil
}
