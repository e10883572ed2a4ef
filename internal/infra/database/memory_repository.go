package database

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/naileon/karte-api/internal/entity"
)

// MemoryKarteRepository keeps kartes in process memory. Like Airtable it has
// no uniqueness constraint on the user id.
type MemoryKarteRepository struct {
	mu      sync.RWMutex
	records []entity.KarteRecord
}

func NewMemoryKarteRepository() *MemoryKarteRepository {
	return &MemoryKarteRepository{}
}

func (r *MemoryKarteRepository) FindByUserID(ctx context.Context, userID string) (*entity.KarteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *entity.KarteRecord
	for i := range r.records {
		rec := &r.records[i]
		if rec.Karte.UserID != userID {
			continue
		}
		// ISO-8601 UTC strings sort chronologically.
		if latest == nil || rec.Karte.UpdatedAt > latest.Karte.UpdatedAt {
			latest = rec
		}
	}
	if latest == nil {
		return nil, entity.ErrKarteNotFound
	}

	found := *latest
	return &found, nil
}

func (r *MemoryKarteRepository) Create(ctx context.Context, k *entity.Karte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := "rec" + uuid.NewString()
	r.records = append(r.records, entity.KarteRecord{ID: id, Karte: *k})
	return id, nil
}

// Update overwrites everything but the identity fields.
func (r *MemoryKarteRepository) Update(ctx context.Context, recordID string, k *entity.Karte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].ID != recordID {
			continue
		}
		updated := *k
		updated.UserID = r.records[i].Karte.UserID
		updated.Timestamp = r.records[i].Karte.Timestamp
		r.records[i].Karte = updated
		return nil
	}
	return entity.ErrKarteNotFound
}

// Records returns a copy of every stored record in insertion order.
func (r *MemoryKarteRepository) Records() []entity.KarteRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.KarteRecord, len(r.records))
	copy(out, r.records)
	return out
}
