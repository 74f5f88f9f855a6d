package repository

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type MemoryRepository struct {
	mu        sync.RWMutex
	locations []model.Location
}

func NewMemoryRepository(locations ...model.Location) *MemoryRepository {
	return &MemoryRepository{locations: locations}
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]model.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Location, len(r.locations))
	copy(out, r.locations)
	return out, nil
}

func (r *MemoryRepository) Add(l model.Location) {
	r.mu.Lock()
	r.locations = append(r.locations, l)
	r.mu.Unlock()
}
