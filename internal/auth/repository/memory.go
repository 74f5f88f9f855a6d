package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryRepository(users ...model.User) *MemoryRepository {
	r := &MemoryRepository{users: map[string]model.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
