package media

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	items map[string]Media
}

func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[string]Media)}
}

func (r *memoryRepository) Create(ctx context.Context, m *Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.CreatedAt = time.Now().UTC()
	r.items[m.ID] = *m
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}
