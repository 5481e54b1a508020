package meetingtype

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*MeetingType
	order []string
}

// NewMemoryRepository returns a Repository kept in process memory. List preserves
// insertion order.
func NewMemoryRepository() Repository {
	return &memoryRepository{byID: make(map[string]*MeetingType)}
}

func (r *memoryRepository) Create(ctx context.Context, mt *MeetingType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	mt.ID = uuid.NewString()
	mt.CreatedAt = now
	mt.UpdatedAt = now
	r.byID[mt.ID] = mt.Clone()
	r.order = append(r.order, mt.ID)
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*MeetingType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mt, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return mt.Clone(), nil
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*MeetingType, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*MeetingType
	for _, id := range r.order {
		mt := r.byID[id]
		if filter.OwnerID != "" && mt.OwnerID != filter.OwnerID {
			continue
		}
		if filter.ActiveOnly && !mt.IsActive {
			continue
		}
		matched = append(matched, mt)
	}

	total := len(matched)
	from, to := pageBounds(filter.Page, filter.PageSize, total)
	result := make([]*MeetingType, 0, to-from)
	for _, mt := range matched[from:to] {
		result = append(result, mt.Clone())
	}
	return result, total, nil
}

func (r *memoryRepository) Update(ctx context.Context, mt *MeetingType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[mt.ID]
	if !ok {
		return ErrNotFound
	}
	mt.CreatedAt = existing.CreatedAt
	mt.UpdatedAt = time.Now().UTC()
	r.byID[mt.ID] = mt.Clone()
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func pageBounds(page, pageSize, total int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	from := (page - 1) * pageSize
	if from > total {
		from = total
	}
	to := from + pageSize
	if to > total {
		to = total
	}
	return from, to
}
