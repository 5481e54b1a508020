package booking

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*Booking
	now  func() time.Time
}

// NewMemoryRepository returns a Repository kept in process memory. A single mutex makes
// Reserve and Reschedule atomic.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID: make(map[string]*Booking),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryRepository) insertLocked(b *Booking) {
	now := r.now()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.byID[b.ID] = b.Clone()
}

func (r *memoryRepository) Add(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertLocked(b)
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

// writeLocked stores b's metadata, plus its schedule when withSchedule is set. Status,
// cancellation reason and reminder receipts have their own writers.
func (r *memoryRepository) writeLocked(b *Booking, withSchedule bool) error {
	existing, ok := r.byID[b.ID]
	if !ok {
		return ErrNotFound
	}
	if existing.Status == StatusCancelled {
		return ErrBookingCancelled
	}
	if withSchedule && existing.Status != StatusPending {
		return ErrScheduleLocked
	}

	next := b.Clone()
	next.OwnerID = existing.OwnerID
	next.Status = existing.Status
	next.CancellationReason = existing.CancellationReason
	next.RemindersSent = append([]time.Time(nil), existing.RemindersSent...)
	next.CreatedAt = existing.CreatedAt
	if !withSchedule {
		next.MeetingTypeID = existing.MeetingTypeID
		next.StartTime = existing.StartTime
		next.EndTime = existing.EndTime
	}
	next.UpdatedAt = r.now()

	r.byID[b.ID] = next
	*b = *next.Clone()
	return nil
}

func (r *memoryRepository) Update(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeLocked(b, false)
}

func (r *memoryRepository) SetStatus(ctx context.Context, id string, status Status, reason *string, from ...Status) (*Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if len(from) > 0 && !slices.Contains(from, b.Status) {
		return b.Clone(), false, nil
	}
	b.Status = status
	if reason != nil {
		v := *reason
		b.CancellationReason = &v
	} else {
		b.CancellationReason = nil
	}
	b.UpdatedAt = r.now()
	return b.Clone(), true, nil
}

func (r *memoryRepository) AppendReminder(ctx context.Context, id string, sentAt time.Time) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status == StatusCancelled {
		return nil, ErrBookingCancelled
	}
	if n := len(b.RemindersSent); n > 0 && sentAt.Before(b.RemindersSent[n-1]) {
		return nil, ErrReminderOutOfOrder
	}
	b.RemindersSent = append(b.RemindersSent, sentAt.UTC())
	b.UpdatedAt = r.now()
	return b.Clone(), nil
}

// intersectingLocked returns bookings of meetingTypeID intersecting [from, to), ordered by start.
func (r *memoryRepository) intersectingLocked(meetingTypeID string, from, to time.Time, allStatuses bool, excludeID string) []*Booking {
	var result []*Booking
	for _, b := range r.byID {
		if b.MeetingTypeID != meetingTypeID || b.ID == excludeID {
			continue
		}
		if !allStatuses && !b.Status.Active() {
			continue
		}
		if !overlaps(b.StartTime, b.EndTime, from, to) {
			continue
		}
		result = append(result, b.Clone())
	}
	sortByStart(result, false)
	return result
}

func sortByStart(bookings []*Booking, desc bool) {
	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if desc {
			a, b = b, a
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ID < b.ID
	})
}

func (r *memoryRepository) ListByDateRange(ctx context.Context, meetingTypeID string, from, to time.Time, allStatuses bool) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.intersectingLocked(meetingTypeID, from, to, allStatuses, ""), nil
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Booking
	for _, b := range r.byID {
		if filter.OwnerID != "" && b.OwnerID != filter.OwnerID {
			continue
		}
		if filter.MeetingTypeID != "" && b.MeetingTypeID != filter.MeetingTypeID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.From != nil && !b.EndTime.After(*filter.From) {
			continue
		}
		if filter.To != nil && !b.StartTime.Before(*filter.To) {
			continue
		}
		matched = append(matched, b)
	}
	sortByStart(matched, strings.EqualFold(filter.SortOrder, "desc"))

	total := len(matched)
	from, to := pageBounds(filter.Page, filter.PageSize, total)
	result := make([]*Booking, 0, to-from)
	for _, b := range matched[from:to] {
		result = append(result, b.Clone())
	}
	return result, total, nil
}

func (r *memoryRepository) countActiveLocked(meetingTypeID string) int {
	n := 0
	for _, b := range r.byID {
		if b.MeetingTypeID == meetingTypeID && b.Status.Active() {
			n++
		}
	}
	return n
}

func (r *memoryRepository) CountActiveByMeetingType(ctx context.Context, meetingTypeID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.countActiveLocked(meetingTypeID), nil
}

// GuardUsage holds the store lock across fn, so no reservation can land between the count
// and whatever fn does with it.
func (r *memoryRepository) GuardUsage(ctx context.Context, meetingTypeID string, fn func(active int) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return fn(r.countActiveLocked(meetingTypeID))
}

func (r *memoryRepository) Reserve(ctx context.Context, b *Booking, from, to time.Time, check CheckFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := check(r.intersectingLocked(b.MeetingTypeID, from, to, false, "")); err != nil {
		return err
	}
	r.insertLocked(b)
	return nil
}

func (r *memoryRepository) Reschedule(ctx context.Context, b *Booking, from, to time.Time, check CheckFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[b.ID]
	if !ok {
		return ErrNotFound
	}
	switch existing.Status {
	case StatusCancelled:
		return ErrBookingCancelled
	case StatusConfirmed:
		return ErrScheduleLocked
	}
	if err := check(r.intersectingLocked(b.MeetingTypeID, from, to, false, b.ID)); err != nil {
		return err
	}
	return r.writeLocked(b, true)
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
