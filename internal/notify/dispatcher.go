package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
)

const deliveryTimeout = 5 * time.Second

// Dispatcher hands events to a slower notifier on a single background worker. When the
// queue is full the event is dropped; Notify never blocks and never fails.
type Dispatcher struct {
	next    booking.Notifier
	logger  *slog.Logger
	queue   chan Event
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func NewDispatcher(next booking.Notifier, size int, logger *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		next:   next,
		logger: logger.With(slog.String("component", "notify")),
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := d.next.Notify(ctx, e); err != nil {
			d.logger.Error("deliver event failed",
				slog.String("kind", string(e.Kind)),
				slog.String("booking_id", e.Booking.ID),
				slog.Any("error", err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Notify(ctx context.Context, e Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(ctx, e, "dispatcher closed")
		return nil
	}

	select {
	case d.queue <- e:
	default:
		d.drop(ctx, e, "queue full")
	}
	return nil
}

func (d *Dispatcher) drop(ctx context.Context, e Event, why string) {
	d.dropped.Add(1)
	d.logger.WarnContext(ctx, "dropping event",
		slog.String("reason", why),
		slog.String("kind", string(e.Kind)),
		slog.String("booking_id", e.Booking.ID),
	)
}

// Dropped returns how many events were discarded so far.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits until the queued ones are delivered or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
