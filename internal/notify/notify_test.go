package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
)

func sampleEvent(kind booking.EventKind) Event {
	return Event{
		Kind: kind,
		Booking: &booking.Booking{
			ID:            "b-1",
			MeetingTypeID: "mt-1",
			OwnerID:       "owner-1",
			Attendee:      booking.Attendee{Name: "Jo", Email: "jo@example.com", Timezone: "UTC"},
			StartTime:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			EndTime:       time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
			Status:        booking.StatusConfirmed,
		},
		OccurredAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

type fakePublisher struct {
	channel string
	message []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.channel = channel
	p.message, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisPublisher(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisPublisher(pub, "booking-events")

	require.NoError(t, n.Notify(context.Background(), sampleEvent(booking.EventCreated)))
	assert.Equal(t, "booking-events", pub.channel)

	var payload Payload
	require.NoError(t, json.Unmarshal(pub.message, &payload))
	assert.Equal(t, "booking.created", payload.Kind)
	assert.Equal(t, "b-1", payload.BookingID)
	assert.Equal(t, "confirmed", payload.Status)

	pub.err = errors.New("connection refused")
	err := n.Notify(context.Background(), sampleEvent(booking.EventCancelled))
	assert.ErrorContains(t, err, "connection refused")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.Notify(context.Background(), sampleEvent(booking.EventConfirmed)))
	assert.Contains(t, buf.String(), `"kind":"booking.confirmed"`)
	assert.Contains(t, buf.String(), `"booking_id":"b-1"`)
}

type countingNotifier struct {
	mu    sync.Mutex
	kinds []booking.EventKind
	err   error
}

func (n *countingNotifier) Notify(ctx context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, e.Kind)
	return n.err
}

func (n *countingNotifier) seen() []booking.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]booking.EventKind(nil), n.kinds...)
}

func TestMultiDeliversToAllAndJoinsErrors(t *testing.T) {
	ok := &countingNotifier{}
	failing := &countingNotifier{err: errors.New("boom")}

	err := Multi{failing, nil, ok}.Notify(context.Background(), sampleEvent(booking.EventUpdated))

	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []booking.EventKind{booking.EventUpdated}, ok.seen())
	assert.Equal(t, []booking.EventKind{booking.EventUpdated}, failing.seen())
}

type blockingNotifier struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	counter countingNotifier
}

func (n *blockingNotifier) Notify(ctx context.Context, e Event) error {
	n.once.Do(func() { close(n.started) })
	<-n.release
	return n.counter.Notify(ctx, e)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	next := &blockingNotifier{started: make(chan struct{}), release: make(chan struct{})}
	d := NewDispatcher(next, 1, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ctx := context.Background()

	require.NoError(t, d.Notify(ctx, sampleEvent(booking.EventCreated)))
	<-next.started // worker holds the first event

	require.NoError(t, d.Notify(ctx, sampleEvent(booking.EventConfirmed)))
	require.NoError(t, d.Notify(ctx, sampleEvent(booking.EventCancelled)))
	assert.Equal(t, uint64(1), d.Dropped())

	close(next.release)
	closeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, d.Close(closeCtx))

	assert.Equal(t, []booking.EventKind{booking.EventCreated, booking.EventConfirmed}, next.counter.seen())

	require.NoError(t, d.Notify(ctx, sampleEvent(booking.EventUpdated)))
	assert.Equal(t, uint64(2), d.Dropped())
}

func TestDispatcherSwallowsDeliveryErrors(t *testing.T) {
	next := &countingNotifier{err: errors.New("unavailable")}
	d := NewDispatcher(next, 4, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.NoError(t, d.Notify(context.Background(), sampleEvent(booking.EventCreated)))
	require.NoError(t, d.Close(context.Background()))

	assert.Len(t, next.seen(), 1)
	assert.Zero(t, d.Dropped())
}
