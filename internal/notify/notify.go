// Package notify delivers booking lifecycle events to the outside world.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
)

// Event is the booking lifecycle event handed to notifiers.
type Event = booking.Event

// Payload is the wire form of an Event.
type Payload struct {
	Kind          string    `json:"kind"`
	OccurredAt    time.Time `json:"occurred_at"`
	BookingID     string    `json:"booking_id"`
	MeetingTypeID string    `json:"meeting_type_id"`
	OwnerID       string    `json:"owner_id"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	AttendeeName  string    `json:"attendee_name"`
	AttendeeEmail string    `json:"attendee_email"`
	AttendeeTZ    string    `json:"attendee_timezone"`
	Reason        *string   `json:"cancellation_reason,omitempty"`
}

func NewPayload(e Event) Payload {
	b := e.Booking
	return Payload{
		Kind:          string(e.Kind),
		OccurredAt:    e.OccurredAt,
		BookingID:     b.ID,
		MeetingTypeID: b.MeetingTypeID,
		OwnerID:       b.OwnerID,
		Status:        string(b.Status),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		AttendeeName:  b.Attendee.Name,
		AttendeeEmail: b.Attendee.Email,
		AttendeeTZ:    b.Attendee.Timezone,
		Reason:        b.CancellationReason,
	}
}

// LogNotifier writes every event to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, e Event) error {
	n.logger.InfoContext(ctx, "booking event",
		slog.String("kind", string(e.Kind)),
		slog.String("booking_id", e.Booking.ID),
		slog.String("meeting_type_id", e.Booking.MeetingTypeID),
		slog.String("attendee", e.Booking.Attendee.Email),
		slog.Time("start", e.Booking.StartTime),
	)
	return nil
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []booking.Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
