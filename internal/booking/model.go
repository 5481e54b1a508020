package booking

import (
	"context"
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound               = apperror.New(http.StatusNotFound, "booking not found")
	ErrMeetingTypeNotFound    = apperror.New(http.StatusNotFound, "meeting type not found")
	ErrTimeConflict           = apperror.New(http.StatusConflict, "time slot is no longer available")
	ErrMeetingTypeInactive    = apperror.New(http.StatusBadRequest, "meeting type is not accepting bookings")
	ErrAttendeeNameRequired   = apperror.New(http.StatusBadRequest, "attendee name is required")
	ErrAttendeeEmailRequired  = apperror.New(http.StatusBadRequest, "attendee email is required")
	ErrInvalidEmail           = apperror.New(http.StatusBadRequest, "attendee email is invalid")
	ErrInvalidTimezone        = apperror.New(http.StatusBadRequest, "attendee timezone is not a valid IANA name")
	ErrMissingAnswer          = apperror.New(http.StatusBadRequest, "a required question was not answered")
	ErrUnknownQuestion        = apperror.New(http.StatusBadRequest, "response refers to an unknown question")
	ErrInvalidAnswer          = apperror.New(http.StatusBadRequest, "answer is not one of the allowed options")
	ErrInvalidTimeRange       = apperror.New(http.StatusBadRequest, "end time must be start time plus the meeting duration")
	ErrStartTimePast          = apperror.New(http.StatusBadRequest, "cannot book a time in the past")
	ErrNotASlot               = apperror.New(http.StatusBadRequest, "start time is not a bookable slot")
	ErrScheduleLocked         = apperror.New(http.StatusBadRequest, "confirmed bookings cannot be moved; cancel and book again")
	ErrBookingCancelled       = apperror.New(http.StatusBadRequest, "booking is cancelled")
	ErrMeetingTypeOwnerChange = apperror.New(http.StatusBadRequest, "booking cannot move to another owner's meeting type")
	ErrReminderOutOfOrder     = apperror.New(http.StatusBadRequest, "reminder receipts must be recorded in order")
	ErrInvalidStatus          = apperror.New(http.StatusBadRequest, "invalid booking status")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether a booking in this status holds its time range.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Attendee struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Company  *string `json:"company,omitempty"`
	Timezone string  `json:"timezone"`
}

type Booking struct {
	ID                 string
	MeetingTypeID      string
	OwnerID            string
	Attendee           Attendee
	StartTime          time.Time
	EndTime            time.Time
	Status             Status
	Location           meetingtype.Location // snapshot taken at creation
	Responses          map[string]string    // keyed by question id
	CancellationReason *string
	RemindersSent      []time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone returns a deep copy.
func (b *Booking) Clone() *Booking {
	cp := *b
	if b.Attendee.Company != nil {
		c := *b.Attendee.Company
		cp.Attendee.Company = &c
	}
	if b.CancellationReason != nil {
		r := *b.CancellationReason
		cp.CancellationReason = &r
	}
	cp.Responses = make(map[string]string, len(b.Responses))
	for k, v := range b.Responses {
		cp.Responses[k] = v
	}
	cp.RemindersSent = append([]time.Time(nil), b.RemindersSent...)
	return &cp
}

// Filter defines parameters for listing bookings.
type Filter struct {
	OwnerID       string
	MeetingTypeID string
	Status        Status
	From          *time.Time // bookings ending after this instant
	To            *time.Time // bookings starting before this instant
	Page          int
	PageSize      int
	SortOrder     string // ASC (default) or DESC by start time
}

// EventKind names a lifecycle transition.
type EventKind string

const (
	EventCreated   EventKind = "booking.created"
	EventConfirmed EventKind = "booking.confirmed"
	EventUpdated   EventKind = "booking.updated"
	EventCancelled EventKind = "booking.cancelled"
)

// Event is emitted after a lifecycle operation commits.
type Event struct {
	Kind       EventKind
	Booking    *Booking
	OccurredAt time.Time
}

// Notifier receives lifecycle events. Delivery is up to the implementation.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
