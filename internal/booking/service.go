package booking

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
)

type CreateRequest struct {
	MeetingTypeID string
	Attendee      Attendee
	StartTime     time.Time
	EndTime       *time.Time // optional, must equal StartTime + duration when set
	Responses     map[string]string
}

// UpdateRequest carries optional changes. Schedule fields (StartTime, EndTime,
// MeetingTypeID) are only accepted while the booking is pending.
type UpdateRequest struct {
	Attendee      *Attendee
	Location      *meetingtype.Location
	Responses     map[string]string // replaces all answers when non-nil
	StartTime     *time.Time
	EndTime       *time.Time
	MeetingTypeID *string
}

// Config controls slot enumeration and time handling of the lifecycle.
type Config struct {
	Slots    SlotConfig
	Location *time.Location   // timezone of the working window; defaults to UTC
	Now      func() time.Time // defaults to time.Now
}

type Service interface {
	// ComputeAvailability returns the slots of date's calendar day. Unknown or inactive
	// meeting types yield an empty result, not an error.
	ComputeAvailability(ctx context.Context, date time.Time, meetingTypeID string) ([]AvailabilitySlot, error)
	CreateBooking(ctx context.Context, req CreateRequest) (*Booking, error)
	CancelBooking(ctx context.Context, id string, reason *string) (*Booking, error)
	UpdateBooking(ctx context.Context, id string, req UpdateRequest) (*Booking, error)
	ApproveBooking(ctx context.Context, id string) (*Booking, error)
	RecordReminder(ctx context.Context, id string, sentAt time.Time) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
}

type service struct {
	repo         Repository
	meetingTypes meetingtype.Service
	notifier     Notifier
	logger       *slog.Logger
	cfg          Config
}

// NewService builds the booking lifecycle. notifier and logger may be nil.
func NewService(repo Repository, meetingTypes meetingtype.Service, notifier Notifier, logger *slog.Logger, cfg Config) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &service{
		repo:         repo,
		meetingTypes: meetingTypes,
		notifier:     notifier,
		logger:       logger.With(slog.String("component", "booking")),
		cfg:          cfg,
	}
}

func (s *service) emit(ctx context.Context, kind EventKind, b *Booking) {
	if s.notifier == nil {
		return
	}
	event := Event{Kind: kind, Booking: b.Clone(), OccurredAt: s.cfg.Now().UTC()}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "notify failed",
			slog.String("event", string(kind)),
			slog.String("booking_id", b.ID),
			slog.Any("error", err),
		)
	}
}

func (s *service) resolveMeetingType(ctx context.Context, id string) (*meetingtype.MeetingType, error) {
	mt, err := s.meetingTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, meetingtype.ErrNotFound) {
			return nil, ErrMeetingTypeNotFound
		}
		return nil, err
	}
	return mt, nil
}

func (s *service) ComputeAvailability(ctx context.Context, date time.Time, meetingTypeID string) ([]AvailabilitySlot, error) {
	mt, err := s.resolveMeetingType(ctx, meetingTypeID)
	if err != nil {
		if errors.Is(err, ErrMeetingTypeNotFound) {
			return []AvailabilitySlot{}, nil
		}
		return nil, err
	}
	if !mt.IsActive {
		return []AvailabilitySlot{}, nil
	}

	windowStart, windowEnd := s.cfg.Slots.window(date)
	buffer := s.cfg.Slots.buffer(mt)
	bookings, err := s.repo.ListByDateRange(ctx, mt.ID, windowStart.Add(-buffer), windowEnd.Add(buffer), false)
	if err != nil {
		return nil, err
	}

	return GenerateSlots(date, mt, bookings, s.cfg.Slots), nil
}

func validateAttendee(a *Attendee) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	if a.Name == "" {
		return ErrAttendeeNameRequired
	}
	if a.Email == "" {
		return ErrAttendeeEmailRequired
	}
	addr, err := mail.ParseAddress(a.Email)
	if err != nil || addr.Address != a.Email {
		return ErrInvalidEmail
	}
	if a.Company != nil && strings.TrimSpace(*a.Company) == "" {
		a.Company = nil
	}
	if a.Timezone == "" {
		a.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

func validateResponses(mt *meetingtype.MeetingType, responses map[string]string) error {
	questions := make(map[string]meetingtype.Question, len(mt.Questions))
	for _, q := range mt.Questions {
		questions[q.ID] = q
	}

	for id, answer := range responses {
		q, ok := questions[id]
		if !ok {
			return ErrUnknownQuestion
		}
		if q.Kind == meetingtype.QuestionSelect && strings.TrimSpace(answer) != "" {
			allowed := false
			for _, opt := range q.Options {
				if opt == answer {
					allowed = true
					break
				}
			}
			if !allowed {
				return ErrInvalidAnswer
			}
		}
	}

	for _, q := range mt.Questions {
		if q.Required && strings.TrimSpace(responses[q.ID]) == "" {
			return ErrMissingAnswer
		}
	}
	return nil
}

// validateSchedule checks a requested start against mt and returns the resulting end.
func (s *service) validateSchedule(mt *meetingtype.MeetingType, start time.Time, end *time.Time) (time.Time, error) {
	computed := start.Add(mt.DurationTime())
	if end != nil && (!end.Equal(computed) || !end.After(start)) {
		return time.Time{}, ErrInvalidTimeRange
	}
	if start.Before(s.cfg.Now()) {
		return time.Time{}, ErrStartTimePast
	}
	if !isCandidate(start, mt, s.cfg.Slots, s.cfg.Location) {
		return time.Time{}, ErrNotASlot
	}
	return computed, nil
}

// conflictCheck vetoes a write when [start, end) overlaps an active booking widened by buffer.
func conflictCheck(start, end time.Time, buffer time.Duration) CheckFunc {
	return func(active []*Booking) error {
		for _, b := range active {
			if overlaps(start, end, b.StartTime.Add(-buffer), b.EndTime.Add(buffer)) {
				return ErrTimeConflict
			}
		}
		return nil
	}
}

// reservationCheck runs under the store lock. It re-reads the meeting type so a booking
// never lands on a type deleted or disabled after it was first resolved.
func (s *service) reservationCheck(ctx context.Context, meetingTypeID string, start, end time.Time, buffer time.Duration) CheckFunc {
	overlap := conflictCheck(start, end, buffer)
	return func(active []*Booking) error {
		mt, err := s.resolveMeetingType(ctx, meetingTypeID)
		if err != nil {
			return err
		}
		if !mt.IsActive {
			return ErrMeetingTypeInactive
		}
		return overlap(active)
	}
}

func (s *service) CreateBooking(ctx context.Context, req CreateRequest) (*Booking, error) {
	mt, err := s.resolveMeetingType(ctx, req.MeetingTypeID)
	if err != nil {
		return nil, err
	}
	if !mt.IsActive {
		return nil, ErrMeetingTypeInactive
	}

	attendee := req.Attendee
	if err := validateAttendee(&attendee); err != nil {
		return nil, err
	}
	if err := validateResponses(mt, req.Responses); err != nil {
		return nil, err
	}

	end, err := s.validateSchedule(mt, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	status := StatusConfirmed
	if mt.RequiresApproval {
		status = StatusPending
	}

	b := &Booking{
		MeetingTypeID: mt.ID,
		OwnerID:       mt.OwnerID,
		Attendee:      attendee,
		StartTime:     req.StartTime.UTC(),
		EndTime:       end.UTC(),
		Status:        status,
		Location:      mt.Location,
		Responses:     req.Responses,
	}
	if b.Responses == nil {
		b.Responses = map[string]string{}
	}

	buffer := s.cfg.Slots.buffer(mt)
	check := s.reservationCheck(ctx, mt.ID, b.StartTime, b.EndTime, buffer)
	if err := s.repo.Reserve(ctx, b, b.StartTime.Add(-buffer), b.EndTime.Add(buffer), check); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", b.ID),
		slog.String("meeting_type_id", b.MeetingTypeID),
		slog.String("status", string(b.Status)),
		slog.Time("start", b.StartTime),
	)
	s.emit(ctx, EventCreated, b)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// CancelBooking is idempotent: cancelling a cancelled booking returns it unchanged and
// emits nothing.
func (s *service) CancelBooking(ctx context.Context, id string, reason *string) (*Booking, error) {
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}

	b, changed, err := s.repo.SetStatus(ctx, id, StatusCancelled, reason, StatusPending, StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !changed {
		return b, nil
	}

	s.logger.InfoContext(ctx, "booking cancelled", slog.String("booking_id", b.ID))
	s.emit(ctx, EventCancelled, b)
	return b, nil
}

// ApproveBooking confirms a pending booking. Confirmed bookings are returned as they are.
func (s *service) ApproveBooking(ctx context.Context, id string) (*Booking, error) {
	b, changed, err := s.repo.SetStatus(ctx, id, StatusConfirmed, nil, StatusPending)
	if err != nil {
		return nil, err
	}
	if !changed {
		if b.Status == StatusCancelled {
			return nil, ErrBookingCancelled
		}
		return b, nil
	}

	s.logger.InfoContext(ctx, "booking approved", slog.String("booking_id", b.ID))
	s.emit(ctx, EventConfirmed, b)
	return b, nil
}

func (s *service) UpdateBooking(ctx context.Context, id string, req UpdateRequest) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, ErrBookingCancelled
	}

	targetTypeID := b.MeetingTypeID
	if req.MeetingTypeID != nil {
		targetTypeID = *req.MeetingTypeID
	}
	newStart := b.StartTime
	if req.StartTime != nil {
		newStart = *req.StartTime
	}
	scheduleChanged := targetTypeID != b.MeetingTypeID ||
		!newStart.Equal(b.StartTime) ||
		(req.EndTime != nil && !req.EndTime.Equal(b.EndTime))

	if scheduleChanged && b.Status == StatusConfirmed {
		return nil, ErrScheduleLocked
	}

	var mt *meetingtype.MeetingType
	if scheduleChanged || req.Responses != nil {
		if mt, err = s.resolveMeetingType(ctx, targetTypeID); err != nil {
			return nil, err
		}
	}

	if req.Attendee != nil {
		attendee := *req.Attendee
		if err := validateAttendee(&attendee); err != nil {
			return nil, err
		}
		b.Attendee = attendee
	}
	if req.Location != nil {
		if !req.Location.Kind.Valid() {
			return nil, meetingtype.ErrInvalidLocation
		}
		b.Location = *req.Location
	}
	if req.Responses != nil {
		if err := validateResponses(mt, req.Responses); err != nil {
			return nil, err
		}
		b.Responses = req.Responses
	}

	if !scheduleChanged {
		if err := s.repo.Update(ctx, b); err != nil {
			return nil, err
		}
		s.emit(ctx, EventUpdated, b)
		return b, nil
	}

	if !mt.IsActive {
		return nil, ErrMeetingTypeInactive
	}
	if mt.OwnerID != b.OwnerID {
		return nil, ErrMeetingTypeOwnerChange
	}
	if req.Responses == nil {
		if err := validateResponses(mt, b.Responses); err != nil {
			return nil, err
		}
	}
	end, err := s.validateSchedule(mt, newStart, req.EndTime)
	if err != nil {
		return nil, err
	}
	if targetTypeID != b.MeetingTypeID && req.Location == nil {
		b.Location = mt.Location
	}

	b.MeetingTypeID = mt.ID
	b.StartTime = newStart.UTC()
	b.EndTime = end.UTC()

	buffer := s.cfg.Slots.buffer(mt)
	check := s.reservationCheck(ctx, mt.ID, b.StartTime, b.EndTime, buffer)
	if err := s.repo.Reschedule(ctx, b, b.StartTime.Add(-buffer), b.EndTime.Add(buffer), check); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking rescheduled",
		slog.String("booking_id", b.ID),
		slog.Time("start", b.StartTime),
	)
	s.emit(ctx, EventUpdated, b)
	return b, nil
}

// RecordReminder appends a delivery receipt. Receipts are kept in ascending order.
func (s *service) RecordReminder(ctx context.Context, id string, sentAt time.Time) (*Booking, error) {
	return s.repo.AppendReminder(ctx, id, sentAt)
}
