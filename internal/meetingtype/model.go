package meetingtype

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "meeting type not found")
	ErrNameRequired        = apperror.New(http.StatusBadRequest, "name is required")
	ErrOwnerRequired       = apperror.New(http.StatusBadRequest, "owner is required")
	ErrInvalidDuration     = apperror.New(http.StatusBadRequest, "duration must be greater than zero")
	ErrInvalidBuffer       = apperror.New(http.StatusBadRequest, "buffer time cannot be negative")
	ErrInvalidPrice        = apperror.New(http.StatusBadRequest, "price cannot be negative")
	ErrInvalidLocation     = apperror.New(http.StatusBadRequest, "invalid location kind")
	ErrInvalidQuestion     = apperror.New(http.StatusBadRequest, "invalid intake question")
	ErrDuplicateQuestionID = apperror.New(http.StatusBadRequest, "intake question ids must be unique")
	ErrInUse               = apperror.New(http.StatusConflict, "meeting type has active bookings; deactivate it instead")
)

// LocationKind tells attendees where the meeting happens.
type LocationKind string

const (
	LocationVirtual  LocationKind = "virtual"
	LocationInPerson LocationKind = "in_person"
	LocationPhone    LocationKind = "phone"
)

func (k LocationKind) Valid() bool {
	switch k {
	case LocationVirtual, LocationInPerson, LocationPhone:
		return true
	}
	return false
}

type Location struct {
	Kind     LocationKind `json:"kind"`
	Details  string       `json:"details"`
	Platform string       `json:"platform,omitempty"` // zoom, meet, teams...
}

// QuestionKind is the input widget of an intake question.
type QuestionKind string

const (
	QuestionText     QuestionKind = "text"
	QuestionTextarea QuestionKind = "textarea"
	QuestionSelect   QuestionKind = "select"
	QuestionPhone    QuestionKind = "phone"
	QuestionEmail    QuestionKind = "email"
)

func (k QuestionKind) Valid() bool {
	switch k {
	case QuestionText, QuestionTextarea, QuestionSelect, QuestionPhone, QuestionEmail:
		return true
	}
	return false
}

// Question is asked to the attendee when booking. Answers are keyed by ID.
type Question struct {
	ID       string       `json:"id"`
	Kind     QuestionKind `json:"kind"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"`
}

// MeetingType is a bookable offering with a fixed duration and booking rules.
type MeetingType struct {
	ID               string
	OwnerID          string
	Name             string
	Description      string
	Duration         int // minutes
	BufferTime       int // minutes, reserved before and after each booking
	Price            *float64
	Currency         string
	RequiresApproval bool
	IsActive         bool
	Location         Location
	Questions        []Question
	Color            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DurationTime returns Duration as a time.Duration.
func (m *MeetingType) DurationTime() time.Duration {
	return time.Duration(m.Duration) * time.Minute
}

// BufferDuration returns BufferTime as a time.Duration.
func (m *MeetingType) BufferDuration() time.Duration {
	return time.Duration(m.BufferTime) * time.Minute
}

// Clone returns a deep copy so callers never share slices with a store.
func (m *MeetingType) Clone() *MeetingType {
	cp := *m
	if m.Price != nil {
		p := *m.Price
		cp.Price = &p
	}
	cp.Questions = make([]Question, len(m.Questions))
	for i, q := range m.Questions {
		q.Options = append([]string(nil), q.Options...)
		cp.Questions[i] = q
	}
	return &cp
}

// Filter defines parameters for listing meeting types.
type Filter struct {
	OwnerID    string
	ActiveOnly bool
	Page       int
	PageSize   int
}
