package http

import (
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	MeetingTypeID string     `form:"meeting_type_id" binding:"omitempty,uuid"`
	Status        string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	From          *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To            *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

// AvailabilityRequest defines query parameters for the public availability endpoint.
type AvailabilityRequest struct {
	Date string `form:"date" binding:"required"`
}

type AttendeeBody struct {
	Name     string  `json:"name" binding:"required,max=200"`
	Email    string  `json:"email" binding:"required,email"`
	Company  *string `json:"company" binding:"omitempty,max=200"`
	Timezone string  `json:"timezone" binding:"omitempty,max=64"`
}

func (a AttendeeBody) toDomain() booking.Attendee {
	return booking.Attendee{Name: a.Name, Email: a.Email, Company: a.Company, Timezone: a.Timezone}
}

type CreateBookingBody struct {
	MeetingTypeID string            `json:"meeting_type_id" binding:"required,uuid"`
	Attendee      AttendeeBody      `json:"attendee" binding:"required"`
	StartTime     time.Time         `json:"start_time" binding:"required"`
	EndTime       *time.Time        `json:"end_time"`
	Responses     map[string]string `json:"responses"`
}

type UpdateBookingBody struct {
	Attendee      *AttendeeBody         `json:"attendee"`
	Location      *meetingtype.Location `json:"location"`
	Responses     map[string]string     `json:"responses"`
	StartTime     *time.Time            `json:"start_time"`
	EndTime       *time.Time            `json:"end_time"`
	MeetingTypeID *string               `json:"meeting_type_id" binding:"omitempty,uuid"`
}

type CancelBookingBody struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

type ReminderBody struct {
	SentAt time.Time `json:"sent_at" binding:"required"`
}

type BookingResponse struct {
	ID                 string               `json:"id"`
	MeetingTypeID      string               `json:"meeting_type_id"`
	Attendee           booking.Attendee     `json:"attendee"`
	StartTime          time.Time            `json:"start_time"`
	EndTime            time.Time            `json:"end_time"`
	Status             string               `json:"status"`
	Location           meetingtype.Location `json:"location"`
	Responses          map[string]string    `json:"responses"`
	CancellationReason *string              `json:"cancellation_reason,omitempty"`
	RemindersSent      []time.Time          `json:"reminders_sent"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	reminders := b.RemindersSent
	if reminders == nil {
		reminders = []time.Time{}
	}
	responses := b.Responses
	if responses == nil {
		responses = map[string]string{}
	}
	return BookingResponse{
		ID:                 b.ID,
		MeetingTypeID:      b.MeetingTypeID,
		Attendee:           b.Attendee,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		Location:           b.Location,
		Responses:          responses,
		CancellationReason: b.CancellationReason,
		RemindersSent:      reminders,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// PublicBookingResponse is returned to attendees; it leaves out owner-only bookkeeping.
type PublicBookingResponse struct {
	ID            string               `json:"id"`
	MeetingTypeID string               `json:"meeting_type_id"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	Status        string               `json:"status"`
	Location      meetingtype.Location `json:"location"`
}

func NewPublicBookingResponse(b *booking.Booking) PublicBookingResponse {
	return PublicBookingResponse{
		ID:            b.ID,
		MeetingTypeID: b.MeetingTypeID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        string(b.Status),
		Location:      b.Location,
	}
}

// AvailabilityURI takes any id; an unknown one yields an empty slot list.
type AvailabilityURI struct {
	ID string `uri:"id" binding:"required"`
}

type AvailabilityResponse struct {
	Date          string                     `json:"date"`
	MeetingTypeID string                     `json:"meeting_type_id"`
	Slots         []booking.AvailabilitySlot `json:"slots"`
}
