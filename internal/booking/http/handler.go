package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/response"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service  booking.Service
	location *time.Location
}

// NewHandler builds the booking handler. Dates without a zone are read in loc.
func NewHandler(service booking.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, location: loc}
}

// loadOwned fetches the booking and makes sure it belongs to the caller. Foreign bookings
// are reported as missing.
func (h *Handler) loadOwned(c *gin.Context) (*booking.Booking, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, false
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if b.OwnerID != auth.GetUserID(c) {
		response.Error(c, booking.ErrNotFound)
		return nil, false
	}
	return b, true
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	req.Normalize()

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		OwnerID:       auth.GetUserID(c),
		MeetingTypeID: req.MeetingTypeID,
		Status:        booking.Status(req.Status),
		From:          req.From,
		To:            req.To,
		Page:          req.Page,
		PageSize:      req.PageSize,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	existing, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var body UpdateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := booking.UpdateRequest{
		Location:      body.Location,
		Responses:     body.Responses,
		StartTime:     body.StartTime,
		EndTime:       body.EndTime,
		MeetingTypeID: body.MeetingTypeID,
	}
	if body.Attendee != nil {
		a := body.Attendee.toDomain()
		req.Attendee = &a
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), existing.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Approve(c *gin.Context) {
	existing, ok := h.loadOwned(c)
	if !ok {
		return
	}

	b, err := h.service.ApproveBooking(c.Request.Context(), existing.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	existing, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var body CancelBookingBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	b, err := h.service.CancelBooking(c.Request.Context(), existing.ID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) RecordReminder(c *gin.Context) {
	existing, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var body ReminderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.RecordReminder(c.Request.Context(), existing.ID, body.SentAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability lists the slots of a meeting type for one calendar day. Unknown meeting
// types, malformed ids included, have no slots.
func (h *Handler) Availability(c *gin.Context) {
	var uri AvailabilityURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, h.location)
	if err != nil {
		response.BadRequest(c, "date must be formatted as YYYY-MM-DD", err)
		return
	}

	slots, err := h.service.ComputeAvailability(c.Request.Context(), date, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, AvailabilityResponse{
		Date:          req.Date,
		MeetingTypeID: uri.ID,
		Slots:         slots,
	})
}

// Create books a slot on behalf of an anonymous attendee.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateRequest{
		MeetingTypeID: body.MeetingTypeID,
		Attendee:      body.Attendee.toDomain(),
		StartTime:     body.StartTime,
		EndTime:       body.EndTime,
		Responses:     body.Responses,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPublicBookingResponse(b))
}
