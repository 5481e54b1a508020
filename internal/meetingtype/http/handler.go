package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/response"
)

// OwnerResolver maps a public username to the owning user id.
type OwnerResolver func(ctx context.Context, username string) (string, error)

type Handler struct {
	service      meetingtype.Service
	resolveOwner OwnerResolver
}

func NewHandler(service meetingtype.Service, resolveOwner OwnerResolver) *Handler {
	return &Handler{
		service:      service,
		resolveOwner: resolveOwner,
	}
}

// loadOwned fetches the meeting type and makes sure the caller owns it. Foreign meeting
// types are reported as missing.
func (h *Handler) loadOwned(c *gin.Context) (*meetingtype.MeetingType, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, false
	}

	mt, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if mt.OwnerID != auth.GetUserID(c) {
		response.Error(c, meetingtype.ErrNotFound)
		return nil, false
	}
	return mt, true
}

func (h *Handler) List(c *gin.Context) {
	var req ListMeetingTypesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	items, total, err := h.service.List(c.Request.Context(), meetingtype.Filter{
		OwnerID:    auth.GetUserID(c),
		ActiveOnly: req.ActiveOnly,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]MeetingTypeResponse, len(items))
	for i, mt := range items {
		resp[i] = NewMeetingTypeResponse(mt)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(resp, req.Page, req.PageSize, total))
}

// PublicList lists the active meeting types of a freelancer by username.
func (h *Handler) PublicList(c *gin.Context) {
	ownerID, err := h.resolveOwner(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), meetingtype.Filter{
		OwnerID:    ownerID,
		ActiveOnly: true,
		PageSize:   100,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]MeetingTypeResponse, len(items))
	for i, mt := range items {
		resp[i] = NewMeetingTypeResponse(mt)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(resp, 1, 100, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateMeetingTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	mt, err := h.service.Create(c.Request.Context(), meetingtype.CreateRequest{
		OwnerID:          auth.GetUserID(c),
		Name:             body.Name,
		Description:      body.Description,
		Duration:         body.Duration,
		BufferTime:       body.BufferTime,
		Price:            body.Price,
		Currency:         body.Currency,
		RequiresApproval: body.RequiresApproval,
		IsActive:         body.IsActive,
		Location:         body.Location.toDomain(),
		Questions:        toQuestions(body.Questions),
		Color:            body.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewMeetingTypeResponse(mt))
}

func (h *Handler) Get(c *gin.Context) {
	mt, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewMeetingTypeResponse(mt))
}

func (h *Handler) Update(c *gin.Context) {
	existing, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var body UpdateMeetingTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := meetingtype.UpdateRequest{
		Name:             body.Name,
		Description:      body.Description,
		Duration:         body.Duration,
		BufferTime:       body.BufferTime,
		Price:            body.Price,
		ClearPrice:       body.ClearPrice,
		Currency:         body.Currency,
		RequiresApproval: body.RequiresApproval,
		IsActive:         body.IsActive,
		Color:            body.Color,
	}
	if body.Location != nil {
		loc := body.Location.toDomain()
		req.Location = &loc
	}
	if body.Questions != nil {
		qs := toQuestions(*body.Questions)
		req.Questions = &qs
	}

	mt, err := h.service.Update(c.Request.Context(), existing.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewMeetingTypeResponse(mt))
}

func (h *Handler) Delete(c *gin.Context) {
	existing, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), existing.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
