package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/meeting-booking-backend/internal/profile"
)

type Handler struct {
	service profile.Service
}

func NewHandler(service profile.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMine(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileResponse(p, h.service.PortfolioURL(auth.GetUsername(c))))
}

func (h *Handler) UpsertMine(c *gin.Context) {
	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	p, err := h.service.Upsert(c.Request.Context(), auth.GetUserID(c), req.toPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileResponse(p, h.service.PortfolioURL(auth.GetUsername(c))))
}

func (h *Handler) ResetMine(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MyQRCode(c *gin.Context) {
	h.renderQRCode(c, auth.GetUsername(c))
}

func (h *Handler) GetPublic(c *gin.Context) {
	username := c.Param("username")
	p, err := h.service.PublicByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProfileResponse(p, h.service.PortfolioURL(username)))
}

func (h *Handler) PublicQRCode(c *gin.Context) {
	h.renderQRCode(c, c.Param("username"))
}

func (h *Handler) renderQRCode(c *gin.Context, username string) {
	var req QRCodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	png, err := h.service.QRCode(c.Request.Context(), username, req.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
