package http

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/media"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/response"
)

// ProfileImageSetter points a user's portfolio at an uploaded image.
type ProfileImageSetter func(ctx context.Context, userID, mediaID string) error

type Handler struct {
	service         media.Service
	setProfileImage ProfileImageSetter
}

func NewHandler(service media.Service, setProfileImage ProfileImageSetter) *Handler {
	return &Handler{service: service, setProfileImage: setProfileImage}
}

func (h *Handler) Upload(c *gin.Context) {
	h.handleUpload(c, UploadConfig{})
}

// UploadProfileImage uploads an image and makes it the caller's profile picture.
func (h *Handler) UploadProfileImage(c *gin.Context) {
	h.handleUpload(c, UploadConfig{AfterUpload: h.setProfileImage})
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Serve(c *gin.Context) {
	h.serve(c, false)
}

func (h *Handler) ServeThumbnail(c *gin.Context) {
	h.serve(c, true)
}

func (h *Handler) serve(c *gin.Context, thumbnail bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var (
		stream io.ReadCloser
		m      *media.Media
		err    error
	)
	if thumbnail {
		stream, m, err = h.service.DownloadThumbnail(c.Request.Context(), uri.ID)
	} else {
		stream, m, err = h.service.Download(c.Request.Context(), uri.ID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	contentType, filename := m.ContentType, m.Filename
	if thumbnail {
		contentType, filename = "image/jpeg", m.ID+"_thumb.jpg"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Header("Cache-Control", "public, max-age=86400, immutable")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		log.Printf("stream media %s: %v", m.ID, err)
	}
}
