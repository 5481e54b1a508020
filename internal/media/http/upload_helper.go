package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/media"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/response"
)

// UploadConfig defines how an image upload is read and what happens after it is stored.
type UploadConfig struct {
	FormFieldName string                                                 // default: "file"
	AfterUpload   func(ctx context.Context, userID, mediaID string) error // optional
}

// handleUpload stores the multipart image and runs the after-upload hook. A failing hook
// rolls the upload back.
func (h *Handler) handleUpload(c *gin.Context, config UploadConfig) {
	userID := auth.GetUserID(c)

	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxImageBytes+(1<<20))
	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", err)
		return
	}
	if fileHeader.Size > media.MaxImageBytes {
		response.Error(c, media.ErrTooLarge)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	m, err := h.service.Upload(c.Request.Context(), media.UploadInput{
		UserID:   userID,
		Filename: fileHeader.Filename,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(c.Request.Context(), userID, m.ID); err != nil {
			_ = h.service.Delete(c.Request.Context(), m.ID, userID)
			response.Error(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, NewUploadResponse(m))
}
