package media

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/apperror"
)

const (
	MaxImageBytes   = 5 << 20
	ThumbnailWidth  = 200
	ThumbnailHeight = 200
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "media not found")
	ErrTooLarge        = apperror.New(http.StatusRequestEntityTooLarge, "image must be at most 5 MiB")
	ErrUnsupportedType = apperror.New(http.StatusBadRequest, "only jpeg, png and gif images are accepted")
	ErrInvalidImage    = apperror.New(http.StatusBadRequest, "file is not a readable image")
	ErrNoThumbnail     = apperror.New(http.StatusNotFound, "thumbnail not available")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Media is an uploaded image owned by a user.
type Media struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public path serving the original image.
func URL(id string) string {
	return "/v1/public/media/" + id
}

// ThumbnailURL returns the public path serving the thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/public/media/" + id + "/thumbnail"
}
