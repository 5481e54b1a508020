package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/storage"
)

type UploadInput struct {
	UserID   string
	Filename string
	Content  io.Reader
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*Media, error)
	Get(ctx context.Context, id string) (*Media, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Media, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Media, error)
	// Delete removes media owned by userID. Other users' media is reported as missing.
	Delete(ctx context.Context, id, userID string) error
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	logger  *slog.Logger
}

func NewService(repo Repository, store storage.Storage, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		logger:  logger.With(slog.String("component", "media")),
	}
}

// Upload stores an image and its thumbnail. The content type is sniffed from the bytes,
// never taken from the client.
func (s *service) Upload(ctx context.Context, in UploadInput) (*Media, error) {
	data, err := io.ReadAll(io.LimitReader(in.Content, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	img, err := s.imgProc.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	thumb, err := s.imgProc.Thumbnail(img, ThumbnailWidth, ThumbnailHeight)
	if err != nil {
		return nil, err
	}

	// Sharded layout: media/ab/<uuid>.ext
	id := uuid.NewString()
	shard := id[:2]
	storagePath := fmt.Sprintf("media/%s/%s%s", shard, id, ext)
	thumbPath := fmt.Sprintf("media/%s/%s_thumb.jpg", shard, id)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	if err := s.storage.Save(ctx, thumbPath, bytes.NewReader(thumb)); err != nil {
		_ = s.storage.Delete(ctx, storagePath)
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	m := &Media{
		ID:            id,
		UserID:        in.UserID,
		Filename:      sanitizeFilename(in.Filename, ext),
		StoragePath:   storagePath,
		ThumbnailPath: &thumbPath,
		ContentType:   contentType,
		Size:          int64(len(data)),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		_ = s.storage.Delete(ctx, storagePath)
		_ = s.storage.Delete(ctx, thumbPath)
		return nil, err
	}

	s.logger.InfoContext(ctx, "image uploaded",
		slog.String("media_id", m.ID),
		slog.String("user_id", m.UserID),
		slog.Int64("size", m.Size),
	)
	return m, nil
}

// sanitizeFilename keeps the base name for Content-Disposition headers.
func sanitizeFilename(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "image" + ext
	}
	return name
}

func (s *service) Get(ctx context.Context, id string) (*Media, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) open(ctx context.Context, path string) (io.ReadCloser, error) {
	stream, err := s.storage.Get(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve image: %w", err)
	}
	return stream, nil
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *Media, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	stream, err := s.open(ctx, m.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, m, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Media, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}
	stream, err := s.open(ctx, *m.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return stream, m, nil
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != userID {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Blob cleanup is best effort once the record is gone.
	if err := s.storage.Delete(ctx, m.StoragePath); err != nil {
		s.logger.WarnContext(ctx, "delete image blob failed", slog.String("media_id", id), slog.Any("error", err))
	}
	if m.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *m.ThumbnailPath); err != nil {
			s.logger.WarnContext(ctx, "delete thumbnail blob failed", slog.String("media_id", id), slog.Any("error", err))
		}
	}
	return nil
}
