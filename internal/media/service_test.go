package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/storage"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewService(NewMemoryRepository(), store, nil)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadStoresOriginalAndThumbnail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	original := pngBytes(t, 800, 600)

	m, err := svc.Upload(ctx, UploadInput{UserID: "u-1", Filename: `../../evil"name.png`, Content: bytes.NewReader(original)})
	require.NoError(t, err)

	assert.Equal(t, "image/png", m.ContentType)
	assert.Equal(t, int64(len(original)), m.Size)
	assert.Equal(t, "evilname.png", m.Filename)
	require.NotNil(t, m.ThumbnailPath)

	stream, _, err := svc.Download(ctx, m.ID)
	require.NoError(t, err)
	got, err := io.ReadAll(stream)
	require.NoError(t, stream.Close())
	require.NoError(t, err)
	assert.Equal(t, original, got)

	thumb, _, err := svc.DownloadThumbnail(ctx, m.ID)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(thumb)
	require.NoError(t, thumb.Close())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, ThumbnailWidth, cfg.Width)
	assert.Equal(t, ThumbnailHeight, cfg.Height)
}

func TestUploadAcceptsGIF(t *testing.T) {
	svc := newTestService(t)
	img := image.NewPaletted(image.Rect(0, 0, 50, 50), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))

	m, err := svc.Upload(context.Background(), UploadInput{UserID: "u-1", Filename: "a.gif", Content: &buf})
	require.NoError(t, err)
	assert.Equal(t, "image/gif", m.ContentType)
}

func TestUploadRejections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{UserID: "u-1", Content: strings.NewReader("plain text, not an image")})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	_, err = svc.Upload(ctx, UploadInput{UserID: "u-1", Content: bytes.NewReader(corrupt)})
	assert.ErrorIs(t, err, ErrInvalidImage)

	huge := append(pngBytes(t, 10, 10), make([]byte, MaxImageBytes)...)
	_, err = svc.Upload(ctx, UploadInput{UserID: "u-1", Content: bytes.NewReader(huge)})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDeleteIsOwnerOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Upload(ctx, UploadInput{UserID: "u-1", Filename: "me.png", Content: bytes.NewReader(pngBytes(t, 64, 64))})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, m.ID, "u-2"), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, m.ID, "u-1"))

	_, err = svc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.Download(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
