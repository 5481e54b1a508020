package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "media/ab/one.png", strings.NewReader("payload")))

	rc, err := s.Get(ctx, "media/ab/one.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, s.Delete(ctx, "media/ab/one.png"))
	require.NoError(t, s.Delete(ctx, "media/ab/one.png"))

	_, err = s.Get(ctx, "media/ab/one.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Save(context.Background(), "../outside.txt", strings.NewReader("x")))
	_, err = s.Get(context.Background(), "a/../../etc/passwd")
	assert.Error(t, err)
}

func TestThumbnailIsSquareJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 320))
	for x := 0; x < 640; x++ {
		for y := 0; y < 320; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	p := NewImageProcessor()
	img, err := p.Decode(&buf)
	require.NoError(t, err)

	thumb, err := p.Thumbnail(img, 200, 200)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	_, err = p.Decode(strings.NewReader("not an image"))
	assert.Error(t, err)
}
