package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// minimal ISO base media header with an mp4 brand
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'm', 'p', '4', '1',
}

func TestInspect(t *testing.T) {
	t.Run("png within limit", func(t *testing.T) {
		data := pngBytes(t, 4, 3)
		up, err := Inspect(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Equal(t, model.MediaTypeImage, up.MediaType)
		assert.Equal(t, "image/png", up.ContentType)
		assert.Equal(t, ".png", up.Ext)
		require.NotNil(t, up.Width)
		assert.Equal(t, 4, *up.Width)
		assert.Equal(t, 3, *up.Height)
	})

	t.Run("image over 5MB", func(t *testing.T) {
		data := pngBytes(t, 1, 1)
		_, err := Inspect(bytes.NewReader(data), MaxImageBytes+1)
		assert.True(t, errors.Is(err, ErrTooLarge))
	})

	t.Run("mp4 uses the video limit", func(t *testing.T) {
		up, err := Inspect(bytes.NewReader(mp4Header), MaxImageBytes+1)
		require.NoError(t, err)
		assert.Equal(t, model.MediaTypeVideo, up.MediaType)
		assert.Nil(t, up.Width)

		_, err = Inspect(bytes.NewReader(mp4Header), MaxVideoBytes+1)
		assert.True(t, errors.Is(err, ErrTooLarge))
	})

	t.Run("other content is rejected", func(t *testing.T) {
		data := []byte("%PDF-1.4\n")
		_, err := Inspect(bytes.NewReader(data), int64(len(data)))
		assert.True(t, errors.Is(err, ErrUnsupportedMedia))
	})
}
