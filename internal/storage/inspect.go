package storage

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

const (
	MaxImageBytes = 5 * 1024 * 1024
	MaxVideoBytes = 80 * 1024 * 1024
)

var (
	ErrUnsupportedMedia = errors.New("only PNG, JPG, and MP4 files are allowed")
	ErrTooLarge         = errors.New("file is too large")
)

// Upload describes a validated upload.
type Upload struct {
	MediaType   string // model.MediaTypeImage or model.MediaTypeVideo
	ContentType string
	Ext         string
	Width       *int
	Height      *int
}

var allowed = map[string]string{
	"image/png":  model.MediaTypeImage,
	"image/jpeg": model.MediaTypeImage,
	"video/mp4":  model.MediaTypeVideo,
}

// Inspect sniffs the content of src, enforces the per-type size limit and,
// for images, reads the pixel dimensions. src is rewound before returning.
func Inspect(src io.ReadSeeker, size int64) (Upload, error) {
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return Upload{}, fmt.Errorf("could not detect file type: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return Upload{}, err
	}

	var (
		contentType string
		mediaType   string
	)
	for ct, mt := range allowed {
		if mtype.Is(ct) {
			contentType, mediaType = ct, mt
			break
		}
	}
	if mediaType == "" {
		return Upload{}, ErrUnsupportedMedia
	}

	limit := int64(MaxImageBytes)
	if mediaType == model.MediaTypeVideo {
		limit = MaxVideoBytes
	}
	if size > limit {
		return Upload{}, fmt.Errorf("%w: %s files must be less than %dMB", ErrTooLarge, mediaType, limit/(1024*1024))
	}

	up := Upload{MediaType: mediaType, ContentType: contentType, Ext: mtype.Extension()}
	if mediaType == model.MediaTypeImage {
		if cfg, _, err := image.DecodeConfig(src); err == nil {
			w, h := cfg.Width, cfg.Height
			up.Width, up.Height = &w, &h
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return Upload{}, err
		}
	}
	return up, nil
}
