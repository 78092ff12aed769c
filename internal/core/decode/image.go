// Package decode turns wire payloads into the in-memory forms the modality
// handlers work on.
package decode

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds a decoded frame when the caller sets no limit.
const DefaultMaxPixels = 4096 * 4096

// DecodeImage accepts a bare base64 string or a data URL and returns the
// decoded raster. Anything up to and including the first comma is dropped.
// The header is checked against maxPixels before any pixel data is allocated.
func DecodeImage(payload string, maxPixels int) (image.Image, error) {
	const op = "decode.image"
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, apperr.Validation(op, "no image provided")
	}
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	raw, err := decodeBase64(payload)
	if err != nil {
		return nil, apperr.Decode(op, err, "malformed base64 image")
	}
	if len(raw) == 0 {
		return nil, apperr.Decode(op, nil, "empty image payload")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apperr.Decode(op, err, "unparseable image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperr.Decode(op, nil, "image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, apperr.Decode(op, nil, "image is %dx%d, limit is %d pixels", cfg.Width, cfg.Height, maxPixels)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperr.Decode(op, err, "unparseable image")
	}
	return img, nil
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	var firstErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
