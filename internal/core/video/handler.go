// Package video runs face detection on a still frame and labels the frame
// through a pluggable Strategy.
package video

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/steveyiyo/moodlens-backend/internal/core/decode"
	"github.com/steveyiyo/moodlens-backend/internal/core/face"
	"github.com/steveyiyo/moodlens-backend/internal/logging"
)

const NoFaceMessage = "no face detected"

type Result struct {
	FaceFound     bool
	Emotion       string
	Confidence    float64
	FacesDetected int
}

type Handler struct {
	Detector  face.Detector
	Strategy  Strategy
	Params    face.Params
	// MaxPixels caps decoded frames; zero means decode.DefaultMaxPixels.
	MaxPixels int
	log       *slog.Logger
}

func NewHandler(d face.Detector, s Strategy, p face.Params, log *slog.Logger) *Handler {
	if s == nil {
		s = NewRandomStrategy()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{Detector: d, Strategy: s, Params: p, log: log}
}

// Decode turns a base64 or data-URL frame into an image within the pixel cap.
func (h *Handler) Decode(payload string) (image.Image, error) {
	return decode.DecodeImage(payload, h.MaxPixels)
}

func (h *Handler) Detect(img image.Image) (*Result, error) {
	gray := face.Grayscale(img)
	faces, err := h.Detector.Detect(gray, h.Params)
	if err != nil {
		return nil, fmt.Errorf("face detection: %w", err)
	}
	if len(faces) == 0 {
		h.log.Debug("no face in frame", "width", gray.Rect.Dx(), "height", gray.Rect.Dy())
		return &Result{}, nil
	}
	emotion, conf, err := h.Strategy.Infer(gray, faces)
	if err != nil {
		return nil, fmt.Errorf("video emotion strategy: %w", err)
	}
	return &Result{
		FaceFound:     true,
		Emotion:       emotion,
		Confidence:    conf,
		FacesDetected: len(faces),
	}, nil
}
