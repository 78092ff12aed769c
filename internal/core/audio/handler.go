// Package audio classifies the emotion of speech, either from text that is
// already available or from an uploaded clip that is transcribed first.
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/decode"
	"github.com/steveyiyo/moodlens-backend/internal/core/stt"
	"github.com/steveyiyo/moodlens-backend/internal/core/textemo"
	"github.com/steveyiyo/moodlens-backend/internal/logging"
)

// Models is the slice of the registry this handler needs.
type Models interface {
	TextClassifier(ctx context.Context) (textemo.Classifier, error)
	Transcriber() stt.Transcriber
}

type Result struct {
	Emotion    string
	Confidence float64
	Text       string
	Scores     []textemo.Score
}

type Handler struct {
	models Models
	log    *slog.Logger
}

func NewHandler(m Models, log *slog.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{models: m, log: log}
}

// FromText classifies text directly.
func (h *Handler) FromText(ctx context.Context, text string) (*Result, error) {
	text, err := decode.NormalizeText(text)
	if err != nil {
		return nil, err
	}
	clf, err := h.models.TextClassifier(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := clf.Classify(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("text classification: %w", err)
	}
	scores, err = textemo.Normalize(scores)
	if err != nil {
		return nil, err
	}
	return &Result{
		Emotion:    scores[0].Label,
		Confidence: scores[0].Score,
		Text:       text,
		Scores:     scores,
	}, nil
}

// FromAudio transcribes the clip and classifies the transcript.
func (h *Handler) FromAudio(ctx context.Context, clip *decode.PCMAudio) (*Result, error) {
	const op = "audio.transcribe"
	t := h.models.Transcriber()
	if t == nil {
		return nil, apperr.ServiceUnavailable(op, nil, "no speech recognition service configured")
	}
	text, err := t.Transcribe(ctx, clip)
	if err != nil {
		h.log.Warn("transcription failed", "source", clip.Source, "kind", apperr.KindOf(err), "error", err)
		return nil, err
	}
	h.log.Debug("transcribed clip", "source", clip.Source, "duration", clip.Duration(), "chars", len(text))
	return h.FromText(ctx, text)
}
