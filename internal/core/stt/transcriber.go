// Package stt is the speech-to-text collaborator. Backends report failures
// as apperr ServiceUnavailable (backend unreachable, retry later) or
// UnintelligibleAudio (backend answered without a transcript, re-record).
package stt

import (
	"context"
	"strings"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/decode"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio *decode.PCMAudio) (string, error)
}

type TranscriberFunc func(ctx context.Context, audio *decode.PCMAudio) (string, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, audio *decode.PCMAudio) (string, error) {
	return f(ctx, audio)
}

// unintelligibleMarker is what the Gemini prompt asks for on unusable audio.
const unintelligibleMarker = "[UNINTELLIGIBLE]"

// finalize trims a transcript and turns an empty one into UnintelligibleAudio.
func finalize(op, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, unintelligibleMarker) {
		return "", apperr.UnintelligibleAudio(op, "could not understand audio")
	}
	return text, nil
}
