package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/config"
	"github.com/steveyiyo/moodlens-backend/internal/core/stt"
	"github.com/steveyiyo/moodlens-backend/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranscriber(t *testing.T) {
	tr, err := newTranscriber(config.Speech{Backend: "http", ASRURL: "http://asr.test", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &stt.HTTPTranscriber{}, tr)

	tr, err = newTranscriber(config.Speech{Backend: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-2.5-flash"})
	require.NoError(t, err)
	assert.IsType(t, &stt.GeminiTranscriber{}, tr)

	_, err = newTranscriber(config.Speech{Backend: "whisper"})
	assert.ErrorContains(t, err, `unknown STT backend "whisper"`)
}

func TestRunReturnsStartupErrors(t *testing.T) {
	cfg := config.Config{Port: "0"}
	cfg.Face.CascadePath = filepath.Join(t.TempDir(), "missing.xml")

	err := run(cfg, logging.Discard())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "face detector")
}
