package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/decode"
)

// HTTPTranscriber posts the clip as multipart "file" to {base}/transcribe.
type HTTPTranscriber struct {
	base string
	hc   *http.Client
}

type transSeg struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type asrResp struct {
	Text     string     `json:"text"`
	Segments []transSeg `json:"segments"`
	Language string     `json:"language"`
}

func NewHTTPTranscriber(base string, hc *http.Client) *HTTPTranscriber {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPTranscriber{base: strings.TrimRight(base, "/"), hc: hc}
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio *decode.PCMAudio) (string, error) {
	const op = "stt.http"
	wav, err := audio.WAV()
	if err != nil {
		return "", err
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	name := "clip.wav"
	if audio.Source != "" {
		name = strings.TrimSuffix(path.Base(audio.Source), path.Ext(audio.Source)) + ".wav"
	}
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err = fw.Write(wav); err != nil {
		return "", err
	}
	if err = w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/transcribe", &b)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.hc.Do(req)
	if err != nil {
		return "", apperr.ServiceUnavailable(op, err, "could not request results from speech recognition service")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return "", apperr.UnintelligibleAudio(op, "could not understand audio")
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperr.ServiceUnavailable(op, fmt.Errorf("asr %s: %s", resp.Status, string(body)),
			"could not request results from speech recognition service")
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("asr %s: %s", resp.Status, string(body))
	}

	var out asrResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("asr decode: %w", err)
	}
	text := out.Text
	if text == "" {
		parts := make([]string, 0, len(out.Segments))
		for _, s := range out.Segments {
			if s := strings.TrimSpace(s.Text); s != "" {
				parts = append(parts, s)
			}
		}
		text = strings.Join(parts, " ")
	}
	return finalize(op, text)
}
