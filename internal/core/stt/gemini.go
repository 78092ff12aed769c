package stt

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/decode"

	"google.golang.org/genai"
)

const transcribePrompt = "Transcribe the speech in this audio clip verbatim. Output only the transcript text. " +
	"If there is no intelligible speech, output exactly " + unintelligibleMarker + "."

// GeminiTranscriber sends the clip inline to a Gemini model.
type GeminiTranscriber struct {
	c     *genai.Client
	model string
}

type GeminiOptions struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeminiTranscriber(o GeminiOptions) (*GeminiTranscriber, error) {
	reqTimeout := o.Timeout
	if reqTimeout <= 0 {
		reqTimeout = 60 * time.Second
	}
	hc := o.HTTPClient
	if hc == nil {
		tr := &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
			ForceAttemptHTTP2: false,
			MaxIdleConns:      100,
			IdleConnTimeout:   90 * time.Second,
		}
		hc = &http.Client{Transport: tr, Timeout: reqTimeout + 5*time.Second}
	}
	cl, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     o.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    o.BaseURL,
			APIVersion: "v1beta",
			Timeout:    &reqTimeout,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiTranscriber{c: cl, model: o.Model}, nil
}

func (g *GeminiTranscriber) Transcribe(ctx context.Context, audio *decode.PCMAudio) (string, error) {
	const op = "stt.gemini"
	wav, err := audio.WAV()
	if err != nil {
		return "", err
	}
	parts := []*genai.Part{
		{Text: transcribePrompt},
		{InlineData: &genai.Blob{Data: wav, MIMEType: "audio/wav"}},
	}
	temp := float32(0)
	cfg := &genai.GenerateContentConfig{Temperature: &temp}

	var lastErr error
	for i := 0; i < 3; i++ {
		resp, err := g.c.Models.GenerateContent(ctx, g.model, []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, cfg)
		if err != nil {
			lastErr = err
			if !retriable(err) || i == 2 {
				break
			}
			t := time.NewTimer(time.Duration(300*(i+1)) * time.Millisecond)
			select {
			case <-ctx.Done():
				t.Stop()
				return "", apperr.ServiceUnavailable(op, ctx.Err(), "could not request results from speech recognition service")
			case <-t.C:
			}
			continue
		}
		return finalize(op, resp.Text())
	}
	if unavailable(lastErr) {
		return "", apperr.ServiceUnavailable(op, lastErr, "could not request results from speech recognition service")
	}
	return "", lastErr
}

func retriable(err error) bool {
	if err == nil {
		return false
	}
	if code := apiCode(err); code == http.StatusTooManyRequests || code >= 500 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "unexpected EOF") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "RST_STREAM") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "UNAVAILABLE") ||
		strings.Contains(s, "RESOURCE_EXHAUSTED")
}

// unavailable reports errors that mean the backend could not be reached or
// could not serve right now.
func unavailable(err error) bool {
	if err == nil {
		return false
	}
	if retriable(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func apiCode(err error) int {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return p.Code
	}
	return 0
}
