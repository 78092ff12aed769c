package textemo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/logging"

	"github.com/patrickmn/go-cache"
)

// HFClient talks to a Hugging Face style text-classification inference
// endpoint: POST {"inputs": "..."} -> [[{"label","score"}, ...]].
type HFClient struct {
	url   string
	token string
	hc    *http.Client
	memo  *cache.Cache
	log   *slog.Logger
}

type HFOptions struct {
	URL        string
	Token      string
	HTTPClient *http.Client
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

type hfRequest struct {
	Inputs  string     `json:"inputs"`
	Options *hfOptions `json:"options,omitempty"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

const maxLoadingWait = 10 * time.Second

// errModelLoading is returned while the endpoint is still warming the model.
type errModelLoading struct{ wait time.Duration }

func (e *errModelLoading) Error() string {
	return fmt.Sprintf("model is loading, retry in %s", e.wait)
}

func NewHFClient(o HFOptions) *HFClient {
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	var memo *cache.Cache
	if o.CacheTTL > 0 {
		memo = cache.New(o.CacheTTL, 2*o.CacheTTL)
	}
	log := o.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &HFClient{url: o.URL, token: o.Token, hc: hc, memo: memo, log: log}
}

// NewHFLoader returns a Loader that probes the endpoint until the model
// answers or loadTimeout elapses.
func NewHFLoader(o HFOptions, loadTimeout time.Duration) Loader {
	return func(ctx context.Context) (Classifier, error) {
		c := NewHFClient(o)
		if loadTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, loadTimeout)
			defer cancel()
		}
		if err := c.Probe(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Probe classifies a fixed phrase, waiting out "model is loading" answers.
func (c *HFClient) Probe(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		_, err := c.call(ctx, "hello", true)
		var loading *errModelLoading
		if !errors.As(err, &loading) {
			return err
		}
		wait := min(loading.wait, maxLoadingWait)
		c.log.Info("text model still loading", "attempt", attempt, "wait", wait)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("waiting for text model: %w", ctx.Err())
		case <-t.C:
		}
	}
}

func (c *HFClient) Classify(ctx context.Context, text string) ([]Score, error) {
	if c.memo != nil {
		if v, ok := c.memo.Get(text); ok {
			return v.([]Score), nil
		}
	}
	scores, err := c.call(ctx, text, false)
	if err != nil {
		return nil, err
	}
	if c.memo != nil {
		c.memo.SetDefault(text, scores)
	}
	return scores, nil
}

func (c *HFClient) call(ctx context.Context, text string, wait bool) ([]Score, error) {
	body := hfRequest{Inputs: text}
	if wait {
		body.Options = &hfOptions{WaitForModel: true, UseCache: true}
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("classifier read: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		var he hfError
		if json.Unmarshal(raw, &he) == nil && he.EstimatedTime > 0 {
			return nil, &errModelLoading{wait: time.Duration(he.EstimatedTime * float64(time.Second))}
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier %s: %s", resp.Status, snippet(raw))
	}

	scores, err := parseScores(raw)
	if err != nil {
		return nil, fmt.Errorf("classifier decode: %w", err)
	}
	return Normalize(scores)
}

func snippet(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

// parseScores accepts both [[{...}]] (one list per input) and [{...}].
func parseScores(raw []byte) ([]Score, error) {
	var nested [][]Score
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, errors.New("empty response")
		}
		return nested[0], nil
	}
	var flat []Score
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}
