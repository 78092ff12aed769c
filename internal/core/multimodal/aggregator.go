// Package multimodal runs every modality that has input and merges the
// results. A failing modality is dropped from the result, never fatal.
package multimodal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/audio"
	"github.com/steveyiyo/moodlens-backend/internal/core/video"
	"github.com/steveyiyo/moodlens-backend/internal/logging"
)

const (
	ModalityVideo = "video"
	ModalityAudio = "audio"
)

type Request struct {
	Image string
	Text  string
}

type Response struct {
	Video *video.Result
	Audio *audio.Result
	// Errors holds the isolated failure of each dropped modality.
	Errors map[string]error
}

type Aggregator struct {
	video *video.Handler
	audio *audio.Handler
	log   *slog.Logger
}

func New(v *video.Handler, a *audio.Handler, log *slog.Logger) *Aggregator {
	if log == nil {
		log = logging.Discard()
	}
	return &Aggregator{video: v, audio: a, log: log}
}

func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*Response, error) {
	hasImage := strings.TrimSpace(req.Image) != ""
	hasText := strings.TrimSpace(req.Text) != ""
	if !hasImage && !hasText {
		return nil, apperr.Validation("multimodal", "no image or text provided")
	}

	resp := &Response{Errors: map[string]error{}}
	var mu sync.Mutex
	var wg sync.WaitGroup

	fail := func(modality string, err error) {
		mu.Lock()
		resp.Errors[modality] = err
		mu.Unlock()
		level := slog.LevelWarn
		if apperr.KindOf(err) == apperr.KindModelLoad {
			level = slog.LevelError
		}
		a.log.Log(ctx, level, "modality dropped", "modality", modality, "kind", apperr.KindOf(err), "error", err)
	}

	run := func(modality string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail(modality, &apperr.Error{Kind: apperr.KindInternal, Op: "multimodal." + modality,
						Msg: fmt.Sprintf("%s handler panicked: %v", modality, r)})
				}
			}()
			if err := fn(); err != nil {
				fail(modality, err)
			}
		}()
	}

	if hasImage {
		run(ModalityVideo, func() error {
			img, err := a.video.Decode(req.Image)
			if err != nil {
				return err
			}
			res, err := a.video.Detect(img)
			if err != nil {
				return err
			}
			if res.FaceFound {
				mu.Lock()
				resp.Video = res
				mu.Unlock()
			}
			return nil
		})
	}
	if hasText {
		run(ModalityAudio, func() error {
			res, err := a.audio.FromText(ctx, req.Text)
			if err != nil {
				return err
			}
			mu.Lock()
			resp.Audio = res
			mu.Unlock()
			return nil
		})
	}
	wg.Wait()
	return resp, nil
}
