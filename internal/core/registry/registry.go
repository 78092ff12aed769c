// Package registry owns the process-wide handles to the external models.
// The face detector and transcriber are handed in ready to use; the text
// classifier is loaded on first use, exactly once.
package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/face"
	"github.com/steveyiyo/moodlens-backend/internal/core/stt"
	"github.com/steveyiyo/moodlens-backend/internal/core/textemo"
	"github.com/steveyiyo/moodlens-backend/internal/logging"

	"golang.org/x/sync/singleflight"
)

type State string

const (
	StateReady       State = "ready"
	StateNotLoaded   State = "not_loaded"
	StateFailed      State = "failed"
	StateUnavailable State = "unavailable"
)

const classifierKey = "text-classifier"

type Registry struct {
	detector    face.Detector
	transcriber stt.Transcriber
	loader      textemo.Loader
	log         *slog.Logger

	// OnLoad, when set, observes every classifier load attempt.
	OnLoad func(d time.Duration, err error)

	sf         singleflight.Group
	mu         sync.RWMutex
	classifier textemo.Classifier
	loadErr    error
}

func New(detector face.Detector, transcriber stt.Transcriber, loader textemo.Loader, log *slog.Logger) *Registry {
	if log == nil {
		log = logging.Discard()
	}
	return &Registry{detector: detector, transcriber: transcriber, loader: loader, log: log}
}

func (r *Registry) FaceDetector() face.Detector { return r.detector }

func (r *Registry) Transcriber() stt.Transcriber { return r.transcriber }

// TextClassifier returns the cached classifier, loading it on the first call.
// Concurrent first calls share one load. A failed load is permanent: every
// later call gets the same ModelLoadError.
func (r *Registry) TextClassifier(ctx context.Context) (textemo.Classifier, error) {
	if c, err := r.cached(); c != nil || err != nil {
		return c, err
	}
	v, err, _ := r.sf.Do(classifierKey, func() (any, error) {
		if c, err := r.cached(); c != nil || err != nil {
			return c, err
		}
		return r.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(textemo.Classifier), nil
}

func (r *Registry) cached() (textemo.Classifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classifier, r.loadErr
}

func (r *Registry) load(ctx context.Context) (textemo.Classifier, error) {
	const op = "registry.text_classifier"
	r.log.Info("loading text classifier")
	start := time.Now()

	var c textemo.Classifier
	var err error
	if r.loader == nil {
		err = errors.New("no text classifier configured")
	} else {
		c, err = r.loader(ctx)
		if err == nil && c == nil {
			err = errors.New("loader returned no classifier")
		}
	}
	took := time.Since(start)
	if r.OnLoad != nil {
		r.OnLoad(took, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.loadErr = apperr.ModelLoad(op, err, "text classifier unavailable")
		r.log.Error("text classifier load failed", "error", err, "took", took)
		return nil, r.loadErr
	}
	r.classifier = c
	r.log.Info("text classifier loaded", "took", took)
	return c, nil
}

// Warmup loads the text classifier ahead of the first request.
func (r *Registry) Warmup(ctx context.Context) error {
	_, err := r.TextClassifier(ctx)
	return err
}

func (r *Registry) Status() map[string]State {
	out := map[string]State{
		"face_detector":   StateReady,
		"transcriber":     StateReady,
		"text_classifier": StateNotLoaded,
	}
	if r.detector == nil {
		out["face_detector"] = StateUnavailable
	}
	if r.transcriber == nil {
		out["transcriber"] = StateUnavailable
	}
	c, err := r.cached()
	switch {
	case c != nil:
		out["text_classifier"] = StateReady
	case err != nil:
		out["text_classifier"] = StateFailed
	}
	return out
}

// Close releases collaborators that hold native resources.
func (r *Registry) Close() error {
	classifier, _ := r.cached()
	var errs []error
	for _, v := range []any{r.detector, r.transcriber, classifier} {
		if c, ok := v.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
