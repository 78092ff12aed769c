package registry

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/apperr"
	"github.com/steveyiyo/moodlens-backend/internal/core/face"
	"github.com/steveyiyo/moodlens-backend/internal/core/textemo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (l *countingLoader) Load(ctx context.Context) (textemo.Classifier, error) {
	l.calls.Add(1)
	time.Sleep(l.delay)
	if l.err != nil {
		return nil, l.err
	}
	return textemo.ClassifierFunc(func(context.Context, string) ([]textemo.Score, error) {
		return []textemo.Score{{Label: "joy", Score: 0.9}}, nil
	}), nil
}

var noFaces = face.DetectorFunc(func(*image.Gray, face.Params) ([]image.Rectangle, error) { return nil, nil })

func TestTextClassifierLoadsOnce(t *testing.T) {
	loader := &countingLoader{delay: 50 * time.Millisecond}
	r := New(noFaces, nil, loader.Load, nil)

	const callers = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	got := make([]textemo.Classifier, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got[i], errs[i] = r.TextClassifier(context.Background())
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		require.NotNil(t, got[i])
	}

	_, err := r.TextClassifier(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), loader.calls.Load())
	assert.Equal(t, StateReady, r.Status()["text_classifier"])
}

func TestTextClassifierLoadFailureIsSticky(t *testing.T) {
	loader := &countingLoader{err: errors.New("model not found")}
	var observed []error
	r := New(noFaces, nil, loader.Load, nil)
	r.OnLoad = func(_ time.Duration, err error) { observed = append(observed, err) }

	_, err := r.TextClassifier(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrModelLoad)

	_, err = r.TextClassifier(context.Background())
	assert.ErrorIs(t, err, apperr.ErrModelLoad)
	assert.Equal(t, int32(1), loader.calls.Load())
	assert.Len(t, observed, 1)
	assert.Equal(t, StateFailed, r.Status()["text_classifier"])
}

func TestTextClassifierIgnoresCallerCancellation(t *testing.T) {
	r := New(noFaces, nil, func(ctx context.Context) (textemo.Classifier, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return textemo.ClassifierFunc(func(context.Context, string) ([]textemo.Score, error) { return nil, nil }), nil
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.TextClassifier(ctx)

	assert.NoError(t, err)
}

func TestNilLoader(t *testing.T) {
	r := New(noFaces, nil, nil, nil)

	_, err := r.TextClassifier(context.Background())

	assert.ErrorIs(t, err, apperr.ErrModelLoad)
}

func TestStatusBeforeLoad(t *testing.T) {
	r := New(noFaces, nil, (&countingLoader{}).Load, nil)

	assert.Equal(t, map[string]State{
		"face_detector":   StateReady,
		"transcriber":     StateUnavailable,
		"text_classifier": StateNotLoaded,
	}, r.Status())
}

type closingDetector struct {
	face.DetectorFunc
	closed bool
}

func (c *closingDetector) Close() error {
	c.closed = true
	return nil
}

func TestCloseReleasesDetector(t *testing.T) {
	d := &closingDetector{DetectorFunc: noFaces}
	r := New(d, nil, nil, nil)

	require.NoError(t, r.Close())
	assert.True(t, d.closed)
}
