package video

import (
	"image"
	"math/rand/v2"
	"sync"
)

// Labels is the fixed video vocabulary.
var Labels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

const (
	MinConfidence = 0.6
	MaxConfidence = 0.95
)

// Strategy picks an emotion once at least one face was found. A real visual
// model plugs in here; the handler contract does not change.
type Strategy interface {
	Infer(gray *image.Gray, faces []image.Rectangle) (emotion string, confidence float64, err error)
}

// RandomStrategy is a placeholder, not a classifier: it returns a uniformly
// random label with confidence uniform in [MinConfidence, MaxConfidence].
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededRandomStrategy is reproducible across runs.
func NewSeededRandomStrategy(seed uint64) *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomStrategy) Infer(_ *image.Gray, _ []image.Rectangle) (string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	label := Labels[s.rng.IntN(len(Labels))]
	conf := MinConfidence + s.rng.Float64()*(MaxConfidence-MinConfidence)
	return label, conf, nil
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(gray *image.Gray, faces []image.Rectangle) (string, float64, error)

func (f StrategyFunc) Infer(gray *image.Gray, faces []image.Rectangle) (string, float64, error) {
	return f(gray, faces)
}
