// Package textemo is the text emotion classifier collaborator.
package textemo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

const DefaultModel = "bhadresh-savani/distilbert-base-uncased-emotion"

type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier returns scores ordered from most to least likely.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Score, error)
}

// Loader builds a ready Classifier. It may take seconds.
type Loader func(ctx context.Context) (Classifier, error)

type ClassifierFunc func(ctx context.Context, text string) ([]Score, error)

func (f ClassifierFunc) Classify(ctx context.Context, text string) ([]Score, error) {
	return f(ctx, text)
}

// Normalize sorts scores descending and rejects anything that is not a
// probability.
func Normalize(scores []Score) ([]Score, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("classifier returned no scores")
	}
	out := slices.Clone(scores)
	for _, s := range out {
		if s.Score < 0 || s.Score > 1 || s.Score != s.Score {
			return nil, fmt.Errorf("classifier score %v for %q is not a probability", s.Score, s.Label)
		}
	}
	slices.SortStableFunc(out, func(a, b Score) int { return cmp.Compare(b.Score, a.Score) })
	return out, nil
}
