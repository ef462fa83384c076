// Package embedding turns normalized tweet text into fixed-length vectors for
// the trained classifiers.
//
// HugotEmbedder returns the feature-extraction pipeline's pooled sentence
// vector, not the first-token ([CLS]) hidden state, and bounds input by word
// count rather than a fixed 128-token window. Trained classifier artifacts
// must be fit on vectors produced the same way; the startup dimension check
// only catches size mismatches.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrEmptyEmbedding     = errors.New("embedder returned no vector")
	ErrNonFiniteEmbedding = errors.New("embedder returned a non-finite value")
)

// Embedder produces one vector per input text. Implementations must be safe
// for concurrent use and must never return a partial vector.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Probe embeds a fixed sentence and reports the vector length. It is used at
// startup to decide whether the embedder is usable and which trained models
// it can feed.
func Probe(ctx context.Context, e Embedder) (int, error) {
	vec, err := e.Embed(ctx, "covid fever cough probe")
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", e.Name(), err)
	}
	return len(vec), nil
}

func checkVector(vec []float32) error {
	if len(vec) == 0 {
		return ErrEmptyEmbedding
	}
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return ErrNonFiniteEmbedding
		}
	}
	return nil
}

// truncateWords keeps at most max whitespace separated words. A max of zero
// disables truncation.
func truncateWords(text string, max int) string {
	if max <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= max {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:max], " ")
}
