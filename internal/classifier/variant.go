// Package classifier decides whether a tweet is disease related.
//
// Three variants exist: a random forest and a logistic regression, both
// trained offline on tweet embeddings and loaded from JSON exports, and a
// keyword rule that needs no model at all. Which variant serves requests is
// decided once at startup by SelectVariant and never changes afterwards.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	VariantRandomForest       = "random_forest"
	VariantLogisticRegression = "logistic_regression"
	VariantKeyword            = "keyword"
)

var (
	ErrEmbeddingRequired = errors.New("classifier requires an embedding")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrMalformedOutput   = errors.New("malformed model output")
	ErrInvalidModel      = errors.New("invalid model artifact")
)

// Input carries everything a variant may look at. Trained variants read the
// embedding, the keyword variant reads the normalized text.
type Input struct {
	Embedding []float32
	Text      string
}

// Prediction is a class label plus one probability per class.
type Prediction struct {
	Label         int
	Probabilities []float64
}

type Variant interface {
	Name() string
	RequiresEmbedding() bool
	Predict(in Input) (Prediction, error)
}

// Dimensioned is implemented by variants trained on fixed-length embeddings.
type Dimensioned interface {
	NumFeatures() int
}

func checkDimension(embedding []float32, want int) error {
	if embedding == nil {
		return ErrEmbeddingRequired
	}
	if len(embedding) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), want)
	}
	return nil
}

func toFloat64(embedding []float32) []float64 {
	out := make([]float64, len(embedding))
	for i, v := range embedding {
		out[i] = float64(v)
	}
	return out
}

// labelFor maps the most probable class index to its label. Ties resolve to
// the first class, matching argmax.
func labelFor(classes []int, probs []float64) int {
	return classes[floats.MaxIdx(probs)]
}

func validateClasses(classes []int) error {
	if len(classes) < 2 {
		return fmt.Errorf("%w: need at least 2 classes, got %d", ErrInvalidModel, len(classes))
	}
	seen := make(map[int]struct{}, len(classes))
	for _, c := range classes {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("%w: duplicate class %d", ErrInvalidModel, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
