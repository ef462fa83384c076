package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spacesedan/covidpulse/internal/artifact"
)

type Result struct {
	IsDiseaseRelated bool
	Confidence       float64
	Variant          string
}

// SelectVariant applies the startup priority: the primary model, then the
// secondary one, then the fallback. Trained models are only eligible when an
// embedding provider is available to feed them.
func SelectVariant(hasEmbedding bool, primary, secondary artifact.Artifact[Variant], fallback Variant) Variant {
	if hasEmbedding {
		if v, ok := primary.Get(); ok && v != nil {
			return v
		}
		if v, ok := secondary.Get(); ok && v != nil {
			return v
		}
	}
	return fallback
}

// Classifier serves one variant for the lifetime of the process.
type Classifier struct {
	variant Variant
}

func New(variant Variant) *Classifier {
	return &Classifier{variant: variant}
}

func (c *Classifier) Variant() string {
	return c.variant.Name()
}

func (c *Classifier) RequiresEmbedding() bool {
	return c.variant.RequiresEmbedding()
}

// Classify runs the selected variant. Confidence is the largest class
// probability the variant reports.
func (c *Classifier) Classify(embedding []float32, text string) (Result, error) {
	if c.variant.RequiresEmbedding() && embedding == nil {
		return Result{}, fmt.Errorf("%s: %w", c.variant.Name(), ErrEmbeddingRequired)
	}

	pred, err := c.variant.Predict(Input{Embedding: embedding, Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", c.variant.Name(), err)
	}

	confidence, err := maxProbability(pred.Probabilities)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", c.variant.Name(), err)
	}

	return Result{
		IsDiseaseRelated: pred.Label != 0,
		Confidence:       confidence,
		Variant:          c.variant.Name(),
	}, nil
}

func maxProbability(probs []float64) (float64, error) {
	if len(probs) == 0 {
		return 0, fmt.Errorf("%w: no class probabilities", ErrMalformedOutput)
	}
	best := 0.0
	for _, p := range probs {
		if !isFinite(p) || p < 0 || p > 1 {
			return 0, fmt.Errorf("%w: probability %v", ErrMalformedOutput, p)
		}
		if p > best {
			best = p
		}
	}
	return best, nil
}

// LoadRandomForest reads and validates a forest export.
func LoadRandomForest(path string) (*RandomForest, error) {
	var model RandomForest
	if err := readModel(path, &model); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("random forest %s: %w", path, err)
	}
	return &model, nil
}

// LoadLogisticRegression reads and validates a linear model export.
func LoadLogisticRegression(path string) (*LogisticRegression, error) {
	var model LogisticRegression
	if err := readModel(path, &model); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("logistic regression %s: %w", path, err)
	}
	return &model, nil
}

func readModel(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
