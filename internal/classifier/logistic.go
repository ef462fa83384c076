package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression is a linear model export. A binary model has a single
// coefficient row scoring the second class; a multinomial model has one row
// per class.
type LogisticRegression struct {
	NFeatures int         `json:"n_features"`
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func (m *LogisticRegression) Name() string            { return VariantLogisticRegression }
func (m *LogisticRegression) RequiresEmbedding() bool { return true }
func (m *LogisticRegression) NumFeatures() int        { return m.NFeatures }

func (m *LogisticRegression) Predict(in Input) (Prediction, error) {
	if err := checkDimension(in.Embedding, m.NFeatures); err != nil {
		return Prediction{}, err
	}
	x := toFloat64(in.Embedding)

	scores := make([]float64, len(m.Coef))
	for i, row := range m.Coef {
		scores[i] = floats.Dot(row, x) + m.Intercept[i]
	}

	var probs []float64
	if len(m.Coef) == 1 {
		p := sigmoid(scores[0])
		probs = []float64{1 - p, p}
	} else {
		probs = softmax(scores)
	}

	return Prediction{Label: labelFor(m.Classes, probs), Probabilities: probs}, nil
}

func (m *LogisticRegression) Validate() error {
	if m.NFeatures <= 0 {
		return fmt.Errorf("%w: n_features must be positive", ErrInvalidModel)
	}
	if err := validateClasses(m.Classes); err != nil {
		return err
	}

	rows := len(m.Coef)
	switch {
	case len(m.Classes) == 2 && rows == 1:
	case len(m.Classes) > 2 && rows == len(m.Classes):
	default:
		return fmt.Errorf("%w: %d coefficient rows for %d classes", ErrInvalidModel, rows, len(m.Classes))
	}
	if len(m.Intercept) != rows {
		return fmt.Errorf("%w: %d intercepts for %d coefficient rows", ErrInvalidModel, len(m.Intercept), rows)
	}

	for i, row := range m.Coef {
		if len(row) != m.NFeatures {
			return fmt.Errorf("%w: coefficient row %d has %d values, want %d", ErrInvalidModel, i, len(row), m.NFeatures)
		}
		for _, v := range row {
			if !isFinite(v) {
				return fmt.Errorf("%w: non-finite coefficient in row %d", ErrInvalidModel, i)
			}
		}
		if !isFinite(m.Intercept[i]) {
			return fmt.Errorf("%w: non-finite intercept %d", ErrInvalidModel, i)
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	maxScore := floats.Max(scores)
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	floats.Scale(1/sum, out)
	return out
}
