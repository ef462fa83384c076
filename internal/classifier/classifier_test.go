package classifier

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spacesedan/covidpulse/internal/artifact"
)

func testForest() *RandomForest {
	return &RandomForest{
		NFeatures: 2,
		Classes:   []int{0, 1},
		Trees: []Tree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{0, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         [][]float64{{9, 11}, {8, 2}, {1, 9}},
			},
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{1, -2, -2},
				Threshold:     []float64{0, -2, -2},
				Value:         [][]float64{{5, 15}, {5, 5}, {0, 10}},
			},
		},
	}
}

func testLogistic() *LogisticRegression {
	return &LogisticRegression{
		NFeatures: 2,
		Classes:   []int{0, 1},
		Coef:      [][]float64{{2, -1}},
		Intercept: []float64{0},
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRandomForestPredict(t *testing.T) {
	f := testForest()
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	tests := []struct {
		name      string
		x         []float32
		wantLabel int
		wantProbs []float64
	}{
		{"both trees lean positive", []float32{0.2, 1.0}, 1, []float64{0.4, 0.6}},
		{"negative majority", []float32{0.2, -1.0}, 0, []float64{0.65, 0.35}},
		{"threshold goes left", []float32{0.5, 0}, 0, []float64{0.65, 0.35}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := f.Predict(Input{Embedding: tt.x})
			if err != nil {
				t.Fatalf("Predict() error: %v", err)
			}
			if pred.Label != tt.wantLabel {
				t.Errorf("Label = %d, want %d", pred.Label, tt.wantLabel)
			}
			for i := range tt.wantProbs {
				if !approx(pred.Probabilities[i], tt.wantProbs[i]) {
					t.Errorf("Probabilities = %v, want %v", pred.Probabilities, tt.wantProbs)
					break
				}
			}
		})
	}
}

func TestRandomForestDimensionMismatch(t *testing.T) {
	_, err := testForest().Predict(Input{Embedding: []float32{1, 2, 3}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Predict() error = %v, want ErrDimensionMismatch", err)
	}
	_, err = testForest().Predict(Input{})
	if !errors.Is(err, ErrEmbeddingRequired) {
		t.Errorf("Predict(nil) error = %v, want ErrEmbeddingRequired", err)
	}
}

func TestRandomForestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *RandomForest)
	}{
		{"no features", func(f *RandomForest) { f.NFeatures = 0 }},
		{"one class", func(f *RandomForest) { f.Classes = []int{1} }},
		{"duplicate class", func(f *RandomForest) { f.Classes = []int{1, 1} }},
		{"no trees", func(f *RandomForest) { f.Trees = nil }},
		{"length mismatch", func(f *RandomForest) { f.Trees[0].Threshold = []float64{0.5} }},
		{"backward child", func(f *RandomForest) { f.Trees[0].ChildrenLeft[0] = 0 }},
		{"feature out of range", func(f *RandomForest) { f.Trees[1].Feature[0] = 7 }},
		{"half leaf", func(f *RandomForest) { f.Trees[0].ChildrenRight[1] = 2 }},
		{"empty leaf", func(f *RandomForest) { f.Trees[0].Value[1] = []float64{0, 0} }},
		{"leaf class count", func(f *RandomForest) { f.Trees[0].Value[2] = []float64{1} }},
		{"nan threshold", func(f *RandomForest) { f.Trees[0].Threshold[0] = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testForest()
			tt.mutate(f)
			if err := f.Validate(); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Validate() = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestLogisticRegressionBinary(t *testing.T) {
	m := testLogistic()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	pred, err := m.Predict(Input{Embedding: []float32{1, 0}})
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if pred.Label != 1 || !approx(pred.Probabilities[1], 1/(1+math.Exp(-2))) {
		t.Errorf("Predict([1 0]) = %+v", pred)
	}

	pred, _ = m.Predict(Input{Embedding: []float32{0, 1}})
	if pred.Label != 0 || !approx(pred.Probabilities[0], 1-1/(1+math.Exp(1))) {
		t.Errorf("Predict([0 1]) = %+v", pred)
	}

	pred, _ = m.Predict(Input{Embedding: []float32{0, 0}})
	if pred.Label != 0 {
		t.Errorf("zero score should resolve to the first class, got %d", pred.Label)
	}
}

func TestLogisticRegressionMultinomial(t *testing.T) {
	m := &LogisticRegression{
		NFeatures: 2,
		Classes:   []int{0, 1, 2},
		Coef:      [][]float64{{1, 0}, {0, 1}, {0, 0}},
		Intercept: []float64{0, 0, 0},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	pred, err := m.Predict(Input{Embedding: []float32{0, 3}})
	if err != nil {
		t.Fatalf("Predict() error: %v", err)
	}
	if pred.Label != 1 {
		t.Errorf("Label = %d, want 1", pred.Label)
	}
	sum := 0.0
	for _, p := range pred.Probabilities {
		sum += p
	}
	if !approx(sum, 1) {
		t.Errorf("probabilities sum to %v", sum)
	}
}

func TestLogisticRegressionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *LogisticRegression)
	}{
		{"rows for classes", func(m *LogisticRegression) { m.Coef = append(m.Coef, []float64{1, 1}) }},
		{"intercepts", func(m *LogisticRegression) { m.Intercept = nil }},
		{"row width", func(m *LogisticRegression) { m.Coef[0] = []float64{1} }},
		{"inf coefficient", func(m *LogisticRegression) { m.Coef[0][1] = math.Inf(1) }},
		{"features", func(m *LogisticRegression) { m.NFeatures = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testLogistic()
			tt.mutate(m)
			if err := m.Validate(); !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Validate() = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestKeywordVariant(t *testing.T) {
	k := NewKeywordVariant([]string{"covid", "Cough", " "})
	c := New(k)

	res, err := c.Classify(nil, "i have a really bad cough and fever covid")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if !res.IsDiseaseRelated || res.Confidence != FallbackConfidence || res.Variant != VariantKeyword {
		t.Errorf("Classify(disease) = %+v", res)
	}

	res, err = c.Classify(nil, "lovely weather today")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if res.IsDiseaseRelated || res.Confidence != 0.7 {
		t.Errorf("Classify(other) = %+v", res)
	}

	res, _ = c.Classify(nil, "")
	if res.IsDiseaseRelated || res.Confidence != 0.7 {
		t.Errorf("Classify(empty) = %+v", res)
	}
}

func TestSelectVariant(t *testing.T) {
	forest := artifact.Loaded[Variant](testForest())
	logistic := artifact.Loaded[Variant](testLogistic())
	missing := artifact.Unavailable[Variant](os.ErrNotExist)
	fallback := NewKeywordVariant([]string{"covid"})

	tests := []struct {
		name         string
		hasEmbedding bool
		primary      artifact.Artifact[Variant]
		secondary    artifact.Artifact[Variant]
		want         string
	}{
		{"primary wins", true, forest, logistic, VariantRandomForest},
		{"secondary when primary missing", true, missing, logistic, VariantLogisticRegression},
		{"fallback when both missing", true, missing, missing, VariantKeyword},
		{"fallback without embeddings", false, forest, logistic, VariantKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectVariant(tt.hasEmbedding, tt.primary, tt.secondary, fallback)
			if got.Name() != tt.want {
				t.Errorf("SelectVariant() = %s, want %s", got.Name(), tt.want)
			}
		})
	}
}

type stubVariant struct {
	pred Prediction
	err  error
}

func (s stubVariant) Name() string                      { return "stub" }
func (s stubVariant) RequiresEmbedding() bool           { return true }
func (s stubVariant) Predict(Input) (Prediction, error) { return s.pred, s.err }

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		variant stubVariant
		emb     []float32
		want    error
	}{
		{"missing embedding", stubVariant{}, nil, ErrEmbeddingRequired},
		{"no probabilities", stubVariant{pred: Prediction{Label: 1}}, []float32{1}, ErrMalformedOutput},
		{"probability above one", stubVariant{pred: Prediction{Probabilities: []float64{1.5}}}, []float32{1}, ErrMalformedOutput},
		{"nan probability", stubVariant{pred: Prediction{Probabilities: []float64{math.NaN()}}}, []float32{1}, ErrMalformedOutput},
		{"variant error", stubVariant{err: ErrDimensionMismatch}, []float32{1}, ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.variant).Classify(tt.emb, "text")
			if !errors.Is(err, tt.want) {
				t.Errorf("Classify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClassifyTrainedConfidence(t *testing.T) {
	res, err := New(testForest()).Classify([]float32{0.2, 1.0}, "")
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if !res.IsDiseaseRelated || !approx(res.Confidence, 0.6) {
		t.Errorf("Classify() = %+v, want disease with confidence 0.6", res)
	}
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadModels(t *testing.T) {
	forest, err := LoadRandomForest(writeJSON(t, testForest()))
	if err != nil {
		t.Fatalf("LoadRandomForest() error: %v", err)
	}
	if forest.NumFeatures() != 2 || len(forest.Trees) != 2 {
		t.Errorf("loaded forest = %+v", forest)
	}

	lr, err := LoadLogisticRegression(writeJSON(t, testLogistic()))
	if err != nil {
		t.Fatalf("LoadLogisticRegression() error: %v", err)
	}
	if lr.NumFeatures() != 2 {
		t.Errorf("loaded logistic regression = %+v", lr)
	}

	if _, err := LoadRandomForest(filepath.Join(t.TempDir(), "none.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}

	bad := testLogistic()
	bad.Intercept = nil
	if _, err := LoadLogisticRegression(writeJSON(t, bad)); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("invalid model error = %v, want ErrInvalidModel", err)
	}

	garbage := filepath.Join(t.TempDir(), "garbage.json")
	os.WriteFile(garbage, []byte("{not json"), 0o644)
	if _, err := LoadRandomForest(garbage); err == nil {
		t.Error("LoadRandomForest() should fail on malformed JSON")
	}
}
