package classifier

import "strings"

// FallbackConfidence is reported for every keyword decision. It is a fixed
// marker for "heuristic result", not an estimate.
const FallbackConfidence = 0.7

type KeywordVariant struct {
	keywords []string
}

func NewKeywordVariant(keywords []string) *KeywordVariant {
	kws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			kws = append(kws, kw)
		}
	}
	return &KeywordVariant{keywords: kws}
}

func (k *KeywordVariant) Name() string            { return VariantKeyword }
func (k *KeywordVariant) RequiresEmbedding() bool { return false }

func (k *KeywordVariant) Predict(in Input) (Prediction, error) {
	text := strings.ToLower(in.Text)
	for _, kw := range k.keywords {
		if strings.Contains(text, kw) {
			return Prediction{Label: 1, Probabilities: []float64{1 - FallbackConfidence, FallbackConfidence}}, nil
		}
	}
	return Prediction{Label: 0, Probabilities: []float64{FallbackConfidence, 1 - FallbackConfidence}}, nil
}
