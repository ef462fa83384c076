package sentiment

import "strings"

type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
)

// Scorer compares how many positive and negative keywords occur in a text.
// Each keyword counts once no matter how often it repeats.
type Scorer struct {
	positive []string
	negative []string
}

func NewScorer(positive, negative []string) *Scorer {
	return &Scorer{
		positive: lowerAll(positive),
		negative: lowerAll(negative),
	}
}

func (s *Scorer) Score(text string) Label {
	lowered := strings.ToLower(text)
	pos := countPresent(lowered, s.positive)
	neg := countPresent(lowered, s.negative)

	switch {
	case pos > neg:
		return Positive
	case neg > pos:
		return Negative
	default:
		return Neutral
	}
}

func countPresent(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
