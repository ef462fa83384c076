package symptoms

import (
	"strings"

	"github.com/spacesedan/covidpulse/internal/lexicon"
)

// Findings maps a symptom category to the triggers that matched. Categories
// without a match are absent.
type Findings map[string][]string

// Extractor matches trigger phrases against raw tweet text. It is read-only
// after construction and safe for concurrent use.
type Extractor struct {
	categories []lexicon.Category
}

func NewExtractor(categories []lexicon.Category) *Extractor {
	normalized := make([]lexicon.Category, len(categories))
	for i, cat := range categories {
		triggers := make([]string, 0, len(cat.Triggers))
		for _, trigger := range cat.Triggers {
			// an empty trigger would match every input
			if trigger = strings.ToLower(strings.TrimSpace(trigger)); trigger != "" {
				triggers = append(triggers, trigger)
			}
		}
		normalized[i] = lexicon.Category{Name: cat.Name, Triggers: triggers}
	}
	return &Extractor{categories: normalized}
}

// Extract matches triggers as substrings of the lowercased raw text. Both
// categories and triggers are visited in declaration order.
func (e *Extractor) Extract(text string) Findings {
	lowered := strings.ToLower(text)
	found := make(Findings)

	for _, cat := range e.categories {
		var matched []string
		for _, trigger := range cat.Triggers {
			if strings.Contains(lowered, trigger) {
				matched = append(matched, trigger)
			}
		}
		if len(matched) > 0 {
			found[cat.Name] = matched
		}
	}

	return found
}

// Categories returns the category names in declaration order.
func (e *Extractor) Categories() []string {
	names := make([]string, len(e.categories))
	for i, cat := range e.categories {
		names[i] = cat.Name
	}
	return names
}
