// Package lexicon holds the keyword tables used by the rule-based stages of the
// analysis pipeline: the symptom taxonomy, the sentiment word lists and the
// disease keywords of the fallback classifier.
package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one symptom category with its trigger phrases in match order.
type Category struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
}

type Lexicon struct {
	Symptoms        []Category `yaml:"symptoms"`
	PositiveWords   []string   `yaml:"positive_words"`
	NegativeWords   []string   `yaml:"negative_words"`
	DiseaseKeywords []string   `yaml:"disease_keywords"`
}

func Default() *Lexicon {
	return &Lexicon{
		Symptoms: []Category{
			{Name: "Fever", Triggers: []string{"fever", "temperature", "hot", "burning", "chills", "shivering"}},
			{Name: "Respiratory", Triggers: []string{"cough", "breathing", "breathless", "shortness of breath", "chest pain", "pneumonia"}},
			{Name: "Fatigue", Triggers: []string{"tired", "fatigue", "exhausted", "weak", "weakness"}},
			{Name: "Loss of Senses", Triggers: []string{"loss of taste", "loss of smell", "smell", "taste", "anosmia"}},
			{Name: "Body Pain", Triggers: []string{"body aches", "muscle pain", "joint pain", "aching", "pain", "sore"}},
			{Name: "Throat", Triggers: []string{"sore throat", "throat pain", "throat"}},
			{Name: "Headache", Triggers: []string{"headache", "head pain", "migraine"}},
			{Name: "Gastrointestinal", Triggers: []string{"nausea", "vomiting", "diarrhea", "stomach"}},
			{Name: "Other", Triggers: []string{"dizzy", "rash", "congestion", "runny nose"}},
		},
		PositiveWords:   []string{"good", "better", "recover", "hope", "positive", "safe"},
		NegativeWords:   []string{"bad", "worse", "sick", "death", "fear", "negative", "crisis"},
		DiseaseKeywords: []string{"covid", "corona", "virus", "sick", "fever", "cough", "symptom"},
	}
}

// Load reads a YAML lexicon. Sections missing from the file keep their
// defaults, so a file may override only the symptom taxonomy.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file Lexicon
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	lex := Default()
	if len(file.Symptoms) > 0 {
		lex.Symptoms = file.Symptoms
	}
	if len(file.PositiveWords) > 0 {
		lex.PositiveWords = file.PositiveWords
	}
	if len(file.NegativeWords) > 0 {
		lex.NegativeWords = file.NegativeWords
	}
	if len(file.DiseaseKeywords) > 0 {
		lex.DiseaseKeywords = file.DiseaseKeywords
	}

	if err := lex.validate(); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

func (l *Lexicon) validate() error {
	seen := make(map[string]struct{}, len(l.Symptoms))
	for _, cat := range l.Symptoms {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return fmt.Errorf("symptom category without a name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate symptom category %q", name)
		}
		seen[name] = struct{}{}
		if len(cat.Triggers) == 0 {
			return fmt.Errorf("symptom category %q has no triggers", name)
		}
	}
	return nil
}

// CategoryNames returns the symptom category names in declaration order.
func (l *Lexicon) CategoryNames() []string {
	names := make([]string, len(l.Symptoms))
	for i, cat := range l.Symptoms {
		names[i] = cat.Name
	}
	return names
}
