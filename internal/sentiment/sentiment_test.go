package sentiment

import (
	"testing"

	"github.com/spacesedan/covidpulse/internal/lexicon"
)

func newDefaultScorer() *Scorer {
	lex := lexicon.Default()
	return NewScorer(lex.PositiveWords, lex.NegativeWords)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Label
	}{
		{"empty", "", Neutral},
		{"no keywords", "stay home and wash hands", Neutral},
		{"tie", "good bad", Neutral},
		{"positive", "feeling better and full of hope", Positive},
		{"negative", "i have a really bad cough and fever covid", Negative},
		{"presence not frequency", "bad bad bad bad good better", Positive},
		{"substring counts", "badminton is good", Neutral},
		{"case insensitive", "WORSE than before", Negative},
		{"non latin", "感染", Neutral},
	}

	s := newDefaultScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.in); got != tt.want {
				t.Errorf("Score(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewScorerIgnoresBlankWords(t *testing.T) {
	s := NewScorer([]string{"", " "}, []string{"Bad"})
	if got := s.Score("anything"); got != Neutral {
		t.Errorf("blank keywords should not count, got %s", got)
	}
	if got := s.Score("so bad"); got != Negative {
		t.Errorf("Score(so bad) = %s, want Negative", got)
	}
}

func TestRemoveLinks(t *testing.T) {
	got := RemoveLinks("read [the report](https://who.int/r) at https://x.co/a now")
	if got != "read the report at  now" {
		t.Errorf("RemoveLinks() = %q", got)
	}
}

func TestConvertMarkdownToText(t *testing.T) {
	got := ConvertMarkdownToText("**Great** news & _hope_")
	if got != "Great news & hope" {
		t.Errorf("ConvertMarkdownToText() = %q", got)
	}
}

func TestPolarity(t *testing.T) {
	if got := Polarity(""); got != 0 {
		t.Errorf("Polarity(\"\") = %v, want 0", got)
	}
	if got := Polarity("I love this, great recovery!"); got <= 0 {
		t.Errorf("Polarity(positive) = %v, want > 0", got)
	}
	if got := Polarity("This is terrible, awful and sad"); got >= 0 {
		t.Errorf("Polarity(negative) = %v, want < 0", got)
	}
	if got := Polarity("covid cases"); got < -1 || got > 1 {
		t.Errorf("Polarity out of range: %v", got)
	}
}
