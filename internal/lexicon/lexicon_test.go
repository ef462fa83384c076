package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTaxonomy(t *testing.T) {
	lex := Default()
	if len(lex.Symptoms) < 9 {
		t.Fatalf("default taxonomy has %d categories, want at least 9", len(lex.Symptoms))
	}
	if err := lex.validate(); err != nil {
		t.Fatalf("default lexicon invalid: %v", err)
	}
	names := lex.CategoryNames()
	if names[0] != "Fever" || names[len(names)-1] != "Other" {
		t.Errorf("unexpected category order: %v", names)
	}
}

func TestLoadOverridesOnlyGivenSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	content := `symptoms:
  - name: Cough
    triggers: [cough, coughing]
  - name: Fever
    triggers: [fever]
positive_words: [great]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := lex.CategoryNames(); len(got) != 2 || got[0] != "Cough" || got[1] != "Fever" {
		t.Errorf("CategoryNames() = %v, want [Cough Fever]", got)
	}
	if len(lex.PositiveWords) != 1 || lex.PositiveWords[0] != "great" {
		t.Errorf("PositiveWords = %v", lex.PositiveWords)
	}
	if len(lex.NegativeWords) != len(Default().NegativeWords) {
		t.Error("NegativeWords should keep defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("symptoms: [unterminated"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("Load() should fail for malformed YAML")
	}

	dup := filepath.Join(dir, "dup.yaml")
	os.WriteFile(dup, []byte("symptoms:\n  - {name: A, triggers: [x]}\n  - {name: A, triggers: [y]}\n"), 0o644)
	if _, err := Load(dup); err == nil {
		t.Error("Load() should reject duplicate categories")
	}

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("symptoms:\n  - {name: A}\n"), 0o644)
	if _, err := Load(empty); err == nil {
		t.Error("Load() should reject categories without triggers")
	}
}
