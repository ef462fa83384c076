// Package capability resolves, once at startup, which optional pieces of the
// analysis pipeline are usable: the embedding provider and the trained
// classifier artifacts. The result is immutable and shared by all requests.
package capability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spacesedan/covidpulse/config"
	"github.com/spacesedan/covidpulse/internal/artifact"
	"github.com/spacesedan/covidpulse/internal/classifier"
	"github.com/spacesedan/covidpulse/internal/clients"
	"github.com/spacesedan/covidpulse/internal/embedding"
	"github.com/spacesedan/covidpulse/internal/lexicon"
	"github.com/spacesedan/covidpulse/internal/sentiment"
	"github.com/spacesedan/covidpulse/internal/symptoms"
)

type Capabilities struct {
	// Embedder is nil when no embedding provider could be resolved.
	Embedder         embedding.Embedder
	EmbeddingBackend string
	EmbeddingDim     int

	Classifier *classifier.Classifier
	Extractor  *symptoms.Extractor
	Scorer     *sentiment.Scorer
}

func (c Capabilities) HasEmbedder() bool {
	return c.Embedder != nil
}

// ModelsLoaded reports whether a trained classifier serves requests.
func (c Capabilities) ModelsLoaded() bool {
	return c.Classifier != nil && c.Classifier.Variant() != classifier.VariantKeyword
}

// Fingerprint identifies the resolved pipeline. Two processes with the same
// fingerprint produce the same response for the same text.
func (c Capabilities) Fingerprint() string {
	embedder := "none"
	if c.Embedder != nil {
		embedder = c.Embedder.Name()
	}
	variant := ""
	if c.Classifier != nil {
		variant = c.Classifier.Variant()
	}
	return fmt.Sprintf("%s|%d|%s", embedder, c.EmbeddingDim, variant)
}

// Close releases the embedder when it holds native resources.
func (c Capabilities) Close() error {
	if closer, ok := c.Embedder.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Artifacts are the optional inputs to Assemble.
type Artifacts struct {
	Embedder  artifact.Artifact[embedding.Embedder]
	Primary   artifact.Artifact[classifier.Variant]
	Secondary artifact.Artifact[classifier.Variant]
}

// Resolve loads every optional artifact named by cfg and assembles the
// capability set. It never fails: anything missing is logged and the pipeline
// degrades to the keyword classifier.
func Resolve(ctx context.Context, cfg config.AppConfig, lex *lexicon.Lexicon) Capabilities {
	embedder, err := newEmbedder(cfg)
	arts := Artifacts{
		Embedder:  artifact.From(embedder, err),
		Primary:   loadVariant(filepath.Join(cfg.ModelDir, cfg.PrimaryModelFile), loadForest),
		Secondary: loadVariant(filepath.Join(cfg.ModelDir, cfg.SecondaryModelFile), loadLogistic),
	}
	caps := Assemble(ctx, arts, lex)
	caps.EmbeddingBackend = cfg.EmbeddingBackend
	return caps
}

// Assemble probes the embedder, drops trained variants whose input size does
// not match it and selects the serving classifier variant.
func Assemble(ctx context.Context, arts Artifacts, lex *lexicon.Lexicon) Capabilities {
	caps := Capabilities{
		Extractor: symptoms.NewExtractor(lex.Symptoms),
		Scorer:    sentiment.NewScorer(lex.PositiveWords, lex.NegativeWords),
	}

	if e, ok := arts.Embedder.Get(); ok && e != nil {
		dim, err := embedding.Probe(ctx, e)
		if err != nil {
			slog.Warn("[Capability] Embedding provider unavailable", slog.String("error", err.Error()))
			if closer, ok := e.(io.Closer); ok {
				closer.Close()
			}
		} else {
			caps.Embedder = e
			caps.EmbeddingDim = dim
			slog.Info("[Capability] Embedding provider ready",
				slog.String("embedder", e.Name()),
				slog.Int("dimensions", dim))
		}
	} else {
		err := arts.Embedder.Err()
		if err == nil {
			err = artifact.ErrNotConfigured
		}
		slog.Warn("[Capability] Embedding provider not configured", slog.String("error", err.Error()))
	}

	primary := checkDimensions(arts.Primary, caps.EmbeddingDim, "primary")
	secondary := checkDimensions(arts.Secondary, caps.EmbeddingDim, "secondary")

	fallback := classifier.NewKeywordVariant(lex.DiseaseKeywords)
	variant := classifier.SelectVariant(caps.HasEmbedder(), primary, secondary, fallback)
	caps.Classifier = classifier.New(variant)

	slog.Info("[Capability] Classifier variant selected", slog.String("variant", variant.Name()))
	return caps
}

func checkDimensions(a artifact.Artifact[classifier.Variant], dim int, role string) artifact.Artifact[classifier.Variant] {
	v, ok := a.Get()
	if !ok {
		slog.Warn("[Capability] Model unavailable",
			slog.String("role", role),
			slog.String("error", a.Err().Error()))
		return a
	}
	if d, ok := v.(classifier.Dimensioned); ok && dim > 0 && d.NumFeatures() != dim {
		err := fmt.Errorf("%s expects %d features, embedder produces %d: %w",
			v.Name(), d.NumFeatures(), dim, classifier.ErrDimensionMismatch)
		slog.Warn("[Capability] Model unavailable",
			slog.String("role", role),
			slog.String("error", err.Error()))
		return artifact.Unavailable[classifier.Variant](err)
	}
	return a
}

func loadForest(path string) (classifier.Variant, error) {
	model, err := classifier.LoadRandomForest(path)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func loadLogistic(path string) (classifier.Variant, error) {
	model, err := classifier.LoadLogisticRegression(path)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func loadVariant(path string, load func(string) (classifier.Variant, error)) artifact.Artifact[classifier.Variant] {
	v, err := load(path)
	if err != nil {
		return artifact.Unavailable[classifier.Variant](err)
	}
	slog.Info("[Capability] Model loaded", slog.String("path", path))
	return artifact.Loaded(v)
}

func newEmbedder(cfg config.AppConfig) (embedding.Embedder, error) {
	switch cfg.EmbeddingBackend {
	case config.EmbeddingBackendHugot:
		h, err := embedding.NewHugotEmbedder(cfg.HugotModelName, cfg.HugotModelDir, cfg.EmbeddingMaxWords)
		if err != nil {
			return nil, err
		}
		return h, nil
	case config.EmbeddingBackendOpenAI:
		client, err := clients.GetOpenAIClient(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		return embedding.NewOpenAIEmbedder(client.Client, cfg.OpenAIEmbeddingModel, cfg.OpenAIEmbeddingDimensions), nil
	default:
		return nil, artifact.ErrNotConfigured
	}
}
