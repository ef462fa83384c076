// Package analysis runs the on-demand tweet pipeline: normalize, embed,
// classify, then enrich with symptoms and sentiment.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/spacesedan/covidpulse/internal/capability"
	"github.com/spacesedan/covidpulse/internal/models"
	"github.com/spacesedan/covidpulse/internal/normalize"
	"github.com/spacesedan/covidpulse/internal/sentiment"
)

const (
	StageEmbedding      = "embedding"
	StageClassification = "classification"
	StageEnrichment     = "enrichment"
)

// Analyzer is safe for concurrent use. It holds no mutable state.
type Analyzer struct {
	caps capability.Capabilities
}

func New(caps capability.Capabilities) *Analyzer {
	return &Analyzer{caps: caps}
}

func (a *Analyzer) Capabilities() capability.Capabilities {
	return a.caps
}

// Analyze returns a *ValidationError for empty text and a *ProcessingError
// when a stage fails. It has no side effects besides logging.
func (a *Analyzer) Analyze(ctx context.Context, text string) (resp *models.AnalysisResponse, err error) {
	if text == "" {
		return nil, &ValidationError{Err: ErrEmptyText}
	}

	stage := "normalization"
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Analyzer] Recovered from panic",
				slog.String("stage", stage),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			resp = nil
			err = &ProcessingError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	start := time.Now()
	processed := normalize.Text(text)

	var embedding []float32
	if a.caps.Embedder != nil && a.caps.Classifier.RequiresEmbedding() {
		stage = StageEmbedding
		embedding, err = a.caps.Embedder.Embed(ctx, processed)
		if err != nil {
			slog.Error("[Analyzer] Embedding failed", slog.String("error", err.Error()))
			return nil, &ProcessingError{Stage: stage, Err: err}
		}
	}

	stage = StageClassification
	result, err := a.caps.Classifier.Classify(embedding, processed)
	if err != nil {
		slog.Error("[Analyzer] Classification failed", slog.String("error", err.Error()))
		return nil, &ProcessingError{Stage: stage, Err: err}
	}

	stage = StageEnrichment
	findings := a.caps.Extractor.Extract(text)
	label := a.caps.Scorer.Score(processed)
	polarity := sentiment.Polarity(text)

	slog.Debug("[Analyzer] Analysis complete",
		slog.String("variant", result.Variant),
		slog.Bool("disease_related", result.IsDiseaseRelated),
		slog.Duration("elapsed", time.Since(start)))

	return &models.AnalysisResponse{
		IsDiseaseRelated: result.IsDiseaseRelated,
		Confidence:       result.Confidence,
		Symptoms:         findings,
		Sentiment:        string(label),
		ProcessedText:    processed,
		SentimentScore:   polarity,
		Model:            result.Variant,
	}, nil
}
