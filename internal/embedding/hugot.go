package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

type featureExtractor interface {
	RunPipeline(inputs []string) (*pipelines.FeatureExtractionOutput, error)
}

// HugotEmbedder runs a local ONNX transformer through a hugot
// feature-extraction pipeline. Vectors are the pipeline's pooled output and
// inputs are capped at maxWords words.
type HugotEmbedder struct {
	model    string
	maxWords int
	pipeline featureExtractor
	destroy  func() error
}

// NewHugotEmbedder loads modelName from modelDir, downloading it from the
// Hugging Face hub first when it is not present locally.
func NewHugotEmbedder(modelName, modelDir string, maxWords int) (*HugotEmbedder, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[HugotEmbedder] Model not found, downloading...",
			slog.String("model", modelName))
		modelPath, err = hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", modelName, err)
		}
		slog.Info("[HugotEmbedder] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[HugotEmbedder] Using existing model", slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("initialize hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "tweetEmbeddingPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("initialize feature extraction pipeline: %w", err)
	}

	return &HugotEmbedder{
		model:    modelName,
		maxWords: maxWords,
		pipeline: pipeline,
		destroy:  session.Destroy,
	}, nil
}

func (h *HugotEmbedder) Name() string { return "hugot:" + h.model }

func (h *HugotEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := h.pipeline.RunPipeline([]string{truncateWords(text, h.maxWords)})
	if err != nil {
		return nil, fmt.Errorf("run feature extraction: %w", err)
	}
	if out == nil || len(out.Embeddings) != 1 {
		return nil, ErrEmptyEmbedding
	}

	vec := out.Embeddings[0]
	if err := checkVector(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// Close releases the ONNX runtime session.
func (h *HugotEmbedder) Close() error {
	if h.destroy == nil {
		return nil
	}
	return h.destroy()
}
