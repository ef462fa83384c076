package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIMaxRetries     = 3
	openAIInitialBackoff = 500 * time.Millisecond
)

type embeddingsCreator interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder requests embeddings from the OpenAI API. Dimensions pins the
// output length so the vectors line up with the trained models.
type OpenAIEmbedder struct {
	client     embeddingsCreator
	model      openai.EmbeddingModel
	dimensions int
	backoff    time.Duration
}

func NewOpenAIEmbedder(client embeddingsCreator, model string, dimensions int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     client,
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		backoff:    openAIInitialBackoff,
	}
}

func (o *OpenAIEmbedder) Name() string { return "openai:" + string(o.model) }

func (o *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      o.model,
		Dimensions: o.dimensions,
	}

	var lastErr error
	backoff := o.backoff
	for attempt := 0; attempt < openAIMaxRetries; attempt++ {
		resp, err := o.client.CreateEmbeddings(ctx, req)
		if err == nil {
			return o.vectorFrom(resp)
		}
		lastErr = err

		slog.Warn("[OpenAIEmbedder] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("create embeddings after %d attempts: %w", openAIMaxRetries, lastErr)
}

func (o *OpenAIEmbedder) vectorFrom(resp openai.EmbeddingResponse) ([]float32, error) {
	if len(resp.Data) != 1 {
		return nil, ErrEmptyEmbedding
	}
	vec := resp.Data[0].Embedding
	if err := checkVector(vec); err != nil {
		return nil, err
	}
	if o.dimensions > 0 && len(vec) != o.dimensions {
		return nil, fmt.Errorf("openai returned %d dimensions, want %d", len(vec), o.dimensions)
	}
	return vec, nil
}
