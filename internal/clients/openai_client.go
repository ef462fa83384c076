package clients

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIRequestTimeout = 30 * time.Second // Timeout for individual embedding requests
)

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

var ErrMissingOpenAIKey = errors.New("missing OPENAI_API_KEY")

type OpenAIClient struct {
	Client *openai.Client
}

// GetOpenAIClient returns the shared OpenAI client, creating it on first use.
func GetOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		return nil, ErrMissingOpenAIKey
	}
	openAIOnce.Do(func() {
		config := openai.DefaultConfig(apiKey)
		config.HTTPClient = &http.Client{
			Timeout: openAIRequestTimeout,
		}

		openAIClientInstance = &OpenAIClient{
			Client: openai.NewClientWithConfig(config),
		}
		slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout", slog.Duration("timeout", openAIRequestTimeout))
	})
	return openAIClientInstance, nil
}
