package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DatasetSourceCSV      = "csv"
	DatasetSourceDynamoDB = "dynamodb"
	DatasetSourceNone     = "none"

	EmbeddingBackendHugot  = "hugot"
	EmbeddingBackendOpenAI = "openai"
	EmbeddingBackendNone   = "none"
)

// AppConfig is read once at startup and treated as read-only afterwards.
type AppConfig struct {
	Env            string
	Port           string
	LogLevel       slog.Level
	AllowedOrigins []string

	DatasetSource string
	DatasetDir    string
	AWSEndpoint   string
	AWSRegion     string

	ModelDir           string
	PrimaryModelFile   string
	SecondaryModelFile string

	EmbeddingBackend          string
	HugotModelName            string
	HugotModelDir             string
	EmbeddingMaxWords         int
	OpenAIAPIKey              string
	OpenAIEmbeddingModel      string
	OpenAIEmbeddingDimensions int

	LexiconPath string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	CacheTTL       time.Duration

	HealthcheckInterval time.Duration
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// Load builds an AppConfig from the environment. Call LoadEnv first so that
// values from the env file are visible.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Env:            getEnv("APP_ENV", "dev"),
		Port:           getEnv("PORT", "5000"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DatasetSource: strings.ToLower(getEnv("DATASET_SOURCE", DatasetSourceCSV)),
		DatasetDir:    getEnv("DATASET_DIR", "data/processed"),
		AWSEndpoint:   getEnv("AWS_ENDPOINT", ""),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),

		ModelDir:           getEnv("MODEL_DIR", "data/models"),
		PrimaryModelFile:   getEnv("PRIMARY_MODEL_FILE", "rf_tuned.json"),
		SecondaryModelFile: getEnv("SECONDARY_MODEL_FILE", "lr_tuned.json"),

		EmbeddingBackend:     strings.ToLower(getEnv("EMBEDDING_BACKEND", EmbeddingBackendHugot)),
		HugotModelName:       getEnv("HUGOT_MODEL_NAME", "google-bert/bert-base-uncased"),
		HugotModelDir:        getEnv("HUGOT_MODEL_DIR", "./models/embedding"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),

		LexiconPath: getEnv("LEXICON_PATH", ""),

		ValkeyAddress:  getEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword: getEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:      getEnv("VALKEY_TLS", "false") == "true",
	}

	var err error
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return cfg, err
	}
	if cfg.EmbeddingMaxWords, err = parseInt("EMBEDDING_MAX_WORDS", "128"); err != nil {
		return cfg, err
	}
	if cfg.OpenAIEmbeddingDimensions, err = parseInt("OPENAI_EMBEDDING_DIMENSIONS", "768"); err != nil {
		return cfg, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", "1h"); err != nil {
		return cfg, err
	}
	// Valkey expiries have second resolution; 0 disables expiry.
	if cfg.CacheTTL > 0 && cfg.CacheTTL < time.Second {
		return cfg, fmt.Errorf("invalid CACHE_TTL %q: must be 0 or at least 1s", cfg.CacheTTL)
	}
	if cfg.HealthcheckInterval, err = parseDuration("HEALTHCHECK_INTERVAL", "15s"); err != nil {
		return cfg, err
	}
	if cfg.HealthcheckInterval == 0 {
		return cfg, fmt.Errorf("invalid HEALTHCHECK_INTERVAL: must be positive")
	}

	switch cfg.DatasetSource {
	case DatasetSourceCSV, DatasetSourceDynamoDB, DatasetSourceNone:
	default:
		return cfg, fmt.Errorf("invalid DATASET_SOURCE %q", cfg.DatasetSource)
	}

	switch cfg.EmbeddingBackend {
	case EmbeddingBackendHugot, EmbeddingBackendOpenAI, EmbeddingBackendNone:
	default:
		return cfg, fmt.Errorf("invalid EMBEDDING_BACKEND %q", cfg.EmbeddingBackend)
	}

	return cfg, nil
}

func parseInt(key, defaultValue string) (int, error) {
	raw := getEnv(key, defaultValue)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	raw := getEnv(key, defaultValue)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
	}
	return level, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
