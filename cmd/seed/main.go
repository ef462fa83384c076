package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/covidpulse/config"
	"github.com/spacesedan/covidpulse/internal/clients"
	"github.com/spacesedan/covidpulse/internal/dataset"
	"github.com/spacesedan/covidpulse/internal/db"
	"github.com/spacesedan/covidpulse/internal/lexicon"
	"github.com/spacesedan/covidpulse/internal/logging"
	"github.com/spacesedan/covidpulse/internal/sentiment"
)

// seed copies the processed CSV exports into the DynamoDB tables read by
// DATASET_SOURCE=dynamodb.
func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Seed] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lex := lexicon.Default()
	if cfg.LexiconPath != "" {
		if lex, err = lexicon.Load(cfg.LexiconPath); err != nil {
			slog.Error("[Seed] Failed to load lexicon", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	src := dataset.CSVSource{
		Dir:    cfg.DatasetDir,
		Scorer: sentiment.NewScorer(lex.PositiveWords, lex.NegativeWords),
	}
	data, err := src.Load(ctx)
	if err != nil {
		slog.Error("[Seed] Failed to load dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client, err := clients.GetDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		slog.Error("[Seed] Failed to create DynamoDB client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dataset.Export(ctx, db.NewStore(client), data); err != nil {
		slog.Error("[Seed] Export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("[Seed] Dataset exported", slog.Int("tweets", len(data.Tweets)))
}
