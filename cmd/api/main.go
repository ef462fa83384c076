package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/covidpulse/config"
	"github.com/spacesedan/covidpulse/internal/analysis"
	"github.com/spacesedan/covidpulse/internal/api"
	"github.com/spacesedan/covidpulse/internal/capability"
	"github.com/spacesedan/covidpulse/internal/clients"
	"github.com/spacesedan/covidpulse/internal/dataset"
	"github.com/spacesedan/covidpulse/internal/db"
	"github.com/spacesedan/covidpulse/internal/lexicon"
	"github.com/spacesedan/covidpulse/internal/logging"
	"github.com/spacesedan/covidpulse/internal/monitoring"
	"github.com/spacesedan/covidpulse/internal/sentiment"
)

const startupTimeout = 2 * time.Minute

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	lex := lexicon.Default()
	if cfg.LexiconPath != "" {
		if lex, err = lexicon.Load(cfg.LexiconPath); err != nil {
			slog.Error("[Main] Failed to load lexicon",
				slog.String("path", cfg.LexiconPath),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, startupTimeout)
	caps := capability.Resolve(startCtx, cfg, lex)
	defer caps.Close()

	data := loadDataset(startCtx, cfg, caps.Scorer)
	startCancel()

	metrics := monitoring.NewMetrics()
	opts := []api.Option{}

	if cfg.ValkeyAddress != "" {
		cache, err := clients.NewValkeyClient(clients.ValkeyConfig{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			UseTLS:   cfg.ValkeyTLS,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			slog.Warn("[Main] Analysis cache disabled", slog.String("error", err.Error()))
		} else {
			defer cache.Close()
			opts = append(opts, api.WithCache(cache))
		}
	}

	if caps.HasEmbedder() {
		embedderHealthy := &atomic.Bool{}
		embedderHealthy.Store(true)
		go monitoring.MonitorEmbedderHealth(ctx, caps.Embedder, cfg.HealthcheckInterval, embedderHealthy)
		opts = append(opts, api.WithEmbedderHealth(embedderHealthy))
	}

	handlers := api.NewHandlers(
		analysis.New(caps),
		dataset.NewDashboard(data, lex.CategoryNames()),
		metrics,
		opts...,
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, handlers, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("[Main] Server starting",
			slog.String("port", cfg.Port),
			slog.String("classifier", caps.Classifier.Variant()),
			slog.Bool("data_loaded", data != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("[Main] Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Server forced to shutdown", slog.String("error", err.Error()))
	}
	slog.Info("[Main] Server exited")
}

// loadDataset returns nil when no dataset is configured or it fails to load;
// the dashboard endpoints then report the data as unavailable.
func loadDataset(ctx context.Context, cfg config.AppConfig, scorer *sentiment.Scorer) *dataset.Dataset {
	var src dataset.Source
	switch cfg.DatasetSource {
	case config.DatasetSourceCSV:
		src = dataset.CSVSource{Dir: cfg.DatasetDir, Scorer: scorer}
	case config.DatasetSourceDynamoDB:
		client, err := clients.GetDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			slog.Warn("[Main] DynamoDB unavailable", slog.String("error", err.Error()))
			return nil
		}
		src = dataset.DynamoSource{Store: db.NewStore(client), Scorer: scorer}
	default:
		slog.Info("[Main] No dataset configured")
		return nil
	}

	data, err := src.Load(ctx)
	if err != nil {
		slog.Warn("[Main] Dataset unavailable", slog.String("error", err.Error()))
		return nil
	}
	return data
}
