package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/covidpulse/internal/embedding"
)

const HEALTHCHECK_TIMEOUT = 10 * time.Second

// CheckEmbedder runs one probe against the embedder.
func CheckEmbedder(ctx context.Context, e embedding.Embedder) bool {
	ctx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	_, err := embedding.Probe(ctx, e)
	if err != nil {
		slog.Warn("[HealthCheck] Embedder is unhealthy",
			slog.String("embedder", e.Name()),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// MonitorEmbedderHealth probes the embedder every interval until ctx is done
// and stores the outcome in healthy. It only reports health; the serving
// classifier is never re-selected.
func MonitorEmbedderHealth(ctx context.Context, e embedding.Embedder, interval time.Duration, healthy *atomic.Bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := CheckEmbedder(ctx, e)
			if healthy.Swap(isHealthy) != isHealthy && isHealthy {
				slog.Info("[HealthCheck] Embedder recovered", slog.String("embedder", e.Name()))
			}
		}
	}
}
