package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/covidpulse/internal/analysis"
	"github.com/spacesedan/covidpulse/internal/dataset"
	"github.com/spacesedan/covidpulse/internal/models"
	"github.com/spacesedan/covidpulse/internal/monitoring"
	"github.com/spacesedan/covidpulse/internal/utils"
)

const (
	msgNoText             = "No text provided"
	msgDataNotLoaded      = "Data not loaded"
	msgTimelineNotLoaded  = "Timeline data not loaded"
	msgLocationsNotLoaded = "Location data not loaded"

	jsonContentType = "application/json; charset=utf-8"
)

// AnalysisCache stores serialized analysis responses. ValkeyClient satisfies
// it.
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, key string) ([]byte, bool, error)
	StoreAnalysis(ctx context.Context, key string, value []byte) error
}

type Handlers struct {
	analyzer        *analysis.Analyzer
	dashboard       *dataset.Dashboard
	cache           AnalysisCache
	metrics         *monitoring.Metrics
	embedderHealthy *atomic.Bool
}

type Option func(*Handlers)

// WithCache enables the analysis response cache.
func WithCache(cache AnalysisCache) Option {
	return func(h *Handlers) { h.cache = cache }
}

// WithEmbedderHealth reports the monitored embedder health on /api/health.
func WithEmbedderHealth(healthy *atomic.Bool) Option {
	return func(h *Handlers) { h.embedderHealthy = healthy }
}

func NewHandlers(analyzer *analysis.Analyzer, dashboard *dataset.Dashboard, metrics *monitoring.Metrics, opts ...Option) *Handlers {
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	h := &Handlers{
		analyzer:  analyzer,
		dashboard: dashboard,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers) Health(c *gin.Context) {
	caps := h.analyzer.Capabilities()

	healthy := caps.HasEmbedder()
	if healthy && h.embedderHealthy != nil {
		healthy = h.embedderHealthy.Load()
	}

	backend := caps.EmbeddingBackend
	if !caps.HasEmbedder() {
		backend = "none"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:           "healthy",
		ModelsLoaded:     caps.ModelsLoaded(),
		DataLoaded:       h.dashboard.DataLoaded(),
		Timestamp:        time.Now().Format(time.RFC3339),
		EmbeddingBackend: backend,
		EmbedderHealthy:  healthy,
		Classifier:       caps.Classifier.Variant(),
	})
}

func (h *Handlers) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// Analyze runs the pipeline on the posted text. Responses are served from the
// cache when one is configured; cache failures only get logged.
func (h *Handlers) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgNoText})
		return
	}

	ctx := c.Request.Context()
	key := utils.ContentKey(h.analyzer.Capabilities().Fingerprint(), req.Text)

	if h.cache != nil {
		data, ok, err := h.cache.GetAnalysis(ctx, key)
		if err != nil {
			slog.Warn("[API] Analysis cache lookup failed", slog.String("error", err.Error()))
		} else if ok {
			h.metrics.RecordCacheHit()
			h.metrics.RecordAnalysis(true)
			c.Data(http.StatusOK, jsonContentType, data)
			return
		}
	}

	resp, err := h.analyzer.Analyze(ctx, req.Text)
	if err != nil {
		h.metrics.RecordAnalysis(false)

		var verr *analysis.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgNoText})
			return
		}
		slog.Error("[API] Analysis failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	h.metrics.RecordAnalysis(true)

	data, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	if h.cache != nil {
		if err := h.cache.StoreAnalysis(ctx, key, data); err != nil {
			slog.Warn("[API] Analysis cache store failed", slog.String("error", err.Error()))
		}
	}
	c.Data(http.StatusOK, jsonContentType, data)
}

func (h *Handlers) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats()
	respond(c, stats, err)
}

func (h *Handlers) Timeline(c *gin.Context) {
	timeline, err := h.dashboard.Timeline()
	respond(c, timeline, err)
}

func (h *Handlers) Locations(c *gin.Context) {
	locations, err := h.dashboard.Locations()
	respond(c, locations, err)
}

func (h *Handlers) Hotspots(c *gin.Context) {
	hotspots, err := h.dashboard.Hotspots()
	respond(c, hotspots, err)
}

func (h *Handlers) Symptoms(c *gin.Context) {
	symptoms, err := h.dashboard.Symptoms()
	respond(c, symptoms, err)
}

func (h *Handlers) Sentiment(c *gin.Context) {
	dist, err := h.dashboard.Sentiment()
	respond(c, dist, err)
}

func (h *Handlers) HourlyPattern(c *gin.Context) {
	hourly, err := h.dashboard.HourlyPattern()
	respond(c, hourly, err)
}

// Tweets pages through the dataset. Unparseable page or limit values fall
// back to the defaults.
func (h *Handlers) Tweets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(dataset.DefaultPageSize)))
	diseaseOnly := strings.EqualFold(c.Query("disease_only"), "true")

	tweets, err := h.dashboard.Tweets(page, limit, diseaseOnly)
	respond(c, tweets, err)
}

func (h *Handlers) Forecast(c *gin.Context) {
	rows, ok := h.dashboard.Forecast()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"message": "Forecast data not available"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handlers) Clusters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Clustering analysis not available", "clusters": []any{}})
}

func (h *Handlers) Topics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Topic modeling not available", "topics": []any{}})
}

func respond(c *gin.Context, body any, err error) {
	if err == nil {
		c.JSON(http.StatusOK, body)
		return
	}

	msg := err.Error()
	switch {
	case errors.Is(err, dataset.ErrTrendsUnavailable):
		msg = msgTimelineNotLoaded
	case errors.Is(err, dataset.ErrLocationsUnavailable):
		msg = msgLocationsNotLoaded
	case errors.Is(err, dataset.ErrDatasetUnavailable):
		msg = msgDataNotLoaded
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msg})
}
