package models

import "time"

// Tweet is one row of the processed tweet export.
type Tweet struct {
	ID         int       `json:"id"`
	Text       string    `json:"text"`
	Cleaned    string    `json:"-"`
	Date       time.Time `json:"-"`
	Location   string    `json:"location"`
	IsDisease  bool      `json:"is_disease"`
	Sentiment  string    `json:"sentiment"`
	Symptoms   []string  `json:"-"`
	DateString string    `json:"date"`
}

type DailyTrend struct {
	Date          time.Time `json:"-"`
	DateString    string    `json:"date"`
	TotalTweets   int       `json:"total_tweets"`
	DiseaseTweets int       `json:"disease_tweets"`
}

type LocationStat struct {
	Location     string  `json:"location"`
	TotalTweets  int     `json:"total_tweets"`
	DiseaseCount int     `json:"disease_count"`
	DiseaseRatio float64 `json:"disease_ratio"`
}

// ForecastRow keeps the forecast export as-is; numeric cells are decoded as
// numbers and everything else as strings.
type ForecastRow map[string]any

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Stats struct {
	TotalTweets       int       `json:"total_tweets"`
	DiseaseTweets     int       `json:"disease_tweets"`
	Locations         int       `json:"locations"`
	DateRange         DateRange `json:"date_range"`
	PositiveSentiment int       `json:"positive_sentiment"`
	NegativeSentiment int       `json:"negative_sentiment"`
}

type Hotspot struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type SymptomCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

type HourlyCount struct {
	Hour    int `json:"hour"`
	Total   int `json:"total"`
	Disease int `json:"disease"`
}

type TweetPage struct {
	Tweets []Tweet `json:"tweets"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	ModelsLoaded     bool   `json:"models_loaded"`
	DataLoaded       bool   `json:"data_loaded"`
	Timestamp        string `json:"timestamp"`
	EmbeddingBackend string `json:"embedding_backend"`
	EmbedderHealthy  bool   `json:"embedder_healthy"`
	Classifier       string `json:"classifier"`
}

type MetricsSnapshot struct {
	Requests         int64   `json:"requests"`
	Errors           int64   `json:"errors"`
	Analyses         int64   `json:"analyses"`
	AnalysisFailures int64   `json:"analysis_failures"`
	CacheHits        int64   `json:"cache_hits"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
	UptimeSeconds    int64   `json:"uptime_seconds"`
}
