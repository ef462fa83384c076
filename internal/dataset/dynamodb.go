package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/covidpulse/internal/db"
	"github.com/spacesedan/covidpulse/internal/models"
	"github.com/spacesedan/covidpulse/internal/sentiment"
)

// DynamoSource reads the dashboard tables from DynamoDB.
type DynamoSource struct {
	Store  *db.Store
	Scorer *sentiment.Scorer
}

func (s DynamoSource) Load(ctx context.Context) (*Dataset, error) {
	items, err := s.Store.ScanTweets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tweets: %w", err)
	}

	data := &Dataset{Tweets: make([]models.Tweet, 0, len(items))}
	skipped := 0
	for _, item := range items {
		tweet, err := newTweet(item.ID, item.Text, item.CleanedText, item.Date, item.Location,
			item.Label, item.Sentiment, item.Symptoms, s.Scorer)
		if err != nil {
			skipped++
			continue
		}
		data.Tweets = append(data.Tweets, tweet)
	}
	sortTweets(data.Tweets)
	if skipped > 0 {
		slog.Warn("[Dataset] Skipped tweets with unreadable dates", slog.Int("skipped", skipped))
	}
	slog.Info("[Dataset] Loaded tweets", slog.Int("count", len(data.Tweets)))

	if trends, err := s.Store.ScanDailyTrends(ctx); err != nil {
		slog.Warn("[Dataset] Daily trends unavailable", slog.String("error", err.Error()))
	} else if data.Trends, err = convertTrends(trends); err != nil {
		slog.Warn("[Dataset] Daily trends unavailable", slog.String("error", err.Error()))
	}

	if locations, err := s.Store.ScanLocations(ctx); err != nil {
		slog.Warn("[Dataset] Location statistics unavailable", slog.String("error", err.Error()))
	} else {
		data.Locations = make([]models.LocationStat, len(locations))
		for i, l := range locations {
			data.Locations[i] = models.LocationStat{
				Location:     l.Location,
				TotalTweets:  l.TotalTweets,
				DiseaseCount: l.DiseaseCount,
				DiseaseRatio: l.DiseaseRatio,
			}
		}
		sortLocations(data.Locations)
	}

	if rows, err := s.Store.ScanForecast(ctx); err != nil {
		slog.Warn("[Dataset] Forecast unavailable", slog.String("error", err.Error()))
	} else if len(rows) > 0 {
		data.Forecast = make([]models.ForecastRow, len(rows))
		for i, row := range rows {
			data.Forecast[i] = models.ForecastRow(row)
		}
	}

	return data, nil
}

func convertTrends(items []db.DailyTrendItem) ([]models.DailyTrend, error) {
	trends := make([]models.DailyTrend, 0, len(items))
	for _, item := range items {
		trend, err := newTrend(item.Date, item.TotalTweets, item.DiseaseTweets)
		if err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	sortTrends(trends)
	return trends, nil
}

// Export writes every loaded table of data to DynamoDB. Tables that were not
// loaded are skipped.
func Export(ctx context.Context, store *db.Store, data *Dataset) error {
	tweets := make([]db.TweetItem, len(data.Tweets))
	for i, t := range data.Tweets {
		label := 0
		if t.IsDisease {
			label = 1
		}
		tweets[i] = db.TweetItem{
			ID:          t.ID,
			Text:        t.Text,
			CleanedText: t.Cleaned,
			Date:        t.DateString,
			Location:    t.Location,
			Label:       label,
			Sentiment:   t.Sentiment,
			Symptoms:    t.Symptoms,
		}
	}
	if err := db.PutItems(ctx, store, db.TWEETS_TABLE_NAME, tweets); err != nil {
		return fmt.Errorf("export tweets: %w", err)
	}

	if data.Trends != nil {
		trends := make([]db.DailyTrendItem, len(data.Trends))
		for i, t := range data.Trends {
			trends[i] = db.DailyTrendItem{Date: t.DateString, TotalTweets: t.TotalTweets, DiseaseTweets: t.DiseaseTweets}
		}
		if err := db.PutItems(ctx, store, db.DAILY_TRENDS_TABLE_NAME, trends); err != nil {
			return fmt.Errorf("export trends: %w", err)
		}
	}

	if data.Locations != nil {
		locations := make([]db.LocationItem, len(data.Locations))
		for i, l := range data.Locations {
			locations[i] = db.LocationItem{
				Location:     l.Location,
				TotalTweets:  l.TotalTweets,
				DiseaseCount: l.DiseaseCount,
				DiseaseRatio: l.DiseaseRatio,
			}
		}
		if err := db.PutItems(ctx, store, db.LOCATIONS_TABLE_NAME, locations); err != nil {
			return fmt.Errorf("export locations: %w", err)
		}
	}

	if len(data.Forecast) > 0 {
		if err := db.PutItems(ctx, store, db.FORECAST_TABLE_NAME, data.Forecast); err != nil {
			return fmt.Errorf("export forecast: %w", err)
		}
	}
	return nil
}
