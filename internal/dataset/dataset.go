// Package dataset loads the precomputed tweet analytics served by the
// dashboard endpoints. A Dataset is built once at startup and never mutated.
package dataset

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spacesedan/covidpulse/internal/models"
	"github.com/spacesedan/covidpulse/internal/sentiment"
)

var ErrDatasetUnavailable = errors.New("dataset not loaded")

// Source produces a Dataset. Tweets are required; the other tables may be
// missing, in which case their fields stay nil.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

type Dataset struct {
	Tweets    []models.Tweet
	Trends    []models.DailyTrend
	Locations []models.LocationStat
	Forecast  []models.ForecastRow
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// sentimentLabel keeps an exported label and otherwise scores the cleaned
// text. Labels are upper case to match the export.
func sentimentLabel(exported, cleaned string, scorer *sentiment.Scorer) string {
	if exported = strings.TrimSpace(exported); exported != "" {
		return strings.ToUpper(exported)
	}
	if scorer == nil {
		return strings.ToUpper(string(sentiment.Neutral))
	}
	return strings.ToUpper(string(scorer.Score(cleaned)))
}

func newTweet(id int, text, cleaned, date, location string, label int, exportedSentiment string, symptoms []string, scorer *sentiment.Scorer) (models.Tweet, error) {
	ts, err := parseDate(date)
	if err != nil {
		return models.Tweet{}, err
	}
	if strings.TrimSpace(location) == "" {
		location = "Unknown"
	}
	return models.Tweet{
		ID:         id,
		Text:       text,
		Cleaned:    cleaned,
		Date:       ts,
		DateString: ts.Format("2006-01-02 15:04:05"),
		Location:   location,
		IsDisease:  label != 0,
		Sentiment:  sentimentLabel(exportedSentiment, cleaned, scorer),
		Symptoms:   symptoms,
	}, nil
}

func newTrend(date string, total, disease int) (models.DailyTrend, error) {
	ts, err := parseDate(date)
	if err != nil {
		return models.DailyTrend{}, err
	}
	return models.DailyTrend{
		Date:          ts,
		DateString:    ts.Format("2006-01-02"),
		TotalTweets:   total,
		DiseaseTweets: disease,
	}, nil
}

// Scans return items in no particular order; these restore the order of the
// exports.

func sortTweets(tweets []models.Tweet) {
	slices.SortFunc(tweets, func(a, b models.Tweet) int { return cmp.Compare(a.ID, b.ID) })
}

func sortTrends(trends []models.DailyTrend) {
	slices.SortFunc(trends, func(a, b models.DailyTrend) int { return a.Date.Compare(b.Date) })
}

func sortLocations(locations []models.LocationStat) {
	slices.SortFunc(locations, func(a, b models.LocationStat) int {
		if c := cmp.Compare(b.TotalTweets, a.TotalTweets); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})
}
