package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spacesedan/covidpulse/internal/models"
	"github.com/spacesedan/covidpulse/internal/sentiment"
)

const (
	TweetsFile    = "covid19_tweets_with_predictions.csv"
	TrendsFile    = "daily_trends.csv"
	LocationsFile = "location_statistics.csv"
	ForecastFile  = "forecast_comparison.csv"
)

// CSVSource reads the processed exports from a directory.
type CSVSource struct {
	Dir    string
	Scorer *sentiment.Scorer
}

func (s CSVSource) Load(ctx context.Context) (*Dataset, error) {
	data := &Dataset{}

	var err error
	if data.Tweets, err = s.loadTweets(); err != nil {
		return nil, fmt.Errorf("load tweets: %w", err)
	}
	slog.Info("[Dataset] Loaded tweets", slog.Int("count", len(data.Tweets)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data.Trends, err = s.loadTrends(); err != nil {
		slog.Warn("[Dataset] Daily trends unavailable", slog.String("error", err.Error()))
	}
	if data.Locations, err = s.loadLocations(); err != nil {
		slog.Warn("[Dataset] Location statistics unavailable", slog.String("error", err.Error()))
	}
	if data.Forecast, err = s.loadForecast(); err != nil {
		slog.Warn("[Dataset] Forecast unavailable", slog.String("error", err.Error()))
	}

	return data, nil
}

// table is a CSV file indexed by header name.
type table struct {
	columns map[string]int
	rows    [][]string
	header  []string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, err
	}

	t := &table{columns: make(map[string]int, len(header)), header: header}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		t.columns[name] = i
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *table) has(column string) bool {
	_, ok := t.columns[column]
	return ok
}

func (t *table) get(row []string, columns ...string) string {
	for _, c := range columns {
		if i, ok := t.columns[c]; ok && i < len(row) {
			return row[i]
		}
	}
	return ""
}

func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if !t.has(c) {
			return fmt.Errorf("missing column %q", c)
		}
	}
	return nil
}

func (s CSVSource) loadTweets() ([]models.Tweet, error) {
	t, err := readTable(filepath.Join(s.Dir, TweetsFile))
	if err != nil {
		return nil, err
	}
	if err := t.require("date", "label"); err != nil {
		return nil, err
	}

	tweets := make([]models.Tweet, 0, len(t.rows))
	skipped := 0
	for i, row := range t.rows {
		tweet, err := newTweet(
			i,
			t.get(row, "original_text", "text"),
			t.get(row, "cleaned_text"),
			t.get(row, "date"),
			t.get(row, "user_location"),
			parseLabel(t.get(row, "label")),
			t.get(row, "sentiment"),
			symptomKeys(t.get(row, "extracted_symptoms")),
			s.Scorer,
		)
		if err != nil {
			skipped++
			continue
		}
		tweets = append(tweets, tweet)
	}

	if skipped > 0 {
		slog.Warn("[Dataset] Skipped tweets with unreadable dates", slog.Int("skipped", skipped))
	}
	return tweets, nil
}

func (s CSVSource) loadTrends() ([]models.DailyTrend, error) {
	t, err := readTable(filepath.Join(s.Dir, TrendsFile))
	if err != nil {
		return nil, err
	}
	if err := t.require("date", "total_tweets", "disease_tweets"); err != nil {
		return nil, err
	}

	trends := make([]models.DailyTrend, 0, len(t.rows))
	for _, row := range t.rows {
		trend, err := newTrend(
			t.get(row, "date"),
			parseCount(t.get(row, "total_tweets")),
			parseCount(t.get(row, "disease_tweets")),
		)
		if err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	return trends, nil
}

func (s CSVSource) loadLocations() ([]models.LocationStat, error) {
	t, err := readTable(filepath.Join(s.Dir, LocationsFile))
	if err != nil {
		return nil, err
	}
	if err := t.require("cleaned_location", "disease_count"); err != nil {
		return nil, err
	}

	locations := make([]models.LocationStat, 0, len(t.rows))
	for _, row := range t.rows {
		ratio, _ := strconv.ParseFloat(strings.TrimSpace(t.get(row, "disease_ratio", "disease_rate", "disease_percentage")), 64)
		locations = append(locations, models.LocationStat{
			Location:     t.get(row, "cleaned_location"),
			TotalTweets:  parseCount(t.get(row, "total_tweets", "tweet_count", "total")),
			DiseaseCount: parseCount(t.get(row, "disease_count")),
			DiseaseRatio: ratio,
		})
	}
	return locations, nil
}

func (s CSVSource) loadForecast() ([]models.ForecastRow, error) {
	t, err := readTable(filepath.Join(s.Dir, ForecastFile))
	if err != nil {
		return nil, err
	}

	rows := make([]models.ForecastRow, 0, len(t.rows))
	for _, row := range t.rows {
		out := make(models.ForecastRow, len(t.header))
		for i, name := range t.header {
			if i >= len(row) {
				out[name] = nil
				continue
			}
			out[name] = cellValue(row[i])
		}
		rows = append(rows, out)
	}
	return rows, nil
}

func cellValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// parseLabel accepts the encodings pandas writes for a 0/1 column.
func parseLabel(raw string) int {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "1.0", "true":
		return 1
	default:
		return 0
	}
}

func parseCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

// symptomKeys returns the top-level keys of a serialized dict. Both JSON and
// Python literal syntax are accepted since the export used either.
func symptomKeys(cell string) []string {
	var (
		keys    []string
		depth   int
		quote   rune
		current strings.Builder
		pending string
	)

	for _, r := range cell {
		if quote != 0 {
			switch r {
			case quote:
				quote = 0
				if depth == 1 {
					pending = current.String()
				}
			default:
				current.WriteRune(r)
			}
			continue
		}

		switch r {
		case '\'', '"':
			quote = r
			current.Reset()
		case '{', '[', '(':
			depth++
			pending = ""
		case '}', ']', ')':
			depth--
			pending = ""
		case ':':
			if depth == 1 && pending != "" {
				keys = append(keys, pending)
			}
			pending = ""
		case ' ', '\t', '\n':
		default:
			pending = ""
		}
	}
	return keys
}
