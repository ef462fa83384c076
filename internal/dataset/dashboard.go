package dataset

import (
	"cmp"
	"errors"
	"slices"

	"github.com/spacesedan/covidpulse/internal/models"
)

var (
	ErrTrendsUnavailable    = errors.New("timeline data not loaded")
	ErrLocationsUnavailable = errors.New("location data not loaded")
)

const (
	maxLocations = 100
	maxHotspots  = 20

	DefaultPageSize = 20
)

// Dashboard answers the read-only dashboard queries. A nil Dataset makes
// every query fail with ErrDatasetUnavailable.
type Dashboard struct {
	data       *Dataset
	categories []string
}

func NewDashboard(data *Dataset, categories []string) *Dashboard {
	return &Dashboard{data: data, categories: categories}
}

func (d *Dashboard) DataLoaded() bool {
	return d.data != nil
}

func (d *Dashboard) Stats() (models.Stats, error) {
	if d.data == nil {
		return models.Stats{}, ErrDatasetUnavailable
	}

	stats := models.Stats{TotalTweets: len(d.data.Tweets)}
	for i, t := range d.data.Tweets {
		if t.IsDisease {
			stats.DiseaseTweets++
		}
		switch t.Sentiment {
		case "POSITIVE":
			stats.PositiveSentiment++
		case "NEGATIVE":
			stats.NegativeSentiment++
		}

		day := t.Date.Format("2006-01-02")
		if i == 0 || day < stats.DateRange.Start {
			stats.DateRange.Start = day
		}
		if i == 0 || day > stats.DateRange.End {
			stats.DateRange.End = day
		}
	}

	if d.data.Locations != nil {
		distinct := make(map[string]struct{}, len(d.data.Locations))
		for _, l := range d.data.Locations {
			distinct[l.Location] = struct{}{}
		}
		stats.Locations = len(distinct)
	}
	return stats, nil
}

func (d *Dashboard) Timeline() ([]models.DailyTrend, error) {
	if d.data == nil || d.data.Trends == nil {
		return nil, ErrTrendsUnavailable
	}
	return d.data.Trends, nil
}

func (d *Dashboard) Locations() ([]models.LocationStat, error) {
	if d.data == nil || d.data.Locations == nil {
		return nil, ErrLocationsUnavailable
	}
	return d.data.Locations[:min(len(d.data.Locations), maxLocations)], nil
}

func (d *Dashboard) Hotspots() ([]models.Hotspot, error) {
	if d.data == nil || d.data.Locations == nil {
		return nil, ErrLocationsUnavailable
	}

	sorted := slices.Clone(d.data.Locations)
	slices.SortStableFunc(sorted, func(a, b models.LocationStat) int {
		return cmp.Compare(b.DiseaseCount, a.DiseaseCount)
	})

	hotspots := make([]models.Hotspot, 0, min(len(sorted), maxHotspots))
	for _, l := range sorted[:min(len(sorted), maxHotspots)] {
		hotspots = append(hotspots, models.Hotspot{Location: l.Location, Count: l.DiseaseCount})
	}
	return hotspots, nil
}

// Symptoms counts the tweets mentioning each known category. Categories with
// no mentions are left out; ties keep taxonomy order.
func (d *Dashboard) Symptoms() ([]models.SymptomCount, error) {
	if d.data == nil {
		return nil, ErrDatasetUnavailable
	}

	counts := make(map[string]int, len(d.categories))
	for _, c := range d.categories {
		counts[c] = 0
	}
	for _, t := range d.data.Tweets {
		for _, c := range t.Symptoms {
			if _, known := counts[c]; known {
				counts[c]++
			}
		}
	}

	out := make([]models.SymptomCount, 0, len(d.categories))
	for _, c := range d.categories {
		if counts[c] > 0 {
			out = append(out, models.SymptomCount{Category: c, Count: counts[c]})
		}
	}
	slices.SortStableFunc(out, func(a, b models.SymptomCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out, nil
}

func (d *Dashboard) Sentiment() (models.SentimentDistribution, error) {
	if d.data == nil {
		return models.SentimentDistribution{}, ErrDatasetUnavailable
	}

	var dist models.SentimentDistribution
	for _, t := range d.data.Tweets {
		switch t.Sentiment {
		case "POSITIVE":
			dist.Positive++
		case "NEGATIVE":
			dist.Negative++
		}
	}
	return dist, nil
}

// Tweets returns one page of tweets. Pages start at 1; a page past the end
// is empty but still reports the totals.
func (d *Dashboard) Tweets(page, limit int, diseaseOnly bool) (models.TweetPage, error) {
	if d.data == nil {
		return models.TweetPage{}, ErrDatasetUnavailable
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	filtered := d.data.Tweets
	if diseaseOnly {
		filtered = make([]models.Tweet, 0, len(d.data.Tweets))
		for _, t := range d.data.Tweets {
			if t.IsDisease {
				filtered = append(filtered, t)
			}
		}
	}

	total := len(filtered)
	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	// page <= pages keeps (page-1)*limit below total, so nothing overflows.
	start := total
	if page <= pages {
		start = (page - 1) * limit
	}
	end := start + min(limit, total-start)

	tweets := make([]models.Tweet, end-start)
	copy(tweets, filtered[start:end])

	return models.TweetPage{
		Tweets: tweets,
		Total:  total,
		Page:   page,
		Pages:  pages,
	}, nil
}

// Forecast reports false when no forecast export was loaded.
func (d *Dashboard) Forecast() ([]models.ForecastRow, bool) {
	if d.data == nil || len(d.data.Forecast) == 0 {
		return nil, false
	}
	return d.data.Forecast, true
}

// HourlyPattern groups tweets by hour of day. Hours without tweets are
// omitted.
func (d *Dashboard) HourlyPattern() ([]models.HourlyCount, error) {
	if d.data == nil {
		return nil, ErrDatasetUnavailable
	}

	var hours [24]models.HourlyCount
	for _, t := range d.data.Tweets {
		h := t.Date.Hour()
		hours[h].Total++
		if t.IsDisease {
			hours[h].Disease++
		}
	}

	out := make([]models.HourlyCount, 0, 24)
	for h, c := range hours {
		if c.Total > 0 {
			c.Hour = h
			out = append(out, c)
		}
	}
	return out, nil
}
