package dataset

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/spacesedan/covidpulse/internal/lexicon"
	"github.com/spacesedan/covidpulse/internal/models"
)

func testDashboard(t *testing.T) *Dashboard {
	return NewDashboard(fullDataset(t), lexicon.Default().CategoryNames())
}

func TestDashboardWithoutData(t *testing.T) {
	d := NewDashboard(nil, nil)
	if d.DataLoaded() {
		t.Error("DataLoaded() = true for a nil dataset")
	}
	if _, err := d.Stats(); !errors.Is(err, ErrDatasetUnavailable) {
		t.Errorf("Stats() error = %v", err)
	}
	if _, err := d.Tweets(1, 20, false); !errors.Is(err, ErrDatasetUnavailable) {
		t.Errorf("Tweets() error = %v", err)
	}
	if _, err := d.Timeline(); !errors.Is(err, ErrTrendsUnavailable) {
		t.Errorf("Timeline() error = %v", err)
	}
	if _, err := d.Hotspots(); !errors.Is(err, ErrLocationsUnavailable) {
		t.Errorf("Hotspots() error = %v", err)
	}
	if _, ok := d.Forecast(); ok {
		t.Error("Forecast() should be unavailable")
	}
}

func TestDashboardStats(t *testing.T) {
	stats, err := testDashboard(t).Stats()
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	want := models.Stats{
		TotalTweets:       3,
		DiseaseTweets:     2,
		Locations:         3,
		DateRange:         models.DateRange{Start: "2020-07-25", End: "2020-07-26"},
		PositiveSentiment: 1,
		NegativeSentiment: 1,
	}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}
}

func TestDashboardHotspots(t *testing.T) {
	hotspots, err := testDashboard(t).Hotspots()
	if err != nil {
		t.Fatalf("Hotspots() error: %v", err)
	}
	want := []models.Hotspot{
		{Location: "Mumbai", Count: 4},
		{Location: "Delhi", Count: 2},
		{Location: "London", Count: 0},
	}
	if !reflect.DeepEqual(hotspots, want) {
		t.Errorf("Hotspots() = %v, want %v", hotspots, want)
	}
}

func TestDashboardSymptoms(t *testing.T) {
	symptoms, err := testDashboard(t).Symptoms()
	if err != nil {
		t.Fatalf("Symptoms() error: %v", err)
	}
	want := []models.SymptomCount{{Category: "Fever", Count: 2}, {Category: "Respiratory", Count: 1}}
	if !reflect.DeepEqual(symptoms, want) {
		t.Errorf("Symptoms() = %v, want %v", symptoms, want)
	}
}

func TestDashboardSentiment(t *testing.T) {
	dist, err := testDashboard(t).Sentiment()
	if err != nil {
		t.Fatalf("Sentiment() error: %v", err)
	}
	if dist.Positive != 1 || dist.Negative != 1 {
		t.Errorf("Sentiment() = %+v", dist)
	}
}

func TestDashboardTweets(t *testing.T) {
	d := testDashboard(t)

	tests := []struct {
		name        string
		page, limit int
		diseaseOnly bool
		wantIDs     []int
		wantTotal   int
		wantPages   int
	}{
		{"first page", 1, 2, false, []int{0, 1}, 3, 2},
		{"second page", 2, 2, false, []int{2}, 3, 2},
		{"past the end", 5, 2, false, []int{}, 3, 2},
		{"disease only", 1, 20, true, []int{0, 2}, 2, 1},
		{"defaults", 0, 0, false, []int{0, 1, 2}, 3, 1},
		{"huge limit", 1, math.MaxInt, false, []int{0, 1, 2}, 3, 1},
		{"huge limit past the end", 2, math.MaxInt, false, []int{}, 3, 1},
		{"huge page", math.MaxInt, 2, false, []int{}, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := d.Tweets(tt.page, tt.limit, tt.diseaseOnly)
			if err != nil {
				t.Fatalf("Tweets() error: %v", err)
			}
			ids := []int{}
			for _, tw := range page.Tweets {
				ids = append(ids, tw.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if page.Total != tt.wantTotal || page.Pages != tt.wantPages {
				t.Errorf("total/pages = %d/%d, want %d/%d", page.Total, page.Pages, tt.wantTotal, tt.wantPages)
			}
			if page.Tweets == nil {
				t.Error("Tweets should never be nil")
			}
		})
	}
}

func TestDashboardHourlyPattern(t *testing.T) {
	hourly, err := testDashboard(t).HourlyPattern()
	if err != nil {
		t.Fatalf("HourlyPattern() error: %v", err)
	}
	want := []models.HourlyCount{{Hour: 12, Total: 2, Disease: 2}, {Hour: 14, Total: 1, Disease: 0}}
	if !reflect.DeepEqual(hourly, want) {
		t.Errorf("HourlyPattern() = %v, want %v", hourly, want)
	}
}

func TestDashboardTablesPassThrough(t *testing.T) {
	d := testDashboard(t)

	timeline, err := d.Timeline()
	if err != nil || len(timeline) != 2 {
		t.Errorf("Timeline() = %v, %v", timeline, err)
	}
	locations, err := d.Locations()
	if err != nil || len(locations) != 3 || locations[0].Location != "Delhi" {
		t.Errorf("Locations() = %v, %v", locations, err)
	}
	rows, ok := d.Forecast()
	if !ok || len(rows) != 1 {
		t.Errorf("Forecast() = %v, %v", rows, ok)
	}
}
