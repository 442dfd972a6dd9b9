package perception

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExternalCollectorWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Seoul" {
			t.Errorf("city = %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("units = %q", got)
		}
		w.Write([]byte(`{"weather":[{"description":"맑음"}],"main":{"temp":15.4}}`))
	}))
	defer srv.Close()

	c := NewExternalCollector(ExternalConfig{WeatherAPIKey: "k"}, nil)
	c.weatherURL = srv.URL

	got := c.Weather(context.Background())
	if got != "Seoul 맑음 15°C" {
		t.Fatalf("Weather = %q", got)
	}
}

func TestExternalCollectorWeatherCacheTTL(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"weather":[{"description":"흐림"}],"main":{"temp":9.7}}`))
	}))
	defer srv.Close()

	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	c := NewExternalCollector(ExternalConfig{WeatherAPIKey: "k", CacheTTL: 5 * time.Minute}, nil)
	c.weatherURL = srv.URL
	c.Now = func() time.Time { return now }

	ctx := context.Background()
	c.Weather(ctx)
	now = now.Add(2 * time.Minute)
	c.Weather(ctx)
	if calls != 1 {
		t.Fatalf("expected cached second read, got %d calls", calls)
	}

	now = now.Add(10 * time.Minute)
	c.Weather(ctx)
	if calls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", calls)
	}
}

func TestExternalCollectorWeatherFailureKeepsLastGood(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"weather":[{"description":"맑음"}],"main":{"temp":20}}`))
	}))
	defer srv.Close()

	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	c := NewExternalCollector(ExternalConfig{WeatherAPIKey: "k", CacheTTL: time.Minute}, nil)
	c.weatherURL = srv.URL
	c.Now = func() time.Time { return now }

	ctx := context.Background()
	first := c.Weather(ctx)
	fail = true
	now = now.Add(5 * time.Minute)
	if got := c.Weather(ctx); got != first {
		t.Fatalf("Weather after failure = %q, want %q", got, first)
	}
}

func TestExternalCollectorNoKeyNoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("collector contacted server without an API key")
	}))
	defer srv.Close()

	c := NewExternalCollector(ExternalConfig{}, nil)
	c.weatherURL = srv.URL
	c.newsURL = srv.URL

	facts := c.Facts(context.Background())
	if facts.Weather != "" || len(facts.Topics) != 0 {
		t.Fatalf("Facts = %#v", facts)
	}
}

func TestExternalCollectorTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("country"); got != "kr" {
			t.Errorf("country = %q", got)
		}
		w.Write([]byte(`{"articles":[{"title":"첫 번째 뉴스"},{"title":""},{"title":"두 번째 뉴스"}]}`))
	}))
	defer srv.Close()

	c := NewExternalCollector(ExternalConfig{NewsAPIKey: "k"}, nil)
	c.newsURL = srv.URL

	topics := c.Topics(context.Background())
	if len(topics) != 2 || topics[0] != "첫 번째 뉴스" || topics[1] != "두 번째 뉴스" {
		t.Fatalf("Topics = %#v", topics)
	}
}
