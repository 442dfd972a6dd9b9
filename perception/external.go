package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/junggyeol4444/aiu/internal/outputfmt"
)

// ExternalFacts are ambient real-world details offered to the speech
// prompt, such as the local weather and trending headlines.
type ExternalFacts struct {
	Weather string   `json:"weather,omitempty"`
	Topics  []string `json:"topics,omitempty"`
}

// ExternalConfig selects which public data sources the collector may call.
// A source with no API key is never contacted.
type ExternalConfig struct {
	WeatherAPIKey string
	WeatherCity   string
	NewsAPIKey    string
	NewsCountry   string
	CacheTTL      time.Duration
}

// ExternalCollector fetches weather and headline data from public APIs and
// caches each source for a TTL so polling stays cheap. A failed fetch keeps
// the last good value.
type ExternalCollector struct {
	cfg    ExternalConfig
	http   *http.Client
	logger *slog.Logger

	// Now is the clock used for cache expiry. Overridable in tests.
	Now func() time.Time

	weatherURL string
	newsURL    string

	mu        sync.Mutex
	weather   string
	weatherAt time.Time
	topics    []string
	topicsAt  time.Time
}

// NewExternalCollector returns a collector for the configured sources.
// City defaults to Seoul, country to kr, and the cache TTL to five minutes.
func NewExternalCollector(cfg ExternalConfig, logger *slog.Logger) *ExternalCollector {
	if cfg.WeatherCity == "" {
		cfg.WeatherCity = "Seoul"
	}
	if cfg.NewsCountry == "" {
		cfg.NewsCountry = "kr"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExternalCollector{
		cfg:        cfg,
		http:       &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
		Now:        time.Now,
		weatherURL: "https://api.openweathermap.org/data/2.5/weather",
		newsURL:    "https://newsapi.org/v2/top-headlines",
	}
}

// Facts returns the current weather line and headline list, refreshing
// whichever cache has expired.
func (c *ExternalCollector) Facts(ctx context.Context) ExternalFacts {
	return ExternalFacts{
		Weather: c.Weather(ctx),
		Topics:  c.Topics(ctx),
	}
}

// Weather returns a short description like "Seoul 맑음 15°C", or the empty
// string when no key is configured and nothing is cached.
func (c *ExternalCollector) Weather(ctx context.Context) string {
	c.mu.Lock()
	cached, fetchedAt := c.weather, c.weatherAt
	c.mu.Unlock()

	now := c.Now()
	if c.cfg.WeatherAPIKey == "" || (cached != "" && now.Sub(fetchedAt) < c.cfg.CacheTTL) {
		return cached
	}

	line, err := c.fetchWeather(ctx)
	if err != nil {
		c.logger.Warn("weather_fetch_failed", "error", outputfmt.FormatErrorForDisplay(err))
		return cached
	}

	c.mu.Lock()
	c.weather = line
	c.weatherAt = now
	c.mu.Unlock()
	return line
}

// Topics returns up to five trending headline titles, or nil when no key is
// configured and nothing is cached.
func (c *ExternalCollector) Topics(ctx context.Context) []string {
	c.mu.Lock()
	cached, fetchedAt := c.topics, c.topicsAt
	c.mu.Unlock()

	now := c.Now()
	if c.cfg.NewsAPIKey == "" || (len(cached) > 0 && now.Sub(fetchedAt) < c.cfg.CacheTTL) {
		return cached
	}

	topics, err := c.fetchTopics(ctx)
	if err != nil {
		c.logger.Warn("news_fetch_failed", "error", outputfmt.FormatErrorForDisplay(err))
		return cached
	}

	c.mu.Lock()
	c.topics = topics
	c.topicsAt = now
	c.mu.Unlock()
	return topics
}

func (c *ExternalCollector) fetchWeather(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("q", c.cfg.WeatherCity)
	q.Set("appid", c.cfg.WeatherAPIKey)
	q.Set("units", "metric")
	q.Set("lang", "kr")

	var body struct {
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	}
	if err := c.getJSON(ctx, c.weatherURL+"?"+q.Encode(), &body); err != nil {
		return "", err
	}
	if len(body.Weather) == 0 {
		return "", fmt.Errorf("weather response missing conditions")
	}
	temp := int(math.Round(body.Main.Temp))
	return fmt.Sprintf("%s %s %d°C", c.cfg.WeatherCity, body.Weather[0].Description, temp), nil
}

func (c *ExternalCollector) fetchTopics(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("country", c.cfg.NewsCountry)
	q.Set("apiKey", c.cfg.NewsAPIKey)
	q.Set("pageSize", "5")

	var body struct {
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}
	if err := c.getJSON(ctx, c.newsURL+"?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	topics := make([]string, 0, len(body.Articles))
	for _, a := range body.Articles {
		if a.Title == "" {
			continue
		}
		topics = append(topics, a.Title)
		if len(topics) == 5 {
			break
		}
	}
	return topics, nil
}

func (c *ExternalCollector) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d from %s", resp.StatusCode, resp.Request.URL.Host)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
