package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
)

// DefaultBaseURL is the tomorrow.io v4 API root.
const DefaultBaseURL = "https://api.tomorrow.io/v4"

// ForecastDays is how many daily entries a forecast reports.
const ForecastDays = 3

// ErrMissingAPIKey is returned when no tomorrow.io key is configured.
var ErrMissingAPIKey = errors.New("TOMORROW_API_KEY is not set")

// Day is one rounded daily forecast.
type Day struct {
	Date          string
	MinC          int
	MaxC          int
	PrecipPercent int
}

// String formats the day as "2024-06-01: 5 degrees C to 12 degrees C, 30% chance of rain".
func (d Day) String() string {
	return fmt.Sprintf("%s: %d degrees C to %d degrees C, %d%% chance of rain", d.Date, d.MinC, d.MaxC, d.PrecipPercent)
}

type forecastResponse struct {
	Timelines struct {
		Daily []dailyEntry `json:"daily"`
	} `json:"timelines"`
}

type dailyEntry struct {
	Time   string `json:"time"`
	Values struct {
		TemperatureMin              float64 `json:"temperatureMin"`
		TemperatureMax              float64 `json:"temperatureMax"`
		PrecipitationProbabilityAvg float64 `json:"precipitationProbabilityAvg"`
	} `json:"values"`
}

func (e dailyEntry) day() Day {
	date, _, _ := strings.Cut(e.Time, "T")
	return Day{
		Date:          date,
		MinC:          int(math.Round(e.Values.TemperatureMin)),
		MaxC:          int(math.Round(e.Values.TemperatureMax)),
		PrecipPercent: int(math.Round(e.Values.PrecipitationProbabilityAvg)),
	}
}

// Client calls the tomorrow.io forecast endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a forecast client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// forecastURL builds the daily metric forecast URL for a location.
func (c *Client) forecastURL(lat, long float64) string {
	q := url.Values{}
	q.Set("location", formatCoord(lat)+","+formatCoord(long))
	q.Set("timestamps", "1d")
	q.Set("units", "metric")
	q.Set("apikey", c.apiKey)
	return c.baseURL + "/weather/forecast?" + q.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Forecast returns the first ForecastDays daily entries for a location.
func (c *Client) Forecast(ctx context.Context, lat, long float64) (days []Day, err error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	start := time.Now()
	ctx, span := instrumentation.StartUpstreamSpan(ctx, instrumentation.ServiceTomorrow, instrumentation.OperationForecast)
	defer func() {
		instrumentation.EndSpan(span, err)
		c.metrics.RecordUpstreamOperation(ctx, instrumentation.ServiceTomorrow, instrumentation.OperationForecast,
			instrumentation.StatusFor(err), time.Since(start))
	}()

	u := c.forecastURL(lat, long)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("requesting forecast", "url", logging.SanitizeURL(u, "apikey"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("forecast request returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}

	daily := fr.Timelines.Daily
	if len(daily) > ForecastDays {
		daily = daily[:ForecastDays]
	}
	days = make([]Day, 0, len(daily))
	for _, e := range daily {
		days = append(days, e.day())
	}
	return days, nil
}

// Format renders one line per day.
func Format(days []Day) string {
	lines := make([]string, 0, len(days))
	for _, d := range days {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}
