package gagapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/gag-stock-relay/internal/stock"
	"github.com/i474232898/gag-stock-relay/internal/transport"
	"github.com/i474232898/gag-stock-relay/internal/weather"
)

const (
	DefaultBaseURL = "https://gagapi.onrender.com"

	SnapshotPath = "/api/stocks"
	ProbePath    = "/api/weather"

	userAgent = "gag-stock-relay/1.0"
)

// FetchError is returned when an upstream call fails: transport error,
// timeout, open circuit or non-success status.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches snapshots and weather probes from the Grow-a-Garden API.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(client *http.Client, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  client,
		circuit: transport.NewBreaker("gagapi"),
		logger:  logger,
	}
}

// FetchSnapshot retrieves the full stock snapshot. Shape problems in the
// body are logged and defaulted, never returned.
func (c *Client) FetchSnapshot(ctx context.Context) (stock.Snapshot, error) {
	body, err := c.get(ctx, SnapshotPath)
	if err != nil {
		return stock.Snapshot{}, err
	}

	snap, err := stock.DecodeSnapshot(body)
	if err != nil {
		c.logger.Warn("gagapi: snapshot decoded with defaults", slog.String("error", err.Error()))
	}
	return snap, nil
}

// FetchWeatherProbe retrieves the quick weather probe.
func (c *Client) FetchWeatherProbe(ctx context.Context) (weather.Observation, error) {
	body, err := c.get(ctx, ProbePath)
	if err != nil {
		return weather.Observation{}, err
	}

	obs, err := weather.DecodeProbe(body)
	if err != nil {
		c.logger.Warn("gagapi: weather probe decoded with defaults", slog.String("error", err.Error()))
	}
	return obs, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	u := c.baseURL + path
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	}

	body, err := transport.Do(ctx, c.client, c.circuit, c.timeout, buildRequest)
	if err != nil {
		if wait, ok := transport.RetryAfter(err); ok {
			c.logger.Warn("gagapi: rate limited",
				slog.String("endpoint", path),
				slog.Duration("retry_after", wait))
		}
		return nil, &FetchError{Endpoint: path, Err: err}
	}
	return body, nil
}
