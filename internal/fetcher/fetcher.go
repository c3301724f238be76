// Package fetcher collects content from upstream news and scholarly
// search APIs and normalizes responses into content items.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/telemetry"
	"github.com/culturepulse/pulse/internal/usage"
)

const defaultTimeout = 10 * time.Second

// Config holds the settings shared by both upstream clients.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RequestsPerSecond throttles calls to the upstream; zero disables
	// throttling.
	RequestsPerSecond float64
	PageSize          int
}

// client is the shared plumbing under NewsClient and ScholarClient:
// rate limiting, quota enforcement, JSON decoding, metrics.
type client struct {
	service   string
	cfg       Config
	http      *http.Client
	limiter   *rate.Limiter
	usage     *usage.Tracker
	logger    logger.Logger
	telemetry *telemetry.Provider
}

func newClient(service string, cfg Config, tracker *usage.Tracker, log logger.Logger, tp *telemetry.Provider) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &client{
		service:   service,
		cfg:       cfg,
		http:      &http.Client{Timeout: timeout},
		limiter:   limiter,
		usage:     tracker,
		logger:    log,
		telemetry: tp,
	}
}

// getJSON performs a rate-limited, quota-checked GET and decodes the
// JSON response into respPtr.
func (c *client) getJSON(ctx context.Context, url string, header http.Header, respPtr any) error {
	if c.usage != nil {
		if err := c.usage.Track(c.service); err != nil {
			return fmt.Errorf("fetch %s: %w", c.service, err)
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err == nil && resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		err = fmt.Errorf("%s returned %d", c.service, resp.StatusCode)
	}
	if c.telemetry != nil {
		c.telemetry.RecordFetch(c.service, err)
	}
	if err != nil {
		return fmt.Errorf("%s request: %w", c.service, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(respPtr); err != nil {
		return fmt.Errorf("decode %s response: %w", c.service, err)
	}
	return nil
}
