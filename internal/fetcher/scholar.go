package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/telemetry"
	"github.com/culturepulse/pulse/internal/usage"
)

// ServiceScholar is the usage-tracker key for the scholarly upstream.
const ServiceScholar = "scholar"

const defaultScholarPageSize = 10

// ScholarClient searches a scholarly-works API. Results pass through a
// file cache because academic indexes change slowly and their rate
// limits are tight.
type ScholarClient struct {
	*client
	cache *FileCache
}

// NewScholarClient creates a scholarly search client. cache, tracker and
// tp may be nil.
func NewScholarClient(cfg Config, cache *FileCache, tracker *usage.Tracker, log logger.Logger, tp *telemetry.Provider) *ScholarClient {
	return &ScholarClient{
		client: newClient(ServiceScholar, cfg, tracker, log, tp),
		cache:  cache,
	}
}

type scholarResponse struct {
	Results []scholarWork `json:"results"`
}

type scholarWork struct {
	Title     string   `json:"title"`
	Abstract  string   `json:"abstract"`
	Authors   []string `json:"authors"`
	URL       string   `json:"url"`
	Published string   `json:"published"`
}

// Search fetches works matching the keywords, serving from cache when a
// fresh entry exists.
func (c *ScholarClient) Search(ctx context.Context, keywords []string) ([]domain.ContentItem, error) {
	queryText := strings.Join(keywords, " ")
	if items, ok := c.cache.Get(queryText); ok {
		c.logger.Debug("scholar search served from cache",
			logger.String("query", queryText),
			logger.Int("items", len(items)),
		)
		return items, nil
	}

	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultScholarPageSize
	}

	query := url.Values{}
	query.Set("q", queryText)
	query.Set("limit", fmt.Sprintf("%d", pageSize))

	header := http.Header{}
	if c.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	var resp scholarResponse
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/search?"+query.Encode(), header, &resp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]domain.ContentItem, 0, len(resp.Results))
	for i, w := range resp.Results {
		items = append(items, normalizeWork(w, i, now))
	}

	c.cache.Put(queryText, items)
	c.logger.Debug("scholar search complete",
		logger.String("query", queryText),
		logger.Int("items", len(items)),
	)
	if c.telemetry != nil {
		c.telemetry.RecordItemsCollected(domain.SourceAcademic, len(items))
	}
	return items, nil
}

func normalizeWork(w scholarWork, index int, now time.Time) domain.ContentItem {
	content := w.Abstract
	if content == "" {
		content = w.Title
	}

	item := domain.ContentItem{
		ID:      fmt.Sprintf("scholar-%d-%d", now.UnixMilli(), index),
		Title:   w.Title,
		Content: content,
		Source:  domain.SourceAcademic,
		Author:  strings.Join(w.Authors, ", "),
		URL:     w.URL,
	}
	if ts, err := time.Parse(time.RFC3339, w.Published); err == nil {
		item.Timestamp = ts
	} else if ts, err := time.Parse("2006-01-02", w.Published); err == nil {
		item.Timestamp = ts
	}
	return item.Normalize(now)
}
