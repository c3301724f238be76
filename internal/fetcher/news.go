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

// ServiceNews is the usage-tracker key for the news upstream.
const ServiceNews = "news"

const defaultNewsPageSize = 20

// NewsClient searches a news API and normalizes articles into content
// items.
type NewsClient struct {
	*client
}

// NewNewsClient creates a news client. tracker and tp may be nil.
func NewNewsClient(cfg Config, tracker *usage.Tracker, log logger.Logger, tp *telemetry.Provider) *NewsClient {
	return &NewsClient{client: newClient(ServiceNews, cfg, tracker, log, tp)}
}

type newsResponse struct {
	Status   string        `json:"status"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Search fetches articles matching the keywords, OR-joined into one
// query. Malformed fields fall back to defaults rather than dropping the
// article.
func (c *NewsClient) Search(ctx context.Context, keywords []string) ([]domain.ContentItem, error) {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultNewsPageSize
	}

	query := url.Values{}
	query.Set("q", strings.Join(keywords, " OR "))
	query.Set("pageSize", fmt.Sprintf("%d", pageSize))
	query.Set("sortBy", "publishedAt")

	header := http.Header{}
	if c.cfg.APIKey != "" {
		header.Set("X-Api-Key", c.cfg.APIKey)
	}

	var resp newsResponse
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/v2/everything?"+query.Encode(), header, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("news API status %q", resp.Status)
	}

	now := time.Now().UTC()
	items := make([]domain.ContentItem, 0, len(resp.Articles))
	for i, a := range resp.Articles {
		items = append(items, normalizeArticle(a, i, now))
	}

	c.logger.Debug("news search complete",
		logger.Int("keywords", len(keywords)),
		logger.Int("items", len(items)),
	)
	if c.telemetry != nil {
		c.telemetry.RecordItemsCollected(domain.SourceNews, len(items))
	}
	return items, nil
}

// normalizeArticle fills the gaps news APIs routinely leave: missing
// content falls back to description then title, missing authors become
// "Unknown", unparseable timestamps become the fetch time.
func normalizeArticle(a newsArticle, index int, now time.Time) domain.ContentItem {
	content := a.Content
	if content == "" {
		content = a.Description
	}
	if content == "" {
		content = a.Title
	}

	item := domain.ContentItem{
		ID:      fmt.Sprintf("news-%d-%d", now.UnixMilli(), index),
		Title:   a.Title,
		Content: content,
		Source:  domain.SourceNews,
		Author:  a.Author,
		URL:     a.URL,
	}
	if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		item.Timestamp = ts
	}
	return item.Normalize(now)
}
