package domain

import (
	"strings"
	"time"
)

// ContentItem represents one unit of ingested text.
// Items are produced by fetchers, normalized once at the system boundary,
// and never mutated by the classification or trend pipeline.
type ContentItem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	Source    string    `json:"source"`
	Author    string    `json:"author,omitempty"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Content source tags. Fetchers may introduce additional tags; the
// pipeline only uses Source for grouping and display.
const (
	SourceNews     = "news"
	SourceAcademic = "academic"
	SourceUnknown  = "unknown"
)

// UnknownAuthor is the normalized author for items that arrive without one.
const UnknownAuthor = "Unknown"

// Normalize fills safe defaults for missing optional fields so downstream
// consumers never have to re-check them. Returns a copy; the input is not
// modified.
func (c ContentItem) Normalize(now time.Time) ContentItem {
	if strings.TrimSpace(c.Author) == "" {
		c.Author = UnknownAuthor
	}
	if c.Source == "" {
		c.Source = SourceUnknown
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = now
	}
	return c
}

// Text returns the lowercased concatenation of title and content, the
// single string all keyword matching runs against.
func (c ContentItem) Text() string {
	return strings.ToLower(c.Title + " " + c.Content)
}

// IsEmpty reports whether the item carries no matchable text.
func (c ContentItem) IsEmpty() bool {
	return strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Content) == ""
}
