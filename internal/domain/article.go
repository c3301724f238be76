package domain

import "time"

// GeneratedArticle is a prose article produced for a trending topic by the
// generative-text collaborator (or its mock fallback).
type GeneratedArticle struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Model     string        `json:"model"`
	Trend     TrendingTopic `json:"trend"`
	Timestamp time.Time     `json:"timestamp"`
}
