package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/culturepulse/pulse/internal/collector"
	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
)

// ClassifyRequest is the body of POST /api/v1/classify.
type ClassifyRequest struct {
	Item domain.ContentItem `json:"item" binding:"required"`
}

// ClassifyResponse pairs an item with its domain matches.
type ClassifyResponse struct {
	Item    domain.ContentItem   `json:"item"`
	Matches []domain.DomainMatch `json:"matches"`
}

// BatchClassifyRequest is the body of POST /api/v1/classify/batch.
type BatchClassifyRequest struct {
	Items []domain.ContentItem `json:"items" binding:"required,min=1,max=100"`
}

// BatchClassifyResponse is the batch classification result.
type BatchClassifyResponse struct {
	Results []ClassifyResponse `json:"results"`
	Total   int                `json:"total"`
}

// TaxonomyResponse lists the loaded cultural domains.
type TaxonomyResponse struct {
	Domains []domain.CulturalDomain `json:"domains"`
	Total   int                     `json:"total"`
}

// AnalyzeRequest is the optional body of POST /api/v1/trends/analyze.
type AnalyzeRequest struct {
	Items []domain.ContentItem `json:"items"`
}

// CollectRequest is the body of POST /api/v1/collect.
type CollectRequest struct {
	Keywords []string `json:"keywords" binding:"required,min=1"`
	Sources  []string `json:"sources"`
}

// JobsResponse lists collection jobs.
type JobsResponse struct {
	Jobs  []collector.Job `json:"jobs"`
	Total int             `json:"total"`
}

// GenerateRequest is the body of POST /api/v1/articles/generate.
type GenerateRequest struct {
	TopicID string `json:"topic_id" binding:"required"`
}

// ArticlesResponse lists generated articles.
type ArticlesResponse struct {
	Articles []domain.GeneratedArticle `json:"articles"`
	Total    int                       `json:"total"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func internalError(c *gin.Context, log logger.Logger, msg string, err error) {
	log.Error(msg, logger.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
