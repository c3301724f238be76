// Package api exposes the pulse HTTP API: classification, trend
// analysis, collection jobs, article generation, and quota reporting.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/culturepulse/pulse/internal/classifier"
	"github.com/culturepulse/pulse/internal/collector"
	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/generator"
	"github.com/culturepulse/pulse/internal/history"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/snapshot"
	"github.com/culturepulse/pulse/internal/trends"
	"github.com/culturepulse/pulse/internal/usage"
)

// Handler handles HTTP requests for the pulse API.
type Handler struct {
	service    string
	version    string
	classifier *classifier.Classifier
	aggregator *trends.Aggregator
	historyDB  history.Store
	snapshots  *snapshot.Store
	collector  *collector.Collector
	generator  *generator.Generator
	usage      *usage.Tracker
	logger     logger.Logger
}

// HandlerDeps bundles the components the handler serves.
type HandlerDeps struct {
	Service    string
	Version    string
	Classifier *classifier.Classifier
	Aggregator *trends.Aggregator
	History    history.Store
	Snapshots  *snapshot.Store
	Collector  *collector.Collector
	Generator  *generator.Generator
	Usage      *usage.Tracker
	Logger     logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		service:    deps.Service,
		version:    deps.Version,
		classifier: deps.Classifier,
		aggregator: deps.Aggregator,
		historyDB:  deps.History,
		snapshots:  deps.Snapshots,
		collector:  deps.Collector,
		generator:  deps.Generator,
		usage:      deps.Usage,
		logger:     deps.Logger,
	}
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
	})
}

// ReadyCheck handles GET /ready. The service is ready when the history
// store answers.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if _, _, err := h.historyDB.Get(c.Request.Context(), "readiness-probe"); err != nil {
		h.logger.Error("readiness check failed", logger.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Classify handles POST /api/v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	matches := h.classifier.Classify(c.Request.Context(), req.Item)
	c.JSON(http.StatusOK, ClassifyResponse{Item: req.Item, Matches: matches})
}

// ClassifyBatch handles POST /api/v1/classify/batch.
func (h *Handler) ClassifyBatch(c *gin.Context) {
	var req BatchClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results := h.classifier.ClassifyBatch(c.Request.Context(), req.Items)
	resp := BatchClassifyResponse{
		Results: make([]ClassifyResponse, len(results)),
		Total:   len(results),
	}
	for i, matches := range results {
		resp.Results[i] = ClassifyResponse{Item: req.Items[i], Matches: matches}
	}
	c.JSON(http.StatusOK, resp)
}

// GetTaxonomy handles GET /api/v1/taxonomy.
func (h *Handler) GetTaxonomy(c *gin.Context) {
	domains := h.classifier.Taxonomy()
	c.JSON(http.StatusOK, TaxonomyResponse{Domains: domains, Total: len(domains)})
}

// GetDomain handles GET /api/v1/taxonomy/:id.
func (h *Handler) GetDomain(c *gin.Context) {
	id := c.Param("id")
	for _, d := range h.classifier.Taxonomy() {
		if d.ID == id {
			c.JSON(http.StatusOK, d)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown domain id"})
}

// AnalyzeTrends handles POST /api/v1/trends/analyze. Items may be sent
// in the body; when omitted, the collector's retained window is analyzed.
func (h *Handler) AnalyzeTrends(c *gin.Context) {
	var req AnalyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	items := req.Items
	if len(items) == 0 {
		items = h.collector.Window()
	}

	analysis, err := h.aggregator.AnalyzeTrends(c.Request.Context(), items, h.historyDB)
	if err != nil {
		if errors.Is(err, trends.ErrInvalidInput) {
			badRequest(c, err)
			return
		}
		internalError(c, h.logger, "trend analysis failed", err)
		return
	}

	if len(analysis.TopicDetails) > 0 {
		if _, err := h.snapshots.Save(analysis); err != nil {
			h.logger.Warn("could not persist trend snapshot", logger.Error(err))
		}
	}
	c.JSON(http.StatusOK, analysis)
}

// CurrentTrends handles GET /api/v1/trends/current, serving the latest
// persisted analysis.
func (h *Handler) CurrentTrends(c *gin.Context) {
	analysis, err := h.snapshots.Latest()
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshots) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no trend analysis has been run yet"})
			return
		}
		internalError(c, h.logger, "could not load trend snapshot", err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// StartCollection handles POST /api/v1/collect.
func (h *Handler) StartCollection(c *gin.Context) {
	var req CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.collector.StartJob(c.Request.Context(), req.Keywords, req.Sources)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// GetCollectionJob handles GET /api/v1/collect/:id.
func (h *Handler) GetCollectionJob(c *gin.Context) {
	job, ok := h.collector.Job(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job id"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListCollectionJobs handles GET /api/v1/collect.
func (h *Handler) ListCollectionJobs(c *gin.Context) {
	jobs := h.collector.Jobs()
	c.JSON(http.StatusOK, JobsResponse{Jobs: jobs, Total: len(jobs)})
}

// GenerateArticle handles POST /api/v1/articles/generate. The topic must
// be trending in the latest analysis.
func (h *Handler) GenerateArticle(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	analysis, err := h.snapshots.Latest()
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshots) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no trend analysis has been run yet"})
			return
		}
		internalError(c, h.logger, "could not load trend snapshot", err)
		return
	}

	var trend *domain.TrendingTopic
	for i := range analysis.Trends {
		if analysis.Trends[i].TopicID == req.TopicID {
			trend = &analysis.Trends[i]
			break
		}
	}
	if trend == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic is not trending in the latest analysis"})
		return
	}

	article, err := h.generator.Generate(c.Request.Context(), *trend, analysis.TopicDetails[req.TopicID])
	if err != nil {
		internalError(c, h.logger, "article generation failed", err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// RecentArticles handles GET /api/v1/articles/recent.
func (h *Handler) RecentArticles(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			badRequest(c, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	articles, err := h.generator.Recent(limit)
	if err != nil {
		internalError(c, h.logger, "could not list articles", err)
		return
	}
	c.JSON(http.StatusOK, ArticlesResponse{Articles: articles, Total: len(articles)})
}

// GetUsage handles GET /api/v1/usage.
func (h *Handler) GetUsage(c *gin.Context) {
	c.JSON(http.StatusOK, h.usage.Report())
}
