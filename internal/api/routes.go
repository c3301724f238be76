package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metricsHandler serves
// Prometheus metrics and may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, metricsHandler http.Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		classify := v1.Group("/classify")
		{
			classify.POST("", handler.Classify)            // POST /api/v1/classify
			classify.POST("/batch", handler.ClassifyBatch) // POST /api/v1/classify/batch
		}

		taxonomyGroup := v1.Group("/taxonomy")
		{
			taxonomyGroup.GET("", handler.GetTaxonomy)    // GET /api/v1/taxonomy
			taxonomyGroup.GET("/:id", handler.GetDomain) // GET /api/v1/taxonomy/:id
		}

		trendsGroup := v1.Group("/trends")
		{
			trendsGroup.POST("/analyze", handler.AnalyzeTrends) // POST /api/v1/trends/analyze
			trendsGroup.GET("/current", handler.CurrentTrends)  // GET /api/v1/trends/current
		}

		collect := v1.Group("/collect")
		{
			collect.POST("", handler.StartCollection)     // POST /api/v1/collect
			collect.GET("", handler.ListCollectionJobs)   // GET /api/v1/collect
			collect.GET("/:id", handler.GetCollectionJob) // GET /api/v1/collect/:id
		}

		articles := v1.Group("/articles")
		{
			articles.POST("/generate", handler.GenerateArticle) // POST /api/v1/articles/generate
			articles.GET("/recent", handler.RecentArticles)     // GET /api/v1/articles/recent
		}

		v1.GET("/usage", handler.GetUsage) // GET /api/v1/usage
	}
}
