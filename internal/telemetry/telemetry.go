// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the pulse service.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "pulse"

// Metrics holds all pulse Prometheus metrics.
type Metrics struct {
	// Classification metrics
	ItemsClassified        *prometheus.CounterVec
	DomainsMatched         *prometheus.CounterVec
	ClassificationDuration prometheus.Histogram
	KeywordMatchDuration   prometheus.Histogram

	// Trend analysis metrics
	AnalysesRun      prometheus.Counter
	TrendsEmitted    prometheus.Counter
	ClustersFormed   prometheus.Histogram
	AnalysisDuration prometheus.Histogram

	// Collection / fetcher metrics
	FetchRequests  *prometheus.CounterVec
	FetchFailures  *prometheus.CounterVec
	QuotaExhausted *prometheus.CounterVec
	ItemsCollected *prometheus.CounterVec

	// Article generation metrics
	ArticlesGenerated *prometheus.CounterVec
}

// Provider wraps the tracer and metrics handed to pulse components.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initClassificationMetrics(m)
	initTrendMetrics(m)
	initCollectionMetrics(m)
	initGenerationMetrics(m)
	return m
}

func initClassificationMetrics(m *Metrics) {
	m.ItemsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_items_classified_total",
		Help: "Total content items classified",
	}, []string{"source"})

	m.DomainsMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_domains_matched_total",
		Help: "Total domain matches emitted by the classifier",
	}, []string{"domain"})

	m.ClassificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_classification_duration_seconds",
		Help:    "Time to classify a single item",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	m.KeywordMatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_keyword_match_duration_seconds",
		Help:    "Time spent in keyword matching (Aho-Corasick)",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})
}

func initTrendMetrics(m *Metrics) {
	m.AnalysesRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_trend_analyses_total",
		Help: "Total trend analysis runs",
	})

	m.TrendsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_trends_emitted_total",
		Help: "Total trending topics emitted above the significance threshold",
	})

	m.ClustersFormed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_topic_clusters_per_batch",
		Help:    "Topic clusters formed per analyzed batch",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	m.AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_trend_analysis_duration_seconds",
		Help:    "Time for a full trend analysis run",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})
}

func initCollectionMetrics(m *Metrics) {
	m.FetchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_fetch_requests_total",
		Help: "Total upstream fetch requests",
	}, []string{"service"})

	m.FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_fetch_failures_total",
		Help: "Total failed upstream fetch requests",
	}, []string{"service"})

	m.QuotaExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_quota_exhausted_total",
		Help: "Requests denied because a service quota was exhausted",
	}, []string{"service"})

	m.ItemsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_items_collected_total",
		Help: "Content items collected from upstream sources",
	}, []string{"source"})
}

func initGenerationMetrics(m *Metrics) {
	m.ArticlesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_articles_generated_total",
		Help: "Articles generated per model (including the mock fallback)",
	}, []string{"model"})
}

// RecordClassification records metrics for a single classification.
func (p *Provider) RecordClassification(source string, matches int, duration time.Duration) {
	p.Metrics.ItemsClassified.WithLabelValues(source).Inc()
	p.Metrics.ClassificationDuration.Observe(duration.Seconds())
}

// RecordDomainMatch increments the per-domain match counter.
func (p *Provider) RecordDomainMatch(domainID string) {
	p.Metrics.DomainsMatched.WithLabelValues(domainID).Inc()
}

// RecordKeywordMatch records the duration of one keyword-engine pass.
func (p *Provider) RecordKeywordMatch(duration time.Duration) {
	p.Metrics.KeywordMatchDuration.Observe(duration.Seconds())
}

// RecordAnalysis records metrics for one trend-analysis run.
func (p *Provider) RecordAnalysis(trends, clusters int, duration time.Duration) {
	p.Metrics.AnalysesRun.Inc()
	p.Metrics.TrendsEmitted.Add(float64(trends))
	p.Metrics.ClustersFormed.Observe(float64(clusters))
	p.Metrics.AnalysisDuration.Observe(duration.Seconds())
}

// RecordFetch records an upstream fetch attempt.
func (p *Provider) RecordFetch(service string, err error) {
	p.Metrics.FetchRequests.WithLabelValues(service).Inc()
	if err != nil {
		p.Metrics.FetchFailures.WithLabelValues(service).Inc()
	}
}

// RecordQuotaExhausted records a request denied by quota enforcement.
func (p *Provider) RecordQuotaExhausted(service string) {
	p.Metrics.QuotaExhausted.WithLabelValues(service).Inc()
}

// RecordItemsCollected records items collected from an upstream source.
func (p *Provider) RecordItemsCollected(source string, count int) {
	p.Metrics.ItemsCollected.WithLabelValues(source).Add(float64(count))
}

// RecordArticleGenerated records one generated article.
func (p *Provider) RecordArticleGenerated(model string) {
	p.Metrics.ArticlesGenerated.WithLabelValues(model).Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
