// Package generator turns trending topics into short journalistic
// articles via a generative-text API, with a deterministic mock fallback
// when no API key is configured or the monthly quota is spent.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/telemetry"
	"github.com/culturepulse/pulse/internal/usage"
)

// ServiceAnthropic is the usage-tracker key for the text API.
const ServiceAnthropic = "anthropic"

// MockModel labels articles produced by the fallback writer.
const MockModel = "mock"

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
)

// Config holds generator settings.
type Config struct {
	// APIKey enables the real text API; empty selects the mock writer.
	APIKey    string
	Model     string
	MaxTokens int
	// DataDir is where generated articles are persisted.
	DataDir string
}

// textClient is the minimal surface the generator needs from the API,
// kept narrow so tests can substitute a stub.
type textClient interface {
	generate(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

type anthropicClient struct {
	client anthropic.Client
}

func (a *anthropicClient) generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages API: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("messages API returned no text content")
	}
	return text.String(), nil
}

// Generator writes articles about trending topics and persists them.
type Generator struct {
	llm       textClient
	model     string
	maxTokens int
	store     *ArticleStore
	usage     *usage.Tracker
	logger    logger.Logger
	telemetry *telemetry.Provider
}

// New creates a generator. tracker and tp may be nil.
func New(cfg Config, tracker *usage.Tracker, log logger.Logger, tp *telemetry.Provider) (*Generator, error) {
	store, err := NewArticleStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		store:     store,
		usage:     tracker,
		logger:    log,
		telemetry: tp,
	}
	if g.model == "" {
		g.model = defaultModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if cfg.APIKey != "" {
		g.llm = &anthropicClient{client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey))}
	}
	return g, nil
}

// Generate writes one article for a trend and persists it. API problems
// degrade to the mock writer rather than failing the request; only a
// storage failure is an error.
func (g *Generator) Generate(ctx context.Context, trend domain.TrendingTopic, detail domain.TopicDetail) (domain.GeneratedArticle, error) {
	prompt := buildPrompt(trend, detail)

	content, model := g.mockArticle(trend, detail), MockModel
	switch {
	case g.llm == nil:
		g.logger.Debug("no API key configured, using mock writer")
	case g.quotaSpent():
		g.logger.Warn("text API quota exhausted, using mock writer")
	default:
		if generated, err := g.llm.generate(ctx, g.model, prompt, g.maxTokens); err != nil {
			g.logger.Warn("text API failed, using mock writer", logger.Error(err))
		} else {
			content, model = generated, g.model
		}
	}

	article := domain.GeneratedArticle{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("%s Is Having a Moment", trend.Name),
		Content:   content,
		Model:     model,
		Trend:     trend,
		Timestamp: time.Now().UTC(),
	}
	if err := g.store.Save(article); err != nil {
		return domain.GeneratedArticle{}, err
	}

	if g.telemetry != nil {
		g.telemetry.RecordArticleGenerated(model)
	}
	g.logger.Info("article generated",
		logger.String("article_id", article.ID),
		logger.String("model", model),
		logger.String("trend", trend.Name),
	)
	return article, nil
}

// Recent returns the newest n persisted articles.
func (g *Generator) Recent(n int) ([]domain.GeneratedArticle, error) {
	return g.store.Recent(n)
}

func (g *Generator) quotaSpent() bool {
	if g.usage == nil {
		return false
	}
	return g.usage.Track(ServiceAnthropic) != nil
}

func buildPrompt(trend domain.TrendingTopic, detail domain.TopicDetail) string {
	var terms []string
	for i, w := range detail.Words {
		if i >= 5 {
			break
		}
		terms = append(terms, fmt.Sprintf("%s (%.0f%%)", w.Word, w.Weight*100))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a culture journalist covering emerging cultural trends.\n\n")
	fmt.Fprintf(&b, "Write a short news article (3-4 paragraphs) about the rising topic %q.\n", trend.Name)
	fmt.Fprintf(&b, "Key terms driving the trend: %s.\n", strings.Join(trend.Keywords, ", "))
	fmt.Fprintf(&b, "It appeared %d times in the current window, %.1fx its usual level", trend.Count, trend.Multiplier)
	if trend.IsRecurrent {
		fmt.Fprintf(&b, ", and has trended %d times before", trend.Occurrences)
	}
	b.WriteString(".\n")
	if len(terms) > 0 {
		fmt.Fprintf(&b, "Weighted vocabulary: %s.\n", strings.Join(terms, ", "))
	}
	b.WriteString("\nUse a neutral, informative tone. Do not invent quotes or named sources.")
	return b.String()
}

// mockArticle is the deterministic fallback writer.
func (g *Generator) mockArticle(trend domain.TrendingTopic, detail domain.TopicDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is drawing unusual attention this week, appearing %d times across tracked sources, %.1f times its typical level.\n\n",
		trend.Name, trend.Count, trend.Multiplier)
	if len(trend.Keywords) > 0 {
		fmt.Fprintf(&b, "The conversation centers on %s.\n\n", strings.Join(trend.Keywords, ", "))
	}
	if trend.IsRecurrent {
		fmt.Fprintf(&b, "This is not the first surge: the topic has trended %d times before, suggesting a durable current rather than a passing spike.\n", trend.Occurrences)
	} else {
		b.WriteString("This is the first time the topic has crossed the significance threshold, which often marks the start of a broader conversation.\n")
	}
	return b.String()
}
