package trends

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/history"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/telemetry"
)

// Aggregator defaults.
const (
	DefaultSignificanceThreshold = 1.5
	DefaultNewTopicMultiplier    = 10.0
	DefaultEpsilon               = 1.0
)

// ErrInvalidInput signals a malformed analysis request, such as a nil
// history store.
var ErrInvalidInput = errors.New("invalid input")

// Config holds trend aggregator tunables. Zero values select defaults.
type Config struct {
	// SignificanceThreshold is the multiplier a cluster must strictly
	// exceed to be emitted as trending.
	SignificanceThreshold float64
	// NewTopicMultiplier is the capped multiplier assigned to signatures
	// with no recorded baseline, so brand-new topics surface without
	// producing +Inf.
	NewTopicMultiplier float64
	// Epsilon floors denominators in the multiplier and velocity ratios.
	Epsilon float64

	Clusterer ClustererConfig
}

func (c Config) withDefaults() Config {
	if c.SignificanceThreshold <= 0 {
		c.SignificanceThreshold = DefaultSignificanceThreshold
	}
	if c.NewTopicMultiplier <= 0 {
		c.NewTopicMultiplier = DefaultNewTopicMultiplier
	}
	if c.Epsilon <= 0 {
		c.Epsilon = DefaultEpsilon
	}
	return c
}

// Aggregator runs trend analysis over content batches: it clusters the
// batch, compares each cluster against its historical baseline, and
// emits the clusters whose frequency spiked.
type Aggregator struct {
	cfg       Config
	clusterer *Clusterer
	logger    logger.Logger
	telemetry *telemetry.Provider
}

// New creates a trend aggregator. The telemetry provider may be nil.
func New(log logger.Logger, cfg Config, tp *telemetry.Provider) *Aggregator {
	cfg = cfg.withDefaults()
	return &Aggregator{
		cfg:       cfg,
		clusterer: NewClusterer(cfg.Clusterer),
		logger:    log,
		telemetry: tp,
	}
}

// AnalyzeTrends analyzes one window of content items against the history
// store. An empty batch yields an empty analysis. History writes for the
// window are accumulated locally and committed in one batch at the end,
// so a failed run never leaves partial window state behind.
func (a *Aggregator) AnalyzeTrends(ctx context.Context, items []domain.ContentItem, store history.Store) (*domain.TrendAnalysis, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil history store", ErrInvalidInput)
	}

	start := time.Now()
	analysis := &domain.TrendAnalysis{
		Trends:       []domain.TrendingTopic{},
		TopicDetails: map[string]domain.TopicDetail{},
	}
	if len(items) == 0 {
		return analysis, nil
	}

	clusters := a.clusterer.Cluster(items)

	entries := make([]history.Entry, 0, len(clusters))
	for _, cluster := range clusters {
		snap, found, err := store.Get(ctx, cluster.Signature)
		if err != nil {
			return nil, fmt.Errorf("read history for %q: %w", cluster.Signature, err)
		}

		multiplier := a.multiplier(cluster.Count, snap, found)
		trended := multiplier > a.cfg.SignificanceThreshold

		if trended {
			analysis.Trends = append(analysis.Trends, domain.TrendingTopic{
				ID:          cluster.TopicID,
				Name:        cluster.Name,
				Keywords:    cluster.Keywords,
				Count:       cluster.Count,
				Multiplier:  multiplier,
				Velocity:    a.velocity(cluster.Count, snap),
				IsRecurrent: snap.Occurrences > 0,
				Occurrences: snap.Occurrences,
				TopicID:     cluster.TopicID,
			})
		}
		analysis.TopicDetails[cluster.TopicID] = domain.TopicDetail{
			Name:  cluster.Name,
			Count: cluster.Count,
			Words: cluster.Words,
		}

		entries = append(entries, history.Entry{
			Signature: cluster.Signature,
			Freq:      cluster.Count,
			Trended:   trended,
		})
	}

	sort.SliceStable(analysis.Trends, func(i, j int) bool {
		if analysis.Trends[i].Multiplier != analysis.Trends[j].Multiplier {
			return analysis.Trends[i].Multiplier > analysis.Trends[j].Multiplier
		}
		return analysis.Trends[i].Count > analysis.Trends[j].Count
	})

	if err := store.UpsertBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("commit trend history: %w", err)
	}

	if a.telemetry != nil {
		a.telemetry.RecordAnalysis(len(analysis.Trends), len(clusters), time.Since(start))
	}
	a.logger.Info("trend analysis complete",
		logger.Int("items", len(items)),
		logger.Int("clusters", len(clusters)),
		logger.Int("trends", len(analysis.Trends)),
	)
	return analysis, nil
}

// multiplier compares current frequency against the baseline. Signatures
// without history get the capped new-topic multiplier instead of an
// unbounded ratio.
func (a *Aggregator) multiplier(current int, snap history.Snapshot, found bool) float64 {
	if !found || snap.Windows == 0 {
		return a.cfg.NewTopicMultiplier
	}
	baseline := snap.Baseline
	if baseline < a.cfg.Epsilon {
		baseline = a.cfg.Epsilon
	}
	return float64(current) / baseline
}

// velocity is the growth rate against the previous window, clamped at -1
// so a topic that vanished reads as a full decline rather than -Inf.
func (a *Aggregator) velocity(current int, snap history.Snapshot) float64 {
	prev := float64(snap.PrevFreq)
	denom := prev
	if denom < a.cfg.Epsilon {
		denom = a.cfg.Epsilon
	}
	v := (float64(current) - prev) / denom
	if v < -1 {
		return -1
	}
	return v
}
