package trends

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/history"
	"github.com/culturepulse/pulse/internal/logger"
)

func newTestAggregator(cfg Config) *Aggregator {
	return New(logger.NewNop(), cfg, nil)
}

// batch builds two items forming one cluster over exactly two terms, with
// the given total term occurrences. total must be at least 4 so each item
// contains both terms.
func batch(t *testing.T, term1, term2 string, total int) []domain.ContentItem {
	t.Helper()
	require.GreaterOrEqual(t, total, 4)

	words := make([]string, total)
	for i := range words {
		if i%2 == 0 {
			words[i] = term1
		} else {
			words[i] = term2
		}
	}
	half := total / 2
	return []domain.ContentItem{
		{ID: "a", Content: strings.Join(words[:half], " ")},
		{ID: "b", Content: strings.Join(words[half:], " ")},
	}
}

func TestAnalyzeTrends_NilStore(t *testing.T) {
	a := newTestAggregator(Config{})

	_, err := a.AnalyzeTrends(context.Background(), nil, nil)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeTrends_EmptyBatch(t *testing.T) {
	a := newTestAggregator(Config{})

	analysis, err := a.AnalyzeTrends(context.Background(), nil, history.NewMemoryStore())

	require.NoError(t, err)
	assert.Empty(t, analysis.Trends)
	assert.Empty(t, analysis.TopicDetails)
}

func TestAnalyzeTrends_BaselineMultiplier(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator(Config{})
	store := history.NewMemoryStore()

	// One recorded window with frequency 2 gives baseline 2.0.
	require.NoError(t, store.Upsert(ctx, "aave|vernacular", 2, false))

	analysis, err := a.AnalyzeTrends(ctx, batch(t, "aave", "vernacular", 10), store)

	require.NoError(t, err)
	require.Len(t, analysis.Trends, 1)
	trend := analysis.Trends[0]
	assert.Equal(t, 10, trend.Count)
	assert.InDelta(t, 5.0, trend.Multiplier, 1e-9)
	// (10 - 2) / 2
	assert.InDelta(t, 4.0, trend.Velocity, 1e-9)
	assert.False(t, trend.IsRecurrent)
}

func TestAnalyzeTrends_ThresholdIsStrict(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator(Config{})

	t.Run("exactly at threshold excluded", func(t *testing.T) {
		store := history.NewMemoryStore()
		require.NoError(t, store.Upsert(ctx, "bebop|jazz", 10, false))

		// 15 / 10 = 1.5, not strictly above the default threshold.
		analysis, err := a.AnalyzeTrends(ctx, batch(t, "jazz", "bebop", 15), store)

		require.NoError(t, err)
		assert.Empty(t, analysis.Trends)
		// The cluster still appears as a discovered topic.
		assert.Len(t, analysis.TopicDetails, 1)
	})

	t.Run("above threshold included", func(t *testing.T) {
		store := history.NewMemoryStore()
		require.NoError(t, store.Upsert(ctx, "bebop|jazz", 10, false))

		analysis, err := a.AnalyzeTrends(ctx, batch(t, "jazz", "bebop", 16), store)

		require.NoError(t, err)
		require.Len(t, analysis.Trends, 1)
		assert.InDelta(t, 1.6, analysis.Trends[0].Multiplier, 1e-9)
	})
}

func TestAnalyzeTrends_NewTopicMultiplierIsCapped(t *testing.T) {
	a := newTestAggregator(Config{})

	analysis, err := a.AnalyzeTrends(context.Background(), batch(t, "jazz", "bebop", 8), history.NewMemoryStore())

	require.NoError(t, err)
	require.Len(t, analysis.Trends, 1)
	trend := analysis.Trends[0]
	assert.Equal(t, DefaultNewTopicMultiplier, trend.Multiplier)
	assert.False(t, trend.IsRecurrent)
	assert.Zero(t, trend.Occurrences)
}

func TestAnalyzeTrends_RecurrenceAcrossWindows(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator(Config{})
	store := history.NewMemoryStore()

	first, err := a.AnalyzeTrends(ctx, batch(t, "aave", "vernacular", 4), store)
	require.NoError(t, err)
	require.Len(t, first.Trends, 1)
	assert.False(t, first.Trends[0].IsRecurrent)
	assert.Zero(t, first.Trends[0].Occurrences)

	// Baseline is now 4.0; a count of 16 trends again at multiplier 4.
	second, err := a.AnalyzeTrends(ctx, batch(t, "aave", "vernacular", 16), store)
	require.NoError(t, err)
	require.Len(t, second.Trends, 1)
	trend := second.Trends[0]
	assert.True(t, trend.IsRecurrent)
	assert.Equal(t, 1, trend.Occurrences)
	assert.InDelta(t, 4.0, trend.Multiplier, 1e-9)
	// (16 - 4) / 4
	assert.InDelta(t, 3.0, trend.Velocity, 1e-9)
}

func TestAnalyzeTrends_RankedByMultiplier(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator(Config{})
	store := history.NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, "bebop|jazz", 2, false))
	require.NoError(t, store.Upsert(ctx, "march|protest", 2, false))

	items := append(
		batch(t, "jazz", "bebop", 8),      // multiplier 4
		batch(t, "protest", "march", 16)..., // multiplier 8
	)

	analysis, err := a.AnalyzeTrends(ctx, items, store)

	require.NoError(t, err)
	require.Len(t, analysis.Trends, 2)
	assert.Equal(t, "march|protest", sortedSignature(analysis.Trends[0]))
	assert.Equal(t, "bebop|jazz", sortedSignature(analysis.Trends[1]))
	assert.Greater(t, analysis.Trends[0].Multiplier, analysis.Trends[1].Multiplier)
}

func TestAnalyzeTrends_CommitsHistoryForAllClusters(t *testing.T) {
	ctx := context.Background()
	a := newTestAggregator(Config{})
	store := history.NewMemoryStore()

	// 15 / 10 = 1.5 is not emitted, but the window is still recorded.
	require.NoError(t, store.Upsert(ctx, "bebop|jazz", 10, false))
	_, err := a.AnalyzeTrends(ctx, batch(t, "jazz", "bebop", 15), store)
	require.NoError(t, err)

	snap, found, err := store.Get(ctx, "bebop|jazz")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, snap.Windows)
	assert.Equal(t, 15, snap.PrevFreq)
	assert.Zero(t, snap.Occurrences)
}

func TestAnalyzeTrends_SingletonItemsExcluded(t *testing.T) {
	a := newTestAggregator(Config{})

	analysis, err := a.AnalyzeTrends(context.Background(), []domain.ContentItem{
		{ID: "solo", Content: "quilting heritage patterns"},
	}, history.NewMemoryStore())

	require.NoError(t, err)
	assert.Empty(t, analysis.Trends)
	assert.Empty(t, analysis.TopicDetails)
}

// sortedSignature rebuilds the history signature from a trend's keywords.
func sortedSignature(trend domain.TrendingTopic) string {
	kws := append([]string(nil), trend.Keywords...)
	sort.Strings(kws)
	return strings.Join(kws, "|")
}
