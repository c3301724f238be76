package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturepulse/pulse/internal/classifier"
	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/taxonomy"
)

type stubSearcher struct {
	items []domain.ContentItem
	err   error
}

func (s *stubSearcher) Search(_ context.Context, _ []string) ([]domain.ContentItem, error) {
	return s.items, s.err
}

func newTestCollector(t *testing.T, sources map[string]Searcher, cfg Config) *Collector {
	t.Helper()
	cls := classifier.New(logger.NewNop(), taxonomy.Default(), classifier.Config{}, nil)
	return New(cls, sources, cfg, logger.NewNop())
}

func waitForJob(t *testing.T, c *Collector, id string) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		var ok bool
		job, ok = c.Job(id)
		return ok && (job.Status == StatusCompleted || job.Status == StatusFailed)
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestCollector_JobLifecycle(t *testing.T) {
	items := []domain.ContentItem{
		{ID: "n1", Title: "Jazz revival", Content: "bebop and jazz are back", Source: domain.SourceNews},
		{ID: "n2", Title: "Protest art", Content: "a civil rights retrospective", Source: domain.SourceNews},
	}
	c := newTestCollector(t, map[string]Searcher{"news": &stubSearcher{items: items}}, Config{})

	job, err := c.StartJob(context.Background(), []string{"jazz"}, []string{"news"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	done := waitForJob(t, c, job.ID)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 2, done.ItemsCollected)
	assert.Equal(t, 1.0, done.Progress)
	assert.Empty(t, done.Error)
	require.NotNil(t, done.CompletedAt)

	window := c.Window()
	require.Len(t, window, 2)
	assert.Equal(t, "n1", window[0].ID)

	classified := c.Classified()
	require.Len(t, classified, 2)
	assert.NotEmpty(t, classified[0].Matches, "jazz item should match the music domain")
}

func TestCollector_UnknownSource(t *testing.T) {
	c := newTestCollector(t, map[string]Searcher{"news": &stubSearcher{}}, Config{})

	_, err := c.StartJob(context.Background(), []string{"jazz"}, []string{"nope"})

	assert.ErrorContains(t, err, "unknown source")
}

func TestCollector_NoKeywords(t *testing.T) {
	c := newTestCollector(t, map[string]Searcher{"news": &stubSearcher{}}, Config{})

	_, err := c.StartJob(context.Background(), nil, nil)

	assert.ErrorContains(t, err, "at least one keyword")
}

func TestCollector_AllSourcesFail(t *testing.T) {
	c := newTestCollector(t, map[string]Searcher{
		"news":    &stubSearcher{err: errors.New("down")},
		"scholar": &stubSearcher{err: errors.New("also down")},
	}, Config{})

	job, err := c.StartJob(context.Background(), []string{"jazz"}, nil)
	require.NoError(t, err)
	// Empty sources selects every configured source.
	assert.Equal(t, []string{"news", "scholar"}, job.Sources)

	done := waitForJob(t, c, job.ID)
	assert.Equal(t, StatusFailed, done.Status)
	assert.Contains(t, done.Error, "down")
}

func TestCollector_PartialFailureStillCompletes(t *testing.T) {
	c := newTestCollector(t, map[string]Searcher{
		"news":    &stubSearcher{items: []domain.ContentItem{{ID: "n1", Content: "jazz bebop"}}},
		"scholar": &stubSearcher{err: errors.New("quota")},
	}, Config{})

	job, err := c.StartJob(context.Background(), []string{"jazz"}, nil)
	require.NoError(t, err)

	done := waitForJob(t, c, job.ID)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 1, done.ItemsCollected)
	assert.Contains(t, done.Error, "scholar")
}

func TestCollector_WindowIsBounded(t *testing.T) {
	items := make([]domain.ContentItem, 10)
	for i := range items {
		items[i] = domain.ContentItem{ID: fmt.Sprintf("n%d", i), Content: "jazz"}
	}
	c := newTestCollector(t, map[string]Searcher{"news": &stubSearcher{items: items}}, Config{WindowSize: 6})

	job, err := c.StartJob(context.Background(), []string{"jazz"}, nil)
	require.NoError(t, err)
	waitForJob(t, c, job.ID)

	window := c.Window()
	require.Len(t, window, 6)
	// Oldest items fell off the front.
	assert.Equal(t, "n4", window[0].ID)
	assert.Equal(t, "n9", window[5].ID)
}

func TestCollector_JobsNewestFirst(t *testing.T) {
	c := newTestCollector(t, map[string]Searcher{"news": &stubSearcher{}}, Config{})

	first, err := c.StartJob(context.Background(), []string{"a"}, nil)
	require.NoError(t, err)
	second, err := c.StartJob(context.Background(), []string{"b"}, nil)
	require.NoError(t, err)

	jobs := c.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)
}
