// Package collector runs asynchronous content-collection jobs: it
// fetches items from the configured sources, classifies them with a
// worker pool, and keeps a bounded window of recent items for trend
// analysis.
package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/culturepulse/pulse/internal/classifier"
	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
)

// Job lifecycle states.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	defaultWindowSize  = 500
	defaultConcurrency = 8
)

// Job is the observable state of one collection run.
type Job struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Keywords       []string   `json:"keywords"`
	Sources        []string   `json:"sources"`
	Progress       float64    `json:"progress"`
	ItemsCollected int        `json:"items_collected"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ClassifiedItem pairs a collected item with its domain matches.
type ClassifiedItem struct {
	Item    domain.ContentItem   `json:"item"`
	Matches []domain.DomainMatch `json:"matches"`
}

// Searcher is the fetcher contract the collector consumes.
type Searcher interface {
	Search(ctx context.Context, keywords []string) ([]domain.ContentItem, error)
}

// Config holds collector tunables.
type Config struct {
	// WindowSize bounds the retained item window; oldest items fall off.
	WindowSize int
	// Concurrency is the classification worker-pool size.
	Concurrency int
}

// Collector owns jobs and the retained content window. All exported
// methods are safe for concurrent use.
type Collector struct {
	classifier  *classifier.Classifier
	sources     map[string]Searcher
	windowSize  int
	concurrency int
	logger      logger.Logger

	mu     sync.Mutex
	jobs   map[string]*Job
	order  []string
	window []ClassifiedItem
}

// New creates a collector over the given named sources.
func New(cls *classifier.Classifier, sources map[string]Searcher, cfg Config, log logger.Logger) *Collector {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	return &Collector{
		classifier:  cls,
		sources:     sources,
		windowSize:  cfg.WindowSize,
		concurrency: cfg.Concurrency,
		logger:      log,
		jobs:        make(map[string]*Job),
	}
}

// StartJob registers a collection job and runs it in the background.
// Unknown source names fail immediately; an empty sources list selects
// every configured source.
func (c *Collector) StartJob(ctx context.Context, keywords, sources []string) (Job, error) {
	if len(keywords) == 0 {
		return Job{}, fmt.Errorf("collection job needs at least one keyword")
	}
	if len(sources) == 0 {
		for name := range c.sources {
			sources = append(sources, name)
		}
		sort.Strings(sources)
	}
	for _, name := range sources {
		if _, ok := c.sources[name]; !ok {
			return Job{}, fmt.Errorf("unknown source %q", name)
		}
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Keywords:  keywords,
		Sources:   sources,
		StartedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	c.jobs[job.ID] = job
	c.order = append(c.order, job.ID)
	snapshot := *job
	c.mu.Unlock()

	// The job outlives the request that started it.
	go c.run(context.WithoutCancel(ctx), job.ID, keywords, sources)

	return snapshot, nil
}

// Job returns a snapshot of one job.
func (c *Collector) Job(id string) (Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns snapshots of all jobs, newest first.
func (c *Collector) Jobs() []Job {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Job, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		out = append(out, *c.jobs[c.order[i]])
	}
	return out
}

// Window returns the retained items, oldest first.
func (c *Collector) Window() []domain.ContentItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.ContentItem, len(c.window))
	for i, ci := range c.window {
		items[i] = ci.Item
	}
	return items
}

// Classified returns the retained items with their matches, oldest first.
func (c *Collector) Classified() []ClassifiedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ClassifiedItem(nil), c.window...)
}

func (c *Collector) run(ctx context.Context, jobID string, keywords, sources []string) {
	c.setStatus(jobID, StatusInProgress, 0)

	var collected []domain.ContentItem
	var failures []string
	for i, name := range sources {
		items, err := c.sources[name].Search(ctx, keywords)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			c.logger.Warn("source fetch failed",
				logger.String("job_id", jobID),
				logger.String("source", name),
				logger.Error(err),
			)
		} else {
			collected = append(collected, items...)
		}
		// Fetching is the first half of the job, classification the rest.
		c.setStatus(jobID, StatusInProgress, 0.5*float64(i+1)/float64(len(sources)))
	}

	if len(collected) == 0 && len(failures) > 0 {
		c.finish(jobID, StatusFailed, 0, strings.Join(failures, "; "))
		return
	}

	classified := c.classifyPool(ctx, collected)
	c.retain(classified)

	c.logger.Info("collection job complete",
		logger.String("job_id", jobID),
		logger.Int("items", len(collected)),
		logger.Int("source_failures", len(failures)),
	)
	c.finish(jobID, StatusCompleted, len(collected), strings.Join(failures, "; "))
}

// classifyPool classifies items with a bounded worker pool, preserving
// input order.
func (c *Collector) classifyPool(ctx context.Context, items []domain.ContentItem) []ClassifiedItem {
	if len(items) == 0 {
		return nil
	}

	type task struct{ index int }
	results := make([]ClassifiedItem, len(items))

	jobs := make(chan task, len(items))
	var wg sync.WaitGroup
	for w := 0; w < c.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				item := items[tk.index]
				results[tk.index] = ClassifiedItem{
					Item:    item,
					Matches: c.classifier.Classify(ctx, item),
				}
			}
		}()
	}
	for i := range items {
		jobs <- task{index: i}
	}
	close(jobs)
	wg.Wait()

	return results
}

// retain appends items to the window, dropping the oldest overflow.
func (c *Collector) retain(items []ClassifiedItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.window = append(c.window, items...)
	if over := len(c.window) - c.windowSize; over > 0 {
		c.window = append([]ClassifiedItem(nil), c.window[over:]...)
	}
}

func (c *Collector) setStatus(jobID, status string, progress float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if job, ok := c.jobs[jobID]; ok {
		job.Status = status
		job.Progress = progress
	}
}

func (c *Collector) finish(jobID, status string, items int, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.jobs[jobID]
	if !ok {
		return
	}
	now := time.Now().UTC()
	job.Status = status
	job.Progress = 1.0
	job.ItemsCollected = items
	job.Error = errMsg
	job.CompletedAt = &now
}
