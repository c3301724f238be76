// Package scheduler runs the periodic collect-and-analyze loop: on each
// tick it starts a collection job across all sources, waits for it to
// finish, analyzes the retained window, and persists a trend snapshot.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/culturepulse/pulse/internal/collector"
	"github.com/culturepulse/pulse/internal/history"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/snapshot"
	"github.com/culturepulse/pulse/internal/trends"
)

const (
	defaultInterval   = time.Hour
	defaultJobTimeout = 5 * time.Minute
	jobPollInterval   = 250 * time.Millisecond
)

// ErrAlreadyRunning is returned by Start when the loop is active.
var ErrAlreadyRunning = errors.New("scheduler already running")

// Config holds scheduler settings.
type Config struct {
	Interval time.Duration
	// JobTimeout bounds how long one tick waits for its collection job.
	JobTimeout time.Duration
	Keywords   []string
	Sources    []string
	// SnapshotsKept is passed to Prune after each saved analysis.
	SnapshotsKept int
}

// Scheduler drives periodic collection and trend analysis.
type Scheduler struct {
	cfg        Config
	collector  *collector.Collector
	aggregator *trends.Aggregator
	historyDB  history.Store
	snapshots  *snapshot.Store
	logger     logger.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates a scheduler. Zero config values select defaults.
func New(cfg Config, coll *collector.Collector, agg *trends.Aggregator, store history.Store, snaps *snapshot.Store, log logger.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}

	return &Scheduler{
		cfg:        cfg,
		collector:  coll,
		aggregator: agg,
		historyDB:  store,
		snapshots:  snaps,
		logger:     log,
	}
}

// Start launches the loop. The first cycle runs after one interval.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop()
	s.logger.Info("scheduler started",
		logger.Duration("interval", s.cfg.Interval),
		logger.Strings("keywords", s.cfg.Keywords),
	)
	return nil
}

// Stop halts the loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.RunCycle(context.Background())
		}
	}
}

// RunCycle executes one collect-and-analyze cycle. Failures are logged;
// the next tick retries from scratch.
func (s *Scheduler) RunCycle(ctx context.Context) {
	job, err := s.collector.StartJob(ctx, s.cfg.Keywords, s.cfg.Sources)
	if err != nil {
		s.logger.Error("scheduled collection failed to start", logger.Error(err))
		return
	}

	final, ok := s.waitForJob(ctx, job.ID)
	if !ok {
		s.logger.Error("scheduled collection did not finish in time",
			logger.String("job_id", job.ID))
		return
	}
	if final.Status == collector.StatusFailed {
		s.logger.Error("scheduled collection failed",
			logger.String("job_id", job.ID),
			logger.String("error", final.Error))
		return
	}

	analysis, err := s.aggregator.AnalyzeTrends(ctx, s.collector.Window(), s.historyDB)
	if err != nil {
		s.logger.Error("scheduled trend analysis failed", logger.Error(err))
		return
	}

	if len(analysis.TopicDetails) > 0 {
		if _, err := s.snapshots.Save(analysis); err != nil {
			s.logger.Error("could not persist scheduled snapshot", logger.Error(err))
			return
		}
		if s.cfg.SnapshotsKept > 0 {
			if err := s.snapshots.Prune(s.cfg.SnapshotsKept); err != nil {
				s.logger.Warn("snapshot prune failed", logger.Error(err))
			}
		}
	}

	s.logger.Info("scheduled cycle complete",
		logger.Int("items_collected", final.ItemsCollected),
		logger.Int("trends", len(analysis.Trends)),
	)
}

func (s *Scheduler) waitForJob(ctx context.Context, id string) (collector.Job, bool) {
	deadline := time.NewTimer(s.cfg.JobTimeout)
	defer deadline.Stop()
	poll := time.NewTicker(jobPollInterval)
	defer poll.Stop()

	for {
		if job, ok := s.collector.Job(id); ok {
			if job.Status == collector.StatusCompleted || job.Status == collector.StatusFailed {
				return job, true
			}
		}
		select {
		case <-ctx.Done():
			return collector.Job{}, false
		case <-deadline.C:
			return collector.Job{}, false
		case <-poll.C:
		}
	}
}
