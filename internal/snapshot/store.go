// Package snapshot persists trend-analysis results as timestamped JSON
// files, so the latest analysis survives restarts and can be served
// without re-running the aggregator.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
)

// ErrNoSnapshots signals that no analysis has been saved yet.
var ErrNoSnapshots = errors.New("no trend snapshots")

const (
	filePrefix = "trends_"
	fileSuffix = ".json"
	// timeLayout sorts lexicographically, so Latest can pick by filename.
	timeLayout = "20060102T150405.000"
)

// Store writes and reads trend snapshots under a data directory.
type Store struct {
	dir    string
	logger logger.Logger
	now    func() time.Time
}

// NewStore creates the snapshot directory if needed.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: log, now: time.Now}, nil
}

// Save writes one analysis as trends_<timestamp>.json and returns the
// file path.
func (s *Store) Save(analysis *domain.TrendAnalysis) (string, error) {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	name := filePrefix + s.now().UTC().Format(timeLayout) + fileSuffix
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}

	s.logger.Debug("trend snapshot saved",
		logger.String("path", path),
		logger.Int("trends", len(analysis.Trends)),
	)
	return path, nil
}

// Latest returns the most recent saved analysis, or ErrNoSnapshots.
func (s *Store) Latest() (*domain.TrendAnalysis, error) {
	names, err := s.list()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoSnapshots
	}

	path := filepath.Join(s.dir, names[len(names)-1])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var analysis domain.TrendAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &analysis, nil
}

// Prune deletes all but the newest keep snapshots.
func (s *Store) Prune(keep int) error {
	if keep < 0 {
		keep = 0
	}
	names, err := s.list()
	if err != nil {
		return err
	}
	if len(names) <= keep {
		return nil
	}
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("prune snapshot %s: %w", name, err)
		}
	}
	return nil
}

// list returns snapshot filenames sorted oldest first.
func (s *Store) list() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
