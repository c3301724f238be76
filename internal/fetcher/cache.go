package fetcher

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/logger"
)

// FileCache stores fetch results on disk with a TTL, keyed by query, so
// repeated searches within the window do not spend upstream quota.
type FileCache struct {
	dir    string
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

type cacheEnvelope struct {
	FetchedAt time.Time            `json:"fetched_at"`
	Items     []domain.ContentItem `json:"items"`
}

// NewFileCache creates the cache directory if needed. A zero ttl
// disables caching entirely.
func NewFileCache(dir string, ttl time.Duration, log logger.Logger) (*FileCache, error) {
	if ttl > 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
		}
	}
	return &FileCache{dir: dir, ttl: ttl, logger: log, now: time.Now}, nil
}

// Get returns the cached items for a key if present and fresh.
func (c *FileCache) Get(key string) ([]domain.ContentItem, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("dropping corrupt cache entry", logger.String("key", key))
		_ = os.Remove(c.path(key))
		return nil, false
	}
	if c.now().Sub(env.FetchedAt) > c.ttl {
		return nil, false
	}
	return env.Items, true
}

// Put stores items for a key. Failures are logged and ignored; caching
// is an optimization, not a requirement.
func (c *FileCache) Put(key string, items []domain.ContentItem) {
	if c == nil || c.ttl <= 0 {
		return
	}

	data, err := json.Marshal(cacheEnvelope{FetchedAt: c.now().UTC(), Items: items})
	if err != nil {
		c.logger.Warn("could not encode cache entry", logger.Error(err))
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.logger.Warn("could not write cache entry", logger.Error(err))
	}
}

func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".json")
}
