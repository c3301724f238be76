// Package usage tracks per-service API consumption against monthly
// quotas. Counts are bucketed by calendar month and persisted to a JSON
// file so restarts do not reset a month's spend.
package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/telemetry"
)

// ErrQuotaExhausted signals that a service's monthly quota is spent.
var ErrQuotaExhausted = errors.New("monthly quota exhausted")

// Unlimited disables quota enforcement for a service.
const Unlimited = 0

const monthFormat = "2006-01"

// Tracker counts API calls per service per calendar month. It is safe
// for concurrent use. Persistence is best effort: a failed write logs a
// warning and keeps the in-memory counts authoritative.
type Tracker struct {
	mu        sync.Mutex
	path      string
	limits    map[string]int
	months    map[string]map[string]int
	logger    logger.Logger
	telemetry *telemetry.Provider

	// now is swappable in tests to cross month boundaries.
	now func() time.Time
}

// NewTracker creates a tracker persisting to path. limits maps service
// names to monthly caps; a missing or zero entry means unlimited. An
// existing state file is loaded; a missing or corrupt one starts fresh.
func NewTracker(path string, limits map[string]int, log logger.Logger, tp *telemetry.Provider) *Tracker {
	t := &Tracker{
		path:      path,
		limits:    limits,
		months:    make(map[string]map[string]int),
		logger:    log,
		telemetry: tp,
		now:       time.Now,
	}
	t.load()
	return t
}

// Track consumes one unit of a service's quota. It returns
// ErrQuotaExhausted, without consuming, when the month's cap is already
// reached.
func (t *Tracker) Track(service string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	month := t.monthKey()
	used := t.months[month][service]
	if limit := t.limits[service]; limit != Unlimited && used >= limit {
		if t.telemetry != nil {
			t.telemetry.RecordQuotaExhausted(service)
		}
		return fmt.Errorf("%w: %s used %d of %d this month", ErrQuotaExhausted, service, used, limit)
	}

	if t.months[month] == nil {
		t.months[month] = make(map[string]int)
	}
	t.months[month][service]++
	t.persistLocked()
	return nil
}

// MonthlyUsage returns the calls recorded for a service in the current
// month.
func (t *Tracker) MonthlyUsage(service string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.months[t.monthKey()][service]
}

// Remaining returns the calls left for a service this month, or -1 when
// the service is unlimited.
func (t *Tracker) Remaining(service string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	limit := t.limits[service]
	if limit == Unlimited {
		return -1
	}
	left := limit - t.months[t.monthKey()][service]
	if left < 0 {
		return 0
	}
	return left
}

// Report summarizes the current month for every limited service.
func (t *Tracker) Report() map[string]ServiceUsage {
	t.mu.Lock()
	defer t.mu.Unlock()

	month := t.monthKey()
	report := make(map[string]ServiceUsage, len(t.limits))
	for service, limit := range t.limits {
		report[service] = ServiceUsage{
			Used:  t.months[month][service],
			Limit: limit,
		}
	}
	for service, used := range t.months[month] {
		if _, ok := report[service]; !ok {
			report[service] = ServiceUsage{Used: used, Limit: Unlimited}
		}
	}
	return report
}

// ServiceUsage is one service's quota state for the current month.
type ServiceUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

func (t *Tracker) monthKey() string {
	return t.now().UTC().Format(monthFormat)
}

func (t *Tracker) load() {
	if t.path == "" {
		return
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warn("could not read usage state, starting fresh",
				logger.String("path", t.path), logger.Error(err))
		}
		return
	}
	var months map[string]map[string]int
	if err := json.Unmarshal(data, &months); err != nil {
		t.logger.Warn("corrupt usage state, starting fresh",
			logger.String("path", t.path), logger.Error(err))
		return
	}
	t.months = months
}

// persistLocked writes the state file via temp-and-rename. Failures are
// logged, not returned; quota decisions stay in memory.
func (t *Tracker) persistLocked() {
	if t.path == "" {
		return
	}
	data, err := json.MarshalIndent(t.months, "", "  ")
	if err != nil {
		t.logger.Warn("could not encode usage state", logger.Error(err))
		return
	}

	tmp := t.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		t.logger.Warn("could not create usage state dir", logger.Error(err))
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		t.logger.Warn("could not write usage state", logger.Error(err))
		return
	}
	if err := os.Rename(tmp, t.path); err != nil {
		t.logger.Warn("could not replace usage state", logger.Error(err))
	}
}
