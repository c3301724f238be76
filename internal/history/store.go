// Package history defines the baseline/history store the trend aggregator
// compares against. The store is externally owned state: the aggregator
// reads snapshots during a run and commits all writes in one batch at the
// end, so concurrent analyses never interleave partial window updates.
package history

import "context"

// Snapshot is the stored history for one cluster signature.
type Snapshot struct {
	// Baseline is the mean frequency across all recorded windows.
	Baseline float64
	// PrevFreq is the frequency recorded in the most recent window.
	PrevFreq int
	// Windows is the number of windows recorded for this signature.
	Windows int
	// Occurrences is the number of windows in which the signature trended.
	Occurrences int
}

// Entry is one pending history write.
type Entry struct {
	Signature string
	Freq      int
	Trended   bool
}

// Store is the read/write contract for trend history. Implementations
// must make Upsert atomic per signature.
type Store interface {
	// Get returns the snapshot for a signature. The second return value
	// is false when the signature has never been recorded.
	Get(ctx context.Context, signature string) (Snapshot, bool, error)
	// Upsert records a window observation: it folds freq into the
	// baseline, sets the previous-window frequency, and increments the
	// trend occurrence count when trended is set.
	Upsert(ctx context.Context, signature string, freq int, trended bool) error
	// UpsertBatch applies a set of window observations atomically.
	UpsertBatch(ctx context.Context, entries []Entry) error
}
