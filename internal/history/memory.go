package history

import (
	"context"
	"sync"
)

type record struct {
	totalFreq   int
	windows     int
	prevFreq    int
	occurrences int
}

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

// Get returns the snapshot for a signature.
func (s *MemoryStore) Get(ctx context.Context, signature string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[signature]
	if !ok {
		return Snapshot{}, false, nil
	}
	return r.snapshot(), true, nil
}

// Upsert records one window observation for a signature.
func (s *MemoryStore) Upsert(ctx context.Context, signature string, freq int, trended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(signature, freq, trended)
	return nil
}

// UpsertBatch applies all entries under a single lock acquisition.
func (s *MemoryStore) UpsertBatch(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.upsertLocked(e.Signature, e.Freq, e.Trended)
	}
	return nil
}

func (s *MemoryStore) upsertLocked(signature string, freq int, trended bool) {
	r, ok := s.records[signature]
	if !ok {
		r = &record{}
		s.records[signature] = r
	}
	r.totalFreq += freq
	r.windows++
	r.prevFreq = freq
	if trended {
		r.occurrences++
	}
}

func (r *record) snapshot() Snapshot {
	s := Snapshot{
		PrevFreq:    r.prevFreq,
		Windows:     r.windows,
		Occurrences: r.occurrences,
	}
	if r.windows > 0 {
		s.Baseline = float64(r.totalFreq) / float64(r.windows)
	}
	return s
}
