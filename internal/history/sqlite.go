package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS trend_history (
	signature   TEXT PRIMARY KEY,
	total_freq  INTEGER NOT NULL DEFAULT 0,
	windows     INTEGER NOT NULL DEFAULT 0,
	prev_freq   INTEGER NOT NULL DEFAULT 0,
	occurrences INTEGER NOT NULL DEFAULT 0,
	updated_at  TIMESTAMP NOT NULL
);
`

// SQLiteStore is a sqlite-backed history store. The upsert statement is
// atomic per signature, so concurrent analysis runs cannot interleave a
// partial window update for the same cluster.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens (or creates) a sqlite history database at path and
// ensures the schema exists. Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent commits.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type historyRow struct {
	Signature   string    `db:"signature"`
	TotalFreq   int       `db:"total_freq"`
	Windows     int       `db:"windows"`
	PrevFreq    int       `db:"prev_freq"`
	Occurrences int       `db:"occurrences"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Get returns the snapshot for a signature.
func (s *SQLiteStore) Get(ctx context.Context, signature string) (Snapshot, bool, error) {
	var row historyRow
	err := s.db.GetContext(ctx, &row,
		`SELECT signature, total_freq, windows, prev_freq, occurrences, updated_at
		 FROM trend_history WHERE signature = ?`, signature)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("get history for %q: %w", signature, err)
	}

	snap := Snapshot{
		PrevFreq:    row.PrevFreq,
		Windows:     row.Windows,
		Occurrences: row.Occurrences,
	}
	if row.Windows > 0 {
		snap.Baseline = float64(row.TotalFreq) / float64(row.Windows)
	}
	return snap, true, nil
}

const upsertQuery = `
INSERT INTO trend_history (signature, total_freq, windows, prev_freq, occurrences, updated_at)
VALUES (?, ?, 1, ?, ?, ?)
ON CONFLICT(signature) DO UPDATE SET
	total_freq  = total_freq + excluded.total_freq,
	windows     = windows + 1,
	prev_freq   = excluded.prev_freq,
	occurrences = occurrences + excluded.occurrences,
	updated_at  = excluded.updated_at
`

// Upsert records one window observation for a signature.
func (s *SQLiteStore) Upsert(ctx context.Context, signature string, freq int, trended bool) error {
	occ := 0
	if trended {
		occ = 1
	}
	if _, err := s.db.ExecContext(ctx, upsertQuery, signature, freq, freq, occ, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert history for %q: %w", signature, err)
	}
	return nil
}

// UpsertBatch applies all entries in a single transaction.
func (s *SQLiteStore) UpsertBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	now := time.Now().UTC()
	for _, e := range entries {
		occ := 0
		if e.Trended {
			occ = 1
		}
		if _, err := tx.ExecContext(ctx, upsertQuery, e.Signature, e.Freq, e.Freq, occ, now); err != nil {
			return fmt.Errorf("upsert history for %q: %w", e.Signature, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history batch: %w", err)
	}
	return nil
}
