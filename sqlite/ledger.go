package sqlite

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ harvest.Ledger = (*Ledger)(nil)

// Ledger implements harvest.Ledger on the completed table. Each OpenLedger
// call starts a new run, and every commit records the run that made it.
type Ledger struct {
	db    *DB
	runID string

	mu  sync.Mutex
	set map[string]struct{}
}

// OpenLedger registers a new run and loads the completed URLs.
func OpenLedger(ctx context.Context, db *DB) (*Ledger, error) {
	l := &Ledger{
		db:    db,
		runID: uuid.New().String(),
		set:   make(map[string]struct{}),
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		l.runID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "register run")
	}

	rows, err := db.QueryContext(ctx, `SELECT url FROM completed`)
	if err != nil {
		return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "load completed URLs")
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "scan completed URL")
		}
		l.set[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "load completed URLs")
	}
	return l, nil
}

// RunID identifies the run that opened the ledger.
func (l *Ledger) RunID() string {
	return l.runID
}

// Contains reports whether url was committed in any run.
func (l *Ledger) Contains(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.set[url]
	return ok
}

// Len returns the number of committed URLs.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.set)
}

// Commit records url in a single statement. A URL committed by an earlier
// run keeps its original run and timestamp.
func (l *Ledger) Commit(ctx context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO completed (url, run_id, committed_at)
		VALUES (?, ?, ?)
	`, url, l.runID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return harvest.WrapError(harvest.EFILESYSTEM, err, "commit %s", url)
	}
	l.set[url] = struct{}{}
	return nil
}

// RunCount returns how many URLs the given run committed.
func (l *Ledger) RunCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completed WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count run %s: %w", runID, err)
	}
	return n, nil
}
