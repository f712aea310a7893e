package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/csv"
	"github.com/fwojciec/harvest/excel"
	"github.com/fwojciec/harvest/fs"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/google/uuid"
)

// DefaultSQLiteLedger is the ledger path used by the sqlite backend when
// --ledger is not set.
const DefaultSQLiteLedger = "crawl_progress.db"

// openTaskSource picks a task source by file extension.
func openTaskSource(path, sheet string) (harvest.TaskSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return excel.NewTaskSource(path, sheet), nil
	case ".csv":
		return csv.NewTaskSource(path), nil
	default:
		return nil, harvest.Errorf(harvest.EINVALID, "unsupported task list %q: want .xlsx or .csv", path)
	}
}

// openedLedger is a ledger with the run it belongs to and its cleanup.
type openedLedger struct {
	harvest.Ledger
	RunID string
	Path  string
	close func() error
}

func (l *openedLedger) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

// openLedger opens the ledger selected by flags.
func openLedger(ctx context.Context, flags LedgerFlags) (*openedLedger, error) {
	switch flags.LedgerBackend {
	case "sqlite":
		path := flags.Ledger
		if path == "" {
			path = DefaultSQLiteLedger
		}
		db := sqlite.NewDB(path)
		if err := db.Open(ctx); err != nil {
			return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "open ledger %s", path)
		}
		ledger, err := sqlite.OpenLedger(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &openedLedger{Ledger: ledger, RunID: ledger.RunID(), Path: path, close: db.Close}, nil
	default:
		path := flags.Ledger
		if path == "" {
			path = fs.DefaultLedgerFile
		}
		ledger, err := fs.OpenLedger(path)
		if err != nil {
			return nil, err
		}
		return &openedLedger{Ledger: ledger, RunID: uuid.NewString(), Path: path}, nil
	}
}
