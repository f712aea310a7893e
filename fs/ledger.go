package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/harvest"
)

// DefaultLedgerFile is the ledger file name used when none is configured.
const DefaultLedgerFile = "crawl_progress.json"

// Ensure Ledger implements harvest.Ledger at compile time.
var _ harvest.Ledger = (*Ledger)(nil)

// Ledger is a JSON array of completed URLs. Every commit rewrites the whole
// file through a temporary file and a rename, so readers see either the old
// or the new array.
type Ledger struct {
	path string

	mu   sync.Mutex
	urls []string
	set  map[string]struct{}
}

// OpenLedger loads the ledger at path. A missing file is an empty ledger;
// a file that is not a JSON array of strings returns EINVALID rather than
// starting over.
func OpenLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, set: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	} else if err != nil {
		return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "read ledger %s", path)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, harvest.WrapError(harvest.EINVALID, err, "ledger %s is not a JSON array of URLs", path)
	}
	for _, u := range urls {
		if _, ok := l.set[u]; ok {
			continue
		}
		l.set[u] = struct{}{}
		l.urls = append(l.urls, u)
	}
	return l, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Contains reports whether url was committed.
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
	return len(l.urls)
}

// URLs returns the committed URLs in commit order.
func (l *Ledger) URLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}

// Commit adds url and rewrites the file. The in-memory set only changes
// once the new file is in place.
func (l *Ledger) Commit(ctx context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.set[url]; ok {
		return nil
	}
	urls := append(append([]string(nil), l.urls...), url)
	if err := l.write(urls); err != nil {
		return err
	}
	l.urls = urls
	l.set[url] = struct{}{}
	return nil
}

func (l *Ledger) write(urls []string) error {
	data, err := json.Marshal(urls)
	if err != nil {
		return harvest.WrapError(harvest.EINTERNAL, err, "encode ledger")
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return harvest.WrapError(harvest.EFILESYSTEM, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return harvest.WrapError(harvest.EFILESYSTEM, err, "create temp ledger")
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, l.path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return harvest.WrapError(harvest.EFILESYSTEM, err, "write ledger %s", l.path)
	}
	return nil
}
