// Package csv reads task lists from comma-separated files.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"strings"

	"github.com/fwojciec/harvest"
)

// utf8BOM prefixes CSV files exported by spreadsheet programs.
const utf8BOM = "\ufeff"

// Ensure TaskSource implements harvest.TaskSource at compile time.
var _ harvest.TaskSource = (*TaskSource)(nil)

// TaskSource reads tasks from a CSV file whose first record is the header.
type TaskSource struct {
	Path string
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// NewTaskSource creates a TaskSource for the file at path.
func NewTaskSource(path string) *TaskSource {
	return &TaskSource{Path: path}
}

// LoadTasks reads every record and parses the rows.
func (s *TaskSource) LoadTasks(ctx context.Context) (*harvest.TaskTable, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, harvest.WrapError(harvest.ENOTFOUND, err, "task list %s not found", s.Path)
	} else if err != nil {
		return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "open %s", s.Path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if s.Comma != 0 {
		r.Comma = s.Comma
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, harvest.WrapError(harvest.EINVALID, err, "parse %s", s.Path)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return harvest.ParseTaskRows(rows)
}
