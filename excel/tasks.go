// Package excel reads task lists from .xlsx workbooks.
package excel

import (
	"context"
	"errors"
	"os"

	"github.com/fwojciec/harvest"
	"github.com/xuri/excelize/v2"
)

// Ensure TaskSource implements harvest.TaskSource at compile time.
var _ harvest.TaskSource = (*TaskSource)(nil)

// TaskSource reads tasks from one sheet of a workbook. The first row of
// the sheet is the header.
type TaskSource struct {
	Path string
	// Sheet names the sheet to read. Empty means the first sheet.
	Sheet string
}

// NewTaskSource creates a TaskSource for the workbook at path.
func NewTaskSource(path, sheet string) *TaskSource {
	return &TaskSource{Path: path, Sheet: sheet}
}

// LoadTasks opens the workbook and parses the sheet's rows.
func (s *TaskSource) LoadTasks(ctx context.Context) (*harvest.TaskTable, error) {
	f, err := excelize.OpenFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, harvest.WrapError(harvest.ENOTFOUND, err, "task list %s not found", s.Path)
	} else if err != nil {
		return nil, harvest.WrapError(harvest.EINVALID, err, "open workbook %s", s.Path)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, harvest.Errorf(harvest.EINVALID, "workbook %s has no sheets", s.Path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, harvest.WrapError(harvest.EINVALID, err, "read sheet %q of %s", sheet, s.Path)
	}
	return harvest.ParseTaskRows(rows)
}
