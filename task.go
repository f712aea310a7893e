package harvest

import (
	"context"
	"strings"
)

// Task is a single article to harvest. URL is its identity.
type Task struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Validate returns an error if the task cannot be processed.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return Errorf(EINVALID, "task title required")
	}
	if strings.TrimSpace(t.URL) == "" {
		return Errorf(EINVALID, "task url required")
	}
	if !strings.HasPrefix(t.URL, "http") {
		return Errorf(EINVALID, "task url %q must start with http", t.URL)
	}
	return nil
}

// TitleColumns are the header names recognized as the title column,
// in order of preference.
var TitleColumns = []string{"标题", "文章标题", "title", "Title", "字段1_文本_文本"}

// URLColumns are the header names recognized as the URL column,
// in order of preference.
var URLColumns = []string{"网址", "链接", "url", "URL", "link", "Link", "字段1_链接_链接"}

// SkippedRow records a task-list row that did not produce a task.
type SkippedRow struct {
	// Row is the 1-based row number in the source, header included.
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// TaskTable is the result of reading a task list.
type TaskTable struct {
	TitleColumn string
	URLColumn   string
	Tasks       []Task
	Skipped     []SkippedRow
}

// TaskSource loads the list of tasks to harvest.
type TaskSource interface {
	// LoadTasks reads every row of the source.
	// Returns EINVALID if the title or URL column cannot be found.
	LoadTasks(ctx context.Context) (*TaskTable, error)
}

// ParseTaskRows builds a TaskTable from tabular rows whose first row is
// the header. Blank rows are ignored; rows missing a title or URL, or
// whose URL does not start with "http", are recorded as skipped.
func ParseTaskRows(rows [][]string) (*TaskTable, error) {
	if len(rows) == 0 {
		return nil, Errorf(EINVALID, "task list is empty")
	}

	header := rows[0]
	titleIdx, titleCol := findColumn(header, TitleColumns)
	urlIdx, urlCol := findColumn(header, URLColumns)
	if titleIdx < 0 || urlIdx < 0 {
		return nil, Errorf(EINVALID, "cannot find title or url column; available columns: %s", strings.Join(header, ", "))
	}

	table := &TaskTable{TitleColumn: titleCol, URLColumn: urlCol}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}

		task := Task{
			Title: strings.TrimSpace(cell(row, titleIdx)),
			URL:   strings.TrimSpace(cell(row, urlIdx)),
		}
		if err := task.Validate(); err != nil {
			table.Skipped = append(table.Skipped, SkippedRow{Row: rowNum, Reason: ErrorMessage(err)})
			continue
		}
		table.Tasks = append(table.Tasks, task)
	}
	return table, nil
}

// findColumn returns the index and name of the first candidate present in header.
func findColumn(header []string, candidates []string) (int, string) {
	for _, name := range candidates {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i, name
			}
		}
	}
	return -1, ""
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
