// Package types defines the shared data model for sheetpilot: the tabular
// Dataset, the closed Action union produced by the intent gateway, and the
// collaborator interfaces (LLM backend, storage surface) the core depends on.
package types

import (
	"fmt"
	"strconv"
	"time"
)

// Value is a single cell value. Cells hold either a float64 or a string;
// anything decoded from JSON numbers arrives as float64.
type Value = interface{}

// Record is one row: a mapping from column name to cell value.
type Record map[string]Value

// Dataset is an ordered sequence of uniform-shape records. Column order is
// tracked explicitly because Go maps do not preserve it; Columns and every
// record's key set stay in lockstep after each successful mutation.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// ColumnType classifies a column for prompt construction and cell parsing.
type ColumnType string

const (
	ColumnNumeric ColumnType = "numeric"
	ColumnText    ColumnType = "text"
)

// InferColumnType samples the first row, mirroring the display layer's
// convention. An empty dataset or a missing/non-numeric first value falls
// back to text.
func (d Dataset) InferColumnType(column string) ColumnType {
	if len(d.Rows) == 0 {
		return ColumnText
	}
	v, ok := d.Rows[0][column]
	if !ok {
		return ColumnText
	}
	switch v.(type) {
	case float64, float32, int, int64:
		return ColumnNumeric
	default:
		return ColumnText
	}
}

// HasColumn reports whether the named column exists.
func (d Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Clone deep-copies the dataset so mutations never alias the input rows.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Record, len(d.Rows)),
	}
	for i, r := range d.Rows {
		nr := make(Record, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// NumericValue extracts a float64 from a cell value.
func NumericValue(v Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Stringify renders a cell value for display and substring matching.
// Whole numbers print without a trailing ".0".
func Stringify(v Value) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Sheet pairs a dataset with its display name.
type Sheet struct {
	Name string  `json:"name"`
	Data Dataset `json:"data"`
}

// Workbook is the ordered sheet collection. Sheet-level actions
// (rename_sheet, duplicate_sheet) operate here rather than on rows.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
	Active int     `json:"active"`
}

// ActiveSheet returns the currently selected sheet. An empty workbook
// yields a zero sheet.
func (w Workbook) ActiveSheet() Sheet {
	if w.Active < 0 || w.Active >= len(w.Sheets) {
		return Sheet{}
	}
	return w.Sheets[w.Active]
}

// ChartSeries is one series in a chart descriptor.
type ChartSeries struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartDescriptor is a pure projection handed to the render surface; the
// core never draws anything.
type ChartDescriptor struct {
	Type   string        `json:"type"` // bar, line, pie
	Title  string        `json:"title"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one chat message. Turns are append-only; feedback
// tagging mutates in place but never reorders or deletes.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Action    Action    `json:"action,omitempty"`
	Feedback  string    `json:"feedback,omitempty"` // "helpful" | "unhelpful" | ""
	Timestamp time.Time `json:"timestamp"`
}
