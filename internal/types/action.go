package types

import (
	"fmt"
	"strings"
)

// Action is the closed union of operations the intent gateway can produce.
// Each variant carries a strongly typed argument record; the gateway rejects
// unknown tool names before anything reaches the mutation engine.
type Action interface {
	// Name returns the wire-level tool name (e.g. "sort_data").
	Name() string
	// Describe returns a one-line summary for the history log.
	Describe() string
}

// SortOrder is the direction argument for SortData.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// AggregateOp is the reduction argument for CalculateAggregate.
type AggregateOp string

const (
	AggSum     AggregateOp = "sum"
	AggAverage AggregateOp = "average"
	AggMin     AggregateOp = "min"
	AggMax     AggregateOp = "max"
	AggCount   AggregateOp = "count"
)

// SortData stably sorts all rows by one column.
type SortData struct {
	Column string
	Order  SortOrder
}

func (a SortData) Name() string { return "sort_data" }
func (a SortData) Describe() string {
	return fmt.Sprintf("Sorted by %s (%s)", a.Column, a.Order)
}

// CalculateAggregate is a read-only reduction over one numeric column,
// optionally pre-filtered by equality on another column.
type CalculateAggregate struct {
	Column       string
	Operation    AggregateOp
	FilterColumn string // optional
	FilterValue  string // optional
}

func (a CalculateAggregate) Name() string { return "calculate_aggregate" }
func (a CalculateAggregate) Describe() string {
	if a.FilterColumn != "" {
		return fmt.Sprintf("Calculated %s of %s where %s = %s", a.Operation, a.Column, a.FilterColumn, a.FilterValue)
	}
	return fmt.Sprintf("Calculated %s of %s", a.Operation, a.Column)
}

// FilterData retains rows whose column value contains the given substring,
// case-insensitively.
type FilterData struct {
	Column string
	Value  string
}

func (a FilterData) Name() string { return "filter_data" }
func (a FilterData) Describe() string {
	return fmt.Sprintf("Filtered %s containing %q", a.Column, a.Value)
}

// AddRow appends one record with a full set of column values.
type AddRow struct {
	Values Record
}

func (a AddRow) Name() string     { return "add_row" }
func (a AddRow) Describe() string { return "Added 1 row" }

// UpdateCell replaces a single field in a single record.
type UpdateCell struct {
	RowIndex int
	Column   string
	Value    string
}

func (a UpdateCell) Name() string { return "update_cell" }
func (a UpdateCell) Describe() string {
	return fmt.Sprintf("Updated %s in row %d", a.Column, a.RowIndex+1)
}

// FindTopN is a read-only query for the n rows with the greatest value
// in a numeric column.
type FindTopN struct {
	Column string
	N      int
}

func (a FindTopN) Name() string { return "find_top_n" }
func (a FindTopN) Describe() string {
	return fmt.Sprintf("Found top %d by %s", a.N, a.Column)
}

// DeleteRows removes rows at the given 0-based indices, all evaluated
// against the pre-deletion dataset.
type DeleteRows struct {
	RowIndices []int
}

func (a DeleteRows) Name() string { return "delete_rows" }
func (a DeleteRows) Describe() string {
	return fmt.Sprintf("Deleted %d row(s)", len(a.RowIndices))
}

// DeleteColumns removes the named fields from every record.
type DeleteColumns struct {
	ColumnNames []string
}

func (a DeleteColumns) Name() string { return "delete_columns" }
func (a DeleteColumns) Describe() string {
	return fmt.Sprintf("Deleted column(s) %s", strings.Join(a.ColumnNames, ", "))
}

// AddColumn adds a field to every record with the same literal default.
type AddColumn struct {
	ColumnName   string
	DefaultValue string // empty string when omitted
}

func (a AddColumn) Name() string { return "add_column" }
func (a AddColumn) Describe() string {
	return fmt.Sprintf("Added column %s", a.ColumnName)
}

// CellUpdate is one element of a BatchUpdate.
type CellUpdate struct {
	RowIndex int
	Column   string
	Value    string
}

// BatchUpdate applies cell updates atomically against the engine's input
// snapshot, in listed order; later updates to the same cell win.
type BatchUpdate struct {
	Updates []CellUpdate
}

func (a BatchUpdate) Name() string { return "batch_update" }
func (a BatchUpdate) Describe() string {
	return fmt.Sprintf("Updated %d cell(s)", len(a.Updates))
}

// RenameSheet renames the active sheet. Sheet metadata only.
type RenameSheet struct {
	NewName string
}

func (a RenameSheet) Name() string { return "rename_sheet" }
func (a RenameSheet) Describe() string {
	return fmt.Sprintf("Renamed sheet to %s", a.NewName)
}

// DuplicateSheet copies the active sheet under a new name.
type DuplicateSheet struct {
	NewName string
}

func (a DuplicateSheet) Name() string { return "duplicate_sheet" }
func (a DuplicateSheet) Describe() string {
	return fmt.Sprintf("Duplicated sheet as %s", a.NewName)
}

// GenerateChart produces a chart descriptor without touching the dataset.
type GenerateChart struct {
	ChartType string
	Title     string
	Labels    []string
	Series    []ChartSeries
}

func (a GenerateChart) Name() string { return "generate_chart" }
func (a GenerateChart) Describe() string {
	return fmt.Sprintf("Generated %s chart %q", a.ChartType, a.Title)
}

// ClearFilter resets external filter state; the dataset itself is untouched.
type ClearFilter struct{}

func (a ClearFilter) Name() string     { return "clear_filter" }
func (a ClearFilter) Describe() string { return "Cleared filter" }

// UnsupportedToolNames lists catalog entries that are accepted from the
// model but only logged; they perform no mutation yet.
var UnsupportedToolNames = []string{
	"pivot_table",
	"create_chart",
	"format_cells",
	"merge_cells",
	"apply_formula",
}

// Unsupported covers the low-priority catalog entries. The engine logs the
// request and surfaces a visible notice instead of mutating anything.
type Unsupported struct {
	Tool string
	Args map[string]Value
}

func (a Unsupported) Name() string { return a.Tool }
func (a Unsupported) Describe() string {
	return fmt.Sprintf("Requested unsupported operation %s", a.Tool)
}
