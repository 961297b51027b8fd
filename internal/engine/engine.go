// Package engine applies structured actions to the in-memory workbook.
// Apply is a pure function: the same action against the same workbook always
// yields the same result, and validation failures reject before any partial
// mutation. The engine owns no state of its own.
package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sheetpilot/internal/logging"
	"sheetpilot/internal/types"
)

// collator provides locale-aware comparison for text columns.
var collator = collate.New(language.English, collate.Loose)

// Outcome is the result of one applied action: the next workbook state, a
// one-line user-facing confirmation, an optional chart descriptor, and the
// entry for the history log.
type Outcome struct {
	Workbook     types.Workbook
	Confirmation string
	Chart        *types.ChartDescriptor
	ActionName   string
	Description  string
}

// Apply executes one action against the workbook and returns the new state.
// Read-only actions return the input workbook unchanged.
func Apply(wb types.Workbook, action types.Action) (Outcome, error) {
	if len(wb.Sheets) == 0 {
		return Outcome{}, types.NewValidationError(action.Name(), "workbook", "workbook has no sheets")
	}
	if wb.Active < 0 || wb.Active >= len(wb.Sheets) {
		return Outcome{}, types.NewValidationError(action.Name(), "workbook",
			fmt.Sprintf("active sheet %d out of range (workbook has %d sheets)", wb.Active, len(wb.Sheets)))
	}

	out := Outcome{
		Workbook:    wb,
		ActionName:  action.Name(),
		Description: action.Describe(),
	}

	ds := wb.ActiveSheet().Data
	var err error

	switch a := action.(type) {
	case types.SortData:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return sortData(ds, a)
		})
	case types.CalculateAggregate:
		out.Confirmation, err = calculateAggregate(ds, a)
	case types.FilterData:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return filterData(ds, a)
		})
	case types.AddRow:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return addRow(ds, a)
		})
	case types.UpdateCell:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return updateCell(ds, a)
		})
	case types.FindTopN:
		out.Confirmation, err = findTopN(ds, a)
	case types.DeleteRows:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return deleteRows(ds, a)
		})
	case types.DeleteColumns:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return deleteColumns(ds, a)
		})
	case types.AddColumn:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return addColumn(ds, a)
		})
	case types.BatchUpdate:
		out.Workbook, out.Confirmation, err = applyToActive(wb, func() (types.Dataset, string, error) {
			return batchUpdate(ds, a)
		})
	case types.RenameSheet:
		out.Workbook, out.Confirmation, err = renameSheet(wb, a)
	case types.DuplicateSheet:
		out.Workbook, out.Confirmation, err = duplicateSheet(wb, a)
	case types.GenerateChart:
		out.Chart, out.Confirmation, err = generateChart(a)
	case types.ClearFilter:
		out.Confirmation = "Filter cleared."
	case types.Unsupported:
		logging.EngineWarn("unsupported operation requested: %s", a.Tool)
		out.Confirmation = fmt.Sprintf("The %s operation isn't supported yet.", a.Tool)
	default:
		err = &types.UnknownToolError{Tool: action.Name()}
	}

	if err != nil {
		return Outcome{}, err
	}
	logging.Engine("applied %s: %s", out.ActionName, out.Description)
	return out, nil
}

// applyToActive swaps the transformed dataset into the active sheet of a
// fresh workbook value, leaving the input untouched.
func applyToActive(wb types.Workbook, fn func() (types.Dataset, string, error)) (types.Workbook, string, error) {
	ds, confirmation, err := fn()
	if err != nil {
		return wb, "", err
	}
	next := wb
	next.Sheets = append([]types.Sheet(nil), wb.Sheets...)
	next.Sheets[wb.Active] = types.Sheet{Name: wb.Sheets[wb.Active].Name, Data: ds}
	return next, confirmation, nil
}

func sortData(ds types.Dataset, a types.SortData) (types.Dataset, string, error) {
	if a.Column == "" {
		return ds, "", types.NewValidationError(a.Name(), "column", "required")
	}
	if !ds.HasColumn(a.Column) {
		return ds, "", types.NewValidationError(a.Name(), "column", fmt.Sprintf("column %q does not exist", a.Column))
	}
	if a.Order != types.SortAscending && a.Order != types.SortDescending {
		return ds, "", types.NewValidationError(a.Name(), "order", `must be "asc" or "desc"`)
	}

	out := ds.Clone()
	numeric := ds.InferColumnType(a.Column) == types.ColumnNumeric

	// sort.SliceStable preserves the original relative order of ties.
	sort.SliceStable(out.Rows, func(i, j int) bool {
		c := compareCells(out.Rows[i][a.Column], out.Rows[j][a.Column], numeric)
		if a.Order == types.SortDescending {
			return c > 0
		}
		return c < 0
	})

	return out, fmt.Sprintf("Sorted %d rows by %s (%sending).", len(out.Rows), a.Column, a.Order), nil
}

// compareCells orders two cell values. Numeric columns compare numerically
// with non-numeric cells ranked lowest; text columns compare via the
// collator.
func compareCells(x, y types.Value, numeric bool) int {
	if numeric {
		xv, xok := types.NumericValue(x)
		yv, yok := types.NumericValue(y)
		switch {
		case !xok && !yok:
			return 0
		case !xok:
			return -1
		case !yok:
			return 1
		case xv < yv:
			return -1
		case xv > yv:
			return 1
		default:
			return 0
		}
	}
	return collator.CompareString(types.Stringify(x), types.Stringify(y))
}

func filterData(ds types.Dataset, a types.FilterData) (types.Dataset, string, error) {
	if a.Column == "" {
		return ds, "", types.NewValidationError(a.Name(), "column", "required")
	}
	if !ds.HasColumn(a.Column) {
		return ds, "", types.NewValidationError(a.Name(), "column", fmt.Sprintf("column %q does not exist", a.Column))
	}

	needle := strings.ToLower(a.Value)
	out := types.Dataset{Columns: append([]string(nil), ds.Columns...)}
	for _, row := range ds.Rows {
		if strings.Contains(strings.ToLower(types.Stringify(row[a.Column])), needle) {
			nr := make(types.Record, len(row))
			for k, v := range row {
				nr[k] = v
			}
			out.Rows = append(out.Rows, nr)
		}
	}
	// An empty result set is a valid outcome, not an error.
	return out, fmt.Sprintf("Filtered to %d row(s) where %s contains %q.", len(out.Rows), a.Column, a.Value), nil
}

func addRow(ds types.Dataset, a types.AddRow) (types.Dataset, string, error) {
	// A partial row is a schema violation; reject before mutating.
	for _, col := range ds.Columns {
		if _, ok := a.Values[col]; !ok {
			return ds, "", types.NewValidationError(a.Name(), col, "missing value for required column")
		}
	}
	for key := range a.Values {
		if !ds.HasColumn(key) {
			return ds, "", types.NewValidationError(a.Name(), key, "column does not exist")
		}
	}

	out := ds.Clone()
	row := make(types.Record, len(a.Values))
	for k, v := range a.Values {
		row[k] = v
	}
	out.Rows = append(out.Rows, row)
	return out, fmt.Sprintf("Added 1 row (%d total).", len(out.Rows)), nil
}

func updateCell(ds types.Dataset, a types.UpdateCell) (types.Dataset, string, error) {
	if a.RowIndex < 0 || a.RowIndex >= len(ds.Rows) {
		return ds, "", types.NewValidationError(a.Name(), "rowIndex",
			fmt.Sprintf("row %d out of bounds (dataset has %d rows)", a.RowIndex, len(ds.Rows)))
	}
	if !ds.HasColumn(a.Column) {
		return ds, "", types.NewValidationError(a.Name(), "column", fmt.Sprintf("column %q does not exist", a.Column))
	}

	value, err := parseCellValue(ds, a.Name(), a.Column, a.Value)
	if err != nil {
		return ds, "", err
	}

	out := ds.Clone()
	out.Rows[a.RowIndex][a.Column] = value
	return out, fmt.Sprintf("Updated %s in row %d to %s.", a.Column, a.RowIndex+1, types.Stringify(value)), nil
}

// parseCellValue converts the raw string argument for a cell write. Numeric
// columns parse after stripping thousand separators; text columns keep the
// raw string.
func parseCellValue(ds types.Dataset, tool, column, raw string) (types.Value, error) {
	if ds.InferColumnType(column) != types.ColumnNumeric {
		return raw, nil
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, types.NewValidationError(tool, "value",
			fmt.Sprintf("%q is not a number for numeric column %s", raw, column))
	}
	return n, nil
}

func deleteRows(ds types.Dataset, a types.DeleteRows) (types.Dataset, string, error) {
	if len(a.RowIndices) == 0 {
		return ds, "", types.NewValidationError(a.Name(), "rowIndices", "required")
	}

	// Indices refer to the pre-deletion dataset; collect into a set so the
	// removal is order-independent and duplicates collapse.
	doomed := make(map[int]struct{}, len(a.RowIndices))
	for _, idx := range a.RowIndices {
		if idx >= 0 && idx < len(ds.Rows) {
			doomed[idx] = struct{}{}
		}
	}

	out := types.Dataset{Columns: append([]string(nil), ds.Columns...)}
	for i, row := range ds.Rows {
		if _, gone := doomed[i]; gone {
			continue
		}
		nr := make(types.Record, len(row))
		for k, v := range row {
			nr[k] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, fmt.Sprintf("Deleted %d row(s), %d remaining.", len(doomed), len(out.Rows)), nil
}

func deleteColumns(ds types.Dataset, a types.DeleteColumns) (types.Dataset, string, error) {
	if len(a.ColumnNames) == 0 {
		return ds, "", types.NewValidationError(a.Name(), "columnNames", "required")
	}

	remove := make(map[string]struct{}, len(a.ColumnNames))
	removed := 0
	for _, name := range a.ColumnNames {
		if ds.HasColumn(name) {
			remove[name] = struct{}{}
			removed++
		}
		// A nonexistent column is a no-op for that name.
	}

	out := types.Dataset{}
	for _, c := range ds.Columns {
		if _, gone := remove[c]; !gone {
			out.Columns = append(out.Columns, c)
		}
	}
	for _, row := range ds.Rows {
		nr := make(types.Record, len(row))
		for k, v := range row {
			if _, gone := remove[k]; !gone {
				nr[k] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, fmt.Sprintf("Deleted %d column(s).", removed), nil
}

func addColumn(ds types.Dataset, a types.AddColumn) (types.Dataset, string, error) {
	if a.ColumnName == "" {
		return ds, "", types.NewValidationError(a.Name(), "columnName", "required")
	}
	if ds.HasColumn(a.ColumnName) {
		return ds, "", types.NewValidationError(a.Name(), "columnName", fmt.Sprintf("column %q already exists", a.ColumnName))
	}

	out := ds.Clone()
	out.Columns = append(out.Columns, a.ColumnName)
	// The same literal default goes into every record; it is never
	// recomputed per row.
	for _, row := range out.Rows {
		row[a.ColumnName] = a.DefaultValue
	}
	return out, fmt.Sprintf("Added column %s with default %q.", a.ColumnName, a.DefaultValue), nil
}

func batchUpdate(ds types.Dataset, a types.BatchUpdate) (types.Dataset, string, error) {
	if len(a.Updates) == 0 {
		return ds, "", types.NewValidationError(a.Name(), "updates", "required")
	}

	// Validate the whole batch against the input snapshot before touching
	// anything: the batch is atomic.
	values := make([]types.Value, len(a.Updates))
	for i, u := range a.Updates {
		if u.RowIndex < 0 || u.RowIndex >= len(ds.Rows) {
			return ds, "", types.NewValidationError(a.Name(), "updates",
				fmt.Sprintf("update %d: row %d out of bounds", i, u.RowIndex))
		}
		if !ds.HasColumn(u.Column) {
			return ds, "", types.NewValidationError(a.Name(), "updates",
				fmt.Sprintf("update %d: column %q does not exist", i, u.Column))
		}
		v, err := parseCellValue(ds, a.Name(), u.Column, u.Value)
		if err != nil {
			return ds, "", err
		}
		values[i] = v
	}

	out := ds.Clone()
	// Listed order against the same snapshot: later updates to the same
	// cell win.
	for i, u := range a.Updates {
		out.Rows[u.RowIndex][u.Column] = values[i]
	}
	return out, fmt.Sprintf("Applied %d cell update(s).", len(a.Updates)), nil
}
