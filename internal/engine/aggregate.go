package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"sheetpilot/internal/types"
)

// calculateAggregate reduces the numeric values of one column, optionally
// pre-filtered by case-insensitive equality on another column. Read-only:
// the dataset is never touched.
func calculateAggregate(ds types.Dataset, a types.CalculateAggregate) (string, error) {
	if a.Column == "" {
		return "", types.NewValidationError(a.Name(), "column", "required")
	}
	if !ds.HasColumn(a.Column) {
		return "", types.NewValidationError(a.Name(), "column", fmt.Sprintf("column %q does not exist", a.Column))
	}
	switch a.Operation {
	case types.AggSum, types.AggAverage, types.AggMin, types.AggMax, types.AggCount:
	default:
		return "", types.NewValidationError(a.Name(), "operation",
			fmt.Sprintf("%q is not one of sum, average, min, max, count", a.Operation))
	}
	if a.FilterColumn != "" && !ds.HasColumn(a.FilterColumn) {
		return "", types.NewValidationError(a.Name(), "filterColumn",
			fmt.Sprintf("column %q does not exist", a.FilterColumn))
	}

	var values []float64
	matched := 0
	for _, row := range ds.Rows {
		if a.FilterColumn != "" &&
			!strings.EqualFold(types.Stringify(row[a.FilterColumn]), a.FilterValue) {
			continue
		}
		matched++
		if v, ok := types.NumericValue(row[a.Column]); ok {
			values = append(values, v)
		}
	}

	result := reduce(a.Operation, values, matched)

	scope := ""
	if a.FilterColumn != "" {
		scope = fmt.Sprintf(" where %s = %s", a.FilterColumn, a.FilterValue)
	}
	if math.IsNaN(result) {
		// An empty average is NaN; surface it explicitly rather than
		// coercing to zero.
		return fmt.Sprintf("The %s of %s%s is NaN (no matching rows).", a.Operation, a.Column, scope), nil
	}
	return fmt.Sprintf("The %s of %s%s is %s.", a.Operation, a.Column, scope, types.Stringify(result)), nil
}

func reduce(op types.AggregateOp, values []float64, matched int) float64 {
	switch op {
	case types.AggCount:
		return float64(matched)
	case types.AggSum:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum
	case types.AggAverage:
		if len(values) == 0 {
			return math.NaN()
		}
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	case types.AggMin:
		if len(values) == 0 {
			return math.NaN()
		}
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case types.AggMax:
		if len(values) == 0 {
			return math.NaN()
		}
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	}
	return math.NaN()
}

// findTopN reports the n rows with the greatest value in a numeric column,
// descending. Read-only; n greater than the row count returns all rows.
func findTopN(ds types.Dataset, a types.FindTopN) (string, error) {
	if a.Column == "" {
		return "", types.NewValidationError(a.Name(), "column", "required")
	}
	if !ds.HasColumn(a.Column) {
		return "", types.NewValidationError(a.Name(), "column", fmt.Sprintf("column %q does not exist", a.Column))
	}
	if a.N <= 0 {
		return "", types.NewValidationError(a.Name(), "n", "must be positive")
	}

	type ranked struct {
		row   types.Record
		value float64
	}
	var rows []ranked
	for _, row := range ds.Rows {
		if v, ok := types.NumericValue(row[a.Column]); ok {
			rows = append(rows, ranked{row: row, value: v})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].value > rows[j].value })

	n := a.N
	if n > len(rows) {
		n = len(rows)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Top %d by %s:", n, a.Column)
	for i := 0; i < n; i++ {
		b.WriteString("\n")
		b.WriteString(formatRow(ds.Columns, rows[i].row))
	}
	return b.String(), nil
}

// formatRow renders one record in column order for confirmation text.
func formatRow(columns []string, row types.Record) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, fmt.Sprintf("%s=%s", c, types.Stringify(row[c])))
	}
	return strings.Join(parts, ", ")
}
