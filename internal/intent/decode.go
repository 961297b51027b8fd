package intent

import (
	"fmt"
	"math"

	"sheetpilot/internal/types"
)

// DecodeToolCall converts a raw tool invocation into the typed Action
// union. Malformed arguments fail fast with a ValidationError naming the
// offending field; names outside the catalog yield UnknownToolError.
func DecodeToolCall(call types.ToolCall) (types.Action, error) {
	args := call.Input
	if args == nil {
		args = map[string]interface{}{}
	}

	switch call.Name {
	case "sort_data":
		column, err := strArg(call.Name, args, "column", true)
		if err != nil {
			return nil, err
		}
		order, err := strArg(call.Name, args, "order", true)
		if err != nil {
			return nil, err
		}
		return types.SortData{Column: column, Order: types.SortOrder(order)}, nil

	case "calculate_aggregate":
		column, err := strArg(call.Name, args, "column", true)
		if err != nil {
			return nil, err
		}
		op, err := strArg(call.Name, args, "operation", true)
		if err != nil {
			return nil, err
		}
		filterColumn, err := strArg(call.Name, args, "filterColumn", false)
		if err != nil {
			return nil, err
		}
		filterValue, err := strArg(call.Name, args, "filterValue", false)
		if err != nil {
			return nil, err
		}
		return types.CalculateAggregate{
			Column:       column,
			Operation:    types.AggregateOp(op),
			FilterColumn: filterColumn,
			FilterValue:  filterValue,
		}, nil

	case "filter_data":
		column, err := strArg(call.Name, args, "column", true)
		if err != nil {
			return nil, err
		}
		value, err := strArg(call.Name, args, "value", true)
		if err != nil {
			return nil, err
		}
		return types.FilterData{Column: column, Value: value}, nil

	case "add_row":
		raw, ok := args["values"]
		if !ok {
			return nil, types.NewValidationError(call.Name, "values", "required")
		}
		values, ok := raw.(map[string]interface{})
		if !ok {
			return nil, types.NewValidationError(call.Name, "values", "must be an object")
		}
		row := make(types.Record, len(values))
		for k, v := range values {
			row[k] = v
		}
		return types.AddRow{Values: row}, nil

	case "update_cell":
		rowIndex, err := intArg(call.Name, args, "rowIndex", true)
		if err != nil {
			return nil, err
		}
		column, err := strArg(call.Name, args, "column", true)
		if err != nil {
			return nil, err
		}
		value, err := anyAsString(call.Name, args, "value", true)
		if err != nil {
			return nil, err
		}
		return types.UpdateCell{RowIndex: rowIndex, Column: column, Value: value}, nil

	case "find_top_n":
		column, err := strArg(call.Name, args, "column", true)
		if err != nil {
			return nil, err
		}
		n, err := intArg(call.Name, args, "n", true)
		if err != nil {
			return nil, err
		}
		return types.FindTopN{Column: column, N: n}, nil

	case "delete_rows":
		indices, err := intSliceArg(call.Name, args, "rowIndices")
		if err != nil {
			return nil, err
		}
		return types.DeleteRows{RowIndices: indices}, nil

	case "delete_columns":
		names, err := strSliceArg(call.Name, args, "columnNames")
		if err != nil {
			return nil, err
		}
		return types.DeleteColumns{ColumnNames: names}, nil

	case "add_column":
		name, err := strArg(call.Name, args, "columnName", true)
		if err != nil {
			return nil, err
		}
		def, err := anyAsString(call.Name, args, "defaultValue", false)
		if err != nil {
			return nil, err
		}
		return types.AddColumn{ColumnName: name, DefaultValue: def}, nil

	case "batch_update":
		raw, ok := args["updates"]
		if !ok {
			return nil, types.NewValidationError(call.Name, "updates", "required")
		}
		list, ok := raw.([]interface{})
		if !ok {
			return nil, types.NewValidationError(call.Name, "updates", "must be an array")
		}
		updates := make([]types.CellUpdate, 0, len(list))
		for i, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, types.NewValidationError(call.Name, "updates",
					fmt.Sprintf("element %d must be an object", i))
			}
			rowIndex, err := intArg(call.Name, entry, "rowIndex", true)
			if err != nil {
				return nil, err
			}
			column, err := strArg(call.Name, entry, "column", true)
			if err != nil {
				return nil, err
			}
			value, err := anyAsString(call.Name, entry, "value", true)
			if err != nil {
				return nil, err
			}
			updates = append(updates, types.CellUpdate{RowIndex: rowIndex, Column: column, Value: value})
		}
		return types.BatchUpdate{Updates: updates}, nil

	case "rename_sheet":
		name, err := strArg(call.Name, args, "newName", true)
		if err != nil {
			return nil, err
		}
		return types.RenameSheet{NewName: name}, nil

	case "duplicate_sheet":
		name, err := strArg(call.Name, args, "newName", false)
		if err != nil {
			return nil, err
		}
		return types.DuplicateSheet{NewName: name}, nil

	case "generate_chart":
		chartType, err := strArg(call.Name, args, "chartType", true)
		if err != nil {
			return nil, err
		}
		title, err := strArg(call.Name, args, "title", false)
		if err != nil {
			return nil, err
		}
		labels, err := strSliceArg(call.Name, args, "labels")
		if err != nil {
			return nil, err
		}
		series, err := seriesArg(call.Name, args)
		if err != nil {
			return nil, err
		}
		return types.GenerateChart{ChartType: chartType, Title: title, Labels: labels, Series: series}, nil

	case "clear_filter":
		return types.ClearFilter{}, nil
	}

	for _, name := range types.UnsupportedToolNames {
		if call.Name == name {
			return types.Unsupported{Tool: call.Name, Args: args}, nil
		}
	}

	return nil, &types.UnknownToolError{Tool: call.Name}
}

func strArg(tool string, args map[string]interface{}, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return "", types.NewValidationError(tool, key, "required")
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", types.NewValidationError(tool, key, "must be a string")
	}
	if required && s == "" {
		return "", types.NewValidationError(tool, key, "required")
	}
	return s, nil
}

// anyAsString accepts a string or number argument and renders it as the
// raw string the engine expects for cell writes.
func anyAsString(tool string, args map[string]interface{}, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return "", types.NewValidationError(tool, key, "required")
		}
		return "", nil
	}
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64, float32, int, int64:
		return types.Stringify(v), nil
	default:
		return "", types.NewValidationError(tool, key, "must be a string or number")
	}
}

func intArg(tool string, args map[string]interface{}, key string, required bool) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return 0, types.NewValidationError(tool, key, "required")
		}
		return 0, nil
	}
	f, ok := types.NumericValue(raw)
	if !ok {
		return 0, types.NewValidationError(tool, key, "must be a number")
	}
	if f != math.Trunc(f) {
		return 0, types.NewValidationError(tool, key, "must be an integer")
	}
	return int(f), nil
}

func intSliceArg(tool string, args map[string]interface{}, key string) ([]int, error) {
	raw, ok := args[key]
	if !ok {
		return nil, types.NewValidationError(tool, key, "required")
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, types.NewValidationError(tool, key, "must be an array")
	}
	out := make([]int, 0, len(list))
	for i, item := range list {
		f, ok := types.NumericValue(item)
		if !ok || f != math.Trunc(f) {
			return nil, types.NewValidationError(tool, key, fmt.Sprintf("element %d must be an integer", i))
		}
		out = append(out, int(f))
	}
	return out, nil
}

func strSliceArg(tool string, args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, types.NewValidationError(tool, key, "required")
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, types.NewValidationError(tool, key, "must be an array")
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, types.NewValidationError(tool, key, fmt.Sprintf("element %d must be a string", i))
		}
		out = append(out, s)
	}
	return out, nil
}

func seriesArg(tool string, args map[string]interface{}) ([]types.ChartSeries, error) {
	raw, ok := args["datasets"]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, types.NewValidationError(tool, "datasets", "must be an array")
	}
	out := make([]types.ChartSeries, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, types.NewValidationError(tool, "datasets", fmt.Sprintf("element %d must be an object", i))
		}
		label, err := strArg(tool, entry, "label", false)
		if err != nil {
			return nil, err
		}
		var data []float64
		if rawData, ok := entry["data"]; ok {
			points, ok := rawData.([]interface{})
			if !ok {
				return nil, types.NewValidationError(tool, "datasets", fmt.Sprintf("element %d: data must be an array", i))
			}
			for j, p := range points {
				f, ok := types.NumericValue(p)
				if !ok {
					return nil, types.NewValidationError(tool, "datasets",
						fmt.Sprintf("element %d: data[%d] must be a number", i, j))
				}
				data = append(data, f)
			}
		}
		out = append(out, types.ChartSeries{Label: label, Data: data})
	}
	return out, nil
}
