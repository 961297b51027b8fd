package intent

import "sheetpilot/internal/types"

// schema builders keep the catalog below readable.

func obj(props map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func str(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func strEnum(desc string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc, "enum": values}
}

func num(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": desc}
}

func arr(desc string, items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "description": desc, "items": items}
}

// Catalog returns the fixed tool catalog registered with every LLM call.
// One entry per Action variant; the low-priority operations are present so
// the model can request them and get a visible "not supported" notice
// instead of hallucinating an alternative.
func Catalog() []types.ToolDefinition {
	return []types.ToolDefinition{
		{
			Name:        "sort_data",
			Description: "Sort all rows by one column, ascending or descending. Ties keep their original order.",
			InputSchema: obj(map[string]interface{}{
				"column": str("Column to sort by"),
				"order":  strEnum("Sort direction", "asc", "desc"),
			}, "column", "order"),
		},
		{
			Name:        "calculate_aggregate",
			Description: "Compute sum, average, min, max or count over a numeric column, optionally filtered by equality on another column. Read-only.",
			InputSchema: obj(map[string]interface{}{
				"column":       str("Numeric column to aggregate"),
				"operation":    strEnum("Aggregate operation", "sum", "average", "min", "max", "count"),
				"filterColumn": str("Optional column to filter on before aggregating"),
				"filterValue":  str("Value the filter column must equal (case-insensitive)"),
			}, "column", "operation"),
		},
		{
			Name:        "filter_data",
			Description: "Keep only rows whose column value contains the given text (case-insensitive).",
			InputSchema: obj(map[string]interface{}{
				"column": str("Column to match against"),
				"value":  str("Substring to search for"),
			}, "column", "value"),
		},
		{
			Name:        "add_row",
			Description: "Append one row. A value must be supplied for every existing column.",
			InputSchema: obj(map[string]interface{}{
				"values": map[string]interface{}{
					"type":        "object",
					"description": "Mapping of column name to cell value, covering all columns",
				},
			}, "values"),
		},
		{
			Name:        "update_cell",
			Description: "Replace the value of one cell, addressed by 0-based row index and column name.",
			InputSchema: obj(map[string]interface{}{
				"rowIndex": num("0-based row index"),
				"column":   str("Column name"),
				"value":    str("New value; numeric columns accept thousand separators"),
			}, "rowIndex", "column", "value"),
		},
		{
			Name:        "find_top_n",
			Description: "Report the n rows with the greatest value in a numeric column, descending. Read-only.",
			InputSchema: obj(map[string]interface{}{
				"column": str("Numeric column to rank by"),
				"n":      num("How many rows to return"),
			}, "column", "n"),
		},
		{
			Name:        "delete_rows",
			Description: "Delete rows by 0-based index. All indices refer to the current dataset.",
			InputSchema: obj(map[string]interface{}{
				"rowIndices": arr("0-based row indices to delete", num("row index")),
			}, "rowIndices"),
		},
		{
			Name:        "delete_columns",
			Description: "Remove the named columns from every row.",
			InputSchema: obj(map[string]interface{}{
				"columnNames": arr("Column names to remove", str("column name")),
			}, "columnNames"),
		},
		{
			Name:        "add_column",
			Description: "Add a column to every row with the same default value.",
			InputSchema: obj(map[string]interface{}{
				"columnName":   str("Name of the new column"),
				"defaultValue": str("Default cell value; empty string if omitted"),
			}, "columnName"),
		},
		{
			Name:        "batch_update",
			Description: "Apply several cell updates atomically, in listed order; later updates to the same cell win.",
			InputSchema: obj(map[string]interface{}{
				"updates": arr("Cell updates", obj(map[string]interface{}{
					"rowIndex": num("0-based row index"),
					"column":   str("Column name"),
					"value":    str("New value"),
				}, "rowIndex", "column", "value")),
			}, "updates"),
		},
		{
			Name:        "rename_sheet",
			Description: "Rename the active sheet.",
			InputSchema: obj(map[string]interface{}{
				"newName": str("New sheet name"),
			}, "newName"),
		},
		{
			Name:        "duplicate_sheet",
			Description: "Copy the active sheet under a new name.",
			InputSchema: obj(map[string]interface{}{
				"newName": str("Name for the copy"),
			}),
		},
		{
			Name:        "generate_chart",
			Description: "Produce a bar, line or pie chart from labels and data series. Does not change the data.",
			InputSchema: obj(map[string]interface{}{
				"chartType": strEnum("Chart type", "bar", "line", "pie"),
				"title":     str("Chart title"),
				"labels":    arr("Category labels", str("label")),
				"datasets": arr("Data series", obj(map[string]interface{}{
					"label": str("Series name"),
					"data":  arr("Series values, one per label", num("value")),
				}, "label", "data")),
			}, "chartType", "labels"),
		},
		{
			Name:        "clear_filter",
			Description: "Clear the active filter and show all rows.",
			InputSchema: obj(map[string]interface{}{}),
		},

		// Accepted but not executed yet; requests surface a visible notice.
		{
			Name:        "pivot_table",
			Description: "Create a pivot table (not supported yet).",
			InputSchema: obj(map[string]interface{}{}),
		},
		{
			Name:        "create_chart",
			Description: "Legacy chart operation (use generate_chart).",
			InputSchema: obj(map[string]interface{}{}),
		},
		{
			Name:        "format_cells",
			Description: "Apply cell formatting (not supported yet).",
			InputSchema: obj(map[string]interface{}{}),
		},
		{
			Name:        "merge_cells",
			Description: "Merge a cell range (not supported yet).",
			InputSchema: obj(map[string]interface{}{}),
		},
		{
			Name:        "apply_formula",
			Description: "Apply a spreadsheet formula (not supported yet).",
			InputSchema: obj(map[string]interface{}{}),
		},
	}
}
