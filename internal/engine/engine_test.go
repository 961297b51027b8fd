package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpilot/internal/types"
)

func salesWorkbook() types.Workbook {
	return types.Workbook{
		Sheets: []types.Sheet{{
			Name: "Sheet1",
			Data: types.Dataset{
				Columns: []string{"region", "sales"},
				Rows: []types.Record{
					{"region": "North", "sales": 100.0},
					{"region": "South", "sales": 200.0},
					{"region": "East", "sales": 300.0},
				},
			},
		}},
	}
}

func activeData(wb types.Workbook) types.Dataset {
	return wb.ActiveSheet().Data
}

func TestSortData(t *testing.T) {
	t.Run("numeric descending", func(t *testing.T) {
		wb := salesWorkbook()
		out, err := Apply(wb, types.SortData{Column: "sales", Order: types.SortDescending})
		require.NoError(t, err)

		got := activeData(out.Workbook)
		assert.Equal(t, 300.0, got.Rows[0]["sales"])
		assert.Equal(t, 100.0, got.Rows[2]["sales"])
		// input untouched
		assert.Equal(t, 100.0, activeData(wb).Rows[0]["sales"])
	})

	t.Run("text ascending is locale-aware", func(t *testing.T) {
		wb := salesWorkbook()
		out, err := Apply(wb, types.SortData{Column: "region", Order: types.SortAscending})
		require.NoError(t, err)

		got := activeData(out.Workbook)
		assert.Equal(t, "East", got.Rows[0]["region"])
		assert.Equal(t, "North", got.Rows[1]["region"])
		assert.Equal(t, "South", got.Rows[2]["region"])
	})

	t.Run("stable among ties", func(t *testing.T) {
		wb := types.Workbook{Sheets: []types.Sheet{{
			Name: "Sheet1",
			Data: types.Dataset{
				Columns: []string{"x", "id"},
				Rows: []types.Record{
					{"x": 1.0, "id": "a"},
					{"x": 1.0, "id": "b"},
				},
			},
		}}}
		out, err := Apply(wb, types.SortData{Column: "x", Order: types.SortAscending})
		require.NoError(t, err)

		got := activeData(out.Workbook)
		assert.Equal(t, "a", got.Rows[0]["id"])
		assert.Equal(t, "b", got.Rows[1]["id"])
	})

	t.Run("unknown column rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.SortData{Column: "nope", Order: types.SortAscending})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "column", verr.Field)
	})

	t.Run("bad order rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.SortData{Column: "sales", Order: "sideways"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "order", verr.Field)
	})
}

func TestCalculateAggregate(t *testing.T) {
	t.Run("sum with filter leaves dataset unchanged", func(t *testing.T) {
		wb := salesWorkbook()
		out, err := Apply(wb, types.CalculateAggregate{
			Column:       "sales",
			Operation:    types.AggSum,
			FilterColumn: "region",
			FilterValue:  "North",
		})
		require.NoError(t, err)
		assert.Contains(t, out.Confirmation, "100")
		assert.Len(t, activeData(out.Workbook).Rows, 3)
		assert.Empty(t, cmp.Diff(activeData(wb), activeData(out.Workbook)))
	})

	t.Run("filter match is case-insensitive", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.CalculateAggregate{
			Column:       "sales",
			Operation:    types.AggSum,
			FilterColumn: "region",
			FilterValue:  "north",
		})
		require.NoError(t, err)
		assert.Contains(t, out.Confirmation, "100")
	})

	t.Run("average over empty filter surfaces NaN", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.CalculateAggregate{
			Column:       "sales",
			Operation:    types.AggAverage,
			FilterColumn: "region",
			FilterValue:  "West",
		})
		require.NoError(t, err)
		assert.Contains(t, out.Confirmation, "NaN")
	})

	t.Run("count counts matched rows", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.CalculateAggregate{
			Column:    "sales",
			Operation: types.AggCount,
		})
		require.NoError(t, err)
		assert.Contains(t, out.Confirmation, "3")
	})

	t.Run("idempotent", func(t *testing.T) {
		wb := salesWorkbook()
		action := types.CalculateAggregate{Column: "sales", Operation: types.AggMax}
		first, err := Apply(wb, action)
		require.NoError(t, err)
		second, err := Apply(first.Workbook, action)
		require.NoError(t, err)
		assert.Equal(t, first.Confirmation, second.Confirmation)
		assert.Empty(t, cmp.Diff(activeData(first.Workbook), activeData(second.Workbook)))
	})

	t.Run("bad operation rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.CalculateAggregate{Column: "sales", Operation: "median"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "operation", verr.Field)
	})
}

func TestFilterData(t *testing.T) {
	t.Run("case-insensitive substring", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.FilterData{Column: "region", Value: "OUTH"})
		require.NoError(t, err)
		got := activeData(out.Workbook)
		require.Len(t, got.Rows, 1)
		assert.Equal(t, "South", got.Rows[0]["region"])
	})

	t.Run("empty result set is valid", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.FilterData{Column: "region", Value: "zzz"})
		require.NoError(t, err)
		assert.Empty(t, activeData(out.Workbook).Rows)
		assert.Contains(t, out.Confirmation, "0 row(s)")
	})

	t.Run("matches stringified numbers", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.FilterData{Column: "sales", Value: "30"})
		require.NoError(t, err)
		require.Len(t, activeData(out.Workbook).Rows, 1)
		assert.Equal(t, 300.0, activeData(out.Workbook).Rows[0]["sales"])
	})
}

func TestAddRow(t *testing.T) {
	t.Run("appends a complete row", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.AddRow{Values: types.Record{"region": "West", "sales": 50.0}})
		require.NoError(t, err)
		got := activeData(out.Workbook)
		require.Len(t, got.Rows, 4)
		assert.Equal(t, "West", got.Rows[3]["region"])
	})

	t.Run("partial row rejected, dataset untouched", func(t *testing.T) {
		wb := salesWorkbook()
		_, err := Apply(wb, types.AddRow{Values: types.Record{"region": "West"}})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "sales", verr.Field)
		assert.Len(t, activeData(wb).Rows, 3)
	})

	t.Run("unknown column rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.AddRow{Values: types.Record{
			"region": "West", "sales": 50.0, "bonus": 1.0,
		}})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "bonus", verr.Field)
	})
}

func TestUpdateCell(t *testing.T) {
	t.Run("numeric column strips thousand separators", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.UpdateCell{RowIndex: 0, Column: "sales", Value: "1,250"})
		require.NoError(t, err)
		assert.Equal(t, 1250.0, activeData(out.Workbook).Rows[0]["sales"])
	})

	t.Run("text column stores raw string", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.UpdateCell{RowIndex: 1, Column: "region", Value: "1,250"})
		require.NoError(t, err)
		assert.Equal(t, "1,250", activeData(out.Workbook).Rows[1]["region"])
	})

	t.Run("out of bounds never creates rows", func(t *testing.T) {
		wb := salesWorkbook()
		_, err := Apply(wb, types.UpdateCell{RowIndex: 10, Column: "sales", Value: "5"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "rowIndex", verr.Field)
		assert.Len(t, activeData(wb).Rows, 3)
	})

	t.Run("non-numeric value for numeric column rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.UpdateCell{RowIndex: 0, Column: "sales", Value: "lots"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "value", verr.Field)
	})
}

func TestFindTopN(t *testing.T) {
	wb := types.Workbook{Sheets: []types.Sheet{{
		Name: "Sheet1",
		Data: types.Dataset{
			Columns: []string{"name", "profit"},
			Rows: []types.Record{
				{"name": "a", "profit": 10.0},
				{"name": "b", "profit": 50.0},
				{"name": "c", "profit": 30.0},
				{"name": "d", "profit": 40.0},
				{"name": "e", "profit": 20.0},
			},
		},
	}}}

	t.Run("returns the n highest descending, dataset unchanged", func(t *testing.T) {
		out, err := Apply(wb, types.FindTopN{Column: "profit", N: 2})
		require.NoError(t, err)
		assert.Contains(t, out.Confirmation, "name=b, profit=50")
		assert.Contains(t, out.Confirmation, "name=d, profit=40")
		assert.NotContains(t, out.Confirmation, "name=c")
		assert.Len(t, activeData(out.Workbook).Rows, 5)
	})

	t.Run("n greater than row count returns all", func(t *testing.T) {
		out, err := Apply(wb, types.FindTopN{Column: "profit", N: 50})
		require.NoError(t, err)
		assert.Contains(t, out.Confirmation, "Top 5")
	})

	t.Run("non-positive n rejected", func(t *testing.T) {
		_, err := Apply(wb, types.FindTopN{Column: "profit", N: 0})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "n", verr.Field)
	})
}

func TestDeleteRows(t *testing.T) {
	t.Run("indices evaluated against pre-deletion dataset", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.DeleteRows{RowIndices: []int{0, 2}})
		require.NoError(t, err)
		got := activeData(out.Workbook)
		require.Len(t, got.Rows, 1)
		assert.Equal(t, "South", got.Rows[0]["region"])
	})

	t.Run("duplicate and out-of-range indices collapse", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.DeleteRows{RowIndices: []int{1, 1, 99}})
		require.NoError(t, err)
		assert.Len(t, activeData(out.Workbook).Rows, 2)
	})
}

func TestDeleteAndAddColumn(t *testing.T) {
	t.Run("nonexistent column is a no-op for that name", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.DeleteColumns{ColumnNames: []string{"sales", "ghost"}})
		require.NoError(t, err)
		got := activeData(out.Workbook)
		assert.Equal(t, []string{"region"}, got.Columns)
		_, present := got.Rows[0]["sales"]
		assert.False(t, present)
	})

	t.Run("round-trip delete then add restores presence, not values", func(t *testing.T) {
		wb := salesWorkbook()
		out, err := Apply(wb, types.DeleteColumns{ColumnNames: []string{"sales"}})
		require.NoError(t, err)
		out, err = Apply(out.Workbook, types.AddColumn{ColumnName: "sales", DefaultValue: "0"})
		require.NoError(t, err)

		got := activeData(out.Workbook)
		assert.True(t, got.HasColumn("sales"))
		for _, row := range got.Rows {
			assert.Equal(t, "0", row["sales"]) // old values are gone
		}
	})

	t.Run("default is the same literal per record", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.AddColumn{ColumnName: "notes"})
		require.NoError(t, err)
		for _, row := range activeData(out.Workbook).Rows {
			assert.Equal(t, "", row["notes"])
		}
	})

	t.Run("existing column rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.AddColumn{ColumnName: "sales"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("column homogeneity after mutation", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.AddColumn{ColumnName: "flag", DefaultValue: "x"})
		require.NoError(t, err)
		got := activeData(out.Workbook)
		for _, row := range got.Rows {
			assert.Len(t, row, len(got.Columns))
			for _, c := range got.Columns {
				_, ok := row[c]
				assert.True(t, ok)
			}
		}
	})
}

func TestBatchUpdate(t *testing.T) {
	t.Run("later updates to the same cell win", func(t *testing.T) {
		wb := types.Workbook{Sheets: []types.Sheet{{
			Name: "Sheet1",
			Data: types.Dataset{
				Columns: []string{"sales"},
				Rows:    []types.Record{{"sales": 1.0}},
			},
		}}}
		out, err := Apply(wb, types.BatchUpdate{Updates: []types.CellUpdate{
			{RowIndex: 0, Column: "sales", Value: "10"},
			{RowIndex: 0, Column: "sales", Value: "20"},
		}})
		require.NoError(t, err)
		assert.Equal(t, 20.0, activeData(out.Workbook).Rows[0]["sales"])
	})

	t.Run("atomic: any invalid update rejects the whole batch", func(t *testing.T) {
		wb := salesWorkbook()
		_, err := Apply(wb, types.BatchUpdate{Updates: []types.CellUpdate{
			{RowIndex: 0, Column: "sales", Value: "10"},
			{RowIndex: 99, Column: "sales", Value: "20"},
		}})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, 100.0, activeData(wb).Rows[0]["sales"])
	})
}

func TestSheetOperations(t *testing.T) {
	t.Run("rename keeps data", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.RenameSheet{NewName: "Q3"})
		require.NoError(t, err)
		assert.Equal(t, "Q3", out.Workbook.ActiveSheet().Name)
		assert.Len(t, activeData(out.Workbook).Rows, 3)
	})

	t.Run("duplicate copies rows deeply", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.DuplicateSheet{NewName: "Backup"})
		require.NoError(t, err)
		require.Len(t, out.Workbook.Sheets, 2)
		assert.Equal(t, "Backup", out.Workbook.Sheets[1].Name)

		out.Workbook.Sheets[1].Data.Rows[0]["sales"] = 999.0
		assert.Equal(t, 100.0, out.Workbook.Sheets[0].Data.Rows[0]["sales"])
	})

	t.Run("duplicate name collision rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.DuplicateSheet{NewName: "Sheet1"})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestGenerateChart(t *testing.T) {
	t.Run("produces a descriptor without touching data", func(t *testing.T) {
		wb := salesWorkbook()
		out, err := Apply(wb, types.GenerateChart{
			ChartType: "bar",
			Title:     "Sales by region",
			Labels:    []string{"North", "South", "East"},
			Series:    []types.ChartSeries{{Label: "sales", Data: []float64{100, 200, 300}}},
		})
		require.NoError(t, err)
		require.NotNil(t, out.Chart)
		assert.Equal(t, "bar", out.Chart.Type)
		assert.Empty(t, cmp.Diff(activeData(wb), activeData(out.Workbook)))
	})

	t.Run("unknown chart type rejected", func(t *testing.T) {
		_, err := Apply(salesWorkbook(), types.GenerateChart{ChartType: "scatter", Labels: []string{"x"}})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "chartType", verr.Field)
	})
}

func TestUnsupportedAndClearFilter(t *testing.T) {
	t.Run("unsupported tool surfaces a notice", func(t *testing.T) {
		out, err := Apply(salesWorkbook(), types.Unsupported{Tool: "pivot_table"})
		require.NoError(t, err)
		assert.Contains(t, out.Confirmation, "pivot_table")
		assert.Contains(t, out.Confirmation, "isn't supported")
	})

	t.Run("clear_filter leaves everything alone", func(t *testing.T) {
		wb := salesWorkbook()
		out, err := Apply(wb, types.ClearFilter{})
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(activeData(wb), activeData(out.Workbook)))
	})
}

func TestEmptyWorkbookRejected(t *testing.T) {
	_, err := Apply(types.Workbook{}, types.ClearFilter{})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestActiveSheetOutOfRangeRejected(t *testing.T) {
	wb := salesWorkbook()
	for _, active := range []int{-1, len(wb.Sheets)} {
		wb.Active = active
		_, err := Apply(wb, types.AddRow{Values: types.Record{"region": "West", "sales": 50.0}})
		var verr *types.ValidationError
		require.ErrorAs(t, err, &verr, "active=%d", active)
	}
}
