package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferColumnType(t *testing.T) {
	t.Run("numeric first row", func(t *testing.T) {
		ds := Dataset{
			Columns: []string{"sales"},
			Rows:    []Record{{"sales": 100.0}},
		}
		assert.Equal(t, ColumnNumeric, ds.InferColumnType("sales"))
	})

	t.Run("text first row", func(t *testing.T) {
		ds := Dataset{
			Columns: []string{"region"},
			Rows:    []Record{{"region": "North"}},
		}
		assert.Equal(t, ColumnText, ds.InferColumnType("region"))
	})

	t.Run("empty dataset falls back to text", func(t *testing.T) {
		ds := Dataset{Columns: []string{"sales"}}
		assert.Equal(t, ColumnText, ds.InferColumnType("sales"))
	})

	t.Run("missing value in first row falls back to text", func(t *testing.T) {
		ds := Dataset{
			Columns: []string{"sales"},
			Rows:    []Record{{}},
		}
		assert.Equal(t, ColumnText, ds.InferColumnType("sales"))
	})
}

func TestCloneIsDeep(t *testing.T) {
	ds := Dataset{
		Columns: []string{"a"},
		Rows:    []Record{{"a": "x"}},
	}
	cp := ds.Clone()
	cp.Rows[0]["a"] = "mutated"
	cp.Columns[0] = "b"

	assert.Equal(t, "x", ds.Rows[0]["a"])
	assert.Equal(t, "a", ds.Columns[0])
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "100", Stringify(100.0))
	assert.Equal(t, "3.5", Stringify(3.5))
	assert.Equal(t, "North", Stringify("North"))
	assert.Equal(t, "", Stringify(nil))
}

func TestWorkbookActiveSheet(t *testing.T) {
	wb := Workbook{
		Sheets: []Sheet{{Name: "Sheet1"}, {Name: "Sheet2"}},
		Active: 1,
	}
	assert.Equal(t, "Sheet2", wb.ActiveSheet().Name)

	wb.Active = 5
	assert.Equal(t, "", wb.ActiveSheet().Name)
}
