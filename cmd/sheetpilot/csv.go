package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sheetpilot/internal/types"
)

// readCSV loads a CSV file into a Dataset. The first row is the header.
// Cells that parse as numbers become numeric values; everything else
// stays a string.
func readCSV(path string) (types.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return types.Dataset{}, fmt.Errorf("%s is empty", path)
	}

	columns := records[0]
	ds := types.Dataset{Columns: columns}
	for _, record := range records[1:] {
		row := make(types.Record, len(columns))
		for i, col := range columns {
			if i >= len(record) {
				row[col] = ""
				continue
			}
			row[col] = parseCell(record[i])
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func parseCell(cell string) types.Value {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return cell
}

// writeCSV saves a Dataset back to disk in column order.
func writeCSV(path string, ds types.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Columns); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		record := make([]string, len(ds.Columns))
		for i, col := range ds.Columns {
			record[i] = types.Stringify(row[col])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
