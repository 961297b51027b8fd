package engine

import (
	"fmt"

	"sheetpilot/internal/types"
)

func renameSheet(wb types.Workbook, a types.RenameSheet) (types.Workbook, string, error) {
	if a.NewName == "" {
		return wb, "", types.NewValidationError(a.Name(), "newName", "required")
	}
	for i, s := range wb.Sheets {
		if i != wb.Active && s.Name == a.NewName {
			return wb, "", types.NewValidationError(a.Name(), "newName",
				fmt.Sprintf("a sheet named %q already exists", a.NewName))
		}
	}

	old := wb.ActiveSheet().Name
	next := wb
	next.Sheets = append([]types.Sheet(nil), wb.Sheets...)
	next.Sheets[wb.Active] = types.Sheet{Name: a.NewName, Data: wb.Sheets[wb.Active].Data}
	return next, fmt.Sprintf("Renamed sheet %q to %q.", old, a.NewName), nil
}

func duplicateSheet(wb types.Workbook, a types.DuplicateSheet) (types.Workbook, string, error) {
	src := wb.ActiveSheet()
	name := a.NewName
	if name == "" {
		name = src.Name + " (copy)"
	}
	for _, s := range wb.Sheets {
		if s.Name == name {
			return wb, "", types.NewValidationError(a.Name(), "newName",
				fmt.Sprintf("a sheet named %q already exists", name))
		}
	}

	next := wb
	next.Sheets = append([]types.Sheet(nil), wb.Sheets...)
	next.Sheets = append(next.Sheets, types.Sheet{Name: name, Data: src.Data.Clone()})
	return next, fmt.Sprintf("Duplicated sheet %q as %q.", src.Name, name), nil
}

var chartTypes = map[string]bool{"bar": true, "line": true, "pie": true}

// generateChart builds a chart descriptor for the render surface. Purely a
// projection; the dataset is not consulted or changed.
func generateChart(a types.GenerateChart) (*types.ChartDescriptor, string, error) {
	if !chartTypes[a.ChartType] {
		return nil, "", types.NewValidationError(a.Name(), "chartType",
			fmt.Sprintf("%q is not one of bar, line, pie", a.ChartType))
	}
	if len(a.Labels) == 0 {
		return nil, "", types.NewValidationError(a.Name(), "labels", "required")
	}

	chart := &types.ChartDescriptor{
		Type:   a.ChartType,
		Title:  a.Title,
		Labels: a.Labels,
		Series: a.Series,
	}
	return chart, fmt.Sprintf("Generated %s chart %q.", a.ChartType, a.Title), nil
}
