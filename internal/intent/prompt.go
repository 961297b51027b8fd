package intent

import (
	"fmt"
	"strings"

	"sheetpilot/internal/types"
)

// Context carries the conversation state the prompt needs for continuity.
type Context struct {
	RecentActions []types.Action
	LastQuery     string
}

// maxRecentActions bounds how much action history goes into the prompt.
const maxRecentActions = 3

// BuildSystemInstruction constructs the fixed system prompt: dataset shape,
// per-column inferred types, and the most recent actions.
func BuildSystemInstruction(ds types.Dataset, ctx Context) string {
	var b strings.Builder

	b.WriteString("You are a spreadsheet assistant. You operate on the user's data ")
	b.WriteString("exclusively through the provided tools; never invent data or column names.\n\n")

	fmt.Fprintf(&b, "The sheet has %d rows and %d columns.\n", len(ds.Rows), len(ds.Columns))
	if len(ds.Columns) > 0 {
		b.WriteString("Columns:\n")
		for _, col := range ds.Columns {
			fmt.Fprintf(&b, "- %s (%s)\n", col, ds.InferColumnType(col))
		}
	}

	recent := ctx.RecentActions
	if len(recent) > maxRecentActions {
		recent = recent[len(recent)-maxRecentActions:]
	}
	if len(recent) > 0 {
		b.WriteString("\nRecent actions:\n")
		for _, a := range recent {
			fmt.Fprintf(&b, "- %s: %s\n", a.Name(), a.Describe())
		}
	}
	if ctx.LastQuery != "" {
		fmt.Fprintf(&b, "\nPrevious request: %s\n", ctx.LastQuery)
	}

	b.WriteString("\nRow indices are 0-based. When the user asks a question that ")
	b.WriteString("needs no data change, answer in plain text instead of calling a tool.")
	return b.String()
}
