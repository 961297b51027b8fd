package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sheetpilot/internal/session"
	"sheetpilot/internal/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	Long: `Starts a read-eval loop. Each line is interpreted as a spreadsheet
instruction and applied to the active sheet.

Special commands:
  /show              print the active sheet
  /helpful, /unhelpful  tag the last reply
  /quit              exit`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	wb, err := loadWorkbook()
	if err != nil {
		return err
	}
	a, err := bootstrap(wb)
	if err != nil {
		return err
	}
	defer a.close()

	sheet := a.session.Workbook.ActiveSheet()
	fmt.Printf("sheetpilot ready. Sheet %q: %d rows, %d columns.\n",
		sheet.Name, len(sheet.Data.Rows), len(sheet.Data.Columns))
	fmt.Println("Type an instruction, or /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "/quit", "/exit":
			return nil
		case "/show":
			printDataset(a.session.Workbook.ActiveSheet().Data)
			continue
		case "/helpful", "/unhelpful":
			tagLastReply(a.session, strings.TrimPrefix(line, "/"))
			continue
		}

		res, err := a.session.HandleInput(context.Background(), line)
		if err != nil {
			if errors.Is(err, session.ErrBusy) {
				fmt.Println("Still working on the previous request.")
				continue
			}
			return err
		}
		if res.NoOp {
			continue
		}
		fmt.Println(res.Reply)
		if res.Chart != nil {
			printChart(res.Chart)
		}
	}
	return scanner.Err()
}

func tagLastReply(s *session.Session, feedback string) {
	turns := s.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == types.RoleAssistant {
			if err := s.TagFeedback(i, feedback); err != nil {
				fmt.Println(err)
			} else {
				fmt.Printf("Noted, thanks.\n")
			}
			return
		}
	}
	fmt.Println("Nothing to tag yet.")
}

func printDataset(ds types.Dataset) {
	if len(ds.Columns) == 0 {
		fmt.Println("(empty sheet)")
		return
	}
	fmt.Println(strings.Join(ds.Columns, " | "))
	for _, row := range ds.Rows {
		cells := make([]string, len(ds.Columns))
		for i, col := range ds.Columns {
			cells[i] = types.Stringify(row[col])
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	fmt.Printf("(%d rows)\n", len(ds.Rows))
}

func printChart(chart *types.ChartDescriptor) {
	fmt.Printf("[%s chart: %s]\n", chart.Type, chart.Title)
	for i, label := range chart.Labels {
		var parts []string
		for _, s := range chart.Series {
			if i < len(s.Data) {
				parts = append(parts, fmt.Sprintf("%s=%v", s.Label, s.Data[i]))
			}
		}
		fmt.Printf("  %s: %s\n", label, strings.Join(parts, ", "))
	}
}
