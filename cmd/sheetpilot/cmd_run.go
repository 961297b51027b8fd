package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var runOutput string

var runCmd = &cobra.Command{
	Use:   "run [instruction]",
	Short: "Apply a single instruction to a CSV file",
	Long: `Loads the CSV given with --file, applies one natural language
instruction, prints the confirmation and writes the result back (to
--output if given, otherwise in place).

Example:
  sheetpilot run -f sales.csv "sort by revenue descending"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstruction,
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write the result to this path instead of overwriting the input")
}

func runInstruction(cmd *cobra.Command, args []string) error {
	if filePath == "" {
		return fmt.Errorf("run requires --file")
	}
	wb, err := loadWorkbook()
	if err != nil {
		return err
	}
	a, err := bootstrap(wb)
	if err != nil {
		return err
	}
	defer a.close()

	instruction := strings.Join(args, " ")
	res, err := a.session.HandleInput(context.Background(), instruction)
	if err != nil {
		return err
	}
	if res.NoOp {
		return fmt.Errorf("empty instruction")
	}

	fmt.Println(res.Reply)
	if res.Failure != nil {
		return fmt.Errorf("instruction failed: %s", res.Failure.Kind)
	}
	if res.Chart != nil {
		printChart(res.Chart)
	}

	out := runOutput
	if out == "" {
		out = filePath
	}
	if err := writeCSV(out, res.Workbook.ActiveSheet().Data); err != nil {
		return err
	}
	fmt.Printf("Saved to %s.\n", out)
	return nil
}
