package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sheetpilot/internal/config"
	"sheetpilot/internal/store"
)

var (
	historyLimit   int
	historyPrompts bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the action history log",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if historyPrompts {
			prompts, err := st.RecentPrompts(context.Background(), historyLimit)
			if err != nil {
				return err
			}
			if len(prompts) == 0 {
				fmt.Println("No prompts recorded yet.")
				return nil
			}
			for _, p := range prompts {
				fmt.Println(p)
			}
			return nil
		}

		entries, err := st.RecentHistory(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No history yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-18s %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.ActionName, e.Description)
		}
		return nil
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show LLM usage totals by model",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		summaries, err := st.UsageByModel(context.Background())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No usage recorded yet.")
			return nil
		}
		fmt.Printf("%-24s %8s %12s %12s\n", "MODEL", "CALLS", "IN TOKENS", "OUT TOKENS")
		for _, u := range summaries {
			fmt.Printf("%-24s %8d %12d %12d\n", u.Model, u.Calls, u.InputTokens, u.OutputTokens)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.Flags().BoolVar(&historyPrompts, "prompts", false, "Show recent prompts instead of applied actions")
}

// openStore opens the audit database without requiring an API key, so
// the read-only commands work in unconfigured workspaces.
func openStore() (*store.Store, error) {
	cfg, err := config.Load(config.Path(workspace))
	if err != nil {
		return nil, err
	}
	dbPath := cfg.Storage.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(workspace, dbPath)
	}
	return store.Open(dbPath)
}
