package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"editcmd/internal/store"
)

var (
	historyLimit int
	historyClear bool
)

// historyCmd shows the persisted command history
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show persisted command history",
	Long: `Reads the history database (history.database_path). Entries are only
written when history.persist is enabled.`,
	RunE: showHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all stored entries")
}

func showHistory(cmd *cobra.Command, args []string) error {
	s, err := store.NewHistoryStore(cfg.History.DatabasePath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if historyClear {
		if err := s.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, headerStyle.Render("history cleared"))
		return nil
	}

	entries, err := s.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No history recorded"))
		return nil
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d entries", len(entries))))
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s\n", mutedStyle.Render(e.At.Format(time.DateTime)), nameStyle.Render(e.Name))
	}
	return nil
}
