package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent install, update and mod operations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	entries, err := service.DB().History(historyLimit)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history yet")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-13s %s/%d", e.CreatedAt.Format("2006-01-02 15:04"), e.Operation, e.Branch, e.Version)
		if e.ModID != 0 {
			line += fmt.Sprintf("  mod %d", e.ModID)
		}
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
