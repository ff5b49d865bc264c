package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var modUpdateApply bool

var modUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check installed mods for newer registry files",
	Long: `Compare each installed mod against the registry's newest file and list
the stale ones. Nothing is changed unless --apply is given.

Examples:
  glaunch mod update
  glaunch mod update --apply`,
	Args: cobra.NoArgs,
	RunE: runModUpdate,
}

func init() {
	modUpdateCmd.Flags().BoolVar(&modUpdateApply, "apply", false, "install the newer files after checking")
	modCmd.AddCommand(modUpdateCmd)
}

func runModUpdate(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	branch, err := resolveBranch(service)
	if err != nil {
		return err
	}

	ctx := context.Background()

	stale, err := service.ModUpdates(ctx, branch, modVersion)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		if !jsonOutput {
			fmt.Fprintln(cmd.OutOrStdout(), "All mods are up to date")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "[]")
		}
		return nil
	}

	if jsonOutput && !modUpdateApply {
		out, err := json.MarshalIndent(stale, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	for _, m := range stale {
		fmt.Fprintf(cmd.OutOrStdout(), "%-8d %-30s file %d -> %d\n", m.ModID, m.Slug, m.FileID, m.LatestFileID)
	}

	if !modUpdateApply {
		fmt.Fprintln(cmd.OutOrStdout(), "Run with --apply to install these updates")
		return nil
	}

	for _, m := range stale {
		if err := watchProgress(service, func() error {
			return service.InstallMod(ctx, m.ModID, m.LatestFileID, branch, modVersion)
		}); err != nil {
			return fmt.Errorf("updating mod %d: %w", m.ModID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated mod %d to file %d\n", m.ModID, m.LatestFileID)
	}
	return nil
}
