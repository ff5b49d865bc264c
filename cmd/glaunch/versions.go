package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List available versions for a branch",
	Long: `List the versions offered by the patch server for a branch, newest
first. Version 0 is the auto-updating "latest" pointer. Installed versions
are marked.

Examples:
  glaunch versions
  glaunch versions --branch pre-release --json`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
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
	versions := service.VersionList(ctx, branch)

	if jsonOutput {
		type versionEntry struct {
			Version   int  `json:"version"`
			Latest    bool `json:"latest"`
			Installed bool `json:"installed"`
		}
		entries := make([]versionEntry, len(versions))
		for i, v := range versions {
			entries[i] = versionEntry{
				Version:   v,
				Latest:    v == 0,
				Installed: service.IsVersionInstalled(branch, v),
			}
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Versions for %s:\n", branch)
	for _, v := range versions {
		label := fmt.Sprintf("  %d", v)
		if v == 0 {
			label += " (latest)"
		}
		if service.IsVersionInstalled(branch, v) {
			label += " [installed]"
		}
		fmt.Fprintln(cmd.OutOrStdout(), label)
	}
	return nil
}
