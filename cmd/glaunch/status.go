package main

import (
	"context"
	"encoding/json"
	"fmt"

	"glaunch/internal/domain"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show installed instances and pending updates",
	Args:  cobra.NoArgs,
	Long: `Show every installed instance across both branches, with the recorded
version and whether the latest-tracking instance has an update pending.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type instanceStatus struct {
	Branch           string `json:"branch"`
	Version          int    `json:"version"`
	InstalledVersion int    `json:"installedVersion"`
	Status           string `json:"status"`
	Mods             int    `json:"mods"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	ctx := context.Background()

	var statuses []instanceStatus
	for _, branch := range []domain.Branch{domain.BranchRelease, domain.BranchPreRelease} {
		for _, v := range service.InstalledVersions(branch) {
			installed, err := service.Instances().InstalledVersion(branch, v)
			if err != nil {
				continue
			}
			mods, _ := service.InstalledMods(branch, v)

			statuses = append(statuses, instanceStatus{
				Branch:           branch.String(),
				Version:          v,
				InstalledVersion: installed,
				Status:           service.Instances().Status(ctx, branch, v).String(),
				Mods:             len(mods),
			})
		}
	}

	if jsonOutput {
		out, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(statuses) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No instances installed")
		return nil
	}

	for _, s := range statuses {
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%d\tversion %d\t%s\t%d mod(s)\n",
			s.Branch, s.Version, s.InstalledVersion, s.Status, s.Mods)
	}
	return nil
}
