package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var installVersion int

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install or update a game instance without launching",
	Long: `Download and install the game for the selected branch and version.

Calling install on an already-current instance is a fast no-op: only the
version marker is compared.

Examples:
  glaunch install
  glaunch install --branch pre-release
  glaunch install --version 12`,
	Args: cobra.NoArgs,
	RunE: runInstallGame,
}

func init() {
	installCmd.Flags().IntVar(&installVersion, "version", 0, "version to install (0 = latest)")

	rootCmd.AddCommand(installCmd)
}

func runInstallGame(cmd *cobra.Command, args []string) error {
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

	if err := watchProgress(service, func() error {
		return service.EnsureInstalled(ctx, branch, installVersion)
	}); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Instance %s/%d is up to date\n", branch, installVersion)
	}
	return nil
}
