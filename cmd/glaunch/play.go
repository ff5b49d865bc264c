package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	playName    string
	playVersion int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Install or update the game if needed, then launch it",
	Long: `Ensure the target instance is installed and current, then start the game.

Version 0 (the default) tracks the latest release for the branch and is
updated in place before launching; a pinned version is installed once and
never changed.

Examples:
  glaunch play --name Steve
  glaunch play --name Steve --branch pre-release
  glaunch play --name Steve --version 12`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playName, "name", "n", "", "player name (1-16 characters)")
	playCmd.Flags().IntVar(&playVersion, "version", 0, "version to play (0 = latest)")
	playCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
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

	return watchProgress(service, func() error {
		return service.EnsureInstalledAndLaunch(ctx, playName, branch, playVersion)
	})
}
