package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var modEnableCmd = &cobra.Command{
	Use:   "enable <mod-id>",
	Short: "Enable a disabled mod",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModToggle(cmd, args[0], true)
	},
}

var modDisableCmd = &cobra.Command{
	Use:   "disable <mod-id>",
	Short: "Disable a mod without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModToggle(cmd, args[0], false)
	},
}

func init() {
	modCmd.AddCommand(modEnableCmd)
	modCmd.AddCommand(modDisableCmd)
}

func runModToggle(cmd *cobra.Command, arg string, enabled bool) error {
	modID, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid mod ID %q", arg)
	}

	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	branch, err := resolveBranch(service)
	if err != nil {
		return err
	}

	if err := service.ToggleMod(modID, enabled, branch, modVersion); err != nil {
		return err
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mod %d %s\n", modID, state)
	return nil
}
