package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var modInstallFileID int

var modInstallCmd = &cobra.Command{
	Use:   "install <mod-id>",
	Short: "Install a mod into an instance",
	Long: `Download a mod file from the registry into the instance's mods
directory. Declared dependencies are installed automatically when missing;
an already-installed dependency is never replaced.

Examples:
  glaunch mod install 1042
  glaunch mod install 1042 --file 58113
  glaunch mod install 1042 --branch pre-release --version 12`,
	Args: cobra.ExactArgs(1),
	RunE: runModInstall,
}

var modUninstallCmd = &cobra.Command{
	Use:   "uninstall <mod-id>",
	Short: "Remove a mod from an instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runModUninstall,
}

func init() {
	modInstallCmd.Flags().IntVar(&modInstallFileID, "file", 0, "specific file ID to install (0 = latest)")
	modCmd.AddCommand(modInstallCmd)
	modCmd.AddCommand(modUninstallCmd)
}

func runModInstall(cmd *cobra.Command, args []string) error {
	modID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid mod ID %q", args[0])
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

	ctx := context.Background()

	if err := watchProgress(service, func() error {
		return service.InstallMod(ctx, modID, modInstallFileID, branch, modVersion)
	}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed mod %d into %s/%d\n", modID, branch, modVersion)
	return nil
}

func runModUninstall(cmd *cobra.Command, args []string) error {
	modID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid mod ID %q", args[0])
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

	if err := service.UninstallMod(modID, branch, modVersion); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled mod %d from %s/%d\n", modID, branch, modVersion)
	return nil
}
