package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	deleteVersion int
	deleteForce   bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an installed instance",
	Long: `Remove an instance directory, including its mods and saves. Refused
while the instance is downloading or the game is running.

Examples:
  glaunch delete --version 12
  glaunch delete --branch pre-release --version 0 --force`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().IntVar(&deleteVersion, "version", 0, "version to delete (0 = latest-tracking instance)")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation prompt")

	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	branch, err := resolveBranch(service)
	if err != nil {
		return err
	}

	if !service.IsVersionInstalled(branch, deleteVersion) {
		fmt.Fprintf(cmd.OutOrStdout(), "Instance %s/%d is not installed\n", branch, deleteVersion)
		return nil
	}

	if !deleteForce {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete instance %s/%d and all its data? [y/N] ", branch, deleteVersion)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			return ErrCancelled
		}
	}

	if err := service.DeleteInstance(branch, deleteVersion); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%d\n", branch, deleteVersion)
	return nil
}
