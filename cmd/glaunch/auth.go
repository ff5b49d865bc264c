package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the mod registry API key",
}

var authSetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Store the registry API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := initService()
		if err != nil {
			return fmt.Errorf("initializing service: %w", err)
		}
		defer service.Close()

		if err := service.SaveRegistryKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Registry API key saved")
		return nil
	},
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the stored registry API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := initService()
		if err != nil {
			return fmt.Errorf("initializing service: %w", err)
		}
		defer service.Close()

		if err := service.DeleteRegistryKey(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Registry API key removed")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a registry API key is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := initService()
		if err != nil {
			return fmt.Errorf("initializing service: %w", err)
		}
		defer service.Close()

		if service.HasRegistryKey() {
			fmt.Fprintln(cmd.OutOrStdout(), "Registry API key: stored")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Registry API key: not set")
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authRemoveCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
