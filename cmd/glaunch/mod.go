package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// modVersion selects the instance mod subcommands operate on.
var modVersion int

var modCmd = &cobra.Command{
	Use:   "mod",
	Short: "Manage mods for an instance",
	Long: `Install, remove, enable, disable and update mods inside an instance's
mods directory. Mod state lives entirely on disk: the filename suffix
distinguishes enabled from disabled mods.`,
}

var modListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mods for an instance",
	Args:  cobra.NoArgs,
	RunE:  runModList,
}

func init() {
	modCmd.PersistentFlags().IntVar(&modVersion, "version", 0, "instance version (0 = latest)")
	modCmd.AddCommand(modListCmd)
	rootCmd.AddCommand(modCmd)
}

func runModList(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	branch, err := resolveBranch(service)
	if err != nil {
		return err
	}

	mods, err := service.InstalledMods(branch, modVersion)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(mods, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(mods) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No mods installed in %s/%d\n", branch, modVersion)
		return nil
	}

	for _, m := range mods {
		state := "enabled"
		if !m.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-8d %-30s file %-8d %s\n", m.ModID, m.Slug, m.FileID, state)
	}
	return nil
}
