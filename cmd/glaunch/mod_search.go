package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"glaunch/internal/source"

	"github.com/spf13/cobra"
)

var (
	searchCategory int
	searchPage     int
)

var modSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the mod registry",
	Long: `Search the mod registry by name.

Examples:
  glaunch mod search minimap
  glaunch mod search "better trees" --category 4 --page 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runModSearch,
}

var modCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List registry mod categories",
	Args:  cobra.NoArgs,
	RunE:  runModCategories,
}

func init() {
	modSearchCmd.Flags().IntVar(&searchCategory, "category", 0, "category ID filter (0 = all)")
	modSearchCmd.Flags().IntVar(&searchPage, "page", 0, "result page")
	modCmd.AddCommand(modSearchCmd)
	modCmd.AddCommand(modCategoriesCmd)
}

func runModSearch(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	ctx := context.Background()

	page, err := service.SearchMods(ctx, source.SearchQuery{
		Query:    strings.Join(args, " "),
		Category: searchCategory,
		Page:     searchPage,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(page.Mods) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No mods found")
		return nil
	}

	for _, m := range page.Mods {
		fmt.Fprintf(cmd.OutOrStdout(), "%-8d %-30s %-20s %d downloads\n", m.ID, m.Name, m.Author, m.Downloads)
		if verbose && m.Summary != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "         %s\n", m.Summary)
		}
	}
	if page.TotalCount > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Page %d, %d total results\n", page.Page, page.TotalCount)
	}
	return nil
}

func runModCategories(cmd *cobra.Command, args []string) error {
	service, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	cats, err := service.ModCategories(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(cats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	for _, c := range cats {
		fmt.Fprintf(cmd.OutOrStdout(), "%-6d %s\n", c.ID, c.Name)
	}
	return nil
}
