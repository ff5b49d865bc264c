package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"glaunch/internal/core"
	"glaunch/internal/domain"

	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user cancels an operation.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "1.0.0"

	// Global flags
	configDir  string
	dataDir    string
	branchFlag string
	verbose    bool
	jsonOutput bool
	plain      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "glaunch",
	Short: "glaunch - game launcher and instance manager",
	Long: `glaunch installs, updates, launches, and mods the game. Instances are
kept per (branch, version); version 0 tracks the latest release and updates
in place, while pinned versions are immutable snapshots.

Use subcommands for operations. Run 'glaunch --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/glaunch)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/glaunch)")
	rootCmd.PersistentFlags().StringVarP(&branchFlag, "branch", "b", "", "branch to operate on (release, pre-release)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "plain text progress instead of the interactive view")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error,
// 2 = user cancelled. When --json is set and an error occurs, prints
// {"error":"...","kind":"..."} to stdout before exiting.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, domain.ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q,"kind":%q}`+"\n", err.Error(), domain.Kind(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	// Ensure directories exist
	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	return core.NewService(cfg)
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (core.ServiceConfig, error) {
	cfg := core.ServiceConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
		APIKey:    os.Getenv("GLAUNCH_REGISTRY_KEY"),
	}

	if cfg.ConfigDir == "" || cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
		}
		if cfg.ConfigDir == "" {
			cfg.ConfigDir = filepath.Join(homeDir, ".config", "glaunch")
		}
		if cfg.DataDir == "" {
			cfg.DataDir = filepath.Join(homeDir, ".local", "share", "glaunch")
		}
	}

	return cfg, nil
}

// resolveBranch parses the --branch flag, falling back to the configured
// default branch.
func resolveBranch(svc *core.Service) (domain.Branch, error) {
	name := branchFlag
	if name == "" {
		name = svc.Config().DefaultBranch
	}
	return domain.ParseBranch(name)
}
