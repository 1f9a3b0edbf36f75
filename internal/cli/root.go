// internal/cli/root.go
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/arc-language/aptcache/pkg/cachefile"
	"github.com/arc-language/aptcache/pkg/config"
)

var (
	cfgFile string
	rootDir string
	arch    string
	debug   bool
	cfg     *config.Config
)

var headingStyle = lipgloss.NewStyle().Bold(true)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aptc",
	Short: "Query the APT package cache",
	Long: `aptc - query the APT package cache

Reads the dpkg status database and the APT list files and answers the
questions apt-cache does: what is installed, what would be installed,
and what a package depends on.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/aptc/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "read the package database below this directory")
	rootCmd.PersistentFlags().StringVar(&arch, "arch", "", "native architecture (detected when empty)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Override config with flags
	if rootDir != "" {
		cfg.Rebase(rootDir)
	}
	if arch != "" {
		cfg.Architecture = arch
	}
	if debug {
		cfg.Debug = true
	}
	if cfg.Debug && cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
			Level:           log.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
		})
	}

	if err := config.Init(cfg); err != nil {
		return fmt.Errorf("initializing configuration: %w", err)
	}
	return nil
}

func openCache(cmd *cobra.Command) (*cachefile.CacheFile, error) {
	f, err := cachefile.OpenDefault(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("opening package cache: %w", err)
	}
	return f, nil
}
