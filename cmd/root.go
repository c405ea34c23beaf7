package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/showlens/internal/config"
	"github.com/KaramelBytes/showlens/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "showlens",
	Short: "showlens: analytics over a streaming catalog export",
	Long: `showlens loads a catalog of movies and TV shows from a CSV export or a DuckDB table
and runs named analyses over it: type and genre breakdowns, country and rating
distributions, duration buckets, talent rankings, data quality checks and more.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadConfig()
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.showlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: trace|debug|info|warn|error|off (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	}
	cfg = c

	lc := logging.DefaultConfig()
	if cfg != nil {
		lc.Level = cfg.LogLevel
		lc.Format = cfg.LogFormat
	}
	if flagLogLevel != "" {
		lc.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		lc.Format = flagLogFormat
	}
	if debug {
		lc.Level = "debug"
		lc.Caller = true
	}
	logging.Init(lc)
}
