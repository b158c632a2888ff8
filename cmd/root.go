package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration; falls back to defaults when the file is broken.
	cfg *cfgpkg.Global

	logger   = slog.Default()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "tabloom",
	Short: "tabloom: describe tabular files with fuzzy term clusters and column indicators",
	Long: `tabloom reads CSV/TSV (optionally gzip, xz or zstd compressed) and XLSX files, resolves a row
identifier, and describes every other column: date ranges, numeric summaries, or categorical
term clusters that group spelling variants together with the ids of the rows they came from.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	_ = closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: keep going on defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		if c, err = cfgpkg.Default(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
			c = &cfgpkg.Global{FuzzyThreshold: 88, MaxTermsFuzzy: 500, MaxCategories: 200, LogLevel: "info"}
		}
	}
	cfg = c

	level, err := cfgpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}
	logFile, err := utils.ExpandHome(cfg.LogFile)
	if err != nil {
		logFile = ""
	}
	_ = closeLog()
	logger, closeLog = cfgpkg.SetupLogger(logFile, level)
}
