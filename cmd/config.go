package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fuzzy_threshold: %g\n", c.FuzzyThreshold)
		fmt.Fprintf(out, "max_terms_fuzzy: %d\n", c.MaxTermsFuzzy)
		fmt.Fprintf(out, "max_categories: %d\n", c.MaxCategories)
		fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		fmt.Fprintf(out, "max_file_size_mb: %d\n", c.MaxFileSizeMB)
		fmt.Fprintf(out, "stopwords: %s\n", strings.Join(c.Stopwords, ","))
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "dashboard_addr: %s\n", c.DashboardAddr)
		fmt.Fprintf(out, "dashboard_url: %s\n", c.DashboardURL)
		fmt.Fprintf(out, "log_file: %s\n", c.LogFile)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %w", key, err)
		}
		return i, nil
	}
	var err error
	switch key {
	case "fuzzy_threshold":
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil {
			return fmt.Errorf("invalid float for fuzzy_threshold: %w", perr)
		}
		c.FuzzyThreshold = f
	case "max_terms_fuzzy":
		c.MaxTermsFuzzy, err = atoi()
	case "max_categories":
		c.MaxCategories, err = atoi()
	case "max_rows":
		c.MaxRows, err = atoi()
	case "max_file_size_mb":
		c.MaxFileSizeMB, err = atoi()
	case "stopwords":
		var words []string
		for _, w := range strings.Split(val, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		c.Stopwords = words
	case "output_dir":
		c.OutputDir = val
	case "dashboard_addr":
		c.DashboardAddr = val
	case "dashboard_url":
		c.DashboardURL = val
	case "log_file":
		c.LogFile = val
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
