package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var (
	abInput     inputFlags
	abExportDir string
	abFormat    string
	abPublish   string
	abQuiet     bool
	abKeepGoing bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress and optional export",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if err := validFormat(abFormat); err != nil {
			return err
		}
		c := currentConfig()
		lopt, err := abInput.loadOptions(c)
		if err != nil {
			return err
		}
		aopt := abInput.analysisOptions(cmd, c)
		if err := aopt.Validate(); err != nil {
			return err
		}
		exportDir := abExportDir
		if exportDir == "" && !cmd.Flags().Changed("export-dir") {
			exportDir = c.OutputDir
		}

		out := cmd.OutOrStdout()
		pub := newPublisher(cmd.Context(), abPublish, logger)
		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := runAnalysis(path, lopt, aopt, pub.sink())
			if err != nil {
				if !abKeepGoing {
					return err
				}
				failed++
				logger.Error("analysis failed", "path", path, "error", err)
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", filepath.Base(path), err)
				continue
			}
			pub.report(rep)
			if err := emitReport(rep, path, outputOptions{
				Format:    abFormat,
				ExportDir: exportDir,
				Quiet:     abQuiet,
				Writer:    out,
			}); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, drops duplicates and sorts.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	addInputFlags(analyzeBatchCmd, &abInput)
	analyzeBatchCmd.Flags().StringVar(&abExportDir, "export-dir", "", "export directory (default: output_dir from config)")
	analyzeBatchCmd.Flags().StringVar(&abFormat, "format", "markdown", "stdout format: markdown|console|json")
	analyzeBatchCmd.Flags().StringVar(&abPublish, "publish", "", "dashboard feed URL to publish progress and reports to")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	analyzeBatchCmd.Flags().BoolVar(&abKeepGoing, "keep-going", false, "continue with the next file when one fails")
}
