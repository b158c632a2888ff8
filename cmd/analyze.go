package cmd

import (
	"github.com/spf13/cobra"
)

var (
	anaInput      inputFlags
	anaOutputPath string
	anaExportDir  string
	anaFormat     string
	anaPublish    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Describe every column of a CSV/TSV/XLSX file",
	Long: `Resolve a row identifier (native or synthetic), then describe each other column:
date columns get their range, continuous numeric columns a summary, and categorical columns a
table of fuzzy term clusters with the ids of the rows behind each cluster.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if err := validFormat(anaFormat); err != nil {
			return err
		}
		c := currentConfig()
		lopt, err := anaInput.loadOptions(c)
		if err != nil {
			return err
		}
		aopt := anaInput.analysisOptions(cmd, c)
		if err := aopt.Validate(); err != nil {
			return err
		}

		pub := newPublisher(cmd.Context(), anaPublish, logger)
		rep, err := runAnalysis(path, lopt, aopt, pub.sink())
		if err != nil {
			return err
		}
		pub.report(rep)

		return emitReport(rep, path, outputOptions{
			Format:     anaFormat,
			OutputPath: anaOutputPath,
			ExportDir:  anaExportDir,
			Writer:     cmd.OutOrStdout(),
		})
	},
}

// addLoadFlags registers the file loading flags.
func addLoadFlags(cmd *cobra.Command, f *inputFlags) {
	cmd.Flags().StringVar(&f.Delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' | ':' (sniffed if omitted)")
	cmd.Flags().StringVar(&f.Decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.Thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.SheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	cmd.Flags().IntVar(&f.SheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().BoolVar(&f.NormalizeCEP, "normalize-cep", true, "zero-pad columns that look like Brazilian postal codes (CEP) to 8 digits")
}

// addInputFlags registers the loader and analysis flags shared by analyze and analyze-batch.
func addInputFlags(cmd *cobra.Command, f *inputFlags) {
	addLoadFlags(cmd, f)
	cmd.Flags().Float64Var(&f.Threshold, "threshold", 0, "fuzzy similarity threshold 0-100 (default: fuzzy_threshold from config)")
	cmd.Flags().IntVar(&f.MaxTerms, "max-terms", 0, "above this many distinct terms a column is not clustered (default: max_terms_fuzzy from config)")
	cmd.Flags().IntVar(&f.MaxCategories, "max-categories", 0, "keep only the most frequent values per categorical column (default: max_categories from config)")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addInputFlags(analyzeCmd, &anaInput)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis (Markdown, or JSON with --format json)")
	analyzeCmd.Flags().StringVar(&anaExportDir, "export-dir", "", "export JSON, per-column CSV cluster tables and statistics to this directory")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "stdout format: markdown|console|json")
	analyzeCmd.Flags().StringVar(&anaPublish, "publish", "", "dashboard feed URL to publish progress and the report to (e.g. http://127.0.0.1:8050)")
}
