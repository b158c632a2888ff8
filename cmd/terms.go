package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/parser"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	termsInput     inputFlags
	termsColumns   []string
	termsStopwords []string
	termsTop       int
	termsJSON      bool
)

var termsCmd = &cobra.Command{
	Use:   "terms <file>",
	Short: "Count word frequencies over text columns",
	Long: `Tokenize the chosen text columns (lower-cased, accents stripped, punctuation removed), drop
stopwords and one-letter tokens, and list each term with its frequency and the number of distinct
row identifiers mentioning it. Without --columns every text column except the identifier is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		lopt, err := termsInput.loadOptions(c)
		if err != nil {
			return err
		}
		t, err := parser.LoadFile(args[0], lopt)
		if err != nil {
			return err
		}
		t, id, ok, err := analysis.EnsureIdentifier(t, uuid.NewString)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s has no rows", t.Name)
		}

		columns := termsColumns
		if len(columns) == 0 {
			for _, col := range t.Columns() {
				if col.Name != id.Column && !col.IsNumeric() && col.NonNull() > 0 {
					columns = append(columns, col.Name)
				}
			}
		}
		if len(columns) == 0 {
			return fmt.Errorf("no text columns to mine")
		}

		custom := append(append([]string{}, c.Stopwords...), termsStopwords...)
		freqs, err := textnorm.TermFrequencies(t, columns, id.Column, textnorm.NewStopwordSet(custom...))
		if err != nil {
			return err
		}
		if termsTop > 0 && len(freqs) > termsTop {
			freqs = freqs[:termsTop]
		}
		logger.Debug("terms counted", "columns", columns, "terms", len(freqs))

		out := cmd.OutOrStdout()
		if termsJSON {
			b, err := utils.PrettyJSON(freqs)
			if err != nil {
				return fmt.Errorf("marshal terms: %w", err)
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "Columns: %s\n", strings.Join(columns, ", "))
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TERM\tFREQUENCY\tUNIQUE IDS")
		for _, f := range freqs {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", f.Term, f.Frequency, f.UniqueIDs)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(termsCmd)
	addLoadFlags(termsCmd, &termsInput)
	termsCmd.Flags().StringSliceVar(&termsColumns, "columns", nil, "comma-separated text columns to tokenize (default: all text columns)")
	termsCmd.Flags().StringSliceVar(&termsStopwords, "stopwords", nil, "extra stopwords, added to the built-in and configured ones")
	termsCmd.Flags().IntVar(&termsTop, "top", 20, "number of terms to list (0 = all)")
	termsCmd.Flags().BoolVar(&termsJSON, "json", false, "print JSON instead of a table")
}
