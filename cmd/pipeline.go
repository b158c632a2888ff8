package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/dashboard"
	"github.com/KaramelBytes/tabloom-cli/internal/parser"
	"github.com/KaramelBytes/tabloom-cli/internal/report"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

// inputFlags are the loader and analysis flags shared by analyze and analyze-batch.
type inputFlags struct {
	Delimiter     string
	Decimal       string
	Thousands     string
	SheetName     string
	SheetIndex    int
	NormalizeCEP  bool
	Threshold     float64
	MaxTerms      int
	MaxCategories int
}

func currentConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	if c, err := cfgpkg.Default(); err == nil {
		return c
	}
	return &cfgpkg.Global{FuzzyThreshold: analysis.DefaultFuzzyThreshold, MaxTermsFuzzy: analysis.DefaultMaxTerms, MaxCategories: analysis.DefaultMaxCategories}
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	case ":":
		return ':', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'tab'|'|'|':')", s)
	}
}

func parseNumberFormat(decimal, thousands string) (table.NumberFormat, error) {
	var nf table.NumberFormat
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		nf.DecimalSeparator = ','
	case ".", "dot":
		nf.DecimalSeparator = '.'
	case "":
	default:
		return nf, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(strings.TrimSpace(thousands)) {
	case ",":
		nf.ThousandsSeparator = ','
	case ".":
		nf.ThousandsSeparator = '.'
	case "space", " ":
		nf.ThousandsSeparator = ' '
	case "":
	default:
		return nf, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	if nf.DecimalSeparator != 0 && nf.DecimalSeparator == nf.ThousandsSeparator {
		return nf, fmt.Errorf("--decimal and --thousands must differ")
	}
	return nf, nil
}

// loadOptions merges config limits with the flags.
func (f inputFlags) loadOptions(c *cfgpkg.Global) (parser.Options, error) {
	opt := parser.DefaultOptions()
	opt.Logger = logger
	if c.MaxRows > 0 {
		opt.MaxRows = c.MaxRows
	}
	if c.MaxFileSizeMB > 0 {
		opt.MaxFileSizeMB = c.MaxFileSizeMB
	}
	d, err := parseDelimiter(f.Delimiter)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	nf, err := parseNumberFormat(f.Decimal, f.Thousands)
	if err != nil {
		return opt, err
	}
	opt.NumberFormat = nf
	opt.SheetName = f.SheetName
	if f.SheetIndex > 0 {
		opt.SheetIndex = f.SheetIndex
	}
	opt.NormalizeCEP = f.NormalizeCEP
	return opt, nil
}

// analysisOptions starts from the config and applies the analysis flags the user set on cmd.
func (f inputFlags) analysisOptions(cmd *cobra.Command, c *cfgpkg.Global) analysis.Options {
	opt := analysis.DefaultOptions()
	opt.FuzzyThreshold = c.FuzzyThreshold
	opt.MaxTerms = c.MaxTermsFuzzy
	if c.MaxCategories > 0 {
		opt.MaxCategories = c.MaxCategories
	}
	if cmd == nil {
		return opt
	}
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		opt.FuzzyThreshold = f.Threshold
	}
	if flags.Changed("max-terms") {
		opt.MaxTerms = f.MaxTerms
	}
	if flags.Changed("max-categories") {
		opt.MaxCategories = f.MaxCategories
	}
	return opt
}

// runAnalysis loads path and generates its indicator report.
func runAnalysis(path string, lopt parser.Options, aopt analysis.Options, sink analysis.ProgressSink) (*analysis.IndicatorReport, error) {
	t, err := parser.LoadFile(path, lopt)
	if err != nil {
		return nil, err
	}
	a, err := analysis.NewAnalyzer(aopt, logger)
	if err != nil {
		return nil, err
	}
	rep, err := a.Generate(t, sink)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", filepath.Base(path), err)
	}
	return rep, nil
}

// publisher forwards progress and reports to a dashboard feed. Failures are logged, never returned;
// after the first failed progress post the remaining ones are skipped.
type publisher struct {
	ctx    context.Context
	client *dashboard.Client
	log    *slog.Logger
	down   bool
}

func newPublisher(ctx context.Context, url string, log *slog.Logger) *publisher {
	if url == "" {
		return nil
	}
	return &publisher{ctx: ctx, client: dashboard.NewClient(url), log: log}
}

// Progress implements analysis.ProgressSink.
func (p *publisher) Progress(processed, total int) {
	if p == nil || p.down {
		return
	}
	if err := p.client.PublishProgress(p.ctx, processed, total); err != nil {
		p.log.Warn("dashboard progress failed", "error", err)
		p.down = true
	}
}

func (p *publisher) report(rep *analysis.IndicatorReport) bool {
	if p == nil {
		return false
	}
	out, err := p.client.PublishReport(p.ctx, rep)
	if err != nil {
		p.log.Warn("dashboard update failed", "error", err)
		return false
	}
	p.log.Info("dashboard updated", "groups", out.Groups, "id_column", out.IDColumn)
	return true
}

// sink returns p as a ProgressSink, or nil when publishing is off.
func (p *publisher) sink() analysis.ProgressSink {
	if p == nil {
		return nil
	}
	return p
}

type outputOptions struct {
	Format     string
	OutputPath string
	ExportDir  string
	Quiet      bool
	Writer     io.Writer
}

func validFormat(f string) error {
	switch f {
	case "", "markdown", "md", "console", "json":
		return nil
	default:
		return fmt.Errorf("unsupported --format: %s (use markdown|console|json)", f)
	}
}

// renderReport renders rep in the requested format. Console output is only meant for terminals.
func renderReport(w io.Writer, rep *analysis.IndicatorReport, format string) error {
	switch format {
	case "", "markdown", "md":
		_, err := fmt.Fprintln(w, rep.Markdown())
		return err
	case "console":
		report.Show(w, rep, report.DefaultTheme)
		return nil
	case "json":
		b, err := utils.PrettyJSON(rep)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		return validFormat(format)
	}
}

// emitReport prints rep, writes it to --output and exports it to --export-dir. With --output the
// report is not printed to w.
func emitReport(rep *analysis.IndicatorReport, source string, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.OutputPath != "" {
		var body []byte
		if opts.Format == "json" {
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			body = b
		} else {
			body = []byte(rep.Markdown())
		}
		if err := utils.SafeWriteFile(opts.OutputPath, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if !opts.Quiet {
			fmt.Fprintf(w, "✓ Wrote analysis to %s\n", opts.OutputPath)
		}
	} else if !opts.Quiet {
		if err := renderReport(w, rep, opts.Format); err != nil {
			return err
		}
	}
	if opts.ExportDir != "" {
		dir, err := utils.ExpandHome(opts.ExportDir)
		if err != nil {
			return err
		}
		files, err := report.Export(rep, dir, utils.BaseName(source))
		if err != nil {
			return err
		}
		if !opts.Quiet {
			fmt.Fprintf(w, "✓ Exported %d files to %s\n", len(files), dir)
		}
	}
	return nil
}
