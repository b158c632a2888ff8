package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
)

// consoleRows is how many cluster rows are printed per column.
const consoleRows = 12

// Theme holds the console colors.
type Theme struct {
	Title  lipgloss.Color
	Label  lipgloss.Color
	Column lipgloss.Color
	Hint   lipgloss.Color
}

// DefaultTheme is used by Show.
var DefaultTheme = Theme{
	Title:  lipgloss.Color("#5FAFD7"),
	Label:  lipgloss.Color("#00D787"),
	Column: lipgloss.Color("#FFAF00"),
	Hint:   lipgloss.Color("#6C6C6C"),
}

// Show prints the report in a styled console layout.
func Show(w io.Writer, rep *analysis.IndicatorReport, theme Theme) {
	title := lipgloss.NewStyle().Foreground(theme.Title).Bold(true)
	label := lipgloss.NewStyle().Foreground(theme.Label)
	column := lipgloss.NewStyle().Foreground(theme.Column).Bold(true)
	hint := lipgloss.NewStyle().Foreground(theme.Hint).Italic(true)
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(w, title.Render("TABLE ANALYSIS"))
	fmt.Fprintln(w, rule)
	id := rep.IDColumn
	if id == "" {
		id = "-"
	} else if rep.IDSynthetic {
		id += " (synthetic)"
	}
	fmt.Fprintf(w, "%s %s\n", label.Render("Identifier:"), id)
	fmt.Fprintf(w, "%s %d\n", label.Render("Rows:      "), rep.TotalRows)
	fmt.Fprintf(w, "%s %d\n", label.Render("Columns:   "), rep.TotalColumns)
	fmt.Fprintln(w, strings.Repeat("-", 70))

	if len(rep.Groups) == 0 {
		fmt.Fprintln(w, hint.Render("No columns to group or describe."))
		return
	}
	for _, g := range rep.Groups {
		fmt.Fprintf(w, "\n%s (%s, %s)\n", column.Render("[ "+g.Column+" ]"), g.Kind, g.ValueType)
		switch {
		case len(g.Table) > 0:
			writeClusterTable(w, g.Table)
			if g.DroppedValues > 0 {
				fmt.Fprintln(w, hint.Render(fmt.Sprintf("%d rare values excluded by the category cap", g.DroppedValues)))
			}
		case g.Statistics != nil:
			for _, line := range strings.Split(strings.TrimSpace(string(StatisticsText(g.Statistics))), "\n") {
				k, v, _ := strings.Cut(line, ": ")
				fmt.Fprintf(w, "   - %-8s: %s\n", k, v)
			}
		default:
			fmt.Fprintln(w, hint.Render("No grouped data or statistics."))
		}
	}
}

func writeClusterTable(w io.Writer, rows []analysis.ClusterRow) {
	termW := len("base_term")
	for i, r := range rows {
		if i >= consoleRows {
			break
		}
		termW = max(termW, len([]rune(r.BaseTerm)))
	}
	fmt.Fprintf(w, "%-*s  %9s  %s\n", termW, "base_term", "frequency", "variants")
	for i, r := range rows {
		if i >= consoleRows {
			fmt.Fprintf(w, "… %d more\n", len(rows)-consoleRows)
			break
		}
		pad := termW - len([]rune(r.BaseTerm))
		fmt.Fprintf(w, "%s%s  %9d  %s\n", r.BaseTerm, strings.Repeat(" ", pad), r.Frequency, truncate(strings.Join(r.Variants, VariantSeparator), 80))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
