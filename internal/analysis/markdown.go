package analysis

import (
	"fmt"
	"strings"
)

// maxMarkdownRows limits the cluster rows printed per column.
const maxMarkdownRows = 15

// Markdown renders a compact plain-text report.
func (r *IndicatorReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[INDICATOR SUMMARY]\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.TotalRows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.TotalColumns))
	if r.IDColumn != "" {
		if r.IDSynthetic {
			b.WriteString(fmt.Sprintf("Identifier: %s (synthetic)\n", r.IDColumn))
		} else {
			b.WriteString(fmt.Sprintf("Identifier: %s\n", r.IDColumn))
		}
	}
	if len(r.Groups) == 0 {
		b.WriteString("\n[NOTES]\n- no columns to describe\n")
		return b.String()
	}

	b.WriteString("\n[COLUMNS]\n")
	for _, g := range r.Groups {
		b.WriteString(fmt.Sprintf("- %s: %s (%s)", safeName(g.Column), g.Kind, g.ValueType))
		switch {
		case g.Statistics != nil && g.Statistics.Date != nil:
			d := g.Statistics.Date
			b.WriteString(fmt.Sprintf(" — %s .. %s", d.Min, d.Max))
			if d.Unparsed > 0 {
				b.WriteString(fmt.Sprintf("; unparsed %d", d.Unparsed))
			}
		case g.Statistics != nil && g.Statistics.Numeric != nil:
			n := g.Statistics.Numeric
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g", n.Min, n.Max, n.Mean))
		case g.Kind == KindCategorical:
			b.WriteString(fmt.Sprintf(" — %d clusters", len(g.Table)))
		}
		b.WriteString("\n")
	}

	for _, g := range r.Groups {
		if len(g.Table) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n[TERMS: %s]\n", safeName(g.Column)))
		b.WriteString("| Term | Frequency | Variants |\n|---|---:|---|\n")
		for i, row := range g.Table {
			if i >= maxMarkdownRows {
				b.WriteString(fmt.Sprintf("| … %d more | | |\n", len(g.Table)-maxMarkdownRows))
				break
			}
			b.WriteString(fmt.Sprintf("| %s | %d | %s |\n", safeCell(row.BaseTerm), row.Frequency, safeCell(strings.Join(row.Variants, "; "))))
		}
	}

	var notes []string
	if r.IDSynthetic {
		notes = append(notes, "no native identifier found; rows were given random identifiers")
	}
	for _, g := range r.Groups {
		if g.DroppedValues > 0 {
			notes = append(notes, fmt.Sprintf("%s: %d rare values excluded by the category cap", g.Column, g.DroppedValues))
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 80 {
		return string(r[:77]) + "..."
	}
	return s
}

func safeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) > 120 {
		return string([]rune(s)[:117]) + "..."
	}
	return s
}
