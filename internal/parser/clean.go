package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

var controlChars = regexp.MustCompile(`[\x00-\x1F]+`)

var cepPattern = regexp.MustCompile(`^\d{7,8}(\.0)?$`)

const (
	cepSampleSize = 100
	cepMinShare   = 0.8
)

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cleanCell trims and drops control characters.
func cleanCell(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// buildTable cleans the records and assembles the table: blank rows and columns are dropped and
// cell text is stripped of control characters.
func buildTable(path string, header []string, records [][]string, opt Options) (*table.Table, error) {
	width := len(header)
	for _, rec := range records {
		width = max(width, len(rec))
	}
	used := make([]bool, width)
	kept := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, width)
		blank := true
		for j := range row {
			if j < len(rec) {
				row[j] = cleanCell(rec[j])
			}
			if row[j] != "" {
				blank = false
				used[j] = true
			}
		}
		if !blank {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		// header-only files keep their schema
		for j := range header {
			used[j] = true
		}
	}
	if opt.MaxRows > 0 && len(kept) > opt.MaxRows {
		return nil, &DataValidationError{Reason: "row count exceeds max_rows limit"}
	}

	var names []string
	var cols []int
	for j := 0; j < width; j++ {
		if !used[j] {
			continue
		}
		name := ""
		if j < len(header) {
			name = cleanCell(header[j])
		}
		names = append(names, name)
		cols = append(cols, j)
	}
	projected := make([][]string, len(kept))
	for i, row := range kept {
		p := make([]string, len(cols))
		for k, j := range cols {
			p[k] = row[j]
		}
		projected[i] = p
	}
	t, err := table.FromRecords(filepath.Base(path), names, projected, opt.NumberFormat)
	if err != nil {
		return nil, &FileLoadError{Path: path, Reason: "build table", Err: err}
	}
	return t, nil
}

// IsCEPColumn reports whether at least 80% of the first 100 non-null values look like Brazilian
// postal codes (7 or 8 digits, optionally with a trailing ".0").
func IsCEPColumn(c *table.Column) bool {
	sampled, hits := 0, 0
	for i := 0; i < c.Len() && sampled < cepSampleSize; i++ {
		v, ok := c.Value(i)
		if !ok {
			continue
		}
		sampled++
		if cepPattern.MatchString(v) {
			hits++
		}
	}
	return sampled > 0 && float64(hits) >= float64(sampled)*cepMinShare
}

// FormatCEP keeps the digits of a postal code and left-pads them to 8.
func FormatCEP(s string) string {
	s = strings.ReplaceAll(s, ".0", "")
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) < 8 {
		d = strings.Repeat("0", 8-len(d)) + d
	}
	return d
}

// NormalizeCEPColumns rewrites detected postal code columns as zero-padded text and returns
// their names.
func NormalizeCEPColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if !IsCEPColumn(c) {
			continue
		}
		for i, ok := range c.Valid {
			if ok {
				c.Values[i] = FormatCEP(c.Values[i])
			}
		}
		c.ForceText()
		out = append(out, c.Name)
	}
	return out
}
