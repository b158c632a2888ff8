// Package report writes indicator reports to disk and reads them back.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// VariantSeparator joins cluster variants in exported tables.
const VariantSeparator = "; "

var clusterHeader = []string{"base_term", "variants", "frequency", "ids"}

var (
	slugDrop  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSpace = regexp.MustCompile(`[-\s]+`)
)

// Slugify turns a column name into a file-name fragment. Empty results become "column".
func Slugify(s string) string {
	s = slugDrop.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "_")
	s = strings.ToLower(strings.Trim(s, "_"))
	if s == "" {
		return "column"
	}
	return s
}

// Meta is the summary written next to the per-column files.
type Meta struct {
	Source       string `json:"source,omitempty"`
	IDColumn     string `json:"id_column"`
	IDSynthetic  bool   `json:"id_is_synthetic"`
	TotalRows    int    `json:"total_rows"`
	TotalColumns int    `json:"total_columns"`
	Groups       int    `json:"groups"`
}

// Export writes the report under dir using base as file prefix:
//
//	<base>_indicators.json          summary
//	<base>_report.json              full report
//	<base>_<column>.csv             cluster table per categorical column
//	<base>_<column>_statistics.txt  statistics per date/continuous column
//
// It returns the written paths in order.
func Export(rep *analysis.IndicatorReport, dir, base string) ([]string, error) {
	if rep == nil {
		return nil, fmt.Errorf("export: nil report")
	}
	if base == "" {
		base = "report"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var written []string
	write := func(name string, data []byte) error {
		p := filepath.Join(dir, name)
		if err := utils.SafeWriteFile(p, data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, p)
		return nil
	}

	meta, err := utils.PrettyJSON(Meta{
		Source:       rep.Source,
		IDColumn:     rep.IDColumn,
		IDSynthetic:  rep.IDSynthetic,
		TotalRows:    rep.TotalRows,
		TotalColumns: rep.TotalColumns,
		Groups:       len(rep.Groups),
	})
	if err != nil {
		return nil, err
	}
	if err := write(base+"_indicators.json", meta); err != nil {
		return nil, err
	}
	full, err := utils.PrettyJSON(rep)
	if err != nil {
		return nil, err
	}
	if err := write(base+"_report.json", full); err != nil {
		return nil, err
	}

	slugs := map[string]int{}
	for _, g := range rep.Groups {
		slug := Slugify(g.Column)
		if n := slugs[slug]; n > 0 {
			slugs[slug] = n + 1
			slug = fmt.Sprintf("%s_%d", slug, n+1)
		} else {
			slugs[slug] = 1
		}
		if g.Table != nil {
			data, err := EncodeClusterTable(g.Table)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", g.Column, err)
			}
			if err := write(fmt.Sprintf("%s_%s.csv", base, slug), data); err != nil {
				return nil, err
			}
		}
		if g.Statistics != nil {
			if err := write(fmt.Sprintf("%s_%s_statistics.txt", base, slug), StatisticsText(g.Statistics)); err != nil {
				return nil, err
			}
		}
	}
	return written, nil
}

// EncodeClusterTable renders rows as CSV. The ids cell is itself a comma-separated record, so
// identifiers containing commas or quotes survive a round trip.
func EncodeClusterTable(rows []analysis.ClusterRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(clusterHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		ids, err := joinRecord(r.IDs)
		if err != nil {
			return nil, err
		}
		rec := []string{r.BaseTerm, strings.Join(r.Variants, VariantSeparator), strconv.Itoa(r.Frequency), ids}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadClusterTable reads a cluster table written by Export.
func ReadClusterTable(path string) ([]analysis.ClusterRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cluster table: %w", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse cluster table: %w", err)
	}
	if len(records) == 0 || strings.Join(records[0], ",") != strings.Join(clusterHeader, ",") {
		return nil, fmt.Errorf("parse cluster table: unexpected header in %s", filepath.Base(path))
	}
	rows := make([]analysis.ClusterRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		freq, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("parse cluster table: line %d: frequency: %w", i+2, err)
		}
		ids, err := splitRecord(rec[3])
		if err != nil {
			return nil, fmt.Errorf("parse cluster table: line %d: ids: %w", i+2, err)
		}
		var variants []string
		if rec[1] != "" {
			variants = strings.Split(rec[1], VariantSeparator)
		}
		rows = append(rows, analysis.ClusterRow{BaseTerm: rec[0], Variants: variants, Frequency: freq, IDs: ids})
	}
	return rows, nil
}

// ReadReport loads a full report written by Export.
func ReadReport(path string) (*analysis.IndicatorReport, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var rep analysis.IndicatorReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}

// StatisticsText renders statistics as "key: value" lines.
func StatisticsText(st *analysis.Statistics) []byte {
	var b strings.Builder
	if d := st.Date; d != nil {
		fmt.Fprintf(&b, "min: %s\nmax: %s\nparsed: %d\nunparsed: %d\n", d.Min, d.Max, d.Parsed, d.Unparsed)
	}
	if n := st.Numeric; n != nil {
		fmt.Fprintf(&b, "min: %s\nmax: %s\nmean: %s\ncount: %d\n", formatFloat(n.Min), formatFloat(n.Max), formatFloat(n.Mean), n.Count)
	}
	return []byte(b.String())
}

func formatFloat(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

func joinRecord(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(items); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func splitRecord(s string) ([]string, error) {
	if s == "" {
		return []string{}, nil
	}
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	return r.Read()
}
