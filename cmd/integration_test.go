package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/report"
)

const ordersCSV = `pedido;cidade;valor;data_pedido
1;São Paulo;10,5;2024-01-05
2;sao paulo;20;2024-01-06
3;Rio de Janeiro;30;2024-02-01
4;rio de janeiro;40;2024-03-01
5;Curitiba;50;2024-03-02
`

// resetFlags restores every flag to its default so state does not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns stdout and the error.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args; it fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolate points HOME at a temp dir so config and log files stay out of the real home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Cleanup(func() { _ = closeLog() })
	return home
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "orders.csv", ordersCSV)

	out := runCmd(t, "analyze", p)
	for _, want := range []string{
		"[INDICATOR SUMMARY]",
		"Identifier: pedido\n",
		"- cidade: categorical (text) — 3 clusters",
		"- valor: continuous (numeric)",
		"- data_pedido: date (text) — 2024-01-05 00:00:00 .. 2024-03-02 00:00:00",
		"| RIO DE JANEIRO | 2 |",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONAndExport(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "orders.csv", ordersCSV)
	exportDir := filepath.Join(home, "out")

	out := runCmd(t, "analyze", p, "--format", "json", "--export-dir", exportDir)
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "✓ Exported")
	if start < 0 || end < start {
		t.Fatalf("unexpected output:\n%s", out)
	}
	var rep analysis.IndicatorReport
	if err := json.Unmarshal([]byte(out[start:end]), &rep); err != nil {
		t.Fatalf("stdout is not a report: %v\n%s", err, out)
	}
	if rep.IDColumn != "pedido" || rep.IDSynthetic || rep.TotalRows != 5 || len(rep.Groups) != 3 {
		t.Fatalf("unexpected report header: %+v", rep)
	}

	rows, err := report.ReadClusterTable(filepath.Join(exportDir, "orders_cidade.csv"))
	if err != nil {
		t.Fatalf("read cluster table: %v", err)
	}
	g, ok := rep.Group("cidade")
	if !ok {
		t.Fatalf("cidade group missing")
	}
	if len(rows) != len(g.Table) {
		t.Fatalf("exported %d rows, report has %d", len(rows), len(g.Table))
	}
	for _, name := range []string{"orders_indicators.json", "orders_report.json", "orders_valor_statistics.txt", "orders_data_pedido_statistics.txt"} {
		if _, err := os.Stat(filepath.Join(exportDir, name)); err != nil {
			t.Fatalf("missing export %s: %v", name, err)
		}
	}
}

func TestCLI_AnalyzeOutputFile(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "orders.csv", ordersCSV)
	dst := filepath.Join(home, "summary.md")

	out := runCmd(t, "analyze", p, "-o", dst)
	if !strings.Contains(out, "✓ Wrote analysis to") || strings.Contains(out, "[INDICATOR SUMMARY]") {
		t.Fatalf("unexpected stdout:\n%s", out)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(b), "[INDICATOR SUMMARY]") {
		t.Fatalf("unexpected file content:\n%s", b)
	}
}

func TestCLI_AnalyzeSyntheticIdentifier(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "feedback.csv", "comentario\nbom\nbom\nruim\n")

	out := runCmd(t, "analyze", p)
	if !strings.Contains(out, "Identifier: _synthetic_id (synthetic)") {
		t.Fatalf("expected synthetic identifier:\n%s", out)
	}
	if !strings.Contains(out, "| BOM | 2 |") {
		t.Fatalf("expected BOM cluster:\n%s", out)
	}
}

func TestCLI_AnalyzeRejectsBadFlags(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "orders.csv", ordersCSV)
	for _, args := range [][]string{
		{"analyze", p, "--format", "html"},
		{"analyze", p, "--delimiter", "#"},
		{"analyze", p, "--decimal", "x"},
		{"analyze", p, "--threshold", "150"},
		{"analyze", filepath.Join(home, "missing.csv")},
		{"analyze", writeFile(t, home, "notes.txt", "hello")},
	} {
		if _, err := execCmd(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestCLI_AnalyzeExplicitZeroThreshold(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "codes.csv", "id,code\n1,abc\n2,xyz\n3,abd\n")

	clusters := func(args ...string) int {
		t.Helper()
		out := runCmd(t, append([]string{"analyze", p, "--format", "json"}, args...)...)
		var rep analysis.IndicatorReport
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("stdout is not a report: %v\n%s", err, out)
		}
		g, ok := rep.Group("code")
		if !ok {
			t.Fatalf("code group missing:\n%s", out)
		}
		return len(g.Table)
	}
	if n := clusters(); n != 3 {
		t.Fatalf("config threshold: got %d clusters, want 3", n)
	}
	// threshold 0 accepts every pair, so the first seed absorbs all terms
	if n := clusters("--threshold", "0"); n != 1 {
		t.Fatalf("--threshold 0: got %d clusters, want 1", n)
	}
	// max-terms 0 puts every column over the cap
	if n := clusters("--threshold", "0", "--max-terms", "0"); n != 3 {
		t.Fatalf("--max-terms 0: got %d clusters, want 3", n)
	}
}

func TestCLI_AnalyzePublishToDownDashboardIsNotFatal(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "orders.csv", ordersCSV)
	out := runCmd(t, "analyze", p, "--publish", "http://127.0.0.1:1")
	if !strings.Contains(out, "[INDICATOR SUMMARY]") {
		t.Fatalf("report not printed:\n%s", out)
	}
}

func TestCLI_Terms(t *testing.T) {
	home := isolate(t)
	p := writeFile(t, home, "reviews.csv", "id,comentario\n1,Entrega rápida\n2,entrega atrasada\n3,Entrega rapida demais\n")

	out := runCmd(t, "terms", p, "--columns", "comentario", "--json")
	var freqs []struct {
		Term      string `json:"term"`
		Frequency int    `json:"frequency"`
		UniqueIDs int    `json:"unique_ids"`
	}
	if err := json.Unmarshal([]byte(out), &freqs); err != nil {
		t.Fatalf("terms output is not JSON: %v\n%s", err, out)
	}
	if len(freqs) == 0 || freqs[0].Term != "entrega" || freqs[0].Frequency != 3 || freqs[0].UniqueIDs != 3 {
		t.Fatalf("unexpected top term: %+v", freqs)
	}

	out = runCmd(t, "terms", p, "--stopwords", "entrega", "--top", "1")
	if strings.Contains(out, "entrega") || !strings.Contains(out, "rapida") {
		t.Fatalf("custom stopword not applied:\n%s", out)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	cfgPath := filepath.Join(home, "tabloom.yaml")

	runCmd(t, "--config", cfgPath, "config", "set", "fuzzy_threshold", "91")
	runCmd(t, "--config", cfgPath, "config", "set", "stopwords", "loja, produto")
	out := runCmd(t, "--config", cfgPath, "config", "show")
	if !strings.Contains(out, "fuzzy_threshold: 91\n") || !strings.Contains(out, "stopwords: loja,produto\n") {
		t.Fatalf("unexpected config:\n%s", out)
	}
	if _, err := execCmd(t, "--config", cfgPath, "config", "set", "max_categories", "0"); err == nil {
		t.Fatalf("expected validation error for max_categories 0")
	}
	if _, err := execCmd(t, "--config", cfgPath, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
