package parser_test

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabloom-cli/internal/parser"
)

const sampleCSV = "id;cidade;valor\n1;São Paulo;10,5\n2;Rio;3,25\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadCSVSniffsDelimiter(t *testing.T) {
	p := writeFile(t, "sales.csv", []byte(sampleCSV))
	tb, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := tb.Names(); !reflect.DeepEqual(got, []string{"id", "cidade", "valor"}) {
		t.Fatalf("names = %v", got)
	}
	if tb.Len() != 2 || tb.Name != "sales.csv" {
		t.Fatalf("unexpected table: rows=%d name=%s", tb.Len(), tb.Name)
	}
	v, _ := tb.Column("valor")
	if x, ok := v.Float(1); !ok || x != 3.25 {
		t.Fatalf("valor[1] = %v,%v", x, ok)
	}
}

func TestSniffDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a,b,c\n1,2,3":  ',',
		"a;b;c\n1;2;3":  ';',
		"a\tb\n1\t2":    '\t',
		"a|b|c\n1|2|3":  '|',
		"single column": ',',
	}
	for in, want := range cases {
		if got := parser.SniffDelimiter(in); got != want {
			t.Fatalf("SniffDelimiter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadCSVWindows1252(t *testing.T) {
	p := writeFile(t, "latin.csv", []byte("cidade,n\nS\xe3o Paulo,1\nBras\xedlia,2\n"))
	tb, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c, _ := tb.Column("cidade")
	if c.Values[0] != "São Paulo" || c.Values[1] != "Brasília" {
		t.Fatalf("decoded values = %v", c.Values)
	}
}

func TestLoadCompressedCSV(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	_ = gw.Close()

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	if _, err := zw.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	_ = zw.Close()

	var xb bytes.Buffer
	xw, err := xz.NewWriter(&xb)
	if err != nil {
		t.Fatalf("xz: %v", err)
	}
	if _, err := xw.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	_ = xw.Close()

	for name, data := range map[string][]byte{"a.csv.gz": gz.Bytes(), "a.csv.zst": zs.Bytes(), "a.csv.xz": xb.Bytes()} {
		tb, err := parser.LoadFile(writeFile(t, name, data), parser.DefaultOptions())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if tb.Len() != 2 || tb.Width() != 3 {
			t.Fatalf("%s: rows=%d cols=%d", name, tb.Len(), tb.Width())
		}
	}
}

func TestLoadCSVCleansBlankRowsAndColumns(t *testing.T) {
	p := writeFile(t, "messy.csv", []byte("a,b,empty\nx\x01,1,\n,,\ny,2,\n"))
	tb, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := tb.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("names = %v", got)
	}
	a, _ := tb.Column("a")
	if !reflect.DeepEqual(a.Values, []string{"x", "y"}) {
		t.Fatalf("values = %q", a.Values)
	}
}

func TestLoadHeaderOnlyKeepsSchema(t *testing.T) {
	p := writeFile(t, "empty.csv", []byte("a,b\n"))
	tb, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.Len() != 0 || tb.Width() != 2 {
		t.Fatalf("rows=%d cols=%d", tb.Len(), tb.Width())
	}
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := parser.LoadFile(writeFile(t, "none.csv", nil), parser.DefaultOptions())
	if !errors.Is(err, parser.ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestLoadMaxRows(t *testing.T) {
	opt := parser.DefaultOptions()
	opt.MaxRows = 1
	_, err := parser.LoadFile(writeFile(t, "big.csv", []byte(sampleCSV)), opt)
	var dv *parser.DataValidationError
	if !errors.As(err, &dv) {
		t.Fatalf("expected DataValidationError, got %v", err)
	}
}

func TestValidateFile(t *testing.T) {
	_, err := parser.LoadFile(filepath.Join(t.TempDir(), "missing.csv"), parser.DefaultOptions())
	var fl *parser.FileLoadError
	if !errors.As(err, &fl) || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("expected FileLoadError, got %v", err)
	}

	_, err = parser.LoadFile(writeFile(t, "doc.pdf", []byte("x")), parser.DefaultOptions())
	var uf *parser.UnsupportedFormatError
	if !errors.Is(err, parser.ErrUnsupported) || !errors.As(err, &uf) || uf.Ext != ".pdf" {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}

	opt := parser.DefaultOptions()
	opt.MaxFileSizeMB = 1
	big := writeFile(t, "big.csv", bytes.Repeat([]byte("a\n"), 600*1024))
	_, err = parser.LoadFile(big, opt)
	var fs *parser.FileSizeError
	if !errors.As(err, &fs) || fs.MaxMB != 1 {
		t.Fatalf("expected FileSizeError, got %v", err)
	}

	if _, err := parser.ValidateFile(t.TempDir(), 0); !errors.As(err, &fl) {
		t.Fatalf("directory must be rejected, got %v", err)
	}
}

func TestNormalizeCEP(t *testing.T) {
	p := writeFile(t, "cep.csv", []byte("cep,nome\n1310100,a\n01310100,b\n4567000.0,c\n"))
	tb, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c, _ := tb.Column("cep")
	if c.IsNumeric() {
		t.Fatalf("postal codes must become text")
	}
	if want := []string{"01310100", "01310100", "04567000"}; !reflect.DeepEqual(c.Values, want) {
		t.Fatalf("cep = %v, want %v", c.Values, want)
	}

	opt := parser.DefaultOptions()
	opt.NormalizeCEP = false
	raw, err := parser.LoadFile(p, opt)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c, _ := raw.Column("cep"); c.Values[0] != "1310100" {
		t.Fatalf("normalization must be optional, got %v", c.Values)
	}
}

func TestLoadXLSXSheetSelection(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetRow("Sheet1", "A1", &[]any{"id", "status"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]any{1, "open"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if _, err := f.NewSheet("Second"); err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if err := f.SetSheetRow("Second", "A2", &[]any{"code", "city"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if err := f.SetSheetRow("Second", "A3", &[]any{"x1", "Recife"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if err := f.SetSheetRow("Second", "A4", &[]any{"x2", "Natal"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	p := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	first, err := parser.LoadFile(p, parser.DefaultOptions())
	if err != nil {
		t.Fatalf("load first: %v", err)
	}
	if !reflect.DeepEqual(first.Names(), []string{"id", "status"}) || first.Len() != 1 {
		t.Fatalf("first sheet = %v (%d rows)", first.Names(), first.Len())
	}

	opt := parser.DefaultOptions()
	opt.SheetName = "second"
	second, err := parser.LoadFile(p, opt)
	if err != nil {
		t.Fatalf("load second: %v", err)
	}
	if !reflect.DeepEqual(second.Names(), []string{"code", "city"}) || second.Len() != 2 {
		t.Fatalf("second sheet = %v (%d rows)", second.Names(), second.Len())
	}
	if second.Name != "book.xlsx (sheet: Second)" {
		t.Fatalf("name = %q", second.Name)
	}

	opt.SheetName = ""
	opt.SheetIndex = 3
	if _, err := parser.LoadFile(p, opt); err == nil {
		t.Fatalf("expected out of range sheet error")
	}
}
