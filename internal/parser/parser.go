// Package parser loads tabular files into tables.
package parser

import (
	"log/slog"
	"sort"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Loader reads one file format into a table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*table.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// Options controls loading.
type Options struct {
	// Delimiter forces the CSV delimiter; zero sniffs it.
	Delimiter    rune
	NumberFormat table.NumberFormat
	SheetName    string
	// SheetIndex is 1-based and used when SheetName is empty.
	SheetIndex    int
	MaxRows       int
	MaxFileSizeMB int
	NormalizeCEP  bool
	Logger        *slog.Logger
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		SheetIndex:    1,
		MaxRows:       10_000_000,
		MaxFileSizeMB: 1000,
		NormalizeCEP:  true,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// SupportedExtensions lists the accepted data extensions. Each may carry a .gz, .xz or .zst suffix.
func SupportedExtensions() []string {
	return []string{".csv", ".tsv", ".xlsx"}
}

func findLoader(path string) (Loader, bool) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l, true
		}
	}
	return nil, false
}

// LoadFile validates path, loads it with the matching loader and applies postal code
// normalization when enabled.
func LoadFile(path string, opt Options) (*table.Table, error) {
	info, err := ValidateFile(path, opt.MaxFileSizeMB)
	if err != nil {
		return nil, err
	}
	log := opt.logger()
	log.Info("loading file", "path", path, "size", describeSize(info))
	l, _ := findLoader(path)
	t, err := l.Load(path, opt)
	if err != nil {
		return nil, err
	}
	if opt.NormalizeCEP {
		if cols := NormalizeCEPColumns(t); len(cols) > 0 {
			sort.Strings(cols)
			log.Debug("postal code columns normalized", "columns", cols)
		}
	}
	log.Info("file loaded", "path", path, "rows", t.Len(), "columns", t.Width())
	return t, nil
}
