package analysis

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Options configures an Analyzer.
type Options struct {
	FuzzyThreshold float64 `json:"fuzzy_threshold"`
	MaxTerms       int     `json:"max_terms"`
	MaxCategories  int     `json:"max_categories"`

	// Clusterer replaces the fuzzy clusterer built from FuzzyThreshold and MaxTerms.
	Clusterer Clusterer `json:"-"`
	// NewID generates synthetic identifiers. Defaults to random UUIDs.
	NewID IDGenerator `json:"-"`
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold: DefaultFuzzyThreshold,
		MaxTerms:       DefaultMaxTerms,
		MaxCategories:  DefaultMaxCategories,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if math.IsNaN(o.FuzzyThreshold) || o.FuzzyThreshold < 0 || o.FuzzyThreshold > 100 {
		return &ConfigError{Field: "fuzzy_threshold", Value: o.FuzzyThreshold, Reason: "must be within 0-100"}
	}
	if o.MaxTerms < 0 {
		return &ConfigError{Field: "max_terms_fuzzy", Value: o.MaxTerms, Reason: "must not be negative"}
	}
	if o.MaxCategories < 1 {
		return &ConfigError{Field: "max_categories", Value: o.MaxCategories, Reason: "must be positive"}
	}
	return nil
}

// ProgressSink receives (processed, total) after each analyzed column.
type ProgressSink interface {
	Progress(processed, total int)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(processed, total int)

// Progress calls f.
func (f ProgressFunc) Progress(processed, total int) { f(processed, total) }

// ColumnGroup is the report entry of one non-identifier column. Statistics is set for date and
// continuous columns, Table for categorical ones; both keys are always serialized.
type ColumnGroup struct {
	Column     string       `json:"column"`
	Kind       Kind         `json:"kind"`
	ValueType  string       `json:"value_type"`
	Statistics *Statistics  `json:"statistics"`
	Table      []ClusterRow `json:"table"`
	// DroppedValues counts distinct values excluded by the category cap.
	DroppedValues int `json:"dropped_values,omitempty"`
}

// IndicatorReport is the result of one analysis run.
type IndicatorReport struct {
	Source       string        `json:"source,omitempty"`
	IDColumn     string        `json:"id_column"`
	IDSynthetic  bool          `json:"id_is_synthetic"`
	TotalRows    int           `json:"total_rows"`
	TotalColumns int           `json:"total_columns"`
	Groups       []ColumnGroup `json:"groups"`
}

// Group returns the group for the named column.
func (r *IndicatorReport) Group(column string) (*ColumnGroup, bool) {
	for i := range r.Groups {
		if r.Groups[i].Column == column {
			return &r.Groups[i], true
		}
	}
	return nil, false
}

// Analyzer produces indicator reports. It holds no per-run state and may be reused.
type Analyzer struct {
	opts      Options
	clusterer Clusterer
	log       *slog.Logger
}

// NewAnalyzer validates opts and builds the clusterer. A nil logger uses slog.Default().
func NewAnalyzer(opts Options, log *slog.Logger) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	c := opts.Clusterer
	if c == nil {
		fc, err := NewFuzzyClusterer(opts.FuzzyThreshold, opts.MaxTerms)
		if err != nil {
			return nil, err
		}
		c = fc
	}
	return &Analyzer{opts: opts, clusterer: c, log: log}, nil
}

// Generate resolves the identifier and analyzes every other column in order. sink may be nil.
// An empty table yields a report without groups.
func (a *Analyzer) Generate(t *table.Table, sink ProgressSink) (*IndicatorReport, error) {
	if t == nil {
		return nil, fmt.Errorf("generate indicators: nil table")
	}
	rep := &IndicatorReport{Source: t.Name, TotalRows: t.Len(), TotalColumns: t.Width(), Groups: []ColumnGroup{}}
	resolved, id, ok, err := EnsureIdentifier(t, a.opts.NewID)
	if err != nil {
		return nil, fmt.Errorf("resolve identifier: %w", err)
	}
	if !ok {
		a.log.Info("empty table, no indicators", "source", t.Name)
		return rep, nil
	}
	rep.IDColumn = id.Column
	rep.IDSynthetic = id.Synthetic
	rep.TotalColumns = resolved.Width()
	a.log.Debug("identifier resolved", "column", id.Column, "synthetic", id.Synthetic)

	ids, _ := resolved.Column(id.Column)
	rows := resolved.Len()
	var todo []*table.Column
	for _, c := range resolved.Columns() {
		if c.Name != id.Column {
			todo = append(todo, c)
		}
	}
	total := len(todo)
	for i, c := range todo {
		g := ColumnGroup{Column: c.Name, ValueType: c.Type().String()}
		g.Kind = Classify(c, rows)
		switch g.Kind {
		case KindDate:
			g.Statistics = &Statistics{Date: DateRange(c)}
		case KindContinuous:
			if st := NumericSummary(c); st != nil {
				g.Statistics = &Statistics{Numeric: st}
			}
		default:
			g.Table, g.DroppedValues = a.clusterColumn(c, ids)
			if g.DroppedValues > 0 {
				a.log.Info("category cap applied", "column", c.Name, "kept", a.opts.MaxCategories, "dropped", g.DroppedValues)
			}
		}
		a.log.Debug("column analyzed", "column", c.Name, "kind", g.Kind.String(), "clusters", len(g.Table))
		rep.Groups = append(rep.Groups, g)
		if sink != nil {
			sink.Progress(i+1, total)
		}
	}
	return rep, nil
}
