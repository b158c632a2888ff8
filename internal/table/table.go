// Package table holds the in-memory tabular model shared by the loaders and the analysis.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValueType is the underlying value type of a column.
type ValueType int

const (
	// Text covers strings and mixed content.
	Text ValueType = iota
	// Numeric means every non-null value parsed as a number.
	Numeric
)

func (v ValueType) String() string {
	switch v {
	case Numeric:
		return "numeric"
	default:
		return "text"
	}
}

// Column is a named sequence of positional values. A value is null when Valid[i] is false.
type Column struct {
	Name   string
	Values []string
	Valid  []bool

	typ     ValueType
	numbers []float64
}

// NewColumn builds a column from raw cell strings. Cells that are empty after trimming are null.
// The value type is inferred with the auto-detecting number format.
func NewColumn(name string, cells []string) *Column {
	return NewColumnWithFormat(name, cells, NumberFormat{})
}

// NewColumnWithFormat is NewColumn with explicit decimal/thousands separators.
func NewColumnWithFormat(name string, cells []string, nf NumberFormat) *Column {
	c := &Column{
		Name:   strings.TrimSpace(name),
		Values: make([]string, len(cells)),
		Valid:  make([]bool, len(cells)),
	}
	for i, raw := range cells {
		v := strings.TrimSpace(raw)
		c.Values[i] = v
		c.Valid[i] = v != ""
	}
	c.infer(nf)
	return c
}

func (c *Column) infer(nf NumberFormat) {
	nums := make([]float64, len(c.Values))
	seen := 0
	for i, v := range c.Values {
		if !c.Valid[i] {
			continue
		}
		x, ok := ParseNumeric(v, nf)
		if !ok {
			c.typ = Text
			c.numbers = nil
			return
		}
		nums[i] = x
		seen++
	}
	if seen == 0 {
		c.typ = Text
		c.numbers = nil
		return
	}
	c.typ = Numeric
	c.numbers = nums
}

// ForceText marks the column as text regardless of its content.
func (c *Column) ForceText() {
	c.typ = Text
	c.numbers = nil
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Values) }

// Type returns the inferred value type.
func (c *Column) Type() ValueType { return c.typ }

// IsNumeric reports whether the column holds numbers only.
func (c *Column) IsNumeric() bool { return c.typ == Numeric }

// Value returns the i-th value and whether it is non-null.
func (c *Column) Value(i int) (string, bool) {
	if i < 0 || i >= len(c.Values) || !c.Valid[i] {
		return "", false
	}
	return c.Values[i], true
}

// Float returns the parsed number at row i for numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.typ != Numeric || i < 0 || i >= len(c.numbers) || !c.Valid[i] {
		return 0, false
	}
	return c.numbers[i], true
}

// Key returns the identity used for distinctness. Numeric values compare by value, so "1" and "1.0"
// collapse to the same key.
func (c *Column) Key(i int) (string, bool) {
	if x, ok := c.Float(i); ok {
		return strconv.FormatFloat(x, 'g', -1, 64), true
	}
	return c.Value(i)
}

// NonNull counts non-null values.
func (c *Column) NonNull() int {
	n := 0
	for _, ok := range c.Valid {
		if ok {
			n++
		}
	}
	return n
}

// HasNulls reports whether any value is null.
func (c *Column) HasNulls() bool { return c.NonNull() < len(c.Valid) }

// Distinct counts distinct non-null values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{}, len(c.Values))
	for i := range c.Values {
		if k, ok := c.Key(i); ok {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// IsUnique reports whether no non-null value repeats and at most one value is null.
func (c *Column) IsUnique() bool {
	nulls := len(c.Values) - c.NonNull()
	return nulls <= 1 && c.Distinct() == c.NonNull()
}

// MeanLength is the mean rune length of the non-null values.
func (c *Column) MeanLength() float64 {
	var total, n int
	for i, v := range c.Values {
		if !c.Valid[i] {
			continue
		}
		total += utf8.RuneCountInString(v)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// Table is an ordered collection of equally long named columns.
type Table struct {
	Name    string
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a table. Column names must be unique and all columns must have the same length.
func New(name string, cols ...*Column) (*Table, error) {
	t := &Table{Name: name, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// FromRecords builds a table from a header and row records. Short rows are padded with nulls.
func FromRecords(name string, header []string, records [][]string, nf NumberFormat) (*Table, error) {
	names := UniqueNames(header)
	cells := make([][]string, len(names))
	for j := range cells {
		cells[j] = make([]string, len(records))
	}
	for i, rec := range records {
		for j := range names {
			if j < len(rec) {
				cells[j][i] = rec[j]
			}
		}
	}
	cols := make([]*Column, len(names))
	for j, n := range names {
		cols[j] = NewColumnWithFormat(n, cells[j], nf)
	}
	return New(name, cols...)
}

// UniqueNames trims header names and disambiguates blanks and duplicates.
func UniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		if k, ok := seen[n]; ok {
			seen[n] = k + 1
			n = fmt.Sprintf("%s.%d", n, k)
		} else {
			seen[n] = 1
		}
		out[i] = n
	}
	return out
}

// Len returns the row count.
func (t *Table) Len() int { return t.rows }

// Width returns the column count.
func (t *Table) Width() int { return len(t.columns) }

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// Columns returns the columns in order. The slice is a copy; columns are shared.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Prepend returns a new table with c as its first column.
func (t *Table) Prepend(c *Column) (*Table, error) {
	cols := append([]*Column{c}, t.columns...)
	return New(t.Name, cols...)
}

// MoveFirst returns a new table with the named column moved to the first position.
func (t *Table) MoveFirst(name string) (*Table, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	if i == 0 {
		return t, nil
	}
	cols := make([]*Column, 0, len(t.columns))
	cols = append(cols, t.columns[i])
	for j, c := range t.columns {
		if j != i {
			cols = append(cols, c)
		}
	}
	return New(t.Name, cols...)
}
