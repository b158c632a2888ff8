package analysis

import (
	"time"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// NaT is reported for date bounds when no value parsed.
const NaT = "NaT"

// TimestampLayout formats date bounds.
const TimestampLayout = "2006-01-02 15:04:05"

// dateSampleSize is how many leading non-null values decide strict ISO parsing.
const dateSampleSize = 50

// Statistics summarizes a date or continuous column. Exactly one field is set.
type Statistics struct {
	Date    *DateStats    `json:"date,omitempty"`
	Numeric *NumericStats `json:"numeric,omitempty"`
}

// DateStats holds the parsed range of a date column.
type DateStats struct {
	Min      string `json:"min"`
	Max      string `json:"max"`
	Parsed   int    `json:"parsed"`
	Unparsed int    `json:"unparsed"`
}

// NumericStats holds the range and mean of a continuous column.
type NumericStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// ParseDates converts a column to timestamps. When the first 50 non-null values all start with
// YYYY-MM-DD every value is parsed strictly as a date; otherwise a permissive layout list is
// used. Values that do not parse come back invalid.
func ParseDates(c *table.Column) ([]time.Time, []bool) {
	strict := true
	sampled := 0
	for i := 0; i < c.Len() && sampled < dateSampleSize; i++ {
		v, ok := c.Value(i)
		if !ok {
			continue
		}
		sampled++
		if !table.HasISODatePrefix(v) {
			strict = false
			break
		}
	}
	parse := table.ParseTime
	if strict {
		parse = table.ParseISODate
	}
	out := make([]time.Time, c.Len())
	valid := make([]bool, c.Len())
	for i := range out {
		v, ok := c.Value(i)
		if !ok {
			continue
		}
		out[i], valid[i] = parse(v)
	}
	return out, valid
}

// DateRange reports the min and max parsed timestamps of c.
func DateRange(c *table.Column) *DateStats {
	times, valid := ParseDates(c)
	st := &DateStats{Min: NaT, Max: NaT}
	var lo, hi time.Time
	for i, t := range times {
		if !valid[i] {
			if _, present := c.Value(i); present {
				st.Unparsed++
			}
			continue
		}
		if st.Parsed == 0 || t.Before(lo) {
			lo = t
		}
		if st.Parsed == 0 || t.After(hi) {
			hi = t
		}
		st.Parsed++
	}
	if st.Parsed > 0 {
		st.Min = lo.Format(TimestampLayout)
		st.Max = hi.Format(TimestampLayout)
	}
	return st
}

// NumericSummary reports min, max and mean over the non-null values of a numeric column.
// It returns nil when the column has no numbers.
func NumericSummary(c *table.Column) *NumericStats {
	var st NumericStats
	var sum float64
	for i := 0; i < c.Len(); i++ {
		x, ok := c.Float(i)
		if !ok {
			continue
		}
		if st.Count == 0 || x < st.Min {
			st.Min = x
		}
		if st.Count == 0 || x > st.Max {
			st.Max = x
		}
		sum += x
		st.Count++
	}
	if st.Count == 0 {
		return nil
	}
	st.Mean = sum / float64(st.Count)
	return &st
}
