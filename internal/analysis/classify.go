// Package analysis classifies table columns and builds per-column indicator reports.
package analysis

import (
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// Kind is the analysis route of a non-identifier column.
type Kind int

const (
	// KindDate columns are parsed as timestamps and summarized by range.
	KindDate Kind = iota
	// KindContinuous columns are numeric with enough distinct values.
	KindContinuous
	// KindCategorical columns are clustered into term tables.
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindContinuous:
		return "continuous"
	default:
		return "categorical"
	}
}

// MarshalText renders the kind name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "date":
		*k = KindDate
	case "continuous":
		*k = KindContinuous
	case "categorical":
		*k = KindCategorical
	default:
		return &ConfigError{Field: "kind", Value: string(b), Reason: "unknown column kind"}
	}
	return nil
}

var dateKeywords = []string{"data", "date", "day", "dia"}

const (
	lowCardinalityCap     = 30
	lowCardinalityDivisor = 5
)

// IsDateCandidate matches the column name against the date keywords. Values are not inspected.
func IsDateCandidate(name string) bool {
	folded := textnorm.Fold(name)
	for _, k := range dateKeywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}

// IsLowCardinalityNumeric reports numeric columns whose distinct count is below
// min(30, rows/5) with integer division.
func IsLowCardinalityNumeric(c *table.Column, rows int) bool {
	if c == nil || !c.IsNumeric() {
		return false
	}
	return c.Distinct() < min(lowCardinalityCap, rows/lowCardinalityDivisor)
}

// Classify assigns exactly one kind to a column. The first matching rule wins: date name,
// continuous numeric, categorical.
func Classify(c *table.Column, rows int) Kind {
	switch {
	case IsDateCandidate(c.Name):
		return KindDate
	case c.IsNumeric() && !IsLowCardinalityNumeric(c, rows):
		return KindContinuous
	default:
		return KindCategorical
	}
}
