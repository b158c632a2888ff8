package table

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NumberFormat fixes the decimal and thousands separators. Zero values auto-detect per value.
type NumberFormat struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// ParseNumeric parses locale-formatted numbers such as "1.000,5", "1,000.5", "12%" or "3e-2".
func ParseNumeric(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := nf.DecimalSeparator
	thou := nf.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	// strconv accepts "inf"/"nan" spellings; those are text in a spreadsheet.
	if strings.ContainsAny(raw, "iInN") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isoDatePrefix matches values that start like YYYY-MM-DD.
var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// HasISODatePrefix reports whether s starts with a YYYY-MM-DD shaped prefix.
func HasISODatePrefix(s string) bool { return isoDatePrefix.MatchString(s) }

// ParseISODate parses a strict YYYY-MM-DD value.
func ParseISODate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var timeLayouts = []string{
	time.RFC3339, time.RFC3339Nano,
	"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05", "2006-01-02T15:04:05.000",
	"2006/01/02", "2006/01/02 15:04:05",
	"02/01/2006", "01/02/2006", "2/1/2006", "1/2/2006",
	"02/01/2006 15:04", "02/01/2006 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05", "1/2/2006 3:04:05 PM",
	"02-01-2006", "2.1.2006", "02.01.2006", "02.01.2006 15:04:05",
	"Jan 2, 2006", "2 Jan 2006", "January 2, 2006", "2 January 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

// ParseTime tries a permissive list of layouts. Day-first layouts win over month-first ones for
// ambiguous values like 03/04/2024.
func ParseTime(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
