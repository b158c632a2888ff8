// Package textnorm turns raw cell values into comparison keys and text-mining tokens.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// nonKeyChars matches everything that is not a word character, whitespace or hyphen. Whitespace
// is the Unicode set: separators, \t \n \v \f \r, the \x1c-\x1f information separators and NEL.
var nonKeyChars = regexp.MustCompile(`[^\p{L}\p{N}_\p{Z}\t\n\v\f\r\x1c-\x1f\x{85}-]`)

// Stringify renders any value the way the analysis sees it. nil becomes "none".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "none"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Normalize returns the clustering key of v: lower-cased, accent-stripped, trimmed and without
// punctuation. It is total and idempotent.
func Normalize(v any) string {
	s := strings.ToLower(Stringify(v))
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	s = nonKeyChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CleanText is Normalize without punctuation removal.
func CleanText(v any) string {
	s := strings.ToLower(Stringify(v))
	s = unidecode.Unidecode(s)
	return strings.TrimSpace(strings.ToLower(s))
}

// Fold lower-cases and accent-strips s. Used for name matching.
func Fold(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.ToLower(s)))
}
