package textnorm

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// DefaultStopwords is the Portuguese stopword list applied to text-mining tokens.
var DefaultStopwords = []string{
	"de", "a", "mas", "por", "e", "do", "da", "os", "as", "em", "um", "uma", "para", "com",
	"sem", "no", "na", "nos", "nas", "o", "à", "ao", "se", "que", "ou", "é", "foi", "são",
	"está", "ser", "ter", "seu", "sua", "seus", "suas", "ele", "ela", "eles", "elas", "isso",
	"isto", "aquilo", "este", "esta", "esse", "essa", "aquele", "aquela", "qual", "quais",
}

// StopwordSet is a lookup set of lower-cased stopwords.
type StopwordSet map[string]struct{}

// NewStopwordSet merges the default list with custom entries.
func NewStopwordSet(custom ...string) StopwordSet {
	s := make(StopwordSet, len(DefaultStopwords)+len(custom))
	for _, w := range DefaultStopwords {
		s.add(w)
	}
	for _, w := range custom {
		s.add(w)
	}
	return s
}

func (s StopwordSet) add(w string) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return
	}
	s[w] = struct{}{}
	// tokens are accent-stripped before lookup
	s[Fold(w)] = struct{}{}
}

// Contains reports whether w is a stopword.
func (s StopwordSet) Contains(w string) bool {
	_, ok := s[strings.ToLower(w)]
	return ok
}

// RemoveStopwords drops stopwords and tokens of at most one character.
func RemoveStopwords(words []string, stop StopwordSet) []string {
	if stop == nil {
		stop = NewStopwordSet()
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 1 || stop.Contains(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Tokens returns the text-mining tokens of v.
func Tokens(v any, stop StopwordSet) []string {
	return RemoveStopwords(strings.Fields(CleanText(v)), stop)
}

// TermFrequency is one row of a term frequency table.
type TermFrequency struct {
	Term      string `json:"term"`
	Frequency int    `json:"frequency"`
	UniqueIDs int    `json:"unique_ids"`
}

// TermFrequencies counts tokens over the given text columns. When idColumn is set, UniqueIDs
// counts the distinct identifiers whose rows mention the term. Rows are sorted by frequency,
// then term.
func TermFrequencies(t *table.Table, columns []string, idColumn string, stop StopwordSet) ([]TermFrequency, error) {
	cols := make([]*table.Column, 0, len(columns))
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, c)
	}
	var ids *table.Column
	if idColumn != "" {
		c, ok := t.Column(idColumn)
		if !ok {
			return nil, fmt.Errorf("id column %q not found", idColumn)
		}
		ids = c
	}
	counts := map[string]int{}
	owners := map[string]map[string]struct{}{}
	for i := 0; i < t.Len(); i++ {
		id := ""
		if ids != nil {
			id, _ = ids.Key(i)
		}
		for _, c := range cols {
			raw, ok := c.Value(i)
			if !ok {
				continue
			}
			for _, tok := range Tokens(raw, stop) {
				counts[tok]++
				if id == "" {
					continue
				}
				set, ok := owners[tok]
				if !ok {
					set = map[string]struct{}{}
					owners[tok] = set
				}
				set[id] = struct{}{}
			}
		}
	}
	out := make([]TermFrequency, 0, len(counts))
	for term, n := range counts {
		out = append(out, TermFrequency{Term: term, Frequency: n, UniqueIDs: len(owners[term])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	return out, nil
}
