package analysis

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Clusterer groups terms. Every input position appears in exactly one returned cluster.
type Clusterer interface {
	Cluster(terms []string) [][]string
}

// Default clustering parameters.
const (
	DefaultFuzzyThreshold = 88
	DefaultMaxTerms       = 500
	DefaultMaxCategories  = 200
)

// indelOptions turns the Levenshtein distance into an Indel distance: substitutions cost a
// deletion plus an insertion.
var indelOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 2,
	Matches: levenshtein.IdenticalRunes,
}

// Similarity scores two strings on a 0-100 scale from their Indel distance relative to the
// combined length. Identical strings score 100.
func Similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	// memory stays linear in len(rb)
	d := levenshtein.DistanceForStrings(ra, rb, indelOptions)
	return float64(total-d) / float64(total) * 100
}

// FuzzyClusterer is a greedy first-seed-wins clusterer. Terms are visited in input order; each
// unvisited term seeds a cluster and absorbs every later unvisited term scoring at least
// Threshold against the seed. Above MaxTerms inputs every term is returned as a singleton.
type FuzzyClusterer struct {
	Threshold float64
	MaxTerms  int
}

// NewFuzzyClusterer validates the parameters.
func NewFuzzyClusterer(threshold float64, maxTerms int) (*FuzzyClusterer, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 100 {
		return nil, &ConfigError{Field: "fuzzy_threshold", Value: threshold, Reason: "must be within 0-100"}
	}
	if maxTerms < 0 {
		return nil, &ConfigError{Field: "max_terms_fuzzy", Value: maxTerms, Reason: "must not be negative"}
	}
	return &FuzzyClusterer{Threshold: threshold, MaxTerms: maxTerms}, nil
}

// Cluster partitions terms. The result depends on input order.
func (f *FuzzyClusterer) Cluster(terms []string) [][]string {
	if len(terms) > f.MaxTerms {
		out := make([][]string, len(terms))
		for i, t := range terms {
			out[i] = []string{t}
		}
		return out
	}
	visited := make([]bool, len(terms))
	var out [][]string
	for i, seed := range terms {
		if visited[i] {
			continue
		}
		visited[i] = true
		cluster := []string{seed}
		for j := i + 1; j < len(terms); j++ {
			if visited[j] {
				continue
			}
			if Similarity(seed, terms[j]) >= f.Threshold {
				visited[j] = true
				cluster = append(cluster, terms[j])
			}
		}
		out = append(out, cluster)
	}
	return out
}

// CanonicalLabel picks the longest variant by rune count, breaking ties with the
// lexicographically smallest, and upper-cases it.
func CanonicalLabel(variants []string) string {
	best := ""
	bestLen := -1
	for _, v := range variants {
		n := utf8.RuneCountInString(v)
		if n > bestLen || (n == bestLen && v < best) {
			best, bestLen = v, n
		}
	}
	return strings.ToUpper(best)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
