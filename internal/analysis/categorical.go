package analysis

import (
	"sort"
	"strconv"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// TermRecord collects everything that normalized to Key.
type TermRecord struct {
	Key      string
	Variants map[string]struct{}
	IDs      map[string]struct{}
}

// ClusterRow is one realized cluster of a categorical column.
type ClusterRow struct {
	BaseTerm  string   `json:"base_term"`
	Variants  []string `json:"variants"`
	Frequency int      `json:"frequency"`
	IDs       []string `json:"ids"`
}

// categoryValue returns the value a categorical column groups on. Numeric columns use the parsed
// number, so "1", "1.0" and "1,0" are one value, as they are for Column.Distinct.
func categoryValue(col *table.Column, i int) (string, bool) {
	if x, ok := col.Float(i); ok {
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}
	return col.Value(i)
}

// topValues returns the set of values kept by the category cap and how many distinct values
// were dropped. A nil set means no cap applied.
func topValues(col, ids *table.Column, maxCategories int) (map[string]struct{}, int) {
	counts := map[string]int{}
	var order []string
	for i := 0; i < col.Len(); i++ {
		v, ok := categoryValue(col, i)
		if !ok {
			continue
		}
		if _, ok := ids.Value(i); !ok {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) <= maxCategories {
		return nil, 0
	}
	// stable sort keeps first appearance among equal counts
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	keep := make(map[string]struct{}, maxCategories)
	for _, v := range order[:maxCategories] {
		keep[v] = struct{}{}
	}
	return keep, len(order) - maxCategories
}

// BuildTermRecords groups the non-null (value, identifier) pairs of col by normalized value.
// Numeric values are rendered from their parsed number.
// Records are returned in order of first appearance. Rows whose raw value is outside keep are
// skipped when keep is non-nil.
func BuildTermRecords(col, ids *table.Column, keep map[string]struct{}) []*TermRecord {
	index := map[string]*TermRecord{}
	var out []*TermRecord
	for i := 0; i < col.Len(); i++ {
		v, ok := categoryValue(col, i)
		if !ok {
			continue
		}
		id, ok := ids.Value(i)
		if !ok {
			continue
		}
		if keep != nil {
			if _, kept := keep[v]; !kept {
				continue
			}
		}
		key := textnorm.Normalize(v)
		rec, ok := index[key]
		if !ok {
			rec = &TermRecord{Key: key, Variants: map[string]struct{}{}, IDs: map[string]struct{}{}}
			index[key] = rec
			out = append(out, rec)
		}
		rec.Variants[v] = struct{}{}
		rec.IDs[id] = struct{}{}
	}
	return out
}

// RealizeClusters merges the term records of each cluster into table rows sorted by frequency,
// descending. Frequency counts distinct identifiers.
func RealizeClusters(records []*TermRecord, clusters [][]string) []ClusterRow {
	byKey := make(map[string]*TermRecord, len(records))
	for _, r := range records {
		byKey[r.Key] = r
	}
	rows := make([]ClusterRow, 0, len(clusters))
	for _, cl := range clusters {
		variants := map[string]struct{}{}
		ids := map[string]struct{}{}
		for _, key := range cl {
			rec, ok := byKey[key]
			if !ok {
				continue
			}
			for v := range rec.Variants {
				variants[v] = struct{}{}
			}
			for id := range rec.IDs {
				ids[id] = struct{}{}
			}
		}
		vs := sortedKeys(variants)
		rows = append(rows, ClusterRow{
			BaseTerm:  CanonicalLabel(vs),
			Variants:  vs,
			Frequency: len(ids),
			IDs:       sortedKeys(ids),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Frequency > rows[j].Frequency })
	return rows
}

// clusterColumn runs the categorical path for one column.
func (a *Analyzer) clusterColumn(col, ids *table.Column) ([]ClusterRow, int) {
	keep, dropped := topValues(col, ids, a.opts.MaxCategories)
	records := BuildTermRecords(col, ids, keep)
	if len(records) == 0 {
		return nil, dropped
	}
	terms := make([]string, len(records))
	for i, r := range records {
		terms[i] = r.Key
	}
	return RealizeClusters(records, a.clusterer.Cluster(terms)), dropped
}
