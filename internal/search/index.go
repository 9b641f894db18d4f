package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chatview/internal/rows"
)

type entry struct {
	row     int
	content string // lowered
	date    int
	header  int
}

// Index holds the lowered content and the context rows of every message so
// repeated queries skip the backward scan. It gives the same results as
// Filter and is safe for concurrent use once built.
type Index struct {
	n       int
	entries []entry
}

// NewIndex builds the index in a single forward pass over rs.
func NewIndex(rs []rows.Row) *Index {
	lower := cases.Lower(language.Und)
	idx := &Index{n: len(rs)}
	date, header := -1, -1
	for i, r := range rs {
		switch v := r.(type) {
		case rows.DateRow:
			// the backward scan never looks past a date
			date, header = i, -1
		case rows.HeaderRow:
			header = i
		case rows.MessageRow:
			idx.entries = append(idx.entries, entry{row: i, content: lower.String(v.Content), date: date, header: header})
			date, header = -1, -1
		}
	}
	return idx
}

// Len is the number of rows the index was built from.
func (x *Index) Len() int { return x.n }

// Filter is Filter(rows, query) for the indexed rows.
func (x *Index) Filter(query string) []int {
	q := normalizeQuery(query)
	if q == "" {
		return All(x.n)
	}
	kept := map[int]struct{}{}
	for _, e := range x.entries {
		if !strings.Contains(e.content, q) {
			continue
		}
		kept[e.row] = struct{}{}
		if e.date >= 0 {
			kept[e.date] = struct{}{}
		}
		if e.header >= 0 {
			kept[e.header] = struct{}{}
		}
	}
	return sortedKeys(kept)
}

// Matches returns only the indices of matching message rows.
func (x *Index) Matches(query string) []int {
	q := normalizeQuery(query)
	if q == "" {
		return nil
	}
	var out []int
	for _, e := range x.entries {
		if strings.Contains(e.content, q) {
			out = append(out, e.row)
		}
	}
	return out
}
