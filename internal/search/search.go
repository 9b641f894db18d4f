package search

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chatview/internal/rows"
)

// All returns every index of a row sequence of length n.
func All(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func normalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return cases.Lower(language.Und).String(q)
}

// Filter returns the sorted indices of rows to show for query: each message
// row whose content contains the query case-insensitively, plus the date and
// header rows that introduce it. A blank query keeps everything.
//
// Context is found by scanning back from the match. The scan ends at the
// first DateRow, which is kept, or at an earlier MessageRow, which is not;
// the first HeaderRow passed on the way is kept.
func Filter(rs []rows.Row, query string) []int {
	q := normalizeQuery(query)
	if q == "" {
		return All(len(rs))
	}
	lower := cases.Lower(language.Und)
	kept := map[int]struct{}{}
	for i, r := range rs {
		mr, ok := r.(rows.MessageRow)
		if !ok || !strings.Contains(lower.String(mr.Content), q) {
			continue
		}
		kept[i] = struct{}{}
		date, header := scanBack(rs, i)
		if date >= 0 {
			kept[date] = struct{}{}
		}
		if header >= 0 {
			kept[header] = struct{}{}
		}
	}
	return sortedKeys(kept)
}

func scanBack(rs []rows.Row, idx int) (date, header int) {
	date, header = -1, -1
	for j := idx - 1; j >= 0; j-- {
		switch rs[j].Kind() {
		case rows.KindMessage:
			return date, header
		case rows.KindHeader:
			if header < 0 {
				header = j
			}
		case rows.KindDate:
			return j, header
		}
	}
	return date, header
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Contains reports whether i is in the sorted index slice.
func Contains(sorted []int, i int) bool {
	n := sort.SearchInts(sorted, i)
	return n < len(sorted) && sorted[n] == i
}
