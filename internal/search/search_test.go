package search

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"chatview/internal/archive"
	"chatview/internal/rows"
)

// sample is a two-channel day followed by a second day; indices 0..8.
func sample() []rows.Row {
	return []rows.Row{
		rows.DateRow{Date: "1/1/24"},
		rows.HeaderRow{Server: "S", Channel: "general"},
		rows.MessageRow{Time: "10:00 AM", Content: "Hello there"},
		rows.MessageRow{Time: "10:05 AM", Content: "hello again"},
		rows.HeaderRow{Server: "S", Channel: "random"},
		rows.MessageRow{Time: "11:00 AM", Content: "nothing here"},
		rows.DateRow{Date: "1/2/24"},
		rows.HeaderRow{Server: "S", Channel: "random"},
		rows.MessageRow{Time: "9:00 AM", Content: "HELLO tomorrow"},
	}
}

func TestFilterBlankQueryKeepsAll(t *testing.T) {
	rs := sample()
	for _, q := range []string{"", "   ", "\t"} {
		got := Filter(rs, q)
		if !reflect.DeepEqual(got, All(len(rs))) {
			t.Fatalf("Filter(%q) = %v", q, got)
		}
	}
}

func TestFilterContext(t *testing.T) {
	rs := sample()
	cases := []struct {
		q    string
		want []int
	}{
		{"hello", []int{0, 1, 2, 3, 6, 7, 8}},
		{"nothing", []int{4, 5}},
		{"again", []int{3}},
		{"TOMORROW", []int{6, 7, 8}},
		{"  there ", []int{0, 1, 2}},
		{"absent", []int{}},
	}
	for _, c := range cases {
		got := Filter(rs, c.q)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Filter(%q) = %v, want %v", c.q, got, c.want)
		}
	}
}

func TestFilterNoMatchIsEmptyNotNil(t *testing.T) {
	got := Filter(sample(), "zzz")
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v", got)
	}
}

func TestFilterUnicodeCase(t *testing.T) {
	rs := []rows.Row{
		rows.DateRow{Date: "1/1/24"},
		rows.HeaderRow{Server: "S", Channel: "C"},
		rows.MessageRow{Content: "ÜBER Straße"},
	}
	if got := Filter(rs, "über"); len(got) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestContains(t *testing.T) {
	s := []int{1, 3, 7}
	for i, want := range map[int]bool{0: false, 1: true, 3: true, 4: false, 7: true, 8: false} {
		if Contains(s, i) != want {
			t.Errorf("Contains(%d) != %v", i, want)
		}
	}
}

func generate(r *rand.Rand, n int) []rows.Row {
	words := []string{"alpha", "beta", "gamma", "delta"}
	msgs := make([]archive.Message, 0, n)
	for i := 0; i < n; i++ {
		day := 1 + i/(1+r.Intn(6))
		msgs = append(msgs, archive.Message{
			Server:  fmt.Sprintf("s%d", r.Intn(2)),
			Channel: fmt.Sprintf("c%d", r.Intn(3)),
			Date:    fmt.Sprintf("2024-01-%02dT%02d:00:00Z", min(day, 28), i%24),
			Content: words[r.Intn(len(words))] + " " + words[r.Intn(len(words))],
		})
	}
	archive.SortByDate(msgs)
	rs, err := rows.Build(msgs)
	if err != nil {
		panic(err)
	}
	return rs
}

func TestIndexMatchesFilter(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		rs := generate(r, 5+r.Intn(60))
		idx := NewIndex(rs)
		if idx.Len() != len(rs) {
			t.Fatalf("Len = %d, want %d", idx.Len(), len(rs))
		}
		for _, q := range []string{"", "alpha", "BETA", "a d", "mma", "zzz"} {
			want := Filter(rs, q)
			got := idx.Filter(q)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("round %d query %q: index %v, filter %v", round, q, got, want)
			}
		}
	}
}

func TestIndexMatches(t *testing.T) {
	idx := NewIndex(sample())
	if got := idx.Matches("hello"); !reflect.DeepEqual(got, []int{2, 3, 8}) {
		t.Fatalf("Matches = %v", got)
	}
	if got := idx.Matches(""); got != nil {
		t.Fatalf("Matches blank = %v", got)
	}
}
