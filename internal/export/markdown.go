package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chatview/internal/rows"
)

// Markdown writes the kept rows as a markdown document: days become level-2
// headings, groups level-3 headings and messages list items. A nil kept
// writes every row.
func Markdown(w io.Writer, rs []rows.Row, kept []int) error {
	bw := bufio.NewWriter(w)
	if kept == nil {
		kept = allIndices(len(rs))
	}
	first := true
	for _, i := range kept {
		if i < 0 || i >= len(rs) {
			continue
		}
		switch r := rs[i].(type) {
		case rows.DateRow:
			if !first {
				fmt.Fprintln(bw)
			}
			fmt.Fprintf(bw, "## %s\n\n", r.Date)
		case rows.HeaderRow:
			fmt.Fprintf(bw, "### %s", escape(r.Label()))
			if r.Category != "" {
				fmt.Fprintf(bw, " (%s)", escape(r.Category))
			}
			fmt.Fprint(bw, "\n\n")
		case rows.MessageRow:
			fmt.Fprintf(bw, "- **%s** %s\n", r.Time, rows.OneLine(r.Content, 0))
			for _, a := range r.Attachments {
				if a.URL != "" {
					fmt.Fprintf(bw, "  - [%s](%s)\n", escape(a.Filename), a.URL)
				} else {
					fmt.Fprintf(bw, "  - %s\n", escape(a.Filename))
				}
			}
		}
		first = false
	}
	return bw.Flush()
}

// MarkdownFile writes Markdown to path, creating parent directories.
func MarkdownFile(path string, rs []rows.Row, kept []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Markdown(f, rs, kept); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// escape keeps brackets in names from turning into links.
func escape(s string) string {
	r := strings.NewReplacer(
		"[", `\[`,
		"]", `\]`,
		"#", `\#`,
	)
	return r.Replace(s)
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
