package export

import (
	"bufio"
	"fmt"
	"io"

	"chatview/internal/rows"
)

// Text writes the kept rows as an indented plain-text outline, for output
// that is not a terminal.
func Text(w io.Writer, rs []rows.Row, kept []int) error {
	bw := bufio.NewWriter(w)
	if kept == nil {
		kept = allIndices(len(rs))
	}
	for _, i := range kept {
		if i < 0 || i >= len(rs) {
			continue
		}
		switch r := rs[i].(type) {
		case rows.DateRow:
			fmt.Fprintln(bw, r.Date)
		case rows.HeaderRow:
			fmt.Fprintf(bw, "  %s\n", r.Label())
		case rows.MessageRow:
			fmt.Fprintf(bw, "    %-8s  %s", r.Time, rows.OneLine(r.Content, 0))
			for _, a := range r.Attachments {
				fmt.Fprintf(bw, " <%s>", a.Filename)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
