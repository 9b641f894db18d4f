package rows

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// OneLine collapses s onto a single line and, when maxWidth > 0, truncates
// it to that many terminal cells with a trailing ellipsis.
func OneLine(s string, maxWidth int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxWidth <= 0 || runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}
