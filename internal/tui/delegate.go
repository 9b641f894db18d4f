package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"chatview/internal/rows"
)

const timeCol = 9 // "12:59 PM "

// rowItem wraps a row with its index in the full sequence.
type rowItem struct {
	idx   int
	row   rows.Row
	label string // header text, possibly decorated by a hook
}

func (i rowItem) FilterValue() string { return "" }

// rowDelegate renders every row on exactly one line.
type rowDelegate struct {
	st    styles
	query string
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(rowItem)
	if !ok {
		return
	}
	width := m.Width()
	if width <= 0 {
		width = 80
	}
	selected := index == m.Index()
	var line string
	switch r := it.row.(type) {
	case rows.DateRow:
		line = d.st.date.Render(rows.OneLine("▌ "+r.Date, width))
	case rows.HeaderRow:
		text := "# " + it.label
		if r.Category != "" {
			text += " (" + r.Category + ")"
		}
		line = "  " + d.st.header.Render(rows.OneLine(text, width-2))
	case rows.MessageRow:
		line = d.renderMessage(r, width)
	}
	if selected {
		line = d.st.selected.Render(plainLine(it, width))
	}
	fmt.Fprint(w, line)
}

func (d rowDelegate) renderMessage(r rows.MessageRow, width int) string {
	clip := ""
	if n := len(r.Attachments); n > 0 {
		clip = fmt.Sprintf(" [%d file", n)
		if n > 1 {
			clip += "s"
		}
		clip += "]"
	}
	avail := width - 4 - timeCol - runewidth.StringWidth(clip)
	if avail < 8 {
		avail = 8
	}
	content := rows.OneLine(r.Content, avail)
	content = highlightAll(content, d.query, d.st.text.Render, d.st.match.Render)
	return "    " + d.st.time.Render(fmt.Sprintf("%-*s", timeCol, r.Time)) + content + d.st.clip.Render(clip)
}

// plainLine renders the uncolored text of a row padded to width, for the
// selection bar where nested color codes would fight its background.
func plainLine(it rowItem, width int) string {
	var prefix, body string
	switch r := it.row.(type) {
	case rows.DateRow:
		prefix, body = "▌ ", r.Date
	case rows.HeaderRow:
		prefix, body = "  # ", it.label
		if r.Category != "" {
			body += " (" + r.Category + ")"
		}
	case rows.MessageRow:
		prefix = "    " + fmt.Sprintf("%-*s", timeCol, r.Time)
		body = rows.OneLine(r.Content, 0)
		if n := len(r.Attachments); n > 0 {
			body += fmt.Sprintf(" [%d]", n)
		}
	}
	s := runewidth.Truncate(prefix+body, width, "…")
	return runewidth.FillRight(s, width)
}

// highlightAll styles every case-insensitive occurrence of q in s with hit
// and the rest with plain.
func highlightAll(s, q string, plain, hit func(...string) string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return plain(s)
	}
	lowerS, lowerQ := strings.ToLower(s), strings.ToLower(q)
	if len(lowerS) != len(s) || len(lowerQ) != len(q) {
		// lowering changed byte offsets, skip highlighting
		return plain(s)
	}
	var out strings.Builder
	i := 0
	for i < len(s) {
		idx := strings.Index(lowerS[i:], lowerQ)
		if idx < 0 {
			out.WriteString(plain(s[i:]))
			break
		}
		idx += i
		if idx > i {
			out.WriteString(plain(s[i:idx]))
		}
		out.WriteString(hit(s[idx : idx+len(q)]))
		i = idx + len(q)
	}
	return out.String()
}
