package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"chatview/internal/attach"
	"chatview/internal/rows"
)

// groupOf returns the date and header rows a row belongs to, or -1.
func groupOf(rs []rows.Row, idx int) (date, header int) {
	date, header = -1, -1
	for j := idx; j >= 0; j-- {
		switch rs[j].Kind() {
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

// renderDetailMarkdown builds the markdown shown for a single message.
func renderDetailMarkdown(rs []rows.Row, labels []string, idx int) string {
	mr, ok := rs[idx].(rows.MessageRow)
	if !ok {
		return ""
	}
	b := &strings.Builder{}
	d, h := groupOf(rs, idx)
	if h >= 0 {
		hr := rs[h].(rows.HeaderRow)
		fmt.Fprintf(b, "# %s\n\n", labels[h])
		if hr.Category != "" {
			fmt.Fprintf(b, "- Category: %s\n", hr.Category)
		}
	}
	when := mr.Time
	if d >= 0 {
		when = rs[d].(rows.DateRow).Date + " " + mr.Time
	}
	fmt.Fprintf(b, "- Sent: %s\n\n", when)

	b.WriteString(mr.Content)
	b.WriteString("\n")

	if len(mr.Attachments) > 0 {
		b.WriteString("\n## Attachments\n\n")
		for _, a := range mr.Attachments {
			kind := "file"
			if attach.IsImageLike(a.Filename) {
				kind = "image"
			}
			if a.URL != "" {
				fmt.Fprintf(b, "- [%s](%s) (%s)\n", a.Filename, a.URL, kind)
			} else {
				fmt.Fprintf(b, "- %s (%s, no URL)\n", a.Filename, kind)
			}
		}
	}
	return b.String()
}

func (m *model) openDetail() {
	it, ok := m.selectedItem()
	if !ok {
		return
	}
	m.detailIdx = it.idx
	m.view = viewDetail
	m.renderDetail()
}

func (m *model) renderDetail() {
	content := renderDetailMarkdown(m.rows, m.labels, m.detailIdx)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.st.theme.Glamour),
		glamour.WithWordWrap(max(20, m.width-4)),
	)
	if err == nil {
		if s, err2 := r.Render(content); err2 == nil {
			content = s
		}
	}
	m.vp.Width = m.width
	m.vp.Height = max(3, m.height-chromeLines)
	m.vp.SetContent(content)
	m.vp.GotoTop()
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "h", "q", "backspace":
		m.view = viewRows
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "t":
		m.setTheme((m.themeIdx + 1) % len(themes))
		return m, nil
	case "tab":
		m.view = viewRows
		if len(m.currentAttachments()) > 0 {
			m.focus = focusAttachments
			m.attIdx = 0
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m model) detailView() string {
	header := m.st.title.Render("message") + "  " + m.st.muted.Render("(esc) back  (tab) attachments  (t) theme  (j/k) scroll")
	return header + "\n\n" + m.vp.View() + "\n" + m.st.muted.Render(m.statusMsg)
}
