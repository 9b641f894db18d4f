package tui

import (
	"context"
	"image"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"chatview/internal/archive"
	"chatview/internal/attach"
)

type previewState struct {
	att        archive.Attachment
	img        image.Image
	mime       string
	size       int
	loading    bool
	fullscreen bool
	rendered   string
}

type previewLoadedMsg struct {
	att  archive.Attachment
	img  image.Image
	mime string
	size int
	err  error
}

type openedMsg struct {
	name string
	url  string
	err  error
}

type openAction int

const (
	actionNone openAction = iota
	actionPreview
	actionExternal
)

// attachmentAction decides how an attachment is opened: images preview in
// the terminal, everything else goes to the system handler.
func attachmentAction(a archive.Attachment) (openAction, string) {
	if a.URL == "" {
		return actionNone, "No URL found for this attachment."
	}
	if attach.IsImageLike(a.Filename) {
		return actionPreview, ""
	}
	return actionExternal, ""
}

func (m model) openAttachment(a archive.Attachment) (tea.Model, tea.Cmd) {
	act, msg := attachmentAction(a)
	switch act {
	case actionNone:
		m.statusMsg = msg
		return m, nil
	case actionExternal:
		m.statusMsg = "opening " + a.Filename + "..."
		return m, openExternalCmd(m.open, a)
	}
	m.view = viewPreview
	m.preview = previewState{att: a, loading: true}
	m.statusMsg = "downloading " + a.Filename + "..."
	return m, tea.Batch(loadPreviewCmd(m.getter, a), m.spin.Tick)
}

func loadPreviewCmd(g attach.Getter, a archive.Attachment) tea.Cmd {
	return func() tea.Msg {
		b, err := g.Fetch(context.Background(), a.URL)
		if err != nil {
			return previewLoadedMsg{att: a, err: err}
		}
		img, mt, err := attach.Decode(b)
		return previewLoadedMsg{att: a, img: img, mime: mt, size: len(b), err: err}
	}
}

func openExternalCmd(open func(string) error, a archive.Attachment) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{name: a.Filename, url: a.URL, err: open(a.URL)}
	}
}

func (m model) handlePreviewLoaded(msg previewLoadedMsg) (tea.Model, tea.Cmd) {
	// a late result for a preview the user already left
	if m.view != viewPreview || msg.att != m.preview.att {
		return m, nil
	}
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Str("url", msg.att.URL).Msg("preview failed")
		m.view = viewRows
		m.preview = previewState{}
		m.statusMsg = "preview failed: " + msg.err.Error() + "; opening in browser instead"
		return m, openExternalCmd(m.open, msg.att)
	}
	m.preview.loading = false
	m.preview.img = msg.img
	m.preview.mime = msg.mime
	m.preview.size = msg.size
	m.statusMsg = ""
	m.renderPreview()
	return m, nil
}

func (m *model) renderPreview() {
	if m.preview.img == nil {
		return
	}
	w, h := m.width, m.height-chromeLines
	if m.preview.fullscreen {
		h = m.height
	}
	m.preview.rendered = attach.RenderBlocks(m.preview.img, max(1, w), max(1, h))
}

func (m model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.preview.fullscreen {
			m.preview.fullscreen = false
			m.renderPreview()
			return m, nil
		}
		m.closePreview()
	case "q", "h", "backspace":
		m.closePreview()
	case "f":
		m.preview.fullscreen = !m.preview.fullscreen
		m.renderPreview()
	case "o":
		return m, openExternalCmd(m.open, m.preview.att)
	}
	return m, nil
}

func (m *model) closePreview() {
	m.view = viewRows
	m.preview = previewState{}
}

func (m model) previewView() string {
	p := m.preview
	if p.fullscreen && !p.loading {
		return p.rendered
	}
	head := m.st.title.Render(p.att.Filename)
	if p.loading {
		return head + "\n\n" + m.spin.View() + " Downloading..."
	}
	info := p.mime + ", " + humanize.Bytes(uint64(p.size))
	if b := p.img.Bounds(); b.Dx() > 0 {
		info += ", " + humanize.Comma(int64(b.Dx())) + "x" + humanize.Comma(int64(b.Dy()))
	}
	hint := "(f) fullscreen  (o) open in browser  (esc) close"
	if p.fullscreen {
		hint = "(esc) exit fullscreen"
	}
	return head + "  " + m.st.muted.Render(info) + "\n" + p.rendered + "\n" + m.st.muted.Render(hint)
}
