package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"chatview/internal/archive"
	"chatview/internal/attach"
	"chatview/internal/config"
	"chatview/internal/export"
	"chatview/internal/hooks"
	"chatview/internal/rows"
	"chatview/internal/search"
)

type viewState int

const (
	viewRows viewState = iota
	viewDetail
	viewPreview
)

type focus int

const (
	focusRows focus = iota
	focusAttachments
)

const (
	chromeLines  = 3 // title + status + help
	minPaneWidth = 24
	paneBreak    = 70 // below this width the attachment pane is hidden
)

// Options is everything the viewer needs; the rows are built before the UI
// starts so load errors never reach it.
type Options struct {
	Config config.Config
	Log    zerolog.Logger
	Source string
	Rows   []rows.Row
	Stats  archive.Stats
	Hooks  *hooks.HookEnv
	Getter attach.Getter
	Query  string
}

type model struct {
	cfg    config.Config
	log    zerolog.Logger
	source string
	rows   []rows.Row
	labels []string // header labels by row index
	index  *search.Index
	stats  archive.Stats
	getter attach.Getter
	open   func(url string) error

	list  list.Model
	input textinput.Model
	vp    viewport.Model
	spin  spinner.Model
	help  help.Model

	view       viewState
	focus      focus
	visible    []int
	query      string
	searchMode bool
	attIdx     int
	themeIdx   int
	st         styles
	preview    previewState
	detailIdx  int

	width, height int
	statusMsg     string
	showHelp      bool
}

type keymap struct {
	search  key.Binding
	clear   key.Binding
	open    key.Binding
	focus   key.Binding
	theme   key.Binding
	export  key.Binding
	exportZ key.Binding
	back    key.Binding
	help    key.Binding
	quit    key.Binding
}

func newKeymap() keymap {
	return keymap{
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		open:    key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "open")),
		focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "attachments")),
		theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export md")),
		exportZ: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export zip")),
		back:    key.NewBinding(key.WithKeys("esc", "h"), key.WithHelp("esc", "back")),
		help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

var keys = newKeymap()

func New(o Options) model {
	ti := themeIndex(o.Config.Theme)
	st := newStyles(themes[ti])

	lm := list.New([]list.Item{}, rowDelegate{st: st}, 0, 0)
	lm.SetShowTitle(false)
	lm.SetShowStatusBar(false)
	lm.SetShowHelp(false)
	lm.SetFilteringEnabled(false)
	lm.SetShowPagination(false)
	// esc must not quit from the row list
	lm.KeyMap.Quit.SetKeys("q")

	in := textinput.New()
	in.Placeholder = "search messages..."
	in.CharLimit = 200
	in.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	getter := o.Getter
	if getter == nil {
		getter = attach.NewFetcher(o.Config.FetchTimeout, o.Config.MaxDownloadBytes)
	}

	m := model{
		cfg:      o.Config,
		log:      o.Log.With().Str("component", "tui").Logger(),
		source:   o.Source,
		rows:     o.Rows,
		labels:   headerLabels(o.Rows, o.Hooks),
		index:    search.NewIndex(o.Rows),
		stats:    o.Stats,
		getter:   getter,
		open:     attach.OpenExternal,
		list:     lm,
		input:    in,
		vp:       viewport.New(0, 0),
		spin:     sp,
		help:     help.New(),
		themeIdx: ti,
		st:       st,
	}
	m.applyFilter(o.Query)
	return m
}

// headerLabels computes header text once, letting a decorateHeader hook
// replace the default "server / channel".
func headerLabels(rs []rows.Row, env *hooks.HookEnv) []string {
	out := make([]string, len(rs))
	decorate := env.Has("decorateHeader")
	for i, r := range rs {
		h, ok := r.(rows.HeaderRow)
		if !ok {
			continue
		}
		out[i] = h.Label()
		if decorate {
			arg := map[string]any{"server": h.Server, "channel": h.Channel, "category": h.Category}
			if s, ok := env.CallString("decorateHeader", arg); ok && strings.TrimSpace(s) != "" {
				out[i] = rows.OneLine(s, 0)
			}
		}
	}
	return out
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case spinner.TickMsg:
		if !m.preview.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case previewLoadedMsg:
		return m.handlePreviewLoaded(msg)
	case openedMsg:
		if msg.err != nil {
			m.statusMsg = "open failed: " + msg.err.Error()
			m.log.Warn().Err(msg.err).Str("url", msg.url).Msg("external open failed")
		} else {
			m.statusMsg = "opened " + msg.name
		}
		return m, nil
	case exportDoneMsg:
		if msg.err != nil {
			m.statusMsg = "export failed: " + msg.err.Error()
			m.log.Error().Err(msg.err).Msg("export failed")
		} else {
			if ap, _ := filepath.Abs(msg.path); ap != "" {
				msg.path = ap
			}
			m.statusMsg = fmt.Sprintf("exported %d rows to %s", msg.rows, msg.path)
		}
		return m, nil
	case tea.KeyMsg:
		switch m.view {
		case viewDetail:
			return m.updateDetail(msg)
		case viewPreview:
			return m.updatePreview(msg)
		}
		return m.updateRows(msg)
	}
	return m, nil
}

func (m model) updateRows(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchMode {
		switch msg.Type {
		case tea.KeyEnter:
			m.searchMode = false
			m.input.Blur()
			m.applyFilter(m.input.Value())
			return m, nil
		case tea.KeyEsc, tea.KeyCtrlC:
			m.searchMode = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.focus == focusAttachments {
		return m.updateAttachments(msg)
	}

	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.search):
		m.searchMode = true
		m.input.SetValue(m.query)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, keys.clear):
		m.input.SetValue("")
		m.applyFilter("")
		return m, nil
	case msg.Type == tea.KeyEsc:
		if m.query != "" {
			m.input.SetValue("")
			m.applyFilter("")
		}
		return m, nil
	case key.Matches(msg, keys.open):
		if _, ok := m.selectedMessage(); ok {
			m.openDetail()
		}
		return m, nil
	case key.Matches(msg, keys.focus):
		if len(m.currentAttachments()) > 0 {
			m.focus = focusAttachments
			m.attIdx = 0
		} else {
			m.statusMsg = "no attachments on this row"
		}
		return m, nil
	case key.Matches(msg, keys.theme):
		m.setTheme((m.themeIdx + 1) % len(themes))
		m.statusMsg = "theme: " + m.st.theme.Name
		return m, nil
	case key.Matches(msg, keys.export):
		return m, exportCmd(m.exportPath(".md"), m.rows, m.visible, m.source, m.query, false)
	case key.Matches(msg, keys.exportZ):
		return m, exportCmd(m.exportPath(".zip"), m.rows, m.visible, m.source, m.query, true)
	case key.Matches(msg, keys.help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	prev := m.list.Index()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if m.list.Index() != prev {
		m.attIdx = 0
	}
	return m, cmd
}

func (m model) updateAttachments(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	atts := m.currentAttachments()
	switch msg.String() {
	case "tab", "esc", "h":
		m.focus = focusRows
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		if m.attIdx < len(atts)-1 {
			m.attIdx++
		}
	case "k", "up":
		if m.attIdx > 0 {
			m.attIdx--
		}
	case "enter", "l", "o":
		if m.attIdx < len(atts) {
			return m.openAttachment(atts[m.attIdx])
		}
	}
	return m, nil
}

func (m model) View() string {
	switch m.view {
	case viewDetail:
		return m.detailView()
	case viewPreview:
		return m.previewView()
	}
	title := m.st.title.Render(m.title())
	body := m.list.View()
	if pw := m.paneWidth(); pw > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.attachmentPane(pw, m.listHeight()))
	}
	status := m.statusMsg
	if m.searchMode {
		status = m.input.View()
	}
	return title + "\n" + body + "\n" + m.st.muted.Render(status) + "\n" + m.helpView()
}

func (m model) title() string {
	name := filepath.Base(m.source)
	if name == "." || name == "" {
		name = "chatview"
	}
	s := fmt.Sprintf("%s  %d messages · %d channels  [%s]", name, m.stats.Messages, m.stats.Channels, m.st.theme.Name)
	if m.query != "" {
		s += fmt.Sprintf("  [search: %s · %d rows]", m.query, len(m.visible))
	}
	return s
}

func (m model) helpView() string {
	if m.focus == focusAttachments {
		return m.help.ShortHelpView([]key.Binding{
			key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "move")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview/open")),
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "rows")),
		})
	}
	bs := []key.Binding{keys.search, keys.clear, keys.open, keys.focus, keys.theme, keys.help, keys.quit}
	if m.showHelp {
		bs = []key.Binding{keys.search, keys.clear, keys.open, keys.focus, keys.theme, keys.export, keys.exportZ, keys.back, keys.help, keys.quit}
		return m.help.FullHelpView([][]key.Binding{bs[:5], bs[5:]})
	}
	return m.help.ShortHelpView(bs)
}

func (m model) attachmentPane(width, height int) string {
	style := m.st.pane
	if m.focus == focusAttachments {
		style = m.st.paneFoc
	}
	inner := width - 4 // border + padding
	var b strings.Builder
	b.WriteString(m.st.paneHead.Render("Attachments"))
	b.WriteString("\n\n")
	atts := m.currentAttachments()
	if len(atts) == 0 {
		b.WriteString(m.st.muted.Render(wrapPlain("Select a message row to see attachments.", inner)))
	}
	for i, a := range atts {
		name := a.Filename
		if attach.IsImageLike(a.Filename) {
			name = "▣ " + name
		} else {
			name = "↗ " + name
		}
		name = rows.OneLine(name, inner)
		if m.focus == focusAttachments && i == m.attIdx {
			name = m.st.selected.Render(name)
		} else {
			name = m.st.text.Render(name)
		}
		b.WriteString(name + "\n")
	}
	if len(atts) > 0 {
		b.WriteString("\n" + m.st.muted.Render(wrapPlain("tab to focus, enter to preview images or open other files in the browser.", inner)))
	}
	return style.Width(width - 2).Height(max(1, height-2)).Render(b.String())
}

func wrapPlain(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func (m *model) layout() {
	lw := m.width - m.paneWidth()
	m.list.SetSize(max(10, lw), m.listHeight())
	m.vp.Width = m.width
	m.vp.Height = max(3, m.height-chromeLines)
	if m.view == viewDetail {
		m.renderDetail()
	}
	if m.view == viewPreview {
		m.renderPreview()
	}
}

func (m model) listHeight() int { return max(3, m.height-chromeLines) }

func (m model) paneWidth() int {
	if m.width < paneBreak {
		return 0
	}
	return max(minPaneWidth, m.width/4)
}

// applyFilter recomputes the visible rows for q and keeps the cursor on a
// message row when possible.
func (m *model) applyFilter(q string) {
	m.query = strings.TrimSpace(q)
	m.visible = m.index.Filter(m.query)
	items := make([]list.Item, 0, len(m.visible))
	for _, i := range m.visible {
		items = append(items, rowItem{idx: i, row: m.rows[i], label: m.labels[i]})
	}
	m.list.SetItems(items)
	m.list.SetDelegate(rowDelegate{st: m.st, query: m.query})
	m.focus = focusRows
	m.attIdx = 0
	switch {
	case m.query == "":
		m.statusMsg = fmt.Sprintf("%d rows", len(m.visible))
	case len(m.visible) == 0:
		m.statusMsg = "no matches for " + m.query
	default:
		m.statusMsg = fmt.Sprintf("%d matches", len(m.index.Matches(m.query)))
	}
	m.list.Select(firstMessage(items))
}

func firstMessage(items []list.Item) int {
	for i, li := range items {
		if it, ok := li.(rowItem); ok && it.row.Kind() == rows.KindMessage {
			return i
		}
	}
	return 0
}

func (m *model) setTheme(i int) {
	m.themeIdx = i
	m.st = newStyles(themes[i])
	m.list.SetDelegate(rowDelegate{st: m.st, query: m.query})
	if m.view == viewDetail {
		m.renderDetail()
	}
}

func (m model) selectedItem() (rowItem, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	return it, ok
}

func (m model) selectedMessage() (rows.MessageRow, bool) {
	it, ok := m.selectedItem()
	if !ok {
		return rows.MessageRow{}, false
	}
	mr, ok := it.row.(rows.MessageRow)
	return mr, ok
}

func (m model) currentAttachments() []archive.Attachment {
	if mr, ok := m.selectedMessage(); ok {
		return mr.Attachments
	}
	return nil
}

func (m model) exportPath(ext string) string {
	base := m.cfg.ExportDir
	if base == "" {
		base = "."
	}
	name := strings.TrimSuffix(filepath.Base(m.source), filepath.Ext(m.source))
	if name == "" || name == "." {
		name = "chatview"
	}
	return filepath.Join(base, fmt.Sprintf("%s-%s%s", name, time.Now().Format("20060102-150405"), ext))
}

type exportDoneMsg struct {
	path string
	rows int
	err  error
}

func exportCmd(path string, rs []rows.Row, kept []int, source, query string, zipped bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if zipped {
			_, err = export.Zip(path, rs, kept, export.Meta{Source: source, Query: query})
		} else {
			err = export.MarkdownFile(path, rs, kept)
		}
		return exportDoneMsg{path: path, rows: len(kept), err: err}
	}
}
