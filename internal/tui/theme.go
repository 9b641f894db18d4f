package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Every style in the UI is derived from one.
type Theme struct {
	Name    string
	FG      lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	SelBG   lipgloss.Color
	SelFG   lipgloss.Color
	Date    lipgloss.Color
	Header  lipgloss.Color
	Match   lipgloss.Color
	Glamour string // glamour standard style
}

var themes = []Theme{
	{Name: "Dark", FG: "#DCDDDE", Muted: "#8E9297", Border: "#4F545C", SelBG: "#404EED", SelFG: "#FFFFFF", Date: "#FAA61A", Header: "#7289DA", Match: "#EB459E", Glamour: "dark"},
	{Name: "Light", FG: "#2E3338", Muted: "#747F8D", Border: "#C7CCD1", SelBG: "#5865F2", SelFG: "#FFFFFF", Date: "#B35C00", Header: "#3C45A5", Match: "#C21F72", Glamour: "light"},
	{Name: "Midnight", FG: "#C9D1D9", Muted: "#6E7681", Border: "#30363D", SelBG: "#1F6FEB", SelFG: "#F0F6FC", Date: "#D29922", Header: "#58A6FF", Match: "#F778BA", Glamour: "dark"},
	{Name: "Forest", FG: "#D8E2D0", Muted: "#8A9A7E", Border: "#3F5A3F", SelBG: "#4E7D4E", SelFG: "#F5FFF0", Date: "#E0B050", Header: "#8FC98F", Match: "#F08A5D", Glamour: "dark"},
	{Name: "Solarized", FG: "#839496", Muted: "#586E75", Border: "#073642", SelBG: "#268BD2", SelFG: "#FDF6E3", Date: "#B58900", Header: "#2AA198", Match: "#D33682", Glamour: "dark"},
}

// ThemeNames lists the available themes in cycle order.
func ThemeNames() []string {
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = t.Name
	}
	return out
}

// themeIndex finds name case-insensitively, falling back to the first theme.
func themeIndex(name string) int {
	for i, t := range themes {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return 0
}

type styles struct {
	theme    Theme
	date     lipgloss.Style
	header   lipgloss.Style
	time     lipgloss.Style
	text     lipgloss.Style
	clip     lipgloss.Style
	selected lipgloss.Style
	match    lipgloss.Style
	pane     lipgloss.Style
	paneFoc  lipgloss.Style
	paneHead lipgloss.Style
	muted    lipgloss.Style
	title    lipgloss.Style
	status   lipgloss.Style
}

func newStyles(t Theme) styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	return styles{
		theme:    t,
		date:     lipgloss.NewStyle().Foreground(t.Date).Bold(true),
		header:   lipgloss.NewStyle().Foreground(t.Header).Bold(true),
		time:     lipgloss.NewStyle().Foreground(t.Muted),
		text:     lipgloss.NewStyle().Foreground(t.FG),
		clip:     lipgloss.NewStyle().Foreground(t.Muted),
		selected: lipgloss.NewStyle().Background(t.SelBG).Foreground(t.SelFG),
		match:    lipgloss.NewStyle().Foreground(t.Match).Bold(true),
		pane:     pane,
		paneFoc:  pane.BorderForeground(t.SelBG),
		paneHead: lipgloss.NewStyle().Foreground(t.Muted).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(t.Muted),
		title:    lipgloss.NewStyle().Foreground(t.SelFG).Background(t.SelBG).Padding(0, 1).Bold(true),
		status:   lipgloss.NewStyle().Foreground(t.Muted).PaddingTop(1),
	}
}
