package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/sartwc/sartwc/internal/ipc"
)

const (
	defaultWidth  = 80
	listWidth     = 28
	minViewsWidth = 20
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	paneStyle    = lipgloss.NewStyle().PaddingRight(2)
)

// View implements tea.Model.
func (m model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{m.renderStatusBar(width)}
	if m.data != nil {
		body := lipgloss.JoinHorizontal(lipgloss.Top,
			paneStyle.Render(m.renderWorkspaces()),
			m.renderViews(width-listWidth-2),
		)
		sections = append(sections, body)
	}
	sections = append(sections, m.renderFooter(width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) renderStatusBar(width int) string {
	var status string
	if m.connected {
		dot := currentStyle.Render("●")
		status = dot + " compositor connected"
		if m.data != nil {
			status += fmt.Sprintf("  current:%d %s", m.data.CurrentWorkspace, m.data.CurrentWorkspaceName)
		}
	} else {
		status = dimStyle.Render("●") + " compositor not reachable"
	}
	return statusBarStyle.Width(width).Render(status)
}

func (m model) renderWorkspaces() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Workspaces"))
	b.WriteString("\n")
	for i, ws := range m.data.Workspaces {
		marker := "  "
		if ws.Active {
			marker = currentStyle.Render("* ")
		}
		count := len(m.viewsOn(ws.Index))
		label := fmt.Sprintf("%d %s", ws.Index, ws.Name)
		label = runewidth.Truncate(label, listWidth-8, "…")
		label = runewidth.FillRight(label, listWidth-8)
		line := fmt.Sprintf("%s (%d)", label, count)
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	return b.String()
}

func (m model) renderViews(width int) string {
	if width < minViewsWidth {
		width = minViewsWidth
	}
	var b strings.Builder
	if m.selected >= len(m.data.Workspaces) {
		return ""
	}
	ws := m.data.Workspaces[m.selected]
	b.WriteString(headerStyle.Render("Views on " + ws.Name))
	b.WriteString("\n")

	views := m.viewsOn(ws.Index)
	if len(views) == 0 {
		b.WriteString(dimStyle.Render("no views"))
		return b.String()
	}
	for _, v := range views {
		b.WriteString(runewidth.Truncate(viewLine(v), width, "…"))
		b.WriteString("\n")
	}
	return b.String()
}

func viewLine(v ipc.ViewInfo) string {
	var flags []string
	if v.Focused {
		flags = append(flags, "focused")
	}
	if v.Maximized {
		flags = append(flags, "max")
	}
	if v.Minimized {
		flags = append(flags, "min")
	}
	if v.Fullscreen {
		flags = append(flags, "full")
	}
	line := fmt.Sprintf("%s  %s  %dx%d+%d+%d", v.AppID, v.Title, v.W, v.H, v.X, v.Y)
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, ",") + "]"
	}
	return line
}

func (m model) renderFooter(width int) string {
	var lines []string
	switch m.mode {
	case modeAdd:
		lines = append(lines, "add workspace  "+m.input.View())
	case modeRename:
		lines = append(lines, "rename workspace  "+m.input.View())
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render("error: "+m.err.Error()))
	} else if m.status != "" {
		lines = append(lines, m.status)
	}
	if m.lastEvent != "" {
		lines = append(lines, dimStyle.Render("last event: "+m.lastEvent))
	}
	help := "j/k: select  enter: switch  h/l: left/right  a: add  r: rename  d: remove  o: omnipresent  q: quit"
	if m.mode != modeBrowse {
		help = "enter: confirm  esc: cancel"
	}
	lines = append(lines, dimStyle.Width(width).Render(help))
	return strings.Join(lines, "\n")
}
