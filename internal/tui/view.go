package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

// layout is the screen geometry shared by View and mouse handling.
type layout struct {
	contentW, contentH int
	mapX, mapY         int
	mapW, mapH         int
}

func (m Model) layout() layout {
	l := layout{
		contentW: max(10, m.width),
		contentH: max(4, m.height-headerHeight-footerHeight),
		mapY:     headerHeight,
	}
	l.mapW = l.contentW
	if m.showSidebar {
		l.mapX = sidebarWidth + 1
		l.mapW = l.contentW - sidebarWidth - 1
	}
	l.mapW = max(10, l.mapW)
	l.mapH = l.contentH
	return l
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()

	badge := m.st.mode.Render(strings.ToUpper(m.modes.Mode().String()))
	title := m.st.title.Render(" poimap ")
	header := lipgloss.NewStyle().Width(lay.contentW).Render(lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge, m.st.dim.Render("  "+themes[m.theme].Name)))

	var mapView string
	switch {
	case m.showAttrs:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		boxW := min(lay.mapW, max(32, colW))
		m.tbl.SetWidth(boxW - 4)
		m.tbl.SetHeight(min(lay.mapH-2, 20))
		box := m.st.box.Width(boxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, box)
	case m.naming:
		prompt := m.st.box.Render(m.st.title.Render("Name") + "\n" + m.name.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, prompt)
	case m.errPopup != "":
		box := m.st.err.MaxWidth(min(60, lay.mapW)).Render(m.errPopup + "\n" + m.st.dim.Render("esc to dismiss"))
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, box)
	default:
		mapView = m.renderMap(lay.mapW, lay.mapH)
		if m.inspectPopup != "" {
			box := m.st.box.MaxWidth(min(48, lay.mapW)).Render(m.inspectPopup)
			mapView = overlayTopLeft(mapView, box)
		}
	}
	mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(mapView)

	body := mapView
	if m.showSidebar {
		sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	stats := m.cache.Stats()
	busy := ""
	if m.inflight > 0 || stats.Pending > 0 {
		busy = " …"
	}
	status := m.st.dim.Render(fmt.Sprintf(" %s  [%d pts, %d tiles%s] ", m.status, stats.Features, stats.Loaded, busy))
	coords := ""
	if m.hovering {
		coords = m.st.dim.Render(fmt.Sprintf("  lon=%.5f lat=%.5f  ", m.hoverLon, m.hoverLat))
	}
	spacer := max(0, lay.contentW-lipgloss.Width(status)-lipgloss.Width(coords))
	line := lipgloss.JoinHorizontal(lipgloss.Bottom, status, strings.Repeat(" ", spacer), coords)
	footer := lipgloss.NewStyle().Width(lay.contentW).Render(lipgloss.JoinVertical(lipgloss.Left, line, m.renderHelp()))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return m.st.app.Width(lay.contentW).Height(m.height).Render(ui)
}

// overlayTopLeft draws box over the first lines of base.
func overlayTopLeft(base, box string) string {
	lines := strings.Split(base, "\n")
	for i, bl := range strings.Split(box, "\n") {
		if i >= len(lines) {
			break
		}
		lines[i] = bl
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"a add",
		"d delete",
		"i inspect",
		"esc idle",
		"n name",
		"space click",
		"v attrs",
		"r home",
		"f refresh",
		"t theme",
		"Tab import",
		"q quit",
	}
	return m.st.dim.Render(" " + strings.Join(keys, "  "))
}
