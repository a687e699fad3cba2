package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"poimap/internal/logging"
	"poimap/internal/mode"
	"poimap/internal/mutation"
)

const zoomStep = 0.5

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cmd := m.resize()
		return m, cmd

	case loadDoneMsg:
		m.done()
		if msg.report.Failed > 0 {
			m.status = fmt.Sprintf("%d of %d tiles failed to load; they will be retried", msg.report.Failed, msg.report.Requested)
		}
		return m, nil

	case refreshedMsg:
		m.done()
		if msg.err != nil {
			m.status = "refresh incomplete: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("refreshed %d tiles", msg.report.Requested)
		}
		return m, nil

	case createdMsg:
		m.done()
		if msg.err != nil {
			m.fail("create", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("created #%d at %.5f, %.5f", msg.id, msg.lon, msg.lat)
		return m, nil

	case deletedMsg:
		m.done()
		if msg.err != nil {
			m.fail(fmt.Sprintf("delete #%d", msg.id), msg.err)
			return m, nil
		}
		if m.inspected != nil && m.inspected.ID == msg.id {
			m.inspected, m.inspectPopup, m.showAttrs = nil, "", false
		}
		m.hoverID = 0
		m.status = fmt.Sprintf("deleted #%d", msg.id)
		return m, nil

	case importDoneMsg:
		m.done()
		summary := fmt.Sprintf("import %s: %d created, %d invalid, %d failed", msg.path, msg.created, msg.invalid, msg.failed)
		if msg.err != nil {
			m.fail("import", msg.err)
			m.status = summary
			return m, nil
		}
		m.status = summary
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	var cmd tea.Cmd
	switch {
	case m.naming:
		m.name, cmd = m.name.Update(msg)
	case m.showSidebar:
		m.l, cmd = m.l.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.naming {
		switch msg.String() {
		case "esc":
			m.naming = false
			m.name.Blur()
			return m, nil
		case "enter":
			m.pendingName = strings.TrimSpace(m.name.Value())
			m.naming = false
			m.name.Blur()
			if m.pendingName == "" {
				m.status = "new points use the default name"
			} else {
				m.status = "new points will be named " + m.pendingName
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	}
	// A filtering list owns the keyboard.
	if m.showSidebar && m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	if m.showAttrs {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc", "v":
			m.showAttrs = false
			return m, nil
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "down":
		if m.showSidebar {
			break
		}
		if msg.String() == "up" {
			cmd := m.pan(0, -1)
			return m, cmd
		}
		cmd := m.pan(0, 1)
		return m, cmd
	case "left":
		cmd := m.pan(-1, 0)
		return m, cmd
	case "right":
		cmd := m.pan(1, 0)
		return m, cmd
	case "+", "=":
		cmd := m.zoom(zoomStep)
		return m, cmd
	case "-", "_":
		cmd := m.zoom(-zoomStep)
		return m, cmd
	case "a":
		m.selectMode(mode.AddPoint)
		return m, nil
	case "d":
		m.selectMode(mode.DeletePoint)
		return m, nil
	case "i":
		m.selectMode(mode.Inspect)
		return m, nil
	case "esc":
		if m.errPopup != "" || m.inspectPopup != "" {
			m.errPopup, m.inspectPopup = "", ""
			return m, nil
		}
		m.selectMode(mode.Idle)
		return m, nil
	case "n":
		m.naming = true
		m.name.SetValue(m.pendingName)
		cmd := m.name.Focus()
		return m, cmd
	case "r":
		m.view.Center = orb.Point{m.cfg.HomeLon, m.cfg.HomeLat}
		m.view.Zoom = m.cfg.HomeZoom
		m.status = "home"
		cmd := m.observe()
		return m, cmd
	case "f":
		m.inflight++
		m.status = "refreshing"
		return m, refreshCmd(m.cache)
	case "t":
		m.cycleTheme()
		return m, nil
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshDir()
		}
		cmd := m.resize()
		return m, cmd
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				m.inflight++
				m.status = "importing " + it.title
				return m, importCmd(m.mutations, it.path)
			}
		}
		return m, nil
	case " ":
		return m.clickAt(float64(m.view.Width)/2, float64(m.view.Height)/2)
	case "v":
		if m.inspected == nil {
			m.status = "inspect a point first"
			return m, nil
		}
		m.showAttrs = true
		m.refreshAttrs()
		return m, nil
	case "h":
		m.helpVisible = !m.helpVisible
		return m, nil
	}
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	lay := m.layout()
	cx, cy := msg.X-lay.mapX, msg.Y-lay.mapY
	if cx < 0 || cy < 0 || cx >= lay.mapW || cy >= lay.mapH {
		m.hovering = false
		if m.showSidebar {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	// Cells are addressed by the pixel at their center.
	px, py := float64(cx*2+1), float64(cy*4+2)
	m.hovering = true
	m.hoverX, m.hoverY = cx, cy
	m.hoverLon, m.hoverLat = m.view.FromPixel(px, py)
	m.hoverID = 0
	if md := m.modes.Mode(); md == mode.DeletePoint || md == mode.Inspect {
		if f, ok := mode.HitTest(m.visibleFeatures(), m.view, px, py, m.cfg.HitTolerance); ok {
			m.hoverID = f.ID
		}
	}

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		cmd := m.zoom(zoomStep)
		return m, cmd
	case tea.MouseButtonWheelDown:
		cmd := m.zoom(-zoomStep)
		return m, cmd
	case tea.MouseButtonLeft:
		return m.clickAt(px, py)
	}
	return m, nil
}

// clickAt routes a click at surface pixel x/y through the attached gesture
// and acts on the completion.
func (m Model) clickAt(x, y float64) (tea.Model, tea.Cmd) {
	ev, ok := m.surface.click(m.view, x, y)
	if !ok {
		if m.modes.Mode() != mode.Idle {
			m.status = "no point within reach"
		}
		return m, nil
	}
	act, err := m.modes.Complete(ev)
	if err != nil {
		logging.Warn().Err(err).Msg("gesture completion ignored")
		m.status = err.Error()
		return m, nil
	}
	switch a := act.(type) {
	case mode.CreateAction:
		m.inflight++
		m.status = fmt.Sprintf("creating point at %.5f, %.5f", a.Lon, a.Lat)
		return m, createCmd(m.mutations, a.Lon, a.Lat, m.pendingName)
	case mode.DeleteAction:
		m.inflight++
		m.status = fmt.Sprintf("deleting #%d", a.ID)
		return m, deleteCmd(m.mutations, a.ID)
	case mode.InspectAction:
		p := a.POI
		m.inspected = &p
		m.inspectPopup = inspectText(p)
		m.status = fmt.Sprintf("inspecting #%d", p.ID)
		if m.showAttrs {
			m.refreshAttrs()
		}
	}
	return m, nil
}

func (m *Model) selectMode(next mode.Mode) {
	if err := m.modes.Select(next); err != nil {
		m.status = err.Error()
		return
	}
	m.hoverID = 0
	m.status = "mode: " + next.String()
}

// resize fits the view to the map area and loads what became visible.
func (m *Model) resize() tea.Cmd {
	lay := m.layout()
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lay.mapH-2)
	}
	m.view.Width = lay.mapW * 2
	m.view.Height = lay.mapH * 4
	return m.observe()
}

// observe feeds the current view to the extent tracker and schedules a
// cache load when the extent changed.
func (m *Model) observe() tea.Cmd {
	if m.view.Width == 0 || m.view.Height == 0 || m.cache == nil {
		return nil
	}
	e, changed := m.tracker.Observe(m.view)
	if !changed {
		return nil
	}
	m.inflight++
	return loadCmd(m.cache, e, m.view.Zoom)
}

// pan moves the view by an eighth of the map per step.
func (m *Model) pan(dx, dy int) tea.Cmd {
	m.view = m.view.Pan(float64(dx*m.view.Width)/8, float64(dy*m.view.Height)/8)
	return m.observe()
}

func (m *Model) zoom(delta float64) tea.Cmd {
	m.view = m.view.ZoomBy(delta)
	m.status = fmt.Sprintf("zoom %.1f  %.0f m/px", m.view.Zoom, m.view.Resolution())
	return m.observe()
}

func (m *Model) cycleTheme() {
	m.theme = (m.theme + 1) % len(themes)
	m.applyTheme()
	name := themes[m.theme].Name
	if m.settings != nil {
		m.settings.SetTheme(name)
	}
	m.status = "theme: " + name
}

// fail shows a mutation error in the status line and a popup.
func (m *Model) fail(op string, err error) {
	text := op + " failed: " + mutation.Describe(err)
	m.errPopup = text
	m.status = text
}

func (m *Model) done() {
	if m.inflight > 0 {
		m.inflight--
	}
}
