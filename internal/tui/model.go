package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"poimap/internal/config"
	"poimap/internal/featurecache"
	"poimap/internal/geom"
	"poimap/internal/mode"
	"poimap/internal/mutation"
	"poimap/internal/poi"
	"poimap/internal/style"
)

// ThemeStore persists the selected theme. *settings.Store implements it.
type ThemeStore interface {
	Theme() string
	SetTheme(name string)
}

// Deps are the collaborators of the map client.
type Deps struct {
	Cache     *featurecache.Cache
	Mutations *mutation.Gateway
	Settings  ThemeStore // optional
	Map       config.MapConfig
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	cache     *featurecache.Cache
	mutations *mutation.Gateway
	settings  ThemeStore
	cfg       config.MapConfig

	view     geom.View
	tracker  *geom.Tracker
	surface  *mapSurface
	modes    *mode.Controller
	resolver style.Resolver

	theme int
	st    styles

	status   string
	errPopup string

	// inspect
	inspected    *poi.POI
	inspectPopup string

	// name used for points created in add mode; empty means the default
	pendingName string
	naming      bool
	name        textinput.Model

	// file sidebar
	cwd string
	l   list.Model

	// hover state
	hovering bool
	hoverX   int
	hoverY   int
	hoverLon float64
	hoverLat float64
	hoverID  int64

	// attributes table
	showAttrs bool
	tbl       table.Model

	// commands started but not yet answered
	inflight int
}

func New(d Deps) Model {
	m := Model{
		helpVisible: true,
		cache:       d.Cache,
		mutations:   d.Mutations,
		settings:    d.Settings,
		cfg:         d.Map,
		view: geom.View{
			Center: orb.Point{d.Map.CenterLon, d.Map.CenterLat},
			Zoom:   d.Map.Zoom,
		},
		tracker: &geom.Tracker{},
		surface: &mapSurface{},
		status:  "poimap ready",
	}
	m.modes = mode.NewController(m.surface, d.Cache, d.Map.HitTolerance)
	if d.Settings != nil {
		m.theme = themeIndex(d.Settings.Theme())
	}
	m.applyTheme()

	m.cwd, _ = os.Getwd()
	dl := list.NewDefaultDelegate()
	dl.ShowDescription = false
	m.l = list.New(nil, dl, 0, 0)
	m.l.Title = "Import"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)

	m.name = textinput.New()
	m.name.Placeholder = "name for new points (empty = " + d.Map.DefaultName + ")"
	m.name.CharLimit = 120
	m.name.Width = 40

	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// Init triggers nothing: the first load waits for the window size.
func (m Model) Init() tea.Cmd { return nil }

// Mode exposes the active interaction mode.
func (m Model) Mode() mode.Mode { return m.modes.Mode() }

func (m *Model) applyTheme() {
	t := themes[m.theme]
	m.st = newStyles(t)
	m.resolver = style.NewResolver(m.cfg.LabelResolution, m.st.marker, m.st.label)
}
