package tui

import "github.com/charmbracelet/lipgloss"

// Theme is a named color palette for the whole UI.
type Theme struct {
	Name   string
	Fg     lipgloss.Color
	Dim    lipgloss.Color
	Accent lipgloss.Color
	Border lipgloss.Color
	Grid   lipgloss.Color
	Marker lipgloss.Color
	Hover  lipgloss.Color
	Label  lipgloss.Color
	Error  lipgloss.Color
}

var themes = []Theme{
	{Name: "mira", Fg: "#E6E6E6", Dim: "#6B7280", Accent: "#7C3AED", Border: "#243141", Grid: "#1F2937", Marker: "#38BDF8", Hover: "#FFA500", Label: "#CBD5E1", Error: "#F87171"},
	{Name: "nova", Fg: "#F3F4F6", Dim: "#9CA3AF", Accent: "#3B82F6", Border: "#374151", Grid: "#27303F", Marker: "#60A5FA", Hover: "#FBBF24", Label: "#E5E7EB", Error: "#EF4444"},
	{Name: "saga-blue", Fg: "#DBEAFE", Dim: "#64748B", Accent: "#2563EB", Border: "#1E3A8A", Grid: "#172554", Marker: "#93C5FD", Hover: "#F59E0B", Label: "#BFDBFE", Error: "#FCA5A5"},
	{Name: "vela-green", Fg: "#DCFCE7", Dim: "#6B7280", Accent: "#22C55E", Border: "#14532D", Grid: "#1A2E22", Marker: "#4ADE80", Hover: "#FACC15", Label: "#BBF7D0", Error: "#F87171"},
	{Name: "arya-orange", Fg: "#FFEDD5", Dim: "#78716C", Accent: "#F97316", Border: "#7C2D12", Grid: "#2C1A10", Marker: "#FDBA74", Hover: "#22D3EE", Label: "#FED7AA", Error: "#F43F5E"},
	{Name: "soho-dark", Fg: "#E0E7FF", Dim: "#818CF8", Accent: "#A78BFA", Border: "#312E81", Grid: "#1E1B4B", Marker: "#C4B5FD", Hover: "#F472B6", Label: "#DDD6FE", Error: "#FB7185"},
}

// themeIndex returns the palette position of name, or 0 when unknown.
func themeIndex(name string) int {
	for i, t := range themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	app    lipgloss.Style
	box    lipgloss.Style
	title  lipgloss.Style
	dim    lipgloss.Style
	grid   lipgloss.Style
	marker lipgloss.Style
	hover  lipgloss.Style
	label  lipgloss.Style
	err    lipgloss.Style
	mode   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		app:    lipgloss.NewStyle().Foreground(t.Fg),
		box:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		title:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		dim:    lipgloss.NewStyle().Foreground(t.Dim),
		grid:   lipgloss.NewStyle().Foreground(t.Grid),
		marker: lipgloss.NewStyle().Foreground(t.Marker).Bold(true),
		hover:  lipgloss.NewStyle().Foreground(t.Hover).Bold(true),
		label:  lipgloss.NewStyle().Foreground(t.Label),
		err:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Error).Foreground(t.Error).Padding(0, 1),
		mode:   lipgloss.NewStyle().Foreground(t.Fg).Background(t.Accent).Bold(true).Padding(0, 1),
	}
}
