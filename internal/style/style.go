// Package style decides how a POI is drawn at a given map resolution.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"poimap/internal/featurecache"
)

// DefaultLabelResolution is the resolution (m/px) at or above which labels
// are hidden.
const DefaultLabelResolution = 150.0

// Style is the visual description of one feature.
type Style struct {
	Glyph     rune
	Marker    lipgloss.Style
	Label     string
	Text      lipgloss.Style
	Declutter bool
}

// Resolver maps a feature and resolution to a Style. It has no state beyond
// its configuration.
type Resolver struct {
	LabelResolution float64
	Marker          lipgloss.Style
	Text            lipgloss.Style
}

func NewResolver(labelResolution float64, marker, text lipgloss.Style) Resolver {
	if labelResolution <= 0 {
		labelResolution = DefaultLabelResolution
	}
	return Resolver{LabelResolution: labelResolution, Marker: marker, Text: text}
}

// Resolve returns the marker style for f, with a label only when the map is
// zoomed in past the label threshold.
func (r Resolver) Resolve(f featurecache.Feature, resolution float64) Style {
	s := Style{
		Glyph:     '●',
		Marker:    r.Marker,
		Text:      r.Text,
		Declutter: true,
	}
	if resolution < r.LabelResolution {
		s.Label = f.Name
	}
	return s
}
