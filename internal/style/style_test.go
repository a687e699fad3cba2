package style

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"poimap/internal/featurecache"
	"poimap/internal/poi"
)

func TestResolveLabelThreshold(t *testing.T) {
	r := NewResolver(150, lipgloss.NewStyle(), lipgloss.NewStyle())
	f := featurecache.Feature{POI: poi.POI{ID: 1, Name: "Lake"}}

	tests := []struct {
		res   float64
		label string
	}{
		{res: 10, label: "Lake"},
		{res: 149.9, label: "Lake"},
		{res: 150, label: ""},
		{res: 1000, label: ""},
	}
	for _, tt := range tests {
		s := r.Resolve(f, tt.res)
		if s.Label != tt.label {
			t.Errorf("res %v: label %q, want %q", tt.res, s.Label, tt.label)
		}
		if s.Glyph != '●' || !s.Declutter {
			t.Errorf("res %v: glyph %q declutter %v", tt.res, s.Glyph, s.Declutter)
		}
	}
}

func TestNewResolverDefault(t *testing.T) {
	if r := NewResolver(0, lipgloss.NewStyle(), lipgloss.NewStyle()); r.LabelResolution != DefaultLabelResolution {
		t.Fatalf("got %v", r.LabelResolution)
	}
}

func TestPlacerDropsOverlaps(t *testing.T) {
	p := NewPlacer(40)
	p.Reserve(3, 10)
	p.Reserve(3, 14)

	if _, ok := p.Place(3, 10, "Lake"); ok {
		t.Fatal("label over the neighbouring marker must be dropped")
	}
	s, ok := p.Place(5, 10, "Lake")
	if !ok || s.Col != 12 || s.Width != 4 {
		t.Fatalf("got %+v %v", s, ok)
	}
	if _, ok := p.Place(5, 11, "Pond"); ok {
		t.Fatal("overlapping label accepted")
	}
	if _, ok := p.Place(5, 17, "Dock"); !ok {
		t.Fatal("disjoint label rejected")
	}
	if _, ok := p.Place(1, 36, "Harbour"); ok {
		t.Fatal("label past the right edge accepted")
	}
	if _, ok := p.Place(1, 1, ""); ok {
		t.Fatal("empty label accepted")
	}
}
