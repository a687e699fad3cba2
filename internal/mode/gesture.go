package mode

import (
	"math"

	"github.com/paulmach/orb"

	"poimap/internal/featurecache"
	"poimap/internal/geom"
)

// Gesture is an interaction attachable to the map surface.
type Gesture interface {
	// Click handles a primary click at surface pixel x/y and returns the
	// completion event, if the click completed the gesture.
	Click(view geom.View, x, y float64) (Event, bool)
}

// Surface is the map the controller attaches gestures to.
type Surface interface {
	AddInteraction(g Gesture)
	RemoveInteraction(g Gesture)
}

// Event is a gesture completion. It is one of DrawEnd or SelectEnd.
type Event interface{ isEvent() }

// DrawEnd carries the drawn point in the map's working projection.
type DrawEnd struct {
	Local orb.Point
}

// SelectEnd carries the feature hit by a select gesture.
type SelectEnd struct {
	Feature featurecache.Feature
}

func (DrawEnd) isEvent()   {}
func (SelectEnd) isEvent() {}

// Draw produces single-point geometries.
type Draw struct{}

func (d *Draw) Click(view geom.View, x, y float64) (Event, bool) {
	return DrawEnd{Local: view.PixelToLocal(x, y)}, true
}

// FeatureSource exposes the features a select gesture can hit.
type FeatureSource interface {
	Features() []featurecache.Feature
}

// Select picks the feature nearest to a click within Tolerance pixels.
type Select struct {
	Source    FeatureSource
	Tolerance float64
}

func (s *Select) Click(view geom.View, x, y float64) (Event, bool) {
	f, ok := HitTest(s.Source.Features(), view, x, y, s.Tolerance)
	if !ok {
		return nil, false
	}
	return SelectEnd{Feature: f}, true
}

// HitTest returns the feature closest to x/y within tolerance pixels. Ties
// go to the lower id.
func HitTest(features []featurecache.Feature, view geom.View, x, y, tolerance float64) (featurecache.Feature, bool) {
	best := math.Inf(1)
	var hit featurecache.Feature
	for _, f := range features {
		fx, fy := view.LocalToPixel(f.Local)
		d := math.Hypot(fx-x, fy-y)
		if d <= tolerance && (d < best || (d == best && f.ID < hit.ID)) {
			best, hit = d, f
		}
	}
	return hit, !math.IsInf(best, 1)
}
