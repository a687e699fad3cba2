package tui

import (
	"poimap/internal/geom"
	"poimap/internal/logging"
	"poimap/internal/mode"
)

// mapSurface is the map area's interaction slot. It holds at most one
// gesture and routes clicks to it.
type mapSurface struct {
	active mode.Gesture
}

func (s *mapSurface) AddInteraction(g mode.Gesture) {
	if s.active != nil && s.active != g {
		logging.Warn().Msgf("replacing attached gesture %T with %T", s.active, g)
	}
	s.active = g
}

func (s *mapSurface) RemoveInteraction(g mode.Gesture) {
	if s.active == g {
		s.active = nil
	}
}

// click forwards a click at surface pixel x/y to the attached gesture.
func (s *mapSurface) click(v geom.View, x, y float64) (mode.Event, bool) {
	if s.active == nil {
		return nil, false
	}
	return s.active.Click(v, x, y)
}
