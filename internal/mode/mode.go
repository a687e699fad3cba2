// Package mode implements the interaction mode state machine of the map.
//
// Exactly one mode is active. Each mode owns at most one gesture and every
// transition detaches the old gesture before attaching the new one, so the
// surface never has a draw and a select gesture at the same time.
package mode

import (
	"errors"
	"fmt"

	"poimap/internal/geom"
	"poimap/internal/poi"
)

// Mode names the interaction states.
type Mode int

const (
	Idle Mode = iota
	AddPoint
	DeletePoint
	Inspect
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case AddPoint:
		return "add"
	case DeletePoint:
		return "delete"
	case Inspect:
		return "inspect"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

type state interface {
	mode() Mode
	gesture() Gesture
}

type idleState struct{}

type addState struct{ draw *Draw }

type deleteState struct{ sel *Select }

type inspectState struct{ sel *Select }

func (idleState) mode() Mode            { return Idle }
func (idleState) gesture() Gesture      { return nil }
func (s addState) mode() Mode           { return AddPoint }
func (s addState) gesture() Gesture     { return s.draw }
func (s deleteState) mode() Mode        { return DeletePoint }
func (s deleteState) gesture() Gesture  { return s.sel }
func (s inspectState) mode() Mode       { return Inspect }
func (s inspectState) gesture() Gesture { return s.sel }

// Action is what the application must do after a gesture completes. It is
// one of CreateAction, DeleteAction or InspectAction.
type Action interface{ isAction() }

// CreateAction asks for a new POI at a geographic position.
type CreateAction struct {
	Lon, Lat float64
}

// DeleteAction asks for the removal of a POI.
type DeleteAction struct {
	ID int64
}

// InspectAction exposes a POI for display.
type InspectAction struct {
	POI poi.POI
}

func (CreateAction) isAction()  {}
func (DeleteAction) isAction()  {}
func (InspectAction) isAction() {}

var (
	ErrUnknownMode = errors.New("unknown mode")
	ErrWrongMode   = errors.New("event does not belong to the current mode")
)

// Controller owns the current mode and the gesture attached for it.
type Controller struct {
	surface   Surface
	features  FeatureSource
	tolerance float64
	state     state
}

// NewController starts in Idle with nothing attached.
func NewController(surface Surface, features FeatureSource, hitTolerance float64) *Controller {
	return &Controller{
		surface:   surface,
		features:  features,
		tolerance: hitTolerance,
		state:     idleState{},
	}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.state.mode() }

// Gesture returns the gesture attached for the active mode, or nil.
func (c *Controller) Gesture() Gesture { return c.state.gesture() }

// Select switches to next. Selecting the active mode is a no-op. On an
// unknown mode nothing is detached and an error is returned.
func (c *Controller) Select(next Mode) error {
	if next == c.state.mode() {
		return nil
	}
	ns, err := c.transition(next)
	if err != nil {
		return err
	}
	if g := c.state.gesture(); g != nil {
		c.surface.RemoveInteraction(g)
	}
	c.state = ns
	if g := ns.gesture(); g != nil {
		c.surface.AddInteraction(g)
	}
	return nil
}

func (c *Controller) transition(next Mode) (state, error) {
	switch next {
	case Idle:
		return idleState{}, nil
	case AddPoint:
		return addState{draw: &Draw{}}, nil
	case DeletePoint:
		return deleteState{sel: &Select{Source: c.features, Tolerance: c.tolerance}}, nil
	case Inspect:
		return inspectState{sel: &Select{Source: c.features, Tolerance: c.tolerance}}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(next))
}

// Complete turns a gesture completion into an action for the current mode.
// The mode is never changed: adding stays in AddPoint so points can be
// placed repeatedly.
func (c *Controller) Complete(ev Event) (Action, error) {
	switch s := c.state.(type) {
	case addState:
		if d, ok := ev.(DrawEnd); ok {
			lon, lat := geom.Unproject(d.Local)
			return CreateAction{Lon: lon, Lat: lat}, nil
		}
	case deleteState:
		if sel, ok := ev.(SelectEnd); ok {
			return DeleteAction{ID: sel.Feature.ID}, nil
		}
	case inspectState:
		if sel, ok := ev.(SelectEnd); ok {
			return InspectAction{POI: sel.Feature.POI}, nil
		}
	case idleState:
	default:
		return nil, fmt.Errorf("unhandled state %T", s)
	}
	return nil, fmt.Errorf("%w: %T in %s", ErrWrongMode, ev, c.state.mode())
}
