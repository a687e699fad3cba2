package mode

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"poimap/internal/featurecache"
	"poimap/internal/geom"
	"poimap/internal/poi"
)

type fakeSurface struct {
	attached []Gesture
	maxSeen  int
}

func (s *fakeSurface) AddInteraction(g Gesture) {
	s.attached = append(s.attached, g)
	s.maxSeen = max(s.maxSeen, len(s.attached))
}

func (s *fakeSurface) RemoveInteraction(g Gesture) {
	for i, a := range s.attached {
		if a == g {
			s.attached = append(s.attached[:i], s.attached[i+1:]...)
			return
		}
	}
}

type staticFeatures []featurecache.Feature

func (f staticFeatures) Features() []featurecache.Feature { return f }

func feature(id int64, name string, lon, lat float64) featurecache.Feature {
	return featurecache.Feature{
		POI:   poi.POI{ID: id, Lon: lon, Lat: lat, Name: name},
		Local: geom.Project(lon, lat),
	}
}

func testView() geom.View {
	return geom.View{Center: orb.Point{26.1, 44.43}, Zoom: 12, Width: 200, Height: 100}
}

// sequences enumerates every mode sequence of the given length.
func sequences(n int) [][]Mode {
	all := []Mode{Idle, AddPoint, DeletePoint, Inspect}
	if n == 0 {
		return [][]Mode{nil}
	}
	var out [][]Mode
	for _, prefix := range sequences(n - 1) {
		for _, m := range all {
			seq := append(append([]Mode(nil), prefix...), m)
			out = append(out, seq)
		}
	}
	return out
}

func TestAtMostOneGestureAttached(t *testing.T) {
	for _, seq := range sequences(4) {
		s := &fakeSurface{}
		c := NewController(s, staticFeatures(nil), 6)
		for _, m := range seq {
			if err := c.Select(m); err != nil {
				t.Fatalf("%v: %v", seq, err)
			}
			if len(s.attached) > 1 || s.maxSeen > 1 {
				t.Fatalf("%v: %d gestures attached", seq, len(s.attached))
			}
			if c.Mode() != m {
				t.Fatalf("%v: mode %s, want %s", seq, c.Mode(), m)
			}
			switch m {
			case Idle:
				if len(s.attached) != 0 || c.Gesture() != nil {
					t.Fatalf("%v: idle has a gesture attached", seq)
				}
			case AddPoint:
				if _, ok := s.attached[0].(*Draw); !ok {
					t.Fatalf("%v: add mode attached %T", seq, s.attached[0])
				}
			default:
				if _, ok := s.attached[0].(*Select); !ok {
					t.Fatalf("%v: %s attached %T", seq, m, s.attached[0])
				}
			}
		}
	}
}

func TestSelectUnknownModeKeepsState(t *testing.T) {
	s := &fakeSurface{}
	c := NewController(s, staticFeatures(nil), 6)
	if err := c.Select(DeletePoint); err != nil {
		t.Fatal(err)
	}
	g := c.Gesture()

	if err := c.Select(Mode(42)); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("err = %v", err)
	}
	if c.Mode() != DeletePoint || len(s.attached) != 1 || s.attached[0] != g {
		t.Fatalf("state changed: %s %v", c.Mode(), s.attached)
	}
}

func TestDrawCompletionCreates(t *testing.T) {
	c := NewController(&fakeSurface{}, staticFeatures(nil), 6)
	if err := c.Select(AddPoint); err != nil {
		t.Fatal(err)
	}
	v := testView()
	x, y := v.ToPixel(26.2, 44.4)

	ev, ok := c.Gesture().Click(v, x, y)
	if !ok {
		t.Fatal("draw did not complete")
	}
	act, err := c.Complete(ev)
	if err != nil {
		t.Fatal(err)
	}
	create, ok := act.(CreateAction)
	if !ok {
		t.Fatalf("got %T", act)
	}
	if math.Abs(create.Lon-26.2) > 1e-9 || math.Abs(create.Lat-44.4) > 1e-9 {
		t.Fatalf("got %v,%v", create.Lon, create.Lat)
	}
	if c.Mode() != AddPoint {
		t.Fatalf("mode after draw = %s", c.Mode())
	}
}

func TestSelectCompletion(t *testing.T) {
	feats := staticFeatures{
		feature(7, "Lake", 26.1, 44.43),
		feature(9, "Pond", 26.3, 44.5),
	}
	v := testView()
	x, y := v.ToPixel(26.1, 44.43)

	tests := []struct {
		mode Mode
		want Action
	}{
		{mode: DeletePoint, want: DeleteAction{ID: 7}},
		{mode: Inspect, want: InspectAction{POI: feats[0].POI}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			c := NewController(&fakeSurface{}, feats, 6)
			if err := c.Select(tt.mode); err != nil {
				t.Fatal(err)
			}
			ev, ok := c.Gesture().Click(v, x+3, y-2)
			if !ok {
				t.Fatal("no hit within tolerance")
			}
			act, err := c.Complete(ev)
			if err != nil {
				t.Fatal(err)
			}
			switch want := tt.want.(type) {
			case DeleteAction:
				if act != want {
					t.Fatalf("got %#v", act)
				}
			case InspectAction:
				got, ok := act.(InspectAction)
				if !ok || got.POI.ID != want.POI.ID || got.POI.Name != want.POI.Name {
					t.Fatalf("got %#v", act)
				}
			}
		})
	}
}

func TestSelectMissesOutsideTolerance(t *testing.T) {
	feats := staticFeatures{feature(7, "Lake", 26.1, 44.43)}
	v := testView()
	x, y := v.ToPixel(26.1, 44.43)

	c := NewController(&fakeSurface{}, feats, 6)
	if err := c.Select(DeletePoint); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Gesture().Click(v, x+10, y); ok {
		t.Fatal("hit outside tolerance")
	}
}

func TestCompleteRejectsForeignEvent(t *testing.T) {
	c := NewController(&fakeSurface{}, staticFeatures(nil), 6)

	if _, err := c.Complete(DrawEnd{}); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("idle: err = %v", err)
	}
	if err := c.Select(Inspect); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Complete(DrawEnd{}); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("inspect: err = %v", err)
	}
	if c.Mode() != Inspect {
		t.Fatalf("mode = %s", c.Mode())
	}
}

func TestHitTestPrefersNearest(t *testing.T) {
	v := testView()
	a := feature(1, "a", 26.1, 44.43)
	b := feature(2, "b", 26.1, 44.43)
	b.Local = orb.Point{a.Local.X() + 3*v.Resolution(), a.Local.Y()}
	x, y := v.LocalToPixel(b.Local)

	hit, ok := HitTest([]featurecache.Feature{a, b}, v, x, y, 6)
	if !ok || hit.ID != 2 {
		t.Fatalf("got %v %v", hit.ID, ok)
	}

	dup := feature(5, "dup", 26.1, 44.43)
	x, y = v.LocalToPixel(a.Local)
	hit, _ = HitTest([]featurecache.Feature{dup, a}, v, x, y, 6)
	if hit.ID != 1 {
		t.Fatalf("tie went to %d", hit.ID)
	}
}
