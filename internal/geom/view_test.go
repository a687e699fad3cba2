package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestViewExtentContainsCenter(t *testing.T) {
	v := View{Center: orb.Point{26.1, 44.43}, Zoom: 7, Width: 200, Height: 100}
	e := v.Extent()
	if !e.Valid() {
		t.Fatalf("extent not valid: %v", e)
	}
	if !e.Contains(26.1, 44.43) {
		t.Fatalf("extent %v does not contain center", e)
	}
	// wider than tall in pixels, so wider in lon than in lat at this latitude
	if e.MaxLon-e.MinLon <= e.MaxLat-e.MinLat {
		t.Errorf("unexpected aspect: %v", e)
	}
}

func TestViewPixelRoundTrip(t *testing.T) {
	v := View{Center: orb.Point{25.809, 44.973}, Zoom: 6.72, Width: 160, Height: 96}
	cx, cy := v.ToPixel(25.809, 44.973)
	if !near(cx, 80, 1e-6) || !near(cy, 48, 1e-6) {
		t.Fatalf("center maps to (%f,%f), want (80,48)", cx, cy)
	}
	for _, p := range [][2]float64{{0, 0}, {10, 20}, {160, 96}, {33.3, 71.1}} {
		lon, lat := v.FromPixel(p[0], p[1])
		x, y := v.ToPixel(lon, lat)
		if !near(x, p[0], 1e-6) || !near(y, p[1], 1e-6) {
			t.Errorf("round trip %v -> (%f,%f) -> (%f,%f)", p, lon, lat, x, y)
		}
	}
}

func TestViewExtentClampsWorld(t *testing.T) {
	v := View{Center: orb.Point{0, 0}, Zoom: 0, Width: 2000, Height: 2000}
	e := v.Extent()
	if e.MinLon != -180 || e.MaxLon != 180 {
		t.Errorf("lon not clamped: %v", e)
	}
	if !near(e.MaxLat, MaxLat, 1e-9) || !near(e.MinLat, -MaxLat, 1e-9) {
		t.Errorf("lat not clamped: %v", e)
	}
}

func TestProjectUnproject(t *testing.T) {
	p := Project(26.1, 44.43)
	lon, lat := Unproject(p)
	if !near(lon, 26.1, 1e-9) || !near(lat, 44.43, 1e-9) {
		t.Fatalf("got %f,%f", lon, lat)
	}
}

func TestPanAndZoom(t *testing.T) {
	v := View{Center: orb.Point{26.1, 44.43}, Zoom: 7, Width: 100, Height: 100}
	p := v.Pan(10, 0)
	if p.Center.Lon() <= v.Center.Lon() {
		t.Errorf("pan right should increase lon: %v -> %v", v.Center, p.Center)
	}
	if !near(p.Center.Lat(), v.Center.Lat(), 1e-9) {
		t.Errorf("horizontal pan changed lat")
	}
	if z := v.ZoomBy(100).Zoom; z != MaxZoom {
		t.Errorf("zoom not clamped: %f", z)
	}
	if z := v.ZoomBy(-100).Zoom; z != MinZoom {
		t.Errorf("zoom not clamped: %f", z)
	}
}

func TestResolutionHalvesPerZoom(t *testing.T) {
	if r := Resolution(0); !near(r, 156543.03392804097, 1e-6) {
		t.Fatalf("resolution(0) = %f", r)
	}
	if !near(Resolution(1)*2, Resolution(0), 1e-9) {
		t.Fatal("resolution does not halve per zoom level")
	}
}

func TestTrackerObserve(t *testing.T) {
	var tr Tracker
	v := View{Center: orb.Point{26.1, 44.43}, Zoom: 7, Width: 100, Height: 60}
	e1, changed := tr.Observe(v)
	if !changed {
		t.Fatal("first observation must report a change")
	}
	if _, changed := tr.Observe(v); changed {
		t.Fatal("identical view reported as change")
	}
	e2, changed := tr.Observe(v.ZoomBy(1))
	if !changed || e2 == e1 {
		t.Fatal("zoom must change the extent")
	}
	if last, ok := tr.Last(); !ok || last != e2 {
		t.Fatalf("last = %v", last)
	}
}
