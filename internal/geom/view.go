package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	earthRadius = 6378137.0
	tileSize    = 256.0

	// MaxLat is the latitude limit of the Web Mercator projection.
	MaxLat = 85.0511287798

	MinZoom = 0.0
	MaxZoom = 20.0
)

// View is the view transform of the map surface: center in lon/lat, a
// fractional web zoom level and the surface size in pixels.
type View struct {
	Center orb.Point
	Zoom   float64
	Width  int
	Height int
}

// Resolution returns metres per pixel at the given zoom (Web Mercator, 256px tiles).
func Resolution(zoom float64) float64 {
	return 2 * math.Pi * earthRadius / (tileSize * math.Pow(2, zoom))
}

// Resolution returns metres per pixel for the view.
func (v View) Resolution() float64 { return Resolution(v.Zoom) }

// Project converts lon/lat to the map's working projection (EPSG:3857).
func Project(lon, lat float64) orb.Point {
	return project.WGS84.ToMercator(orb.Point{lon, clampLat(lat)})
}

// Unproject converts a Web Mercator point back to lon/lat.
func Unproject(p orb.Point) (lon, lat float64) {
	g := project.Mercator.ToWGS84(p)
	return g.Lon(), g.Lat()
}

// Extent returns the geographic extent currently visible in the view.
func (v View) Extent() Extent {
	c := Project(v.Center.Lon(), v.Center.Lat())
	res := v.Resolution()
	hw := float64(v.Width) / 2 * res
	hh := float64(v.Height) / 2 * res
	minLon, minLat := Unproject(orb.Point{c.X() - hw, c.Y() - hh})
	maxLon, maxLat := Unproject(orb.Point{c.X() + hw, c.Y() + hh})
	return Extent{
		MinLon: clampLon(minLon),
		MinLat: clampLat(minLat),
		MaxLon: clampLon(maxLon),
		MaxLat: clampLat(maxLat),
	}
}

// ToPixel maps lon/lat to fractional surface pixels (origin top-left).
func (v View) ToPixel(lon, lat float64) (x, y float64) {
	return v.LocalToPixel(Project(lon, lat))
}

// LocalToPixel maps a projected point to fractional surface pixels.
func (v View) LocalToPixel(p orb.Point) (x, y float64) {
	c := Project(v.Center.Lon(), v.Center.Lat())
	res := v.Resolution()
	x = float64(v.Width)/2 + (p.X()-c.X())/res
	y = float64(v.Height)/2 - (p.Y()-c.Y())/res
	return x, y
}

// PixelToLocal maps surface pixels back to the projected coordinate system.
func (v View) PixelToLocal(x, y float64) orb.Point {
	c := Project(v.Center.Lon(), v.Center.Lat())
	res := v.Resolution()
	return orb.Point{
		c.X() + (x-float64(v.Width)/2)*res,
		c.Y() - (y-float64(v.Height)/2)*res,
	}
}

// FromPixel maps surface pixels to lon/lat.
func (v View) FromPixel(x, y float64) (lon, lat float64) {
	return Unproject(v.PixelToLocal(x, y))
}

// Pan moves the center by dx/dy pixels.
func (v View) Pan(dx, dy float64) View {
	lon, lat := v.FromPixel(float64(v.Width)/2+dx, float64(v.Height)/2+dy)
	v.Center = orb.Point{wrapLon(lon), clampLat(lat)}
	return v
}

// ZoomBy changes the zoom level by delta, clamped to [MinZoom, MaxZoom].
func (v View) ZoomBy(delta float64) View {
	v.Zoom = math.Max(MinZoom, math.Min(MaxZoom, v.Zoom+delta))
	return v
}

func clampLat(lat float64) float64 { return math.Max(-MaxLat, math.Min(MaxLat, lat)) }

func clampLon(lon float64) float64 { return math.Max(-180, math.Min(180, lon)) }

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

// Tracker derives the geographic extent whenever the view changes.
type Tracker struct {
	last Extent
	seen bool
}

// Observe computes the extent of v and reports whether it differs from the
// previously observed one. The view itself is never modified.
func (t *Tracker) Observe(v View) (Extent, bool) {
	e := v.Extent()
	changed := !t.seen || e != t.last
	t.last, t.seen = e, true
	return e, changed
}

// Last returns the most recently observed extent.
func (t *Tracker) Last() (Extent, bool) { return t.last, t.seen }
