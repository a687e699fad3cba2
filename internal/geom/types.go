package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Extent is a geographic bounding box in degrees (EPSG:4326).
type Extent struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Valid reports whether the extent is finite and well ordered.
func (e Extent) Valid() bool {
	for _, v := range []float64{e.MinLon, e.MinLat, e.MaxLon, e.MaxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return e.MinLon <= e.MaxLon && e.MinLat <= e.MaxLat
}

// Contains reports whether lon/lat lies inside the extent (edges included).
func (e Extent) Contains(lon, lat float64) bool {
	return lon >= e.MinLon && lon <= e.MaxLon && lat >= e.MinLat && lat <= e.MaxLat
}

// Bound converts the extent to an orb.Bound.
func (e Extent) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{e.MinLon, e.MinLat}, Max: orb.Point{e.MaxLon, e.MaxLat}}
}

// ExtentOf converts an orb.Bound in lon/lat to an Extent.
func ExtentOf(b orb.Bound) Extent {
	return Extent{MinLon: b.Min.Lon(), MinLat: b.Min.Lat(), MaxLon: b.Max.Lon(), MaxLat: b.Max.Lat()}
}

func (e Extent) String() string {
	return fmt.Sprintf("[%.5f, %.5f, %.5f, %.5f]", e.MinLon, e.MinLat, e.MaxLon, e.MaxLat)
}

// Placemark is a named point read from an import file.
type Placemark struct {
	Point orb.Point // lon, lat
	Name  string
}
