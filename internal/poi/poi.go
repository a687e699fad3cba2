// Package poi holds the point-of-interest record shared by the map client and
// the gateway, and its GeoJSON decoding.
package poi

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// POI is a server-owned point record. The client never assigns ID.
type POI struct {
	ID    int64
	Lon   float64
	Lat   float64
	Name  string
	Props map[string]any
}

// Point returns the location as an orb.Point (lon, lat).
func (p POI) Point() orb.Point { return orb.Point{p.Lon, p.Lat} }

var ErrNoID = errors.New("feature has no usable identifier")

// ResolveID returns the feature identifier, falling back to the "id"
// property when the feature carries no native id.
func ResolveID(f *geojson.Feature) (int64, error) {
	if id, ok := toID(f.ID); ok {
		return id, nil
	}
	if id, ok := toID(f.Properties["id"]); ok {
		return id, nil
	}
	return 0, ErrNoID
}

func toID(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if t > 0 && t == math.Trunc(t) && t < math.MaxInt64 {
			return int64(t), true
		}
	case int64:
		return t, t > 0
	case int:
		return int64(t), t > 0
	case json.Number:
		id, err := t.Int64()
		return id, err == nil && id > 0
	case string:
		id, err := strconv.ParseInt(t, 10, 64)
		return id, err == nil && id > 0
	}
	return 0, false
}

// FromFeature converts a GeoJSON Point feature into a POI.
func FromFeature(f *geojson.Feature) (POI, error) {
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return POI{}, fmt.Errorf("feature geometry is %T, want Point", f.Geometry)
	}
	id, err := ResolveID(f)
	if err != nil {
		return POI{}, err
	}
	props := make(map[string]any, len(f.Properties))
	for k, v := range f.Properties {
		props[k] = v
	}
	return POI{
		ID:    id,
		Lon:   pt.Lon(),
		Lat:   pt.Lat(),
		Name:  f.Properties.MustString("name", ""),
		Props: props,
	}, nil
}

// ParseCollection decodes a FeatureCollection body. Features that are not
// points or have no identifier are skipped and counted.
func ParseCollection(data []byte) (pois []POI, skipped int, err error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode feature collection: %w", err)
	}
	pois = make([]POI, 0, len(fc.Features))
	for _, f := range fc.Features {
		p, err := FromFeature(f)
		if err != nil {
			skipped++
			continue
		}
		pois = append(pois, p)
	}
	return pois, skipped, nil
}

// Feature converts the POI back to a GeoJSON feature.
func (p POI) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.Point())
	f.ID = p.ID
	for k, v := range p.Props {
		f.Properties[k] = v
	}
	f.Properties["name"] = p.Name
	return f
}

// Query selects POIs by bounding box. A nil bound leaves that side open.
type Query struct {
	MinLon, MinLat, MaxLon, MaxLat *float64
	Limit                          int
}
