package geom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ImportExtensions lists the file extensions LoadPlacemarks understands.
var ImportExtensions = []string{".csv", ".geojson", ".json", ".kml", ".wkt"}

// LoadPlacemarks reads the named points of a file, dispatching on its extension.
func LoadPlacemarks(path string) ([]Placemark, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".kml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if ext == ".csv" {
			return ReadCSV(f)
		}
		return ReadKML(f)
	case ".wkt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseWKT(string(data))
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseGeoJSON(data)
	}
	return nil, fmt.Errorf("unsupported file: %s", ext)
}

// ParseGeoJSON returns the Point and MultiPoint members of a FeatureCollection,
// using the "name" property when present.
func ParseGeoJSON(data []byte) ([]Placemark, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	var out []Placemark
	for _, f := range fc.Features {
		name := f.Properties.MustString("name", "")
		switch g := f.Geometry.(type) {
		case orb.Point:
			out = append(out, Placemark{Point: g, Name: name})
		case orb.MultiPoint:
			for _, p := range g {
				out = append(out, Placemark{Point: p, Name: name})
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.New("geojson: no points found")
	}
	return out, nil
}
