package geom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ParseWKT returns the points of a POINT or MULTIPOINT WKT string. One
// geometry per non-empty line is accepted.
func ParseWKT(s string) ([]Placemark, error) {
	var out []Placemark
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		g, err := wkt.Unmarshal(line)
		if err != nil {
			return nil, fmt.Errorf("wkt: %w", err)
		}
		switch g := g.(type) {
		case orb.Point:
			out = append(out, Placemark{Point: g})
		case orb.MultiPoint:
			for _, p := range g {
				out = append(out, Placemark{Point: p})
			}
		default:
			return nil, fmt.Errorf("wkt: unsupported geometry %s, only points can be imported", g.GeoJSONType())
		}
	}
	if len(out) == 0 {
		return nil, errors.New("empty wkt")
	}
	return out, nil
}
