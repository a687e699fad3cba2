package geom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	in := "Name,Latitude,Longitude\nLake,44.43,26.1\nbad,x,y\nRiver, 45.0 , 25.5\n"
	pms, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(pms) != 2 {
		t.Fatalf("got %d placemarks", len(pms))
	}
	if pms[0].Name != "Lake" || pms[0].Point.Lon() != 26.1 || pms[0].Point.Lat() != 44.43 {
		t.Errorf("first = %+v", pms[0])
	}
	if pms[1].Point.Lon() != 25.5 {
		t.Errorf("second = %+v", pms[1])
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadKML(t *testing.T) {
	in := `<kml><Document>
<Placemark><name>Dock</name><Point><coordinates>26.1,44.43,0</coordinates></Point></Placemark>
<Placemark><name>Line</name></Placemark>
</Document></kml>`
	pms, err := ReadKML(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(pms) != 1 || pms[0].Name != "Dock" || pms[0].Point.Lat() != 44.43 {
		t.Fatalf("got %+v", pms)
	}
}

func TestParseWKT(t *testing.T) {
	pms, err := ParseWKT("POINT(26.1 44.43)\n\nMULTIPOINT((1 2),(3 4))")
	if err != nil {
		t.Fatal(err)
	}
	if len(pms) != 3 {
		t.Fatalf("got %d", len(pms))
	}
	if _, err := ParseWKT("LINESTRING(0 0, 1 1)"); err == nil {
		t.Fatal("linestring should be rejected")
	}
	if _, err := ParseWKT("  "); err == nil {
		t.Fatal("empty input should be rejected")
	}
}

func TestLoadPlacemarksGeoJSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "spots.geojson")
	body := `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"Point","coordinates":[26.1,44.43]},"properties":{"name":"Test"}},
{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{}}]}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	pms, err := LoadPlacemarks(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(pms) != 1 || pms[0].Name != "Test" {
		t.Fatalf("got %+v", pms)
	}
	if _, err := LoadPlacemarks(filepath.Join(dir, "x.shp")); err == nil {
		t.Fatal("expected unsupported error")
	}
}
