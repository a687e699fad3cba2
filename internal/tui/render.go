package tui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"poimap/internal/featurecache"
	"poimap/internal/mode"
	"poimap/internal/style"
)

// maxGridLines bounds the graticule so extreme zooms stay cheap.
const maxGridLines = 256

// renderMap draws the graticule, the cached features and their labels into a
// w x h cell canvas. The view must already be sized to w*2 x h*4 pixels.
func (m Model) renderMap(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	br := newBrailleBuf(w, h)
	m.drawGraticule(br)

	cells := make([][]string, h)
	for y := range cells {
		row := make([]string, w)
		for x := range row {
			if r, ok := br.cell(x, y); ok {
				row[x] = m.st.grid.Render(string(r))
			} else {
				row[x] = " "
			}
		}
		cells[y] = row
	}

	type label struct {
		row, col int
		text     string
		style    style.Style
	}
	var labels []label
	placer := style.NewPlacer(w)
	res := m.view.Resolution()
	for _, f := range m.visibleFeatures() {
		px, py := m.view.LocalToPixel(f.Local)
		cx, cy := int(math.Floor(px/2)), int(math.Floor(py/4))
		if cx < 0 || cy < 0 || cx >= w || cy >= h {
			continue
		}
		s := m.resolver.Resolve(f, res)
		marker := s.Marker
		if f.ID == m.hoverID {
			marker = m.st.hover
		}
		cells[cy][cx] = marker.Render(string(s.Glyph))
		placer.Reserve(cy, cx)
		if s.Label != "" {
			labels = append(labels, label{row: cy, col: cx, text: s.Label, style: s})
		}
	}
	// Labels go after every marker so a label never hides a point.
	for _, l := range labels {
		if !l.style.Declutter {
			writeText(cells[l.row], l.col+2, l.text, l.style)
			continue
		}
		if span, ok := placer.Place(l.row, l.col, l.text); ok {
			writeText(cells[span.Row], span.Col, l.text, l.style)
		}
	}

	if m.modes.Mode() == mode.AddPoint {
		cx, cy := w/2, h/2
		if !strings.Contains(cells[cy][cx], "●") {
			cells[cy][cx] = m.st.title.Render("+")
		}
	}

	lines := make([]string, h)
	for y, row := range cells {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

// writeText puts text into row starting at col, clipping at the row end.
func writeText(row []string, col int, text string, s style.Style) {
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col < 0 || col+rw > len(row) {
			return
		}
		row[col] = s.Text.Render(string(r))
		for i := 1; i < rw; i++ {
			row[col+i] = ""
		}
		col += rw
	}
}

func (m Model) visibleFeatures() []featurecache.Feature {
	if m.cache == nil {
		return nil
	}
	return m.cache.Features()
}

// drawGraticule draws meridians and parallels at a spacing that keeps them
// at least a few cells apart.
func (m Model) drawGraticule(br *brailleBuf) {
	e := m.view.Extent()
	if !e.Valid() || m.view.Width == 0 || m.view.Height == 0 {
		return
	}
	pxPerDegree := float64(m.view.Width) / math.Max(e.MaxLon-e.MinLon, 1e-9)
	step := gridStep(pxPerDegree, 24)
	maxX, maxY := m.view.Width-1, m.view.Height-1
	clat := m.view.Center.Lat()
	clon := m.view.Center.Lon()

	n := 0
	for lon := math.Ceil(e.MinLon/step) * step; lon <= e.MaxLon && n < maxGridLines; lon += step {
		x, _ := m.view.ToPixel(lon, clat)
		br.drawLineMicro(int(x), 0, int(x), maxY)
		n++
	}
	for lat := math.Ceil(e.MinLat/step) * step; lat <= e.MaxLat && n < maxGridLines; lat += step {
		_, y := m.view.ToPixel(clon, lat)
		br.drawLineMicro(0, int(y), maxX, int(y))
		n++
	}
}
