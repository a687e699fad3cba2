package style

import "github.com/mattn/go-runewidth"

// Span is a horizontal run of cells on one row.
type Span struct {
	Row, Col, Width int
}

func (s Span) overlaps(o Span) bool {
	return s.Row == o.Row && s.Col < o.Col+o.Width && o.Col < s.Col+s.Width
}

// Placer accepts labels in order and drops those that would overlap a
// marker or an already placed label.
type Placer struct {
	width  int
	placed []Span
}

func NewPlacer(width int) *Placer { return &Placer{width: width} }

// Reserve marks a cell as occupied by a marker.
func (p *Placer) Reserve(row, col int) {
	p.placed = append(p.placed, Span{Row: row, Col: col, Width: 1})
}

// Place tries to put label one cell right of the marker at row/col. It
// returns the accepted span, or false when the label is empty, does not fit
// or would overlap.
func (p *Placer) Place(row, col int, label string) (Span, bool) {
	w := runewidth.StringWidth(label)
	if w == 0 {
		return Span{}, false
	}
	s := Span{Row: row, Col: col + 2, Width: w}
	if s.Col < 0 || s.Col+s.Width > p.width {
		return Span{}, false
	}
	for _, o := range p.placed {
		if s.overlaps(o) {
			return Span{}, false
		}
	}
	p.placed = append(p.placed, s)
	return s, true
}
