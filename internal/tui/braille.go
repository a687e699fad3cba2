package tui

// brailleDots maps a micro-pixel position inside a cell (column 0-1, row
// 0-3) to its bit in the U+2800 block.
var brailleDots = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// brailleBuf is a 2x4 micro-pixel canvas per terminal cell. Micro-pixels
// are the map's pixel unit.
type brailleBuf struct {
	w, h int // in cells
	m    [][]uint8
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= b.w || cy >= b.h {
		return
	}
	b.m[cy][cx] |= brailleDots[my%4][mx%2]
}

// drawLineMicro draws a line on the micro grid using Bresenham.
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// cell returns the braille rune of cell x/y, or false when it is blank.
func (b *brailleBuf) cell(x, y int) (rune, bool) {
	mask := b.m[y][x]
	if mask == 0 {
		return ' ', false
	}
	return rune(0x2800 + int(mask)), true
}
