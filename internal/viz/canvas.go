package viz

import "strings"

// braille dot bits for a 2x4 cell, indexed [row][col]
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a monochrome pixel grid rendered with braille characters; each
// character cell holds 2x4 pixels.
type Canvas struct {
	Width, Height int // in character cells
	cells         []uint8
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, cells: make([]uint8, w*h)}
}

// Pixels returns the canvas size in pixels.
func (c *Canvas) Pixels() (int, int) { return 2 * c.Width, 4 * c.Height }

// Set turns on pixel (x, y); out-of-range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	pw, ph := c.Pixels()
	if x < 0 || y < 0 || x >= pw || y >= ph {
		return
	}
	c.cells[(y/4)*c.Width+x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) Get(x, y int) bool {
	pw, ph := c.Pixels()
	if x < 0 || y < 0 || x >= pw || y >= ph {
		return false
	}
	return c.cells[(y/4)*c.Width+x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = 0
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0)
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

func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			b.WriteRune(0x2800 + rune(c.cells[row*c.Width+col]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
