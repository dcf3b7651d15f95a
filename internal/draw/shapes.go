package draw

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

// FillCircle composites a filled circle centered at (x, y) in pixel space.
// A pixel is covered when its center lies inside the circle; the pixel
// containing the center is always covered so sub-pixel dots stay visible.
func (c *Canvas) FillCircle(x, y, radius float64, col color.Color) {
	if radius < 0 {
		radius = 0
	}

	yStart := int(math.Floor(y - radius))
	yEnd := int(math.Ceil(y + radius))
	xStart := int(math.Floor(x - radius))
	xEnd := int(math.Ceil(x + radius))
	r2 := radius * radius

	cx, cy := int(math.Floor(x)), int(math.Floor(y))
	for py := yStart; py <= yEnd; py++ {
		dy := float64(py) + 0.5 - y
		for px := xStart; px <= xEnd; px++ {
			dx := float64(px) + 0.5 - x
			if dx*dx+dy*dy <= r2 || (px == cx && py == cy) {
				c.blendPixel(px, py, col)
			}
		}
	}
}

// FillRect composites col over the pixel rectangle [x, x+w) x [y, y+h).
func (c *Canvas) FillRect(x, y, w, h int, col color.Color) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			c.blendPixel(px, py, col)
		}
	}
}

func (c *Canvas) blendPixel(x, y int, col color.Color) {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		i := y*c.width + x
		c.pixels[i] = Over(c.pixels[i], col)
	}
}

// DrawText places s in the text overlay starting at the 0-based terminal cell
// (col, row). Each rune advances by its display width, so wide runes take two
// cells and zero-width runes are dropped. Runes that do not fit entirely on
// the canvas are clipped. The cell background is bg composited over the
// pixels underneath.
func (c *Canvas) DrawText(col, row int, s string, fg, bg color.Color) {
	if row < 0 || row >= c.termHeight {
		return
	}
	fgc, ok := colorful.MakeColor(fg)
	if !ok {
		return
	}
	_, _, _, a := bg.RGBA()
	bgc, _ := colorful.MakeColor(bg)
	alpha := float64(a) / 0xffff

	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= c.termWidth {
			c.setText(row, col, textCell{ch: ch, fg: fgc, bg: bgc, a: alpha})
			if w == 2 {
				c.setText(row, col+1, textCell{ch: wideTail, fg: fgc, bg: bgc, a: alpha})
			}
		}
		col += w
	}
}

// setText writes one overlay cell, blanking the other half of any wide rune
// it overwrites.
func (c *Canvas) setText(row, col int, tc textCell) {
	i := row*c.termWidth + col
	switch {
	case c.text[i].ch == wideTail && col > 0:
		c.text[i-1] = textCell{}
	case c.text[i].ch != wideTail && col+1 < c.termWidth && c.text[i+1].ch == wideTail:
		c.text[i+1] = textCell{}
	}
	c.text[i] = tc
}

// TextAt returns the overlay rune at a terminal cell, or 0 if none.
func (c *Canvas) TextAt(col, row int) rune {
	if col < 0 || col >= c.termWidth || row < 0 || row >= c.termHeight {
		return 0
	}
	if ch := c.text[row*c.termWidth+col].ch; ch != wideTail {
		return ch
	}
	return 0
}
