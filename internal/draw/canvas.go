package draw

import (
	"io"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// maxChunkSize is the maximum bytes to write at once. 1400 bytes keeps each
// write inside a typical 1500-byte MTU once SSH and TCP/IP headers are added.
const maxChunkSize = 1400

// BackdropFunc returns the backdrop color of the pixel at (x, y).
type BackdropFunc func(x, y int) colorful.Color

// Canvas is a color framebuffer with 2x vertical resolution using half-block
// characters, plus a text overlay addressed in terminal cells. Render only
// emits cells that changed since the previous Render.
type Canvas struct {
	width  int // Pixel columns (== terminal columns)
	height int // Pixel rows (== terminal rows * 2, rounded)

	termWidth  int
	termHeight int

	pixels   []colorful.Color // Flat slice: [y * width + x]
	backdrop []colorful.Color // Copied into pixels on Clear
	text     []textCell       // Flat slice: [row * termWidth + col]
	prev     []cell           // What the terminal currently shows
	drawn    bool             // prev is valid

	backdropFunc BackdropFunc

	// Offset for centering the render area when the terminal is larger than
	// the max render resolution. 0-based terminal columns/rows to skip.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	numBuf    [20]byte // Scratch buffer for allocation-free integer formatting
}

// wideTail marks the overlay cell covered by the right half of a wide rune.
const wideTail rune = -1

type textCell struct {
	ch rune
	fg colorful.Color
	bg colorful.Color
	a  float64 // bg opacity over the pixels below
}

type cell struct {
	ch     rune
	fg, bg RGB
}

// NewCanvas creates a canvas of width x height pixels. height is in
// sub-pixels, two per terminal row.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize updates the pixel dimensions. Resizing to the current size is a
// no-op; any other size reallocates, repaints the backdrop and forces a full
// redraw on the next Render.
func (c *Canvas) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == c.width && height == c.height && c.pixels != nil {
		return
	}

	c.width = width
	c.height = height
	c.termWidth = width
	c.termHeight = (height + 1) / 2
	c.pixels = make([]colorful.Color, width*height)
	c.backdrop = make([]colorful.Color, width*height)
	c.text = make([]textCell, c.termWidth*c.termHeight)
	c.prev = make([]cell, c.termWidth*c.termHeight)
	c.drawn = false
	c.paintBackdrop()
}

// Size returns the pixel dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// TerminalWidth returns the render area width in terminal columns.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the render area height in terminal rows.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.drawn = false
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// SetBackdrop sets the function painting the background behind everything
// drawn. It is re-evaluated on every resize. A nil fn paints black.
func (c *Canvas) SetBackdrop(fn BackdropFunc) {
	c.backdropFunc = fn
	c.paintBackdrop()
}

func (c *Canvas) paintBackdrop() {
	if c.backdropFunc == nil {
		clear(c.backdrop)
		return
	}
	for y := 0; y < c.height; y++ {
		row := y * c.width
		for x := 0; x < c.width; x++ {
			c.backdrop[row+x] = c.backdropFunc(x, y)
		}
	}
}

// Clear resets all pixels to the backdrop and removes all text.
func (c *Canvas) Clear() {
	copy(c.pixels, c.backdrop)
	clear(c.text)
}

// ForceRedraw makes the next Render repaint every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.drawn = false
}

// Pixel returns the color at (x, y), or black outside the canvas.
func (c *Canvas) Pixel(x, y int) colorful.Color {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return colorful.Color{}
	}
	return c.pixels[y*c.width+x]
}

// Render writes the cells that changed since the last Render.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	lastRow, lastCol := -1, -1
	var lastFG, lastBG RGB
	styled := false

	for row := 0; row < c.termHeight; row++ {
		for col := 0; col < c.termWidth; col++ {
			idx := row*c.termWidth + col
			cur := c.cellAt(row, col)
			if cur.ch == wideTail {
				continue // written with the wide rune to its left
			}
			width := 1
			var tail cell
			if col+1 < c.termWidth && c.text[idx+1].ch == wideTail {
				width = 2
				tail = c.cellAt(row, col+1)
			}
			if c.drawn && c.prev[idx] == cur && (width == 1 || c.prev[idx+1] == tail) {
				continue
			}
			c.prev[idx] = cur
			if width == 2 {
				c.prev[idx+1] = tail
			}

			// The cursor advances by one after each cell, so runs of
			// changed cells only need one move.
			if row != lastRow || col != lastCol+1 {
				c.moveCursor(col, row)
			}
			if !styled || cur.fg != lastFG || cur.bg != lastBG {
				c.writeSGR(cur.fg, cur.bg)
				lastFG, lastBG = cur.fg, cur.bg
				styled = true
			}
			c.renderBuf.WriteRune(cur.ch)
			lastRow, lastCol = row, col+width-1
		}
	}
	c.drawn = true

	if c.renderBuf.Len() == 0 {
		return
	}
	c.renderBuf.WriteString("\033[0m")

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func (c *Canvas) cellAt(row, col int) cell {
	top := c.pixels[(row*2)*c.width+col]
	bottom := colorful.Color{}
	if row*2+1 < c.height {
		bottom = c.pixels[(row*2+1)*c.width+col]
	}

	tc := c.text[row*c.termWidth+col]
	if tc.ch == 0 {
		return cell{ch: BlockUpperHalf, fg: ToRGB(top), bg: ToRGB(bottom)}
	}
	under := top.BlendRgb(bottom, 0.5)
	return cell{ch: tc.ch, fg: ToRGB(tc.fg), bg: ToRGB(under.BlendRgb(tc.bg, tc.a))}
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row+1+c.offsetRow), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col+1+c.offsetCol), 10))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) writeSGR(fg, bg RGB) {
	c.renderBuf.WriteString("\033[38;2;")
	c.writeRGB(fg)
	c.renderBuf.WriteString(";48;2;")
	c.writeRGB(bg)
	c.renderBuf.WriteByte('m')
}

func (c *Canvas) writeRGB(v RGB) {
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(v.R), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(v.G), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(v.B), 10))
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return
	}

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	line := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	writeAt := func(col, row int, s string) {
		buf.WriteString("\033[")
		buf.WriteString(strconv.Itoa(row))
		buf.WriteByte(';')
		buf.WriteString(strconv.Itoa(col))
		buf.WriteByte('H')
		buf.WriteString(s)
	}

	if hasV {
		if hasH {
			writeAt(left, top, "┌"+line+"┐")
			writeAt(left, bottom, "└"+line+"┘")
		} else {
			writeAt(c.offsetCol+1, top, line)
			writeAt(c.offsetCol+1, bottom, line)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			writeAt(left, row, "│")
			writeAt(right, row, "│")
		}
	}

	io.WriteString(w, buf.String())
}
