// Package draw renders colored half-block pixels and text overlays to ANSI
// terminals.
package draw

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// RGB is an opaque 24-bit terminal color.
type RGB struct {
	R, G, B uint8
}

// ToRGB quantizes c to 24 bits.
func ToRGB(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Over composites src over dst using src's alpha channel. A fully transparent
// src leaves dst unchanged.
func Over(dst colorful.Color, src color.Color) colorful.Color {
	_, _, _, a := src.RGBA()
	if a == 0 {
		return dst
	}
	// MakeColor un-premultiplies, giving the straight color.
	straight, ok := colorful.MakeColor(src)
	if !ok {
		return dst
	}
	return dst.BlendRgb(straight, float64(a)/0xffff)
}

// Hex parses a #rrggbb color, returning black for malformed input.
func Hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
