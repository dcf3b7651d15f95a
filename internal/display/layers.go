package display

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/draw"
	"github.com/tomz197/launchpad/internal/parallax"
)

// panelLayer holds the latest rotation for the foreground panel and turns it
// into a cell shift at draw time.
type panelLayer struct {
	rotation parallax.Rotation
}

func (p *panelLayer) Rotate(r parallax.Rotation) {
	p.rotation = r
}

// shift returns how many columns and rows the panel moves. The panel leans
// towards the pointer while the background moves away from it.
func (p *panelLayer) shift() (cols, rows int) {
	cols = int(math.Round(-p.rotation.Y * config.PanelShiftPerDegree))
	rows = int(math.Round(-p.rotation.X * config.PanelShiftPerDegree / 2))
	return cols, rows
}

// glow is one soft radial light in the backdrop. Centers and radii are
// fractions of the viewport.
type glow struct {
	cx, cy float64
	rx, ry float64
	color  colorful.Color
	alpha  float64
	reach  float64 // Fraction of the radius where the glow fades out
}

var (
	backdropTop    = draw.Hex("#070509")
	backdropBottom = draw.Hex("#020103")

	glows = []glow{
		{cx: 0.2, cy: 0.3, rx: 0.6, ry: 0.4, color: draw.Hex("#f5c77a"), alpha: 0.18, reach: 0.65},
		{cx: 0.8, cy: 0.7, rx: 0.5, ry: 0.35, color: draw.Hex("#e0b86b"), alpha: 0.15, reach: 0.65},
	}
)

// backdropLayer is the ambient background. Translating it repaints the
// canvas backdrop, which the particle field clears to on every frame.
type backdropLayer struct {
	canvas      *draw.Canvas
	translation parallax.Translation
}

func (b *backdropLayer) Translate(t parallax.Translation) {
	if t == b.translation {
		return
	}
	b.translation = t
	b.apply()
}

func (b *backdropLayer) apply() {
	if b.canvas == nil {
		return
	}
	w, h := b.canvas.Size()
	b.canvas.SetBackdrop(backdropFunc(w, h, b.translation))
}

// backdropFunc paints a vertical gradient with two warm glows, shifted by t.
func backdropFunc(width, height int, t parallax.Translation) draw.BackdropFunc {
	fw := math.Max(float64(width), 1)
	fh := math.Max(float64(height), 1)

	return func(x, y int) colorful.Color {
		c := backdropTop.BlendRgb(backdropBottom, float64(y)/fh)
		px := float64(x) - t.X
		py := float64(y) - t.Y
		for _, g := range glows {
			dx := (px - g.cx*fw) / (g.rx * fw)
			dy := (py - g.cy*fh) / (g.ry * fh)
			d := math.Sqrt(dx*dx + dy*dy)
			if d < g.reach {
				c = c.BlendRgb(g.color, g.alpha*(1-d/g.reach))
			}
		}
		return c
	}
}
