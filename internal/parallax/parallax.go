// Package parallax turns pointer position into depth transforms for the
// foreground panel and the background layer.
package parallax

import (
	"strconv"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/env"
)

// Offset is the tilt derived from one pointer sample.
type Offset struct {
	TiltX, TiltY float64
}

// Tilt computes the offset for a pointer at (x, y) in a width x height
// viewport. The viewport center maps to zero.
func Tilt(x, y, width, height float64) Offset {
	return Offset{
		TiltX: (width/2 - x) / config.ParallaxDivisor,
		TiltY: (height/2 - y) / config.ParallaxDivisor,
	}
}

// Rotation is the panel transform, in degrees.
type Rotation struct {
	X, Y float64
}

// IsIdentity reports whether the rotation is a no-op.
func (r Rotation) IsIdentity() bool {
	return r.X == 0 && r.Y == 0
}

// String renders the rotation as a CSS transform.
func (r Rotation) String() string {
	return "rotateY(" + num(r.Y) + "deg) rotateX(" + num(r.X) + "deg)"
}

// Translation is the background transform, in pixels.
type Translation struct {
	X, Y float64
}

// IsIdentity reports whether the translation is a no-op.
func (t Translation) IsIdentity() bool {
	return t.X == 0 && t.Y == 0
}

// String renders the translation as a CSS transform.
func (t Translation) String() string {
	return "translateX(" + num(t.X) + "px) translateY(" + num(t.Y) + "px)"
}

// Rotation returns the panel transform for the offset.
func (o Offset) Rotation() Rotation {
	return Rotation{X: o.TiltY, Y: o.TiltX}
}

// Translation returns the background transform for the offset.
func (o Offset) Translation() Translation {
	return Translation{X: o.TiltX * config.BackdropTranslation, Y: o.TiltY * config.BackdropTranslation}
}

func num(v float64) string {
	// Adding zero turns -0 into 0.
	return strconv.FormatFloat(v+0, 'f', -1, 64)
}

// Panel receives the foreground rotation.
type Panel interface {
	Rotate(Rotation)
}

// Background receives the background translation.
type Background interface {
	Translate(Translation)
}

// PanelFunc adapts a function to Panel.
type PanelFunc func(Rotation)

// Rotate calls f.
func (f PanelFunc) Rotate(r Rotation) { f(r) }

// BackgroundFunc adapts a function to Background.
type BackgroundFunc func(Translation)

// Translate calls f.
func (f BackgroundFunc) Translate(t Translation) { f(t) }

// Controller applies pointer-driven transforms to two layers. It keeps no
// history: every pointer sample is transformed from scratch.
type Controller struct {
	viewport   env.Viewport
	panel      Panel
	background Background
	listener   env.Handle
}

// NewController creates a controller for the given layers. Either layer may
// be nil, in which case its updates are skipped.
func NewController(vp env.Viewport, panel Panel, background Background) *Controller {
	return &Controller{viewport: vp, panel: panel, background: background}
}

// Start attaches to pointer-move events. Starting twice is a no-op.
func (c *Controller) Start() {
	if c.viewport == nil || c.listener != nil {
		return
	}
	c.listener = c.viewport.OnPointerMove(func(x, y float64) {
		w, h := c.viewport.Size()
		c.OnPointerMove(x, y, float64(w), float64(h))
	})
}

// OnPointerMove computes the offset for one pointer sample and applies it to
// the layers.
func (c *Controller) OnPointerMove(x, y, width, height float64) Offset {
	o := Tilt(x, y, width, height)
	if c.panel != nil {
		c.panel.Rotate(o.Rotation())
	}
	if c.background != nil {
		c.background.Translate(o.Translation())
	}
	return o
}

// Stop detaches from pointer events. Safe to call repeatedly and before
// Start.
func (c *Controller) Stop() {
	env.Cancel(c.listener)
	c.listener = nil
}

// Running reports whether the controller listens to the pointer.
func (c *Controller) Running() bool {
	return c.listener != nil
}
