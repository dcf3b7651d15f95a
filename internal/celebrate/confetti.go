// Package celebrate implements the confetti burst shown when the countdown
// reaches zero.
package celebrate

import (
	"image/color"
	"math"
	"math/rand"
	"sync"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/env"
)

// Config is the fixed shape of a burst.
type Config struct {
	Count    int     // Pieces per burst
	Spread   float64 // Degrees, centered straight up
	OriginY  float64 // Fraction of the viewport height; x is always centered
	Velocity float64 // Initial speed in pixels per frame
	Decay    float64 // Velocity multiplier per frame
	Gravity  float64 // Downward pixels per frame added each frame
	Ticks    int     // Frames a piece lives
}

// DefaultConfig is 350 pieces, 160 degrees of spread, launched from 60% of
// the viewport height.
func DefaultConfig() Config {
	return Config{
		Count:    config.ConfettiCount,
		Spread:   config.ConfettiSpread,
		OriginY:  config.ConfettiOriginY,
		Velocity: config.ConfettiVelocity,
		Decay:    config.ConfettiDecay,
		Gravity:  config.ConfettiGravity,
		Ticks:    config.ConfettiTicks,
	}
}

// Surface is where confetti is drawn.
type Surface interface {
	FillCircle(x, y, radius float64, c color.Color)
}

// piecePool reuses confetti pieces across bursts.
var piecePool = sync.Pool{
	New: func() any {
		return &piece{}
	},
}

type piece struct {
	X, Y   float64
	VX, VY float64
	Color  color.NRGBA
	Age    int
}

// Confetti holds the pieces of every burst still in flight.
type Confetti struct {
	viewport env.Viewport
	cfg      Config
	rng      *rand.Rand
	pieces   []*piece
	bursts   int
}

// New creates an idle confetti effect over the viewport. A nil rng seeds
// from the clock.
func New(vp env.Viewport, cfg Config, rng *rand.Rand) *Confetti {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Confetti{viewport: vp, cfg: cfg, rng: rng}
}

// Burst launches one burst of pieces from the configured origin.
func (c *Confetti) Burst() {
	c.bursts++
	if c.viewport == nil {
		return
	}
	w, h := c.viewport.Size()
	ox := float64(w) / 2
	oy := float64(h) * c.cfg.OriginY

	for i := 0; i < c.cfg.Count; i++ {
		// Direction within the spread around straight up
		angle := (90 + (c.rng.Float64()-0.5)*c.cfg.Spread) * math.Pi / 180
		// Random speed variation (50% to 100%)
		spd := c.cfg.Velocity * (0.5 + c.rng.Float64()*0.5)

		p := piecePool.Get().(*piece)
		p.X = ox
		p.Y = oy
		p.VX = math.Cos(angle) * spd
		p.VY = -math.Sin(angle) * spd
		p.Age = 0
		p.Color = c.randomColor()
		c.pieces = append(c.pieces, p)
	}
}

func (c *Confetti) randomColor() color.NRGBA {
	hue := c.rng.Float64() * 360
	r, g, b := colorful.Hsv(hue, 0.55+c.rng.Float64()*0.35, 1).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Step advances every piece by one frame and drops the expired ones.
func (c *Confetti) Step() {
	kept := c.pieces[:0]
	for _, p := range c.pieces {
		p.X += p.VX
		p.Y += p.VY
		p.VX *= c.cfg.Decay
		p.VY = p.VY*c.cfg.Decay + c.cfg.Gravity
		p.Age++

		if p.Age >= c.cfg.Ticks {
			piecePool.Put(p)
			continue
		}
		kept = append(kept, p)
	}
	clear(c.pieces[len(kept):])
	c.pieces = kept
}

// Draw plots every piece, fading it out over its lifetime.
func (c *Confetti) Draw(s Surface) {
	for _, p := range c.pieces {
		col := p.Color
		if c.cfg.Ticks > 0 {
			col.A = uint8(255 * (1 - float64(p.Age)/float64(c.cfg.Ticks)))
		}
		s.FillCircle(p.X, p.Y, 0.5, col)
	}
}

// Active returns the number of pieces in flight.
func (c *Confetti) Active() int {
	return len(c.pieces)
}

// Bursts returns how many times Burst was called.
func (c *Confetti) Bursts() int {
	return c.bursts
}
