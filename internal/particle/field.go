// Package particle implements the ambient field of slowly rising dots drawn
// behind the countdown.
package particle

import (
	"errors"
	"image/color"
	"math/rand"
	"reflect"
	"time"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/env"
)

// ErrSurfaceUnavailable is returned by Start when there is no usable drawing
// surface or viewport.
var ErrSurfaceUnavailable = errors.New("particle: drawing surface unavailable")

// WarmColor is the translucent warm gold the dots are drawn in,
// rgba(245,199,122,0.6).
var WarmColor = color.NRGBA{R: 245, G: 199, B: 122, A: 153}

// Surface is a 2D raster target sized in pixels.
type Surface interface {
	Resize(width, height int)
	Size() (width, height int)
	Clear()
	FillCircle(x, y, radius float64, c color.Color)
}

// Particle is a single rising dot. X never changes after creation.
type Particle struct {
	X, Y   float64 // Position
	Radius float64 // Fixed at creation
	Speed  float64 // Upward pixels per frame, fixed at creation
}

// Rise moves the particle up by its speed. A particle leaving the top
// re-enters from the bottom of a surface of the given height, keeping Y in
// [0, height).
func (p *Particle) Rise(height float64) {
	p.Y -= p.Speed
	if p.Y >= 0 {
		return
	}
	if height <= 0 {
		p.Y = 0
		return
	}
	p.Y += height
	// Only reachable when the surface is shorter than one step.
	for p.Y < 0 {
		p.Y += height
	}
	if p.Y >= height {
		p.Y = 0
	}
}

// Options configures a Field. Zero values select the defaults.
type Options struct {
	Count int
	Color color.Color
	Rand  *rand.Rand
}

// Field owns a fixed set of particles and redraws them on every frame.
type Field struct {
	viewport  env.Viewport
	rng       *rand.Rand
	count     int
	color     color.Color
	surface   Surface
	particles []Particle
	frame     env.Handle
	resize    env.Handle
}

// NewField creates a field bound to the viewport. Nothing runs until Start.
func NewField(vp env.Viewport, opts Options) *Field {
	count := opts.Count
	if count <= 0 {
		count = config.ParticleCount
	}
	col := opts.Color
	if col == nil {
		col = WarmColor
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Field{
		viewport: vp,
		rng:      rng,
		count:    count,
		color:    col,
	}
}

// Start sizes the surface to the viewport, scatters the particles over it and
// subscribes to resize and frame events. Starting a running field is a no-op.
func (f *Field) Start(surface Surface) error {
	if isNil(surface) || isNil(f.viewport) {
		return ErrSurfaceUnavailable
	}
	if f.Running() {
		return nil
	}

	f.surface = surface
	surface.Resize(f.viewport.Size())
	f.seed()

	f.resize = f.viewport.OnResize(f.Resize)
	f.frame = f.viewport.OnFrame(f.Tick)
	return nil
}

// isNil reports whether v is nil or an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (f *Field) seed() {
	w, h := f.surface.Size()
	f.particles = make([]Particle, f.count)
	for i := range f.particles {
		f.particles[i] = Particle{
			X:      f.rng.Float64() * float64(w),
			Y:      f.rng.Float64() * float64(h),
			Radius: f.rng.Float64()*config.ParticleRadiusSpread + config.ParticleMinRadius,
			Speed:  f.rng.Float64()*config.ParticleSpeedSpread + config.ParticleMinSpeed,
		}
	}
}

// Tick advances and redraws every particle once. It does nothing before Start.
func (f *Field) Tick() {
	if f.surface == nil {
		return
	}
	_, h := f.surface.Size()
	height := float64(h)

	f.surface.Clear()
	for i := range f.particles {
		p := &f.particles[i]
		p.Rise(height)
		f.surface.FillCircle(p.X, p.Y, p.Radius, f.color)
	}
}

// Resize matches the surface to new viewport dimensions. Particle positions
// are left alone; any left outside the new bounds come back on their next
// wrap.
func (f *Field) Resize(width, height int) {
	if f.surface == nil {
		return
	}
	if w, h := f.surface.Size(); w == width && h == height {
		return
	}
	f.surface.Resize(width, height)
}

// Stop halts the frame loop and drops the resize subscription. Safe to call
// repeatedly and before Start.
func (f *Field) Stop() {
	env.Cancel(f.frame)
	env.Cancel(f.resize)
	f.frame = nil
	f.resize = nil
}

// Running reports whether the field is subscribed to frames.
func (f *Field) Running() bool {
	return f.frame != nil
}

// Particles returns a copy of the current particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}
