package parallax

import (
	"testing"
	"time"

	"github.com/tomz197/launchpad/internal/env"
)

type recorder struct {
	rotations    []Rotation
	translations []Translation
}

func (r *recorder) Rotate(rot Rotation) { r.rotations = append(r.rotations, rot) }
func (r *recorder) Translate(tr Translation) { r.translations = append(r.translations, tr) }

func TestPointerAtCenterIsIdentity(t *testing.T) {
	rec := &recorder{}
	c := NewController(nil, rec, rec)

	o := c.OnPointerMove(500, 400, 1000, 800)

	if o != (Offset{}) {
		t.Errorf("offset = %+v, want zero", o)
	}
	if !rec.rotations[0].IsIdentity() || !rec.translations[0].IsIdentity() {
		t.Errorf("layers got %+v / %+v, want identity", rec.rotations[0], rec.translations[0])
	}
	if got := rec.rotations[0].String(); got != "rotateY(0deg) rotateX(0deg)" {
		t.Errorf("rotation = %q", got)
	}
	if got := rec.translations[0].String(); got != "translateX(0px) translateY(0px)" {
		t.Errorf("translation = %q", got)
	}
}

func TestPointerAtOrigin(t *testing.T) {
	rec := &recorder{}
	c := NewController(nil, rec, rec)

	o := c.OnPointerMove(0, 0, 1000, 800)

	if o.TiltX != 10 || o.TiltY != 8 {
		t.Errorf("offset = %+v, want tilt (10, 8)", o)
	}
	if got := rec.translations[0].String(); got != "translateX(20px) translateY(16px)" {
		t.Errorf("background = %q", got)
	}
	if got := rec.rotations[0].String(); got != "rotateY(10deg) rotateX(8deg)" {
		t.Errorf("panel = %q", got)
	}
}

func TestTiltIsStateless(t *testing.T) {
	rec := &recorder{}
	c := NewController(nil, rec, rec)

	c.OnPointerMove(0, 0, 1000, 800)
	c.OnPointerMove(1000, 800, 1000, 800)
	c.OnPointerMove(0, 0, 1000, 800)

	if rec.translations[0] != rec.translations[2] {
		t.Errorf("same pointer gave %+v then %+v", rec.translations[0], rec.translations[2])
	}
	if want := (Translation{X: -20, Y: -16}); rec.translations[1] != want {
		t.Errorf("opposite corner = %+v, want %+v", rec.translations[1], want)
	}
}

func TestMissingLayersAreSkipped(t *testing.T) {
	var rotations int
	c := NewController(nil, PanelFunc(func(Rotation) { rotations++ }), nil)
	c.OnPointerMove(1, 2, 100, 100)

	if rotations != 1 {
		t.Errorf("panel updates = %d, want 1", rotations)
	}

	NewController(nil, nil, nil).OnPointerMove(1, 2, 100, 100)
}

func TestStartListensToViewport(t *testing.T) {
	m := env.NewManual(1000, 800, time.Time{})
	rec := &recorder{}
	c := NewController(m, rec, BackgroundFunc(rec.Translate))

	m.PointerMove(0, 0)
	if len(rec.rotations) != 0 {
		t.Fatal("controller reacted before Start")
	}

	c.Start()
	c.Start()
	m.PointerMove(0, 0)
	if len(rec.rotations) != 1 {
		t.Fatalf("rotations = %d, want 1", len(rec.rotations))
	}
	if want := (Rotation{X: 8, Y: 10}); rec.rotations[0] != want {
		t.Errorf("rotation = %+v, want %+v", rec.rotations[0], want)
	}

	// Uses the viewport size at the time of the event.
	m.Resize(200, 100)
	m.PointerMove(100, 50)
	if !rec.translations[1].IsIdentity() {
		t.Errorf("translation after resize = %+v, want identity", rec.translations[1])
	}

	c.Stop()
	c.Stop()
	m.PointerMove(0, 0)
	if len(rec.rotations) != 2 {
		t.Errorf("rotations after Stop = %d, want 2", len(rec.rotations))
	}
	if c.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestStopBeforeStart(t *testing.T) {
	c := NewController(env.NewManual(10, 10, time.Time{}), nil, nil)
	c.Stop()
}
