package display

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/launchpad/internal/countdown"
	"github.com/tomz197/launchpad/internal/draw"
	"github.com/tomz197/launchpad/internal/env"
	"github.com/tomz197/launchpad/internal/parallax"
	"github.com/tomz197/launchpad/internal/particle"
)

func fixedSize(w, h int) draw.TermSizeFunc {
	return func() (int, int, error) {
		return w, h, nil
	}
}

func newTestDisplay(t *testing.T, m *env.Manual, opts Options) *Display {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = m
	}
	if opts.TermSizeFunc == nil {
		w, h := m.Size()
		opts.TermSizeFunc = fixedSize(w, (h+1)/2)
	}
	opts.Rand = rand.New(rand.NewSource(1))
	opts.Logger = log.New(io.Discard)
	return newDisplay(m, io.Discard, opts)
}

// screenText returns the canvas text overlay, one line per terminal row.
func screenText(c *draw.Canvas) string {
	var b strings.Builder
	for row := 0; row < c.TerminalHeight(); row++ {
		for col := 0; col < c.TerminalWidth(); col++ {
			r := c.TextAt(col, row)
			if r == 0 {
				r = ' '
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// frame runs one frame the way the loop does: frame callbacks, then present.
func frame(m *env.Manual, d *Display) {
	m.Frame()
	d.present()
}

var june20 = time.Date(2026, time.June, 20, 12, 0, 0, 0, time.Local)

func TestStartWiresEverySubsystem(t *testing.T) {
	m := env.NewManual(80, 48, june20)
	d := newTestDisplay(t, m, Options{})

	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	frameSubs, resizeSubs, pointerSubs, timers := m.Subscribers()
	if frameSubs != 1 || resizeSubs != 2 || pointerSubs != 1 || timers != 1 {
		t.Errorf("subscribers = frame %d resize %d pointer %d timers %d, want 1 2 1 1",
			frameSubs, resizeSubs, pointerSubs, timers)
	}

	d.Stop()
	d.Stop()
	frameSubs, resizeSubs, pointerSubs, timers = m.Subscribers()
	if frameSubs+resizeSubs+pointerSubs+timers != 0 {
		t.Errorf("subscribers after Stop = frame %d resize %d pointer %d timers %d, want none",
			frameSubs, resizeSubs, pointerSubs, timers)
	}
}

func TestStopBeforeStart(t *testing.T) {
	m := env.NewManual(80, 48, june20)
	d := newTestDisplay(t, m, Options{})
	d.Stop()
}

func TestUnavailableClockLeavesOthersRunning(t *testing.T) {
	tests := []struct {
		name  string
		clock countdown.Clock
	}{
		{name: "zero time", clock: countdown.ClockFunc(func() time.Time { return time.Time{} })},
		{name: "nil clock func", clock: countdown.ClockFunc(nil)},
		{name: "panicking clock", clock: countdown.ClockFunc(func() time.Time { panic("no time source") })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := env.NewManual(80, 48, june20)
			d := newTestDisplay(t, m, Options{Clock: tt.clock})

			err := d.Start()
			if !errors.Is(err, countdown.ErrClockUnavailable) {
				t.Fatalf("Start() error = %v, want ErrClockUnavailable", err)
			}
			if !d.field.Running() || !d.parallax.Running() {
				t.Error("field and parallax should run without a clock")
			}

			frame(m, d)
			frame(m, d)
			if text := screenText(d.canvas); !strings.Contains(text, "--") {
				t.Errorf("panel without a countdown should show placeholders:\n%s", text)
			}
		})
	}
}

func TestUnavailableSurfaceRecoversOnResize(t *testing.T) {
	m := env.NewManual(0, 0, june20)
	d := newTestDisplay(t, m, Options{})

	err := d.Start()
	if !errors.Is(err, particle.ErrSurfaceUnavailable) {
		t.Fatalf("Start() error = %v, want ErrSurfaceUnavailable", err)
	}
	if !d.engine.Running() {
		t.Error("countdown should run without a surface")
	}

	m.Resize(80, 48)
	if d.canvas == nil {
		t.Fatal("no canvas after resize")
	}
	if !d.field.Running() {
		t.Error("field did not start after resize")
	}
	if w, h := d.canvas.Size(); w != 80 || h != 48 {
		t.Errorf("canvas size = %dx%d, want 80x48", w, h)
	}
}

func TestLoadingThenCountdown(t *testing.T) {
	m := env.NewManual(80, 48, june20)
	d := newTestDisplay(t, m, Options{})
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	frame(m, d)
	if text := screenText(d.canvas); !strings.Contains(text, "loading") {
		t.Errorf("first frame should show the loading placeholder:\n%s", text)
	}

	m.Advance(time.Second)
	frame(m, d)
	text := screenText(d.canvas)
	if strings.Contains(text, "loading") {
		t.Errorf("loading placeholder still shown after a second:\n%s", text)
	}
	for _, want := range []string{"DAYS", "HOURS", "MIN", "SEC", "11", "59", "SERVER LAUNCHING SOON"} {
		if !strings.Contains(text, want) {
			t.Errorf("screen missing %q:\n%s", want, text)
		}
	}
}

func TestLaunchShowsConfetti(t *testing.T) {
	start := time.Date(2026, time.June, 24, 23, 59, 59, 0, time.Local)
	m := env.NewManual(80, 48, start)
	d := newTestDisplay(t, m, Options{})
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}
	if d.confetti.Bursts() != 0 {
		t.Fatal("confetti before launch")
	}

	m.Advance(time.Second)
	if d.confetti.Bursts() != 1 {
		t.Fatalf("Bursts() = %d, want 1", d.confetti.Bursts())
	}
	if d.confetti.Active() == 0 {
		t.Error("no confetti in flight after launch")
	}

	frame(m, d)
	if text := screenText(d.canvas); !strings.Contains(text, "LAUNCHED") {
		t.Errorf("launched panel not shown:\n%s", text)
	}

	m.Advance(10 * time.Second)
	if d.confetti.Bursts() != 1 {
		t.Errorf("Bursts() = %d after further ticks, want 1", d.confetti.Bursts())
	}
}

func TestPointerMovesLayers(t *testing.T) {
	m := env.NewManual(80, 48, june20)
	d := newTestDisplay(t, m, Options{})
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	m.PointerMove(0, 0)

	want := parallax.Tilt(0, 0, 80, 48)
	if d.backdrop.translation != want.Translation() {
		t.Errorf("backdrop translation = %v, want %v", d.backdrop.translation, want.Translation())
	}
	if d.panel.rotation != want.Rotation() {
		t.Errorf("panel rotation = %v, want %v", d.panel.rotation, want.Rotation())
	}
	if cols, rows := d.panel.shift(); cols != -2 || rows != 0 {
		t.Errorf("panel shift = (%d, %d), want (-2, 0)", cols, rows)
	}
}

func TestTerminalResizeReachesSubsystems(t *testing.T) {
	m := env.NewManual(80, 48, june20)
	cols, rows := 80, 24
	d := newTestDisplay(t, m, Options{
		TermSizeFunc: func() (int, int, error) { return cols, rows, nil },
	})
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	cols, rows = 100, 30
	frame(m, d)
	if w, h := m.Size(); w != 100 || h != 60 {
		t.Errorf("viewport = %dx%d, want 100x60", w, h)
	}
	if w, h := d.canvas.Size(); w != 100 || h != 60 {
		t.Errorf("canvas = %dx%d, want 100x60", w, h)
	}

	cols, rows = 300, 80
	frame(m, d)
	if w, h := m.Size(); w != 180 || h != 100 {
		t.Errorf("clamped viewport = %dx%d, want 180x100", w, h)
	}
	if d.canvas.OffsetCol() != 60 || d.canvas.OffsetRow() != 15 {
		t.Errorf("offset = (%d, %d), want (60, 15)", d.canvas.OffsetCol(), d.canvas.OffsetRow())
	}
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		w, h                   int
		rw, rh, offCol, offRow int
	}{
		{80, 24, 80, 24, 0, 0},
		{180, 50, 180, 50, 0, 0},
		{200, 50, 180, 50, 10, 0},
		{181, 61, 180, 50, 0, 5},
		{0, 0, 0, 0, 0, 0},
		{-1, -1, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		rw, rh, offCol, offRow := clampTermSize(tt.w, tt.h)
		if rw != tt.rw || rh != tt.rh || offCol != tt.offCol || offRow != tt.offRow {
			t.Errorf("clampTermSize(%d, %d) = %d %d %d %d, want %d %d %d %d",
				tt.w, tt.h, rw, rh, offCol, offRow, tt.rw, tt.rh, tt.offCol, tt.offRow)
		}
	}
}

func TestRunRestoresTerminalOnQuit(t *testing.T) {
	var out bytes.Buffer
	d := New(bufio.NewReader(strings.NewReader("q")), &out, Options{
		TermSizeFunc: fixedSize(80, 24),
		Logger:       log.New(io.Discard),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := out.String()
	if !strings.HasPrefix(s, "\033[?25l") {
		t.Errorf("output does not start by hiding the cursor: %q", s[:min(len(s), 20)])
	}
	if !strings.HasSuffix(s, "\033[?25h") {
		t.Error("cursor not shown again on exit")
	}
	if !strings.Contains(s, "\033[?1003l") {
		t.Error("mouse tracking not disabled on exit")
	}
}

func TestRunLogsDegradedStartOnce(t *testing.T) {
	var logs bytes.Buffer
	d := New(bufio.NewReader(strings.NewReader("q")), io.Discard, Options{
		TermSizeFunc: fixedSize(80, 24),
		Clock:        countdown.ClockFunc(nil),
		Logger:       log.New(&logs),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if n := strings.Count(logs.String(), "countdown unavailable"); n != 1 {
		t.Errorf("countdown failure logged %d times, want 1:\n%s", n, logs.String())
	}
}

type brokenWriter struct{}

var errBroken = errors.New("broken pipe")

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errBroken
}

func TestRunReturnsWriteError(t *testing.T) {
	d := New(bufio.NewReader(strings.NewReader("")), brokenWriter{}, Options{
		TermSizeFunc: fixedSize(80, 24),
		Logger:       log.New(io.Discard),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); !errors.Is(err, errBroken) {
		t.Errorf("Run() error = %v, want %v", err, errBroken)
	}
}

func TestRunNeedsTerminal(t *testing.T) {
	m := env.NewManual(80, 48, june20)
	d := newTestDisplay(t, m, Options{})
	if err := d.Run(context.Background()); err == nil {
		t.Error("Run() without a loop should fail")
	}
}
