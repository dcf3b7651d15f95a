// Package display runs the launch countdown page in a terminal: a rising
// particle field behind a countdown panel that leans with the mouse.
package display

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/launchpad/internal/celebrate"
	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/countdown"
	"github.com/tomz197/launchpad/internal/draw"
	"github.com/tomz197/launchpad/internal/env"
	"github.com/tomz197/launchpad/internal/input"
	"github.com/tomz197/launchpad/internal/parallax"
	"github.com/tomz197/launchpad/internal/particle"
)

// environment is what the display runs in: an env.Loop for a live terminal,
// an env.Manual in tests.
type environment interface {
	env.Viewport
	env.Timer
	Resize(width, height int)
	PointerMove(x, y float64)
}

// Options configures a Display.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Clock        countdown.Clock // Defaults to the system clock
	Rand         *rand.Rand
	Logger       *log.Logger
	FrameRate    int // Frames per second, defaults to config.TargetFPS

	Badge     string
	Title     string
	Tagline   string
	InviteURL string
	LaunchDay int // Defaults to config.LaunchDay
}

// Display owns one terminal session.
type Display struct {
	env          environment
	loop         *env.Loop // Set only for live terminals
	clock        countdown.Clock
	logger       *log.Logger
	termSizeFunc draw.TermSizeFunc

	canvas      *draw.Canvas
	writer      io.Writer
	out         *draw.ChunkWriter
	inputStream *input.Stream

	field    *particle.Field
	engine   *countdown.Engine
	parallax *parallax.Controller
	confetti *celebrate.Confetti
	panel    *panelLayer
	backdrop *backdropLayer

	view      panelView
	mountedAt time.Time
	frames    int
	resizeSub env.Handle

	termCols, termRows   int
	offsetCol, offsetRow int

	cancel context.CancelFunc
	err    error
}

// New creates a display reading input from r and drawing to w.
func New(r *bufio.Reader, w io.Writer, opts Options) *Display {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	opts.TermSizeFunc = termSizeFunc

	fps := opts.FrameRate
	if fps <= 0 {
		fps = config.TargetFPS
	}

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	loop := env.NewLoop(time.Second/time.Duration(fps), renderWidth, renderHeight*2)

	d := newDisplay(loop, w, opts)
	d.loop = loop
	d.inputStream = input.StartStream(r)
	d.setOffset(offsetCol, offsetRow)
	return d
}

func newDisplay(e environment, w io.Writer, opts Options) *Display {
	clock := opts.Clock
	if clock == nil {
		clock = countdown.SystemClock
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if w == nil {
		w = io.Discard
	}

	d := &Display{
		env:          e,
		clock:        clock,
		logger:       logger,
		termSizeFunc: opts.TermSizeFunc,
		writer:       w,
		out:          draw.NewChunkWriter(w),
		panel:        &panelLayer{},
		backdrop:     &backdropLayer{},
		view: panelView{
			Badge:   orDefault(opts.Badge, config.DefaultBadge),
			Title:   orDefault(opts.Title, config.DefaultTitle),
			Tagline: orDefault(opts.Tagline, config.DefaultTagline),
			Invite:  opts.InviteURL,
		},
	}

	width, height := e.Size()
	d.termCols, d.termRows = width, (height+1)/2
	if width > 0 && height > 0 {
		d.attachCanvas(draw.NewCanvas(width, height))
	}

	d.field = particle.NewField(e, particle.Options{Rand: opts.Rand})
	d.engine = countdown.NewEngine(countdown.Options{
		Clock:     clock,
		Timer:     e,
		LaunchDay: opts.LaunchDay,
		OnLaunch:  d.launch,
		OnUpdate:  d.update,
	})
	d.parallax = parallax.NewController(e, d.panel, d.backdrop)
	d.confetti = celebrate.New(e, celebrate.DefaultConfig(), opts.Rand)
	return d
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func (d *Display) attachCanvas(c *draw.Canvas) {
	d.canvas = c
	d.canvas.SetOffset(d.offsetCol, d.offsetRow)
	d.backdrop.canvas = c
	d.backdrop.apply()
}

func (d *Display) setOffset(col, row int) {
	d.offsetCol, d.offsetRow = col, row
	if d.canvas != nil {
		d.canvas.SetOffset(col, row)
	}
}

// Start launches the particle field, the countdown and the parallax
// controller. A subsystem that fails to start is logged and left out; the
// others keep running. The returned error joins every failure.
func (d *Display) Start() error {
	// A broken clock only disables the countdown, which reports it below.
	d.mountedAt, _ = countdown.ReadClock(d.clock)
	if d.resizeSub == nil {
		d.resizeSub = d.env.OnResize(d.onResize)
	}

	var errs []error
	if err := d.startField(); err != nil {
		errs = append(errs, err)
	}
	if err := d.engine.Start(); err != nil {
		d.logger.Error("countdown unavailable", "err", err)
		errs = append(errs, err)
	}
	d.parallax.Start()
	return errors.Join(errs...)
}

func (d *Display) startField() error {
	var surface particle.Surface
	if d.canvas != nil {
		surface = d.canvas
	}
	if err := d.field.Start(surface); err != nil {
		d.logger.Error("particle field unavailable", "err", err)
		return err
	}
	return nil
}

// Stop stops every subsystem. Safe to call repeatedly and before Start.
func (d *Display) Stop() {
	d.parallax.Stop()
	d.engine.Stop()
	d.field.Stop()
	env.Cancel(d.resizeSub)
	d.resizeSub = nil
}

// onResize keeps the canvas and its border in step with the viewport. A
// display mounted without a usable size gets its canvas, and its particle
// field, on the first real resize.
func (d *Display) onResize(width, height int) {
	if d.canvas == nil {
		if width <= 0 || height <= 0 {
			return
		}
		d.attachCanvas(draw.NewCanvas(width, height))
		if err := d.startField(); err == nil {
			d.logger.Info("particle field started after resize", "width", width, "height", height)
		}
	} else {
		d.canvas.Resize(width, height)
		d.backdrop.apply()
	}
	d.canvas.RenderBorder(d.out)
}

func (d *Display) launch() {
	d.logger.Info("countdown reached launch", "target", d.engine.State().Target)
	d.confetti.Burst()
}

func (d *Display) update(s countdown.State) {
	d.view.State = s
}

// Run takes over the terminal until ctx is done, the user quits or the
// output breaks. The terminal is restored before returning.
func (d *Display) Run(ctx context.Context) error {
	if d.loop == nil {
		return errors.New("display: not attached to a terminal")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.cancel = cancel

	draw.HideCursor(d.writer)
	draw.EnableMouse(d.writer)
	draw.ClearScreen(d.writer)
	defer func() {
		draw.DisableMouse(d.writer)
		draw.ResetStyle(d.writer)
		draw.ClearScreen(d.writer)
		draw.ShowCursor(d.writer)
	}()

	// Start logs each subsystem that fails; the rest keep running.
	_ = d.Start()
	defer d.Stop()

	if d.canvas != nil {
		d.canvas.RenderBorder(d.out)
	}
	d.loop.Run(ctx, d.present)
	return d.err
}

// present draws one frame after the frame callbacks ran.
func (d *Display) present() {
	d.frames++
	d.processInput()
	d.updateScreen()

	if d.canvas == nil {
		return
	}
	if !d.field.Running() {
		d.canvas.Clear()
	}
	d.confetti.Step()
	d.confetti.Draw(d.canvas)
	d.drawPanel()

	d.canvas.Render(d.out)
	if err := d.out.Flush(); err != nil {
		d.fail(err)
	}
}

func (d *Display) fail(err error) {
	if d.err == nil {
		d.err = err
	}
	if d.cancel != nil {
		d.cancel()
	}
}

// processInput forwards mouse motion as pointer samples in canvas pixels and
// handles quit keys.
func (d *Display) processInput() {
	if d.inputStream == nil {
		return
	}
	in := input.ReadInput(d.inputStream)
	if in.Quit && d.cancel != nil {
		d.cancel()
	}
	if in.Pointer != nil {
		x := float64(in.Pointer.Col - 1 - d.offsetCol)
		y := float64((in.Pointer.Row - 1 - d.offsetRow) * 2)
		d.env.PointerMove(x, y)
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new render area.
func (d *Display) updateScreen() {
	if d.termSizeFunc == nil {
		return
	}
	termWidth, termHeight, err := d.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	if renderWidth == d.termCols && renderHeight == d.termRows &&
		offsetCol == d.offsetCol && offsetRow == d.offsetRow {
		return
	}

	d.termCols, d.termRows = renderWidth, renderHeight
	d.setOffset(offsetCol, offsetRow)
	draw.ClearScreen(d.out)
	if d.canvas != nil {
		d.canvas.ForceRedraw()
	}
	d.env.Resize(renderWidth, renderHeight*2)
}

// clampTermSize clamps terminal dimensions to the max render resolution and
// computes the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(min(termWidth, config.MaxTermWidth), 0)
	renderHeight = max(min(termHeight, config.MaxTermHeight), 0)
	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}

func (d *Display) drawPanel() {
	d.view.Live = d.engine.Running()
	d.view.Loading = d.view.Live && d.clock.Now().Sub(d.mountedAt) < config.LoadingDuration
	d.view.Frame = d.frames

	lines := renderPanel(d.view)
	width := 0
	for _, l := range lines {
		width = max(width, lipgloss.Width(l))
	}

	shiftCols, shiftRows := d.panel.shift()
	col := (d.canvas.TerminalWidth()-width)/2 + shiftCols
	row := (d.canvas.TerminalHeight()-len(lines))/2 + shiftRows
	for i, l := range lines {
		d.canvas.DrawText(col, row+i, l, panelFG, panelBG)
	}
}
