package display

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/launchpad/internal/countdown"
)

// The panel is laid out as plain text and colored by the canvas, so the
// renderer never emits escape sequences of its own.
var renderer = lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii))

var (
	panelStyle = renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 4).
			Align(lipgloss.Center)
	badgeStyle = renderer.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
	counterStyle = renderer.NewStyle().
			Width(8).
			Align(lipgloss.Center)
	launchedStyle = renderer.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 3)

	counterLabels = [4]string{"DAYS", "HOURS", "MIN", "SEC"}
)

var (
	panelFG = color.NRGBA{R: 245, G: 199, B: 122, A: 255}
	panelBG = color.NRGBA{R: 12, G: 9, B: 14, A: 200}
)

// panelView is everything the foreground panel shows.
type panelView struct {
	Badge   string
	Title   string
	Tagline string
	Invite  string

	State   countdown.State
	Live    bool // The countdown engine is running
	Loading bool
	Frame   int // Drives the loading animation
}

// renderPanel lays out the panel and returns it line by line. Every line has
// the same display width.
func renderPanel(v panelView) []string {
	var body string
	switch {
	case v.Loading:
		body = "loading" + strings.Repeat(".", v.Frame/10%4) + strings.Repeat(" ", 3-v.Frame/10%4)
	case v.State.Launched:
		body = launchedStyle.Render("LAUNCHED")
	case !v.Live:
		body = counters([4]string{"--", "--", "--", "--"})
	default:
		r := v.State.Remaining
		body = counters([4]string{
			strconv.Itoa(r.Days),
			fmt.Sprintf("%02d", r.Hours),
			fmt.Sprintf("%02d", r.Minutes),
			fmt.Sprintf("%02d", r.Seconds),
		})
	}

	parts := []string{
		badgeStyle.Render(v.Badge),
		"",
		v.Title,
		v.Tagline,
		"",
		body,
	}
	if v.Invite != "" {
		parts = append(parts, "", "Join Discord: "+v.Invite)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return strings.Split(panelStyle.Render(content), "\n")
}

func counters(values [4]string) string {
	cols := make([]string, len(counterLabels))
	for i, label := range counterLabels {
		cols[i] = counterStyle.Render(values[i] + "\n" + label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}
