package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/display"
)

func main() {
	// The terminal belongs to the display, so logs only go to a file.
	logOut := io.Discard
	if path := config.GetEnv("LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := config.NewLogger(logOut, "countdown")

	page, err := config.PageFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load page: %v\n", err)
		os.Exit(1)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := display.New(bufio.NewReader(os.Stdin), os.Stdout, display.Options{
		Logger:    logger,
		FrameRate: config.GetEnvInt("LAUNCH_FPS", config.TargetFPS),
		Badge:     page.Badge,
		Title:     page.Title,
		Tagline:   page.Tagline,
		InviteURL: page.InviteURL,
		LaunchDay: page.LaunchDay,
	})
	if err := d.Run(ctx); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "display error: %v\n", err)
		os.Exit(1)
	}
}
