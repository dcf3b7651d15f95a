package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/google/uuid"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/display"
	"github.com/tomz197/launchpad/internal/draw"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	logger := config.NewLogger(os.Stderr, "ssh")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	grace := config.GetEnvDuration("SHUTDOWN_GRACE", 5*time.Second)
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	page, err := config.PageFromEnv()
	if err != nil {
		logger.Fatal("failed to load page", "err", err)
	}

	sessions := &sessionServer{
		logger: logger,
		page:   page,
		fps:    config.GetEnvInt("LAUNCH_FPS", config.TargetFPS),
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			sessions.middleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY so pointer motion reaches the display promptly
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server", "sessions", sessions.active())

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
		os.Exit(1)
	}
}

// sessionServer runs one independent countdown display per SSH session.
type sessionServer struct {
	logger *log.Logger
	page   config.Page
	fps    int

	mu    sync.Mutex
	count int
}

func (s *sessionServer) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *sessionServer) track(delta int) {
	s.mu.Lock()
	s.count += delta
	s.mu.Unlock()
}

// middleware handles SSH sessions and runs the display.
func (s *sessionServer) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger := s.logger.With("session", uuid.NewString(), "user", sess.User())
		logger.Info("new session", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		s.track(1)
		defer s.track(-1)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		d := display.New(bufio.NewReader(sess), sess, display.Options{
			TermSizeFunc: sizeTracker.getSize,
			Logger:       logger,
			FrameRate:    s.fps,
			Badge:        s.page.Badge,
			Title:        s.page.Title,
			Tagline:      s.page.Tagline,
			InviteURL:    s.page.InviteURL,
			LaunchDay:    s.page.LaunchDay,
		})
		if err := d.Run(sess.Context()); err != nil {
			logger.Warn("display ended with error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
