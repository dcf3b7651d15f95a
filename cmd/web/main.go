package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/countdown"
	"github.com/tomz197/launchpad/internal/env"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	logger := config.NewLogger(os.Stderr, "web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_PORT", "2222")
	grace := config.GetEnvDuration("SHUTDOWN_GRACE", 5*time.Second)

	page, err := config.PageFromEnv()
	if err != nil {
		logger.Fatal("failed to load page", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The countdown ticks on its own loop; handlers only read its state.
	loop := env.NewLoop(time.Second, 0, 0)
	engine := countdown.NewEngine(countdown.Options{
		Clock:     countdown.SystemClock,
		Timer:     loop,
		LaunchDay: page.LaunchDay,
		OnLaunch: func() {
			logger.Info("countdown reached launch")
		},
	})
	if err := engine.Start(); err != nil {
		logger.Fatal("failed to start countdown", "err", err)
	}
	go loop.Run(ctx, nil)

	s := &server{
		countdown: engine,
		page:      page,
		sshHost:   sshHost,
		sshPort:   sshPort,
		logger:    logger,
	}
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting web server", "addr", "http://"+srv.Addr, "target", engine.State().Target)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
