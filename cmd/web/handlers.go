package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomz197/launchpad/internal/config"
	"github.com/tomz197/launchpad/internal/countdown"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// countdownSource is the running countdown the handlers read.
type countdownSource interface {
	State() countdown.State
}

type countdownResponse struct {
	Days     int       `json:"days"`
	Hours    int       `json:"hours"`
	Minutes  int       `json:"minutes"`
	Seconds  int       `json:"seconds"`
	Launched bool      `json:"launched"`
	Target   time.Time `json:"target"`
}

type indexData struct {
	Page    config.Page
	SSHHost string
	SSHPort string
	Ready   bool
	Count   countdownResponse
}

type server struct {
	countdown countdownSource
	page      config.Page
	sshHost   string
	sshPort   string
	logger    *log.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/api/countdown", s.countdownJSON)
	r.Get("/", s.index)
	return r
}

// requestLogger logs every request once it has been served.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// snapshot returns the current countdown, or false before the first tick.
func (s *server) snapshot() (countdownResponse, bool) {
	st := s.countdown.State()
	if st.Target.IsZero() {
		return countdownResponse{}, false
	}
	return countdownResponse{
		Days:     st.Days,
		Hours:    st.Hours,
		Minutes:  st.Minutes,
		Seconds:  st.Seconds,
		Launched: st.Launched,
		Target:   st.Target,
	}, true
}

func (s *server) countdownJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	resp, ok := s.snapshot()
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "countdown unavailable"})
		return
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode countdown", "err", err)
	}
}

func (s *server) index(w http.ResponseWriter, r *http.Request) {
	count, ready := s.snapshot()
	data := indexData{
		Page:    s.page,
		SSHHost: s.sshHost,
		SSHPort: s.sshPort,
		Ready:   ready,
		Count:   count,
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render index", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
