// Package httpapi exposes read-only playback state, export and snapshot over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/lixenwraith/barrace/playback"
	"github.com/lixenwraith/barrace/score"
	"github.com/lixenwraith/barrace/snapshot"
)

// Runner executes fn on the controller's owner goroutine and waits for it
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// Controller is the read-only view served over HTTP
type Controller interface {
	State() playback.State
	Export() string
	Snapshot() score.Frame
}

// Options configures the server
type Options struct {
	Title          string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server serves controller state; every controller call goes through the runner
type Server struct {
	ctl    Controller
	runner Runner
	opts   Options
	router chi.Router
}

// New builds the router
func New(ctl Controller, runner Runner, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{ctl: ctl, runner: runner, opts: opts}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Default(), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/state", s.state)
	r.Get("/export.csv", s.export)
	r.Get("/snapshot.svg", s.snapshotSVG)
	r.Get("/snapshot.png", s.snapshotPNG)
	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.opts.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("httpapi: listening on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	var st playback.State
	if err := s.runner.Do(r.Context(), func() { st = s.ctl.State() }); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var (
		out string
		st  playback.State
	)
	if err := s.runner.Do(r.Context(), func() {
		st = s.ctl.State()
		out = s.ctl.Export()
	}); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if !st.Initialized {
		respondError(w, http.StatusConflict, playback.ErrNotInitialized.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="standings-game-%d.csv"`, st.CurrentGameIndex))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

func (s *Server) snapshotSVG(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r, "image/svg+xml", snapshot.WriteSVG)
}

func (s *Server) snapshotPNG(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r, "image/png", snapshot.WritePNG)
}

type snapshotWriter func(w io.Writer, f score.Frame, opts snapshot.Options) error

// writeSnapshot copies the frame on the owner, then renders off-loop since frames are read-only
func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, contentType string, write snapshotWriter) {
	var f score.Frame
	if err := s.runner.Do(r.Context(), func() { f = s.ctl.Snapshot() }); err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if len(f.Entries) == 0 {
		respondError(w, http.StatusConflict, snapshot.ErrEmptyFrame.Error())
		return
	}

	var buf bytes.Buffer
	title := s.opts.Title
	if f.Index > 0 {
		title = fmt.Sprintf("%s (game %d)", s.opts.Title, f.Index)
	}
	if err := write(&buf, f, snapshot.Options{Title: title}); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// requestID tags each response with a fresh identifier
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
