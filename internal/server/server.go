// Package server exposes runs, their logs and the captured assets over HTTP
// and can trigger a new run.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"themeshot/internal/config"
	"themeshot/internal/runner"
	"themeshot/internal/verify"
)

// RunFunc performs one full capture run with cfg.
type RunFunc func(ctx context.Context, cfg config.Config) (runner.Result, error)

// Server serves the run store and capture output of one configuration.
type Server struct {
	cfg    config.Config
	run    RunFunc
	logger *slog.Logger

	// busy is held for the duration of a triggered run.
	busy sync.Mutex
}

// New creates a server. run is called for POST /v1/runs.
func New(cfg config.Config, run RunFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, run: run, logger: logger}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withCORS)

	r.Get("/health", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/runs", s.listRuns)
		r.Post("/runs", s.triggerRun)
		r.Get("/runs/{id}", s.getRun)
		r.Get("/runs/{id}/logs", s.getRunLogs)
		r.Get("/verify", s.verify)
	})
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.OutputDir))))
	return r
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	s.logger.Info("server: listening", "addr", addr, "output_dir", s.cfg.OutputDir, "runs_dir", s.cfg.RunsDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

type runRequest struct {
	Projects []string `json:"projects"`
}

func (s *Server) triggerRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg := s.cfg
	if len(req.Projects) > 0 {
		cfg.Only = req.Projects
		if _, err := cfg.SelectedProjects(); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if !s.busy.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a run is already in progress"})
		return
	}
	defer s.busy.Unlock()

	// The run outlives a client that disconnects.
	res, err := s.run(context.WithoutCancel(r.Context()), cfg)
	if err != nil {
		s.logger.Error("server: run failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Manifest)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := runner.FindRuns(s.cfg.RunsDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	m, err := runner.LoadRun(s.cfg.RunsDir, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, runner.ErrUnknownRun) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) getRunLogs(w http.ResponseWriter, r *http.Request) {
	_, logPath, err := runner.RunPaths(s.cfg.RunsDir, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if _, err := os.Stat(logPath); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	http.ServeFile(w, r, logPath)
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	list, err := s.cfg.SelectedProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	rep := verify.Check(s.cfg.OutputDir, list, s.cfg.EnabledThemes(), s.cfg.ImageFormat)
	writeJSON(w, http.StatusOK, rep)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
