package runner

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"themeshot/internal/browser"
	"themeshot/internal/config"
	"themeshot/internal/projects"
	"themeshot/internal/theme"
	"themeshot/internal/userscript"
)

// Options configure a run.
type Options struct {
	Config config.Config
	Driver browser.Driver
	Logger *slog.Logger
	// Sleep waits between attempts, themes and projects. Default: theme.Sleep.
	Sleep func(context.Context, time.Duration) error
	Now   func() time.Time
	NewID func() string
}

// Runner captures every enabled (project, theme) pair with one shared
// browser process.
type Runner struct {
	opts Options
}

// Result contains the run summary and where its artifacts went.
type Result struct {
	RunID    string
	RunDir   string
	LogPath  string
	Summary  Summary
	Manifest Manifest
}

// Manifest is persisted to run.json.
type Manifest struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Driver     string    `json:"driver"`
	OutputDir  string    `json:"output_dir"`
	Restricted bool      `json:"restricted_env"`
	Summary    Summary   `json:"summary"`
	LogPath    string    `json:"log_path"`
}

// New creates a runner, filling unset options with defaults.
func New(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Sleep == nil {
		opts.Sleep = theme.Sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = NewRunID
	}
	return &Runner{opts: opts}
}

// NewRunID returns a lexically sortable run id.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Run captures all pairs sequentially and returns the summary. Individual
// capture failures never fail the run; only a SetupError (or an invalid
// configuration) does. Cancelling ctx does not stop a run once it has
// started. The browser is closed on every path once launched.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	cfg := r.opts.Config
	if r.opts.Driver == nil {
		return Result{}, errors.New("runner: driver is required")
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("runner: %w", err)
	}
	selected, err := cfg.SelectedProjects()
	if err != nil {
		return Result{}, fmt.Errorf("runner: %w", err)
	}
	themes := cfg.EnabledThemes()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Result{}, &SetupError{Op: "create output dir", Err: err}
	}

	runID := r.opts.NewID()
	runDir := filepath.Join(cfg.RunsDir, runID)
	logsDir := filepath.Join(runDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return Result{}, &SetupError{Op: "create run dir", Err: err}
	}
	logPath := filepath.Join(logsDir, "runner.ndjson")
	logFile, err := os.Create(logPath)
	if err != nil {
		return Result{}, &SetupError{Op: "create run log", Err: err}
	}
	defer logFile.Close()

	logger := slog.New(fanout{
		r.opts.Logger.Handler(),
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}).With("run_id", runID)

	start := r.opts.Now()
	logger.Info("runner: starting",
		"output_dir", cfg.OutputDir,
		"projects", len(selected),
		"themes", themes,
		"driver", cfg.Driver,
		"restricted_env", cfg.Browser.Restricted,
	)

	// From here on the run always completes with a summary; the rod launcher
	// would otherwise kill the browser with the caller's context.
	ctx = context.WithoutCancel(ctx)

	b, err := r.opts.Driver.Launch(ctx, browser.LaunchOptions{
		Headless: cfg.Browser.Headless,
		Args:     slices.Clone(cfg.Browser.Args),
		Install:  cfg.Browser.InstallBrowsers,
		Stealth:  cfg.Browser.Stealth,
	})
	if err != nil {
		logger.Error("runner: browser launch failed", "error", err)
		return Result{}, &SetupError{Op: "launch browser", Err: err}
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("runner: close browser", "error", err)
		}
	}()

	p := &pass{
		cfg:     cfg,
		browser: b,
		logger:  logger,
		sleep:   r.opts.Sleep,
		now:     r.opts.Now,
		coercer: theme.NewCoercer(logger,
			theme.WithToggleDelay(cfg.ToggleDelay),
			theme.WithSleep(r.opts.Sleep),
		),
		scripts: loadInitScripts(logger, selected),
	}

	results := make([]CaptureResult, 0, len(selected)*len(themes))
	for i, proj := range selected {
		logger.Info("runner: processing project", "project", proj.Name, "url", proj.URL)
		for j, t := range themes {
			results = append(results, p.capture(ctx, proj, t))
			if j < len(themes)-1 {
				p.pause(ctx, cfg.DelayBetweenThemes)
			}
		}
		if i < len(selected)-1 {
			p.pause(ctx, cfg.DelayBetweenProjects)
		}
	}

	summary := Summarize(results, len(selected), themes)
	finished := r.opts.Now()
	summary.Duration = finished.Sub(start)
	summary.DurationMS = summary.Duration.Milliseconds()
	logSummary(logger, summary)

	manifest := Manifest{
		RunID:      runID,
		StartedAt:  start,
		FinishedAt: finished,
		Driver:     cfg.Driver,
		OutputDir:  cfg.OutputDir,
		Restricted: cfg.Browser.Restricted,
		Summary:    summary,
		LogPath:    logPath,
	}
	if err := writeManifest(filepath.Join(runDir, "run.json"), manifest); err != nil {
		logger.Warn("runner: write manifest failed", "error", err)
	}

	return Result{
		RunID:    runID,
		RunDir:   runDir,
		LogPath:  logPath,
		Summary:  summary,
		Manifest: manifest,
	}, nil
}

func logSummary(logger *slog.Logger, s Summary) {
	attrs := []any{
		"successful", s.Successful,
		"total", s.TotalExpected,
		"retried", s.RetriedCount,
		"failed", len(s.Failed),
	}
	for t, n := range s.ByTheme {
		attrs = append(attrs, "theme_"+string(t), n)
	}
	logger.Info("runner: run finished", attrs...)
	for _, f := range s.Failed {
		logger.Warn("runner: capture failed", "project", f.ProjectName, "theme", f.Theme, "attempts", f.AttemptsUsed, "error", f.Error)
	}
}

// loadInitScripts resolves each project's init script. Scripts that cannot
// be read or do not match the project URL are skipped with a warning.
func loadInitScripts(logger *slog.Logger, list []projects.Project) map[int]string {
	scripts := make(map[int]string)
	for _, p := range list {
		if p.InitScript == "" {
			continue
		}
		s, err := userscript.Load(p.InitScript)
		if err != nil {
			logger.Warn("runner: init script unreadable; skipping", "project", p.Name, "error", err)
			continue
		}
		if !s.Meta.Matches(p.URL) {
			logger.Warn("runner: init script does not match project url; skipping", "project", p.Name, "script", s.Name())
			continue
		}
		scripts[p.ID] = s.Source
		logger.Info("runner: init script attached", "project", p.Name, "script", s.Name())
	}
	return scripts
}

func writeManifest(path string, manifest Manifest) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest)
}
