package runner

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"themeshot/internal/browser"
	"themeshot/internal/config"
	"themeshot/internal/projects"
	"themeshot/internal/theme"
)

// pass holds what every capture of one run shares.
type pass struct {
	cfg     config.Config
	browser browser.Browser
	coercer *theme.Coercer
	logger  *slog.Logger
	sleep   func(context.Context, time.Duration) error
	now     func() time.Time
	scripts map[int]string
}

// capture retries attempt until it succeeds or MaxRetries attempts were
// used. The last failure is kept as the result's error.
func (p *pass) capture(ctx context.Context, proj projects.Project, t theme.Theme) CaptureResult {
	res := CaptureResult{ProjectID: proj.ID, ProjectName: proj.Name, Theme: t}
	start := p.now()
	log := p.logger.With("project", proj.Name, "theme", t)

	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		res.AttemptsUsed = attempt
		if attempt > 1 {
			log.Info("runner: retrying capture", "attempt", attempt, "max", p.cfg.MaxRetries)
		} else {
			log.Info("runner: capturing")
		}

		filename, err := p.attempt(ctx, proj, t, log)
		if err == nil {
			res.Success = true
			res.OutputFilename = filename
			res.Error = ""
			log.Info("runner: screenshot saved", "file", filename, "attempt", attempt)
			break
		}
		res.Error = err.Error()
		log.Error("runner: attempt failed", "attempt", attempt, "error", err)

		if attempt < p.cfg.MaxRetries {
			p.pause(ctx, p.cfg.RetryDelay)
		}
	}

	res.DurationMS = p.now().Sub(start).Milliseconds()
	return res
}

// pause waits d between captures or attempts. A failed wait only shortens
// the pause.
func (p *pass) pause(ctx context.Context, d time.Duration) {
	if err := p.sleep(ctx, d); err != nil {
		p.logger.Warn("runner: pause interrupted", "delay", d, "error", err)
	}
}

// attempt performs one capture in a fresh session and returns the output
// filename. The session is closed on every path.
func (p *pass) attempt(ctx context.Context, proj projects.Project, t theme.Theme, log *slog.Logger) (string, error) {
	cfg := p.cfg
	sess, err := p.browser.NewSession(ctx, browser.SessionOptions{
		Viewport: browser.Viewport{
			Width:             cfg.Viewport.Width,
			Height:            cfg.Viewport.Height,
			DeviceScaleFactor: cfg.Viewport.DeviceScaleFactor,
		},
		ColorScheme:   t,
		ReducedMotion: true,
		InitScript:    p.scripts[proj.ID],
	})
	if err != nil {
		return "", err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("runner: close session", "error", err)
		}
	}()

	if err := sess.Navigate(ctx, proj.URL, cfg.NavigationTimeout); err != nil {
		return "", err
	}

	applied := p.coercer.Coerce(ctx, sess, t)
	log.Debug("runner: theme coercion done", "applied", applied)

	settle := cfg.SettleDelay
	if proj.SettleDelay > 0 {
		settle = proj.SettleDelay
	}
	if err := p.sleep(ctx, settle+cfg.ThemeApplyDelay); err != nil {
		return "", err
	}

	filename := proj.Filename(t, cfg.ImageFormat)
	if err := sess.Screenshot(ctx, filepath.Join(cfg.OutputDir, filename), browser.ShotOptions{
		Format:   cfg.ImageFormat,
		FullPage: cfg.FullPage,
	}); err != nil {
		return "", err
	}
	return filename, nil
}
