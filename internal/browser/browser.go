// Package browser wraps the automation libraries behind the small set of
// capabilities a capture needs: one shared browser process per run and a
// fresh, isolated session per capture attempt.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"themeshot/internal/theme"
)

// Driver starts a browser process.
type Driver interface {
	Launch(ctx context.Context, opts LaunchOptions) (Browser, error)
}

// Browser is one running browser process. Close must be called exactly once
// by its owner.
type Browser interface {
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
	Close() error
}

// Session is an isolated browsing context (own cookies, storage and
// viewport) holding a single page. It must not be reused across captures.
type Session interface {
	theme.Surface
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	Screenshot(ctx context.Context, path string, opts ShotOptions) error
	Close() error
}

// LaunchOptions configure the browser process.
type LaunchOptions struct {
	Headless bool
	Args     []string
	// Install downloads the browser binaries first when the backend needs it.
	Install bool
	// Stealth applies anti-automation-detection patches to new pages where
	// the backend supports it.
	Stealth bool
}

// Viewport is the page size in CSS pixels.
type Viewport struct {
	Width             int
	Height            int
	DeviceScaleFactor float64
}

// SessionOptions configure a browsing context before navigation.
type SessionOptions struct {
	Viewport      Viewport
	ColorScheme   theme.Theme
	ReducedMotion bool
	// InitScript runs in the page before any of its own scripts.
	InitScript string
}

// ShotOptions configure a capture.
type ShotOptions struct {
	Format   string // png or jpeg
	FullPage bool
}

// New returns the driver registered under name.
func New(name string, logger *slog.Logger) (Driver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case "playwright":
		return &Playwright{Logger: logger}, nil
	case "rod":
		return &Rod{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("browser: unknown driver %q", name)
	}
}
