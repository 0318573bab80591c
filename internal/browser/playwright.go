package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"themeshot/internal/theme"
)

// Playwright drives Chromium through playwright-go.
type Playwright struct {
	Logger *slog.Logger
}

// Launch installs the browsers when asked, starts the playwright driver and
// launches one Chromium process.
func (d *Playwright) Launch(_ context.Context, opts LaunchOptions) (Browser, error) {
	log := d.Logger
	if opts.Install {
		log.Info("browser: installing playwright browsers")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("browser: install playwright: %w", err)
		}
	}
	if opts.Stealth {
		log.Warn("browser: stealth is only supported by the rod driver; ignoring")
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("browser: start playwright: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("browser: launch chromium: %w", err)
	}
	log.Info("browser: launched chromium", "driver", "playwright", "headless", opts.Headless, "args", len(opts.Args))
	return &pwBrowser{pw: pw, browser: b}, nil
}

type pwBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func (b *pwBrowser) NewSession(_ context.Context, opts SessionOptions) (Session, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height},
	}
	if opts.Viewport.DeviceScaleFactor > 0 {
		ctxOpts.DeviceScaleFactor = playwright.Float(opts.Viewport.DeviceScaleFactor)
	}
	if scheme := colorScheme(opts.ColorScheme); scheme != nil {
		ctxOpts.ColorScheme = scheme
	}
	if opts.ReducedMotion {
		ctxOpts.ReducedMotion = playwright.ReducedMotionReduce
	}

	bctx, err := b.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("browser: new context: %w", err)
	}
	if opts.InitScript != "" {
		if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(opts.InitScript)}); err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("browser: add init script: %w", err)
		}
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("browser: new page: %w", err)
	}
	if scheme := colorScheme(opts.ColorScheme); scheme != nil {
		if err := page.EmulateMedia(playwright.PageEmulateMediaOptions{ColorScheme: scheme}); err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("browser: emulate media: %w", err)
		}
	}
	return &pwSession{ctx: bctx, page: page}, nil
}

func (b *pwBrowser) Close() error {
	err := b.browser.Close()
	return errors.Join(err, b.pw.Stop())
}

type pwSession struct {
	ctx  playwright.BrowserContext
	page playwright.Page
}

// playwright-go calls take no context. Session methods check ctx up front
// and bound each call by whichever of the caller's timeout and ctx deadline
// comes first.

func (s *pwSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   timeoutMS(ctx, timeout),
	})
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *pwSession) Click(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	el, err := s.page.QuerySelector(selector)
	if err != nil {
		return false, err
	}
	if el == nil {
		return false, nil
	}
	return true, el.Click(playwright.ElementHandleClickOptions{Timeout: timeoutMS(ctx, 0)})
}

// Evaluate has no timeout option in playwright-go; only the up-front ctx
// check applies.
func (s *pwSession) Evaluate(ctx context.Context, js string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.page.Evaluate(js, arg)
}

func (s *pwSession) Screenshot(ctx context.Context, path string, opts ShotOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shot := playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(opts.FullPage),
		Type:     playwright.ScreenshotTypePng,
		Timeout:  timeoutMS(ctx, 0),
	}
	if opts.Format == "jpeg" {
		shot.Type = playwright.ScreenshotTypeJpeg
	}
	if _, err := s.page.Screenshot(shot); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return nil
}

func (s *pwSession) Close() error {
	return s.ctx.Close()
}

// timeoutMS returns the playwright timeout for a call limited to limit (0 for
// none) and ctx's deadline. nil keeps playwright's default. An expired
// deadline maps to 1ms since playwright reads 0 as no timeout.
func timeoutMS(ctx context.Context, limit time.Duration) *float64 {
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); limit <= 0 || rem < limit {
			limit = max(rem, time.Millisecond)
		}
	}
	if limit <= 0 {
		return nil
	}
	return playwright.Float(float64(limit.Milliseconds()))
}

func colorScheme(t theme.Theme) *playwright.ColorScheme {
	switch t {
	case theme.Light:
		return playwright.ColorSchemeLight
	case theme.Dark:
		return playwright.ColorSchemeDark
	}
	return nil
}
