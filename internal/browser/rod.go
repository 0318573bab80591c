package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"themeshot/internal/theme"
)

// networkIdle is how long the page must go without requests before
// navigation counts as settled.
const networkIdle = 500 * time.Millisecond

// Rod drives Chromium through go-rod. It downloads its own browser build on
// first use, so Install is a no-op here.
type Rod struct {
	Logger *slog.Logger
}

// Launch starts a local Chromium and connects to it.
func (d *Rod) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	log := d.Logger
	l := launcher.New().Context(ctx).Headless(opts.Headless)
	for _, arg := range opts.Args {
		name, val, hasVal := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	log.Info("browser: launched chromium", "driver", "rod", "headless", opts.Headless, "stealth", opts.Stealth)
	return &rodBrowser{browser: b, launcher: l, stealth: opts.Stealth}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	stealth  bool
}

func (b *rodBrowser) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	inc, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("browser: incognito context: %w", err)
	}

	var page *rod.Page
	if b.stealth {
		page, err = stealth.Page(inc)
	} else {
		page, err = inc.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		_ = inc.Close()
		return nil, fmt.Errorf("browser: new page: %w", err)
	}

	s := &rodSession{incognito: inc, page: page}
	if err := s.prepare(opts); err != nil {
		_ = inc.Close()
		return nil, err
	}
	return s, nil
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

type rodSession struct {
	incognito *rod.Browser
	page      *rod.Page
}

func (s *rodSession) prepare(opts SessionOptions) error {
	scale := opts.Viewport.DeviceScaleFactor
	if scale <= 0 {
		scale = 1
	}
	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Viewport.Width,
		Height:            opts.Viewport.Height,
		DeviceScaleFactor: scale,
	}); err != nil {
		return fmt.Errorf("browser: set viewport: %w", err)
	}

	var features []*proto.EmulationMediaFeature
	if opts.ColorScheme.Valid() {
		features = append(features, &proto.EmulationMediaFeature{Name: "prefers-color-scheme", Value: string(opts.ColorScheme)})
	}
	if opts.ReducedMotion {
		features = append(features, &proto.EmulationMediaFeature{Name: "prefers-reduced-motion", Value: "reduce"})
	}
	if len(features) > 0 {
		if err := (proto.EmulationSetEmulatedMedia{Features: features}).Call(s.page); err != nil {
			return fmt.Errorf("browser: emulate media: %w", err)
		}
	}

	if opts.InitScript != "" {
		if _, err := s.page.EvalOnNewDocument(opts.InitScript); err != nil {
			return fmt.Errorf("browser: add init script: %w", err)
		}
	}
	return nil
}

func (s *rodSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	p := s.page.Context(ctx)

	wait := p.WaitRequestIdle(networkIdle, nil, nil, nil)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("navigate %s: wait load: %w", url, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("navigate %s: network idle: %w", url, err)
	}
	return nil
}

func (s *rodSession) Click(ctx context.Context, selector string) (bool, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil || !has {
		return false, err
	}
	return true, el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *rodSession) Evaluate(ctx context.Context, js string, arg any) (any, error) {
	res, err := s.page.Context(ctx).Eval(js, arg)
	if err != nil {
		return nil, err
	}
	return res.Value.Val(), nil
}

func (s *rodSession) Screenshot(ctx context.Context, path string, opts ShotOptions) error {
	req := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
	if opts.Format == "jpeg" {
		req.Format = proto.PageCaptureScreenshotFormatJpeg
	}
	data, err := s.page.Context(ctx).Screenshot(opts.FullPage, req)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("screenshot: write %s: %w", path, err)
	}
	return nil
}

func (s *rodSession) Close() error {
	return errors.Join(s.page.Close(), s.incognito.Close())
}

var _ theme.Surface = (*rodSession)(nil)
