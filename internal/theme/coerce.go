package theme

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Surface is the slice of a loaded page that coercion needs. Each method is
// a separate capability so that a page lacking one still gets the others.
type Surface interface {
	// Click clicks the first element matching selector. found is false when
	// nothing matches.
	Click(ctx context.Context, selector string) (found bool, err error)
	// Evaluate runs a JavaScript function expression with arg and returns
	// its JSON-decoded result.
	Evaluate(ctx context.Context, js string, arg any) (any, error)
}

// StorageKeys are the localStorage keys apps commonly read the theme from.
var StorageKeys = []string{"theme", "darkMode", "colorScheme", "preferred-theme"}

// ToggleSelectors returns the common theme-toggle selectors for t, in the
// order they are tried.
func ToggleSelectors(t Theme) []string {
	return []string{
		fmt.Sprintf(`[data-theme="%s"]`, t),
		`[data-theme-toggle]`,
		`.theme-toggle`,
		`button[aria-label*="theme"]`,
		fmt.Sprintf(`button[aria-label*="%s"]`, t),
		`.dark-mode-toggle`,
		`.theme-switcher`,
	}
}

const (
	probeJS = `(t) => {
	const root = document.documentElement;
	const attr = root.getAttribute('data-theme');
	if (attr) return attr === t;
	return root.classList.contains(t);
}`

	storageJS = `(args) => {
	for (const key of args.keys) {
		localStorage.setItem(key, args.theme);
	}
	return true;
}`

	classesJS = `(t) => {
	for (const el of [document.documentElement, document.body]) {
		if (!el) continue;
		el.classList.remove('light', 'dark');
		el.classList.add(t);
	}
	document.documentElement.setAttribute('data-theme', t);
	return true;
}`

	eventsJS = `(t) => {
	window.dispatchEvent(new CustomEvent('themechange', { detail: { theme: t } }));
	window.dispatchEvent(new StorageEvent('storage', {
		key: 'theme',
		newValue: t,
		storageArea: localStorage
	}));
	return true;
}`
)

// Strategy is one independent coercion technique.
type Strategy struct {
	Name  string
	Apply func(ctx context.Context, c *Coercer, s Surface, t Theme) error
}

// Strategies returns the page-level techniques in the order they run. The
// color-scheme preference is applied by the browser session before
// navigation and is not part of this list.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "toggle", Apply: clickToggle},
		{Name: "storage", Apply: writeStorage},
		{Name: "classes", Apply: setClasses},
		{Name: "events", Apply: dispatchEvents},
	}
}

// Coercer applies every strategy to a page. The zero value is not usable;
// build one with NewCoercer.
type Coercer struct {
	logger      *slog.Logger
	toggleDelay time.Duration
	sleep       func(context.Context, time.Duration) error
	strategies  []Strategy
}

// CoercerOption configures a Coercer.
type CoercerOption func(*Coercer)

// WithToggleDelay sets the wait after a successful toggle click. Default: 500ms.
func WithToggleDelay(d time.Duration) CoercerOption {
	return func(c *Coercer) { c.toggleDelay = d }
}

// WithSleep replaces the context-aware sleep used after a toggle click.
func WithSleep(fn func(context.Context, time.Duration) error) CoercerOption {
	return func(c *Coercer) { c.sleep = fn }
}

// WithStrategies overrides the strategy list.
func WithStrategies(list []Strategy) CoercerOption {
	return func(c *Coercer) { c.strategies = list }
}

// NewCoercer creates a Coercer logging to logger (slog.Default when nil).
func NewCoercer(logger *slog.Logger, opts ...CoercerOption) *Coercer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coercer{
		logger:      logger,
		toggleDelay: 500 * time.Millisecond,
		sleep:       Sleep,
		strategies:  Strategies(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Coerce runs every strategy against s. It never fails: a strategy error is
// logged and the next strategy still runs. It returns the names of the
// strategies that completed without error.
func (c *Coercer) Coerce(ctx context.Context, s Surface, t Theme) []string {
	var applied []string
	for _, st := range c.strategies {
		if err := c.run(ctx, st, s, t); err != nil {
			c.logger.Debug("theme: strategy failed", "strategy", st.Name, "theme", t, "error", err)
			continue
		}
		applied = append(applied, st.Name)
	}
	if len(applied) == 0 {
		c.logger.Warn("theme: no strategy applied, relying on color-scheme preference", "theme", t)
	}
	return applied
}

func (c *Coercer) run(ctx context.Context, st Strategy, s Surface, t Theme) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", st.Name, r)
		}
	}()
	return st.Apply(ctx, c, s, t)
}

func clickToggle(ctx context.Context, c *Coercer, s Surface, t Theme) error {
	if already, err := s.Evaluate(ctx, probeJS, string(t)); err == nil {
		if ok, _ := already.(bool); ok {
			return nil
		}
	}
	for _, sel := range ToggleSelectors(t) {
		found, err := s.Click(ctx, sel)
		if err != nil {
			c.logger.Debug("theme: toggle click failed", "selector", sel, "error", err)
			continue
		}
		if !found {
			continue
		}
		c.logger.Debug("theme: clicked toggle", "selector", sel, "theme", t)
		return c.sleep(ctx, c.toggleDelay)
	}
	return nil
}

func writeStorage(ctx context.Context, _ *Coercer, s Surface, t Theme) error {
	_, err := s.Evaluate(ctx, storageJS, map[string]any{"keys": StorageKeys, "theme": string(t)})
	return err
}

func setClasses(ctx context.Context, _ *Coercer, s Surface, t Theme) error {
	_, err := s.Evaluate(ctx, classesJS, string(t))
	return err
}

func dispatchEvents(ctx context.Context, _ *Coercer, s Surface, t Theme) error {
	_, err := s.Evaluate(ctx, eventsJS, string(t))
	return err
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
