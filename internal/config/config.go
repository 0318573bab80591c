package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"themeshot/internal/projects"
	"themeshot/internal/theme"
)

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = ".themeshot.yml"

	// DriverPlaywright drives Chromium through playwright-go.
	DriverPlaywright = "playwright"
	// DriverRod drives Chromium through go-rod.
	DriverRod = "rod"

	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// Config captures every input of a capture run. It is assembled once at
// start-up and passed by value; nothing mutates it afterwards.
type Config struct {
	Driver      string `yaml:"driver"`
	OutputDir   string `yaml:"output_dir"`
	RunsDir     string `yaml:"runs_dir"`
	ImageFormat string `yaml:"image_format"`
	FullPage    bool   `yaml:"full_page"`

	Viewport Viewport `yaml:"viewport"`

	NavigationTimeout    time.Duration `yaml:"navigation_timeout"`
	SettleDelay          time.Duration `yaml:"settle_delay"`
	ThemeApplyDelay      time.Duration `yaml:"theme_apply_delay"`
	ToggleDelay          time.Duration `yaml:"toggle_delay"`
	DelayBetweenProjects time.Duration `yaml:"delay_between_projects"`
	DelayBetweenThemes   time.Duration `yaml:"delay_between_themes"`

	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`

	Themes  ThemesConfig  `yaml:"themes"`
	Browser BrowserConfig `yaml:"browser"`

	Projects []projects.Project `yaml:"projects"`

	// Only restricts a run to the named projects. Not read from file.
	Only []string `yaml:"-"`

	ServeAddr string `yaml:"serve_addr"`
}

// Viewport is the browsing context size.
type Viewport struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	DeviceScaleFactor float64 `yaml:"device_scale_factor"`
}

// ThemesConfig selects which themes are captured.
type ThemesConfig struct {
	Enabled bool          `yaml:"enabled"`
	Capture []theme.Theme `yaml:"capture"`
	Default theme.Theme   `yaml:"default"`
}

// BrowserConfig controls the single browser process of a run.
type BrowserConfig struct {
	Headless        bool     `yaml:"headless"`
	Args            []string `yaml:"args"`
	Stealth         bool     `yaml:"stealth"`
	InstallBrowsers bool     `yaml:"install_browsers"`
	// Restricted is set from the environment, never from file.
	Restricted bool `yaml:"-"`
}

// BaseArgs are the Chromium flags every launch uses.
var BaseArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-accelerated-2d-canvas",
	"--no-first-run",
	"--no-zygote",
	"--disable-gpu",
}

// RestrictedArgs are added when running inside CI or a deployment builder.
var RestrictedArgs = []string{
	"--disable-web-security",
	"--disable-features=VizDisplayCompositor",
	"--run-all-compositor-stages-before-draw",
	"--disable-backgrounding-occluded-windows",
	"--disable-renderer-backgrounding",
	"--disable-field-trial-config",
	"--disable-ipc-flooding-protection",
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Driver:      DriverPlaywright,
		OutputDir:   "public/assets",
		RunsDir:     "runs",
		ImageFormat: "png",
		FullPage:    false,
		Viewport: Viewport{
			Width:             1200,
			Height:            800,
			DeviceScaleFactor: 2,
		},
		NavigationTimeout:    30 * time.Second,
		SettleDelay:          2 * time.Second,
		ThemeApplyDelay:      time.Second,
		ToggleDelay:          500 * time.Millisecond,
		DelayBetweenProjects: time.Second,
		DelayBetweenThemes:   time.Second,
		MaxRetries:           3,
		RetryDelay:           5 * time.Second,
		Themes: ThemesConfig{
			Enabled: true,
			Capture: theme.All(),
			Default: theme.Light,
		},
		Browser: BrowserConfig{
			Headless:        true,
			Args:            slices.Clone(BaseArgs),
			InstallBrowsers: true,
		},
		Projects:  projects.Default(),
		ServeAddr: ":8787",
	}
}

// Load reads the yaml file at path over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// EnabledThemes returns the themes a run captures, in order.
func (c Config) EnabledThemes() []theme.Theme {
	if !c.Themes.Enabled {
		return []theme.Theme{c.Themes.Default}
	}
	return slices.Clone(c.Themes.Capture)
}

// SelectedProjects returns the projects a run captures.
func (c Config) SelectedProjects() ([]projects.Project, error) {
	return projects.Select(c.Projects, c.Only)
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverPlaywright, DriverRod:
	default:
		return fmt.Errorf("unsupported driver %q (want %s|%s)", c.Driver, DriverPlaywright, DriverRod)
	}
	switch c.ImageFormat {
	case "png", "jpeg":
	default:
		return fmt.Errorf("unsupported image_format %q (want png|jpeg)", c.ImageFormat)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.RunsDir == "" {
		return errors.New("runs_dir is required")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.NavigationTimeout <= 0 {
		return errors.New("navigation_timeout must be positive")
	}
	for _, d := range []time.Duration{c.SettleDelay, c.ThemeApplyDelay, c.ToggleDelay, c.DelayBetweenProjects, c.DelayBetweenThemes, c.RetryDelay} {
		if d < 0 {
			return fmt.Errorf("delays must not be negative, got %s", d)
		}
	}
	if !c.Themes.Default.Valid() {
		return fmt.Errorf("themes.default: unknown theme %q", c.Themes.Default)
	}
	if c.Themes.Enabled && len(c.Themes.Capture) == 0 {
		return errors.New("themes.capture is empty")
	}
	seen := map[theme.Theme]bool{}
	for _, t := range c.Themes.Capture {
		if !t.Valid() {
			return fmt.Errorf("themes.capture: unknown theme %q", t)
		}
		if seen[t] {
			return fmt.Errorf("themes.capture: duplicate theme %q", t)
		}
		seen[t] = true
	}
	if err := projects.Validate(c.Projects); err != nil {
		return err
	}
	if _, err := c.SelectedProjects(); err != nil {
		return err
	}
	return nil
}
