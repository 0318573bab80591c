package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"themeshot/internal/theme"
)

func TestDefaultMatchesCaptureConstants(t *testing.T) {
	cfg := Default()
	if cfg.Viewport.Width != 1200 || cfg.Viewport.Height != 800 || cfg.Viewport.DeviceScaleFactor != 2 {
		t.Fatalf("unexpected viewport: %+v", cfg.Viewport)
	}
	if cfg.MaxRetries != 3 || cfg.RetryDelay != 5*time.Second {
		t.Fatalf("unexpected retry settings: %d %s", cfg.MaxRetries, cfg.RetryDelay)
	}
	if cfg.NavigationTimeout != 30*time.Second || cfg.SettleDelay != 2*time.Second {
		t.Fatalf("unexpected timing: %s %s", cfg.NavigationTimeout, cfg.SettleDelay)
	}
	if cfg.OutputDir != "public/assets" || cfg.ImageFormat != "png" || cfg.FullPage {
		t.Fatalf("unexpected output settings: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != DriverPlaywright || len(cfg.Projects) != 4 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	data := `
driver: rod
max_retries: 5
retry_delay: 250ms
viewport:
  width: 1440
themes:
  capture: [dark]
browser:
  headless: false
projects:
  - id: 7
    name: Docs
    url: https://docs.example.com
    output_base: docs
    settle_delay: 4s
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != DriverRod || cfg.MaxRetries != 5 || cfg.RetryDelay != 250*time.Millisecond {
		t.Fatalf("scalar overrides not applied: %+v", cfg)
	}
	if cfg.Viewport.Width != 1440 || cfg.Viewport.Height != 800 {
		t.Fatalf("viewport merge wrong: %+v", cfg.Viewport)
	}
	if got := cfg.EnabledThemes(); len(got) != 1 || got[0] != theme.Dark {
		t.Fatalf("EnabledThemes() = %v", got)
	}
	if cfg.Browser.Headless {
		t.Fatal("expected headless=false from file")
	}
	if len(cfg.Projects) != 1 || cfg.Projects[0].SettleDelay != 4*time.Second {
		t.Fatalf("projects not replaced: %+v", cfg.Projects)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("driver: [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error, got nil")
	}
}

func TestApplyFlags(t *testing.T) {
	base := Default()
	cfg, err := ApplyFlags(base, FlagValues{
		MaxRetries: IntFlag{Value: 1, Set: true},
		Headless:   BoolFlag{Value: false, Set: true},
		Themes:     SliceFlag{Values: []string{"DARK"}},
		Projects:   SliceFlag{Values: []string{"hyprl"}},
	})
	if err != nil {
		t.Fatalf("ApplyFlags() error = %v", err)
	}
	if cfg.MaxRetries != 1 || cfg.Browser.Headless {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if got := cfg.EnabledThemes(); len(got) != 1 || got[0] != theme.Dark {
		t.Fatalf("EnabledThemes() = %v", got)
	}
	selected, err := cfg.SelectedProjects()
	if err != nil || len(selected) != 1 || selected[0].Name != "HyprL" {
		t.Fatalf("SelectedProjects() = %+v, %v", selected, err)
	}
	if base.MaxRetries != 3 {
		t.Fatal("ApplyFlags mutated its input")
	}

	if _, err := ApplyFlags(base, FlagValues{Themes: SliceFlag{Values: []string{"sepia"}}}); err == nil {
		t.Fatal("expected unknown theme error")
	}
}

func TestThemesDisabledFallsBackToDefault(t *testing.T) {
	cfg := Default()
	cfg.Themes.Enabled = false
	cfg.Themes.Default = theme.Dark
	if got := cfg.EnabledThemes(); len(got) != 1 || got[0] != theme.Dark {
		t.Fatalf("EnabledThemes() = %v", got)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":    func(c *Config) { c.Driver = "selenium" },
		"format":    func(c *Config) { c.ImageFormat = "gif" },
		"retries":   func(c *Config) { c.MaxRetries = 0 },
		"viewport":  func(c *Config) { c.Viewport.Width = 0 },
		"theme":     func(c *Config) { c.Themes.Capture = []theme.Theme{"sepia"} },
		"dup theme": func(c *Config) { c.Themes.Capture = []theme.Theme{theme.Dark, theme.Dark} },
		"delay":     func(c *Config) { c.RetryDelay = -time.Second },
		"only":      func(c *Config) { c.Only = []string{"nope"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate() accepted %s", name)
			}
		})
	}
}

func TestWithEnvironment(t *testing.T) {
	env := EnvFrom(func(key string) (string, bool) {
		if key == "CI" {
			return "true", true
		}
		if key == "VERCEL" {
			return "", true
		}
		return "", false
	})
	if !env.CI || env.Vercel || env.Netlify {
		t.Fatalf("EnvFrom() = %+v", env)
	}

	base := Default()
	cfg := base.WithEnvironment(env)
	if !cfg.Browser.Restricted {
		t.Fatal("expected restricted browser config")
	}
	for _, arg := range RestrictedArgs {
		if !slices.Contains(cfg.Browser.Args, arg) {
			t.Fatalf("missing restricted arg %s", arg)
		}
	}
	if len(base.Browser.Args) != len(BaseArgs) {
		t.Fatalf("WithEnvironment mutated base args: %v", base.Browser.Args)
	}

	again := cfg.WithEnvironment(env)
	if len(again.Browser.Args) != len(cfg.Browser.Args) {
		t.Fatal("restricted args duplicated")
	}

	plain := base.WithEnvironment(Env{})
	if plain.Browser.Restricted || len(plain.Browser.Args) != len(BaseArgs) {
		t.Fatalf("unexpected args without environment: %v", plain.Browser.Args)
	}
}
