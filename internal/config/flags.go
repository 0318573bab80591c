package config

import (
	"slices"
	"time"

	"themeshot/internal/theme"
)

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Driver      StringFlag
	OutputDir   StringFlag
	RunsDir     StringFlag
	ImageFormat StringFlag
	FullPage    BoolFlag
	Headless    BoolFlag
	Stealth     BoolFlag
	MaxRetries  IntFlag
	RetryDelay  DurationFlag
	Timeout     DurationFlag
	Themes      SliceFlag
	Projects    SliceFlag
	ServeAddr   StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// IntFlag represents an int flag and whether it was set.
type IntFlag struct {
	Value int
	Set   bool
}

// DurationFlag represents a duration flag and whether it was set.
type DurationFlag struct {
	Value time.Duration
	Set   bool
}

// SliceFlag represents a repeatable flag; empty means unset.
type SliceFlag struct {
	Values []string
}

// ApplyFlags returns a copy of cfg with explicitly set flags applied. Theme
// values are parsed, so it can fail.
func ApplyFlags(cfg Config, flags FlagValues) (Config, error) {
	out := cfg
	if flags.Driver.Set {
		out.Driver = flags.Driver.Value
	}
	if flags.OutputDir.Set {
		out.OutputDir = flags.OutputDir.Value
	}
	if flags.RunsDir.Set {
		out.RunsDir = flags.RunsDir.Value
	}
	if flags.ImageFormat.Set {
		out.ImageFormat = flags.ImageFormat.Value
	}
	if flags.FullPage.Set {
		out.FullPage = flags.FullPage.Value
	}
	if flags.Headless.Set {
		out.Browser.Headless = flags.Headless.Value
	}
	if flags.Stealth.Set {
		out.Browser.Stealth = flags.Stealth.Value
	}
	if flags.MaxRetries.Set {
		out.MaxRetries = flags.MaxRetries.Value
	}
	if flags.RetryDelay.Set {
		out.RetryDelay = flags.RetryDelay.Value
	}
	if flags.Timeout.Set {
		out.NavigationTimeout = flags.Timeout.Value
	}
	if flags.ServeAddr.Set {
		out.ServeAddr = flags.ServeAddr.Value
	}
	if len(flags.Themes.Values) > 0 {
		list := make([]theme.Theme, 0, len(flags.Themes.Values))
		for _, v := range flags.Themes.Values {
			t, err := theme.Parse(v)
			if err != nil {
				return cfg, err
			}
			list = append(list, t)
		}
		out.Themes.Enabled = true
		out.Themes.Capture = list
	}
	if len(flags.Projects.Values) > 0 {
		out.Only = slices.Clone(flags.Projects.Values)
	}
	out.Browser.Args = slices.Clone(cfg.Browser.Args)
	return out, nil
}
