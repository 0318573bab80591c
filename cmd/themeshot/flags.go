package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"themeshot/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	for name, dst := range map[string]*config.StringFlag{
		"driver":       &values.Driver,
		"output-dir":   &values.OutputDir,
		"runs-dir":     &values.RunsDir,
		"image-format": &values.ImageFormat,
		"addr":         &values.ServeAddr,
	} {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", name, err)
		}
		*dst = config.StringFlag{Value: v, Set: true}
	}

	for name, dst := range map[string]*config.BoolFlag{
		"headless":  &values.Headless,
		"stealth":   &values.Stealth,
		"full-page": &values.FullPage,
	} {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", name, err)
		}
		*dst = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Lookup("max-retries") != nil && flags.Changed("max-retries") {
		v, err := flags.GetInt("max-retries")
		if err != nil {
			return values, fmt.Errorf("parse --max-retries: %w", err)
		}
		values.MaxRetries = config.IntFlag{Value: v, Set: true}
	}

	for name, dst := range map[string]*config.DurationFlag{
		"retry-delay": &values.RetryDelay,
		"timeout":     &values.Timeout,
	} {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetDuration(name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", name, err)
		}
		*dst = config.DurationFlag{Value: v, Set: true}
	}

	if flags.Changed("theme") {
		v, err := flags.GetStringArray("theme")
		if err != nil {
			return values, fmt.Errorf("parse --theme: %w", err)
		}
		values.Themes = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("project") {
		v, err := flags.GetStringArray("project")
		if err != nil {
			return values, fmt.Errorf("parse --project: %w", err)
		}
		values.Projects = config.SliceFlag{Values: append([]string{}, v...)}
	}

	return values, nil
}
