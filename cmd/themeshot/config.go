package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"themeshot/internal/config"
	"themeshot/internal/output"
	"themeshot/internal/runner"
	"themeshot/internal/theme"
	"themeshot/internal/verify"
)

// environment is swapped by tests.
var environment = config.ProcessEnv

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("parse --config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	values, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err = config.ApplyFlags(cfg, values)
	if err != nil {
		return config.Config{}, err
	}
	cfg = cfg.WithEnvironment(environment())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func outputFormat(cmd *cobra.Command) (string, error) {
	f, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("parse --format: %w", err)
	}
	f = strings.ToLower(f)
	switch f {
	case config.FormatPretty, config.FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", f)
	}
}

func renderSummary(cmd *cobra.Command, format string, res runner.Result, themes []theme.Theme, projectCount int) error {
	if format == config.FormatJSON {
		return output.NewJSON(cmd.OutOrStdout()).Render(res.Manifest)
	}
	return output.NewPretty(cmd.OutOrStdout()).RenderSummary(res.RunID, res.Summary, themes, projectCount)
}

func renderReport(cmd *cobra.Command, format string, rep verify.Report) error {
	if format == config.FormatJSON {
		return output.NewJSON(cmd.OutOrStdout()).Render(rep)
	}
	return output.NewPretty(cmd.OutOrStdout()).RenderReport(rep)
}
