package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"themeshot/internal/browser"
	"themeshot/internal/config"
	"themeshot/internal/runner"
)

// newDriver is swapped by tests.
var newDriver = browser.New

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Capture every project in every enabled theme",
		RunE:  runGenerate,
	}
	addCaptureFlags(cmd)
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)

	res, err := capture(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	selected, err := cfg.SelectedProjects()
	if err != nil {
		return err
	}
	return renderSummary(cmd, format, res, cfg.EnabledThemes(), len(selected))
}

// capture performs one run. Failed pairs are reported in the summary, not
// as an error.
func capture(ctx context.Context, cfg config.Config, logger *slog.Logger) (runner.Result, error) {
	driver, err := newDriver(cfg.Driver, logger)
	if err != nil {
		return runner.Result{}, err
	}
	return runner.New(runner.Options{
		Config: cfg,
		Driver: driver,
		Logger: logger,
	}).Run(ctx)
}
