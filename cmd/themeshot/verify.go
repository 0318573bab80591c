package main

import (
	"errors"

	"github.com/spf13/cobra"

	"themeshot/internal/config"
	"themeshot/internal/verify"
)

var errIncomplete = errors.New("screenshots are missing")

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every expected screenshot exists",
		RunE:  runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rep, err := check(cfg)
	if err != nil {
		return err
	}
	if err := renderReport(cmd, format, rep); err != nil {
		return err
	}
	if !rep.Success {
		return errIncomplete
	}
	return nil
}

func check(cfg config.Config) (verify.Report, error) {
	list, err := cfg.SelectedProjects()
	if err != nil {
		return verify.Report{}, err
	}
	return verify.Check(cfg.OutputDir, list, cfg.EnabledThemes(), cfg.ImageFormat), nil
}
