package main

import (
	"github.com/spf13/cobra"

	"themeshot/internal/config"
	"themeshot/internal/output"
	"themeshot/internal/runner"
)

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List previous runs, newest first",
		RunE:  runRuns,
	}
}

func runRuns(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ids, err := runner.FindRuns(cfg.RunsDir)
	if err != nil {
		return err
	}
	manifests := make([]runner.Manifest, 0, len(ids))
	for _, id := range ids {
		m, err := runner.LoadRun(cfg.RunsDir, id)
		if err != nil {
			newLogger(cmd).Warn("runs: skipping unreadable run", "run_id", id, "error", err)
			continue
		}
		manifests = append(manifests, m)
	}
	if format == config.FormatJSON {
		return output.NewJSON(cmd.OutOrStdout()).Render(manifests)
	}
	return output.NewPretty(cmd.OutOrStdout()).RenderRuns(manifests)
}
