package main

import (
	"github.com/spf13/cobra"

	"themeshot/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "themeshot",
		Short:         "Themeshot captures light and dark screenshots of project sites",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.String("config", config.DefaultFile, "config file (yaml)")
	persistent.String("format", config.FormatPretty, "output format (pretty|json)")
	persistent.BoolP("verbose", "v", false, "debug logging")
	persistent.String("driver", "", "browser driver (playwright|rod)")
	persistent.String("output-dir", "", "directory screenshots are written to")
	persistent.String("runs-dir", "", "directory run manifests and logs are written to")
	persistent.String("image-format", "", "screenshot format (png|jpeg)")
	persistent.StringArray("theme", nil, "theme to capture (repeatable)")
	persistent.StringArray("project", nil, "project name or output base (repeatable)")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newEnsureCmd())
	cmd.AddCommand(newRunsCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// addCaptureFlags registers the flags of commands that launch a browser.
func addCaptureFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Bool("headless", true, "run the browser headless")
	flags.Bool("stealth", false, "apply stealth evasions (rod driver)")
	flags.Bool("full-page", false, "capture the full scrollable page")
	flags.Int("max-retries", 0, "attempts per (project, theme) pair")
	flags.Duration("retry-delay", 0, "wait between attempts")
	flags.Duration("timeout", 0, "navigation timeout")
}
