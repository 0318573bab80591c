package main

import (
	"context"

	"github.com/spf13/cobra"

	"themeshot/internal/config"
	"themeshot/internal/runner"
	"themeshot/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve runs, logs and screenshots over HTTP",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default :8787)")
	addCaptureFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	run := func(ctx context.Context, c config.Config) (runner.Result, error) {
		return capture(ctx, c, logger)
	}
	return server.New(cfg, run, logger).ListenAndServe(cmd.Context(), cfg.ServeAddr)
}
