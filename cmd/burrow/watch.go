package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/behrlich/burrow/internal/audit"
	"github.com/behrlich/burrow/internal/logger"
	"github.com/behrlich/burrow/internal/watch"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report external changes to the memory root",
		Long: "Watches the memory root and records every change made outside burrow\n" +
			"into the configured audit sinks. Without any sink configured, records\n" +
			"are printed to stdout as JSON lines.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rec, cleanup, err := buildRecorder(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			if rec == nil {
				rec = audit.NewJSONRecorder(os.Stdout)
			}

			tool, err := newTool(cfg, nil)
			if err != nil {
				return err
			}

			w, err := watch.New(tool.Root(), tool.Prefix(), rec)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			logger.Info("watching memory root", "root", tool.Root())
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
