package cmd

import (
	"context"
	"errors"
	"log/slog"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/internal/app"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/logger"
)

func WorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the thumbnail worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker()
		},
	}
}

func runWorker() error {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, "worker")

	app, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return err
	}

	pool := app.NewWorkerPool()
	if err := pool.Start(context.Background()); err != nil {
		slog.Error("failed to start worker pool", "error", err)
		if closeErr := app.Close(); closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
		return err
	}

	// In-flight jobs run to completion; unacked ones are redelivered after AckWait
	shutdownChan := gfshutdown.GracefulShutdown(context.Background(), cfg.JobAckWait, map[string]gfshutdown.Operation{
		"worker": func(ctx context.Context) error {
			if err := pool.Stop(ctx); err != nil {
				return err
			}
			return app.Close()
		},
	})

	if code := <-shutdownChan; code != 0 {
		return errors.New("shutdown did not complete cleanly")
	}
	slog.Info("worker stopped")
	return nil
}
