package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/app/billing"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/config"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)
	logger.Info("starting billing consumer", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := billing.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize billing consumer", sl.Err(err))
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("billing consumer stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("billing consumer stopped gracefully")
}
