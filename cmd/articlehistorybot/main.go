package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ArticleHistoryBot/internal/app"
	"ArticleHistoryBot/internal/config"
	"ArticleHistoryBot/internal/logging"
)

func main() {
	scheduled := flag.Bool("scheduled", false, "keep running on the configured cron expression")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	run := application.Run
	if *scheduled {
		run = application.RunScheduled
	}

	if err := run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
