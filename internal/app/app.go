package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ArticleHistoryBot/internal/config"
	"ArticleHistoryBot/internal/extractor"
	"ArticleHistoryBot/internal/infrastructure/console"
	"ArticleHistoryBot/internal/infrastructure/mediawiki"
	"ArticleHistoryBot/internal/infrastructure/parsoid"
	"ArticleHistoryBot/internal/infrastructure/scheduler"
	"ArticleHistoryBot/internal/infrastructure/storage"
	"ArticleHistoryBot/internal/infrastructure/telegram"
	"ArticleHistoryBot/internal/logging"
	"ArticleHistoryBot/internal/ports"
	"ArticleHistoryBot/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler ports.Scheduler
	repo      *storage.SqliteRepository
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	wiki := mediawiki.NewClient(cfg.Wiki.APIURL, cfg.Wiki.RestURL, cfg.Wiki.UserAgent, cfg.Wiki.OAuthToken, nil)
	pages := parsoid.NewClient(cfg.Wiki.ParsoidURL, cfg.Wiki.UserAgent, nil)

	repo, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatIDInt() != 0 {
		tg, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatIDInt())
		if err != nil {
			repo.Close()
			return nil, err
		}
		notifier = tg
	}

	var decider ports.Decider
	if cfg.Review.Interactive {
		decider = console.NewDecider(os.Stdin, os.Stdout)
	}

	transformer := usecase.NewTransformer(extractor.Default(), cfg.Wiki.BotName)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Pages:           pages,
		EditCounts:      wiki,
		Decider:         decider,
		Persister:       wiki,
		Repository:      repo,
		Notifier:        notifier,
		Transformer:     transformer,
		Interactive:     cfg.Review.Interactive,
		ReviewThreshold: cfg.Review.EditCountThreshold,
		Logger:          logging.Component(baseLogger, "pipeline"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
		repo:      repo,
	}, nil
}

// Run performs a single merge pass over the configured page list.
func (a *Application) Run(ctx context.Context) error {
	return a.pipeline.ProcessPages(ctx, a.cfg.Pages)
}

// RunScheduled keeps running merge passes on the configured cron expression
// until ctx is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	err := a.scheduler.Start(ctx, func(t time.Time) {
		if err := a.pipeline.ProcessPages(ctx, a.cfg.Pages); err != nil {
			a.logger.Error("scheduled run failed", "at", t, "error", err)
		}
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	return a.repo.Close()
}
