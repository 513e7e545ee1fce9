// Package app assembles the ingestion pipeline from configuration.
// Both the worker and the CLI build their runtime through Build so they
// share one wiring of stores, oracles and notification channels.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"feedsift/internal/config"
	"feedsift/internal/infra/adapter/persistence/file"
	"feedsift/internal/infra/adapter/persistence/postgres"
	"feedsift/internal/infra/adapter/persistence/sqlite"
	"feedsift/internal/infra/db"
	"feedsift/internal/infra/fetcher"
	"feedsift/internal/infra/llm"
	"feedsift/internal/infra/notifier"
	"feedsift/internal/infra/scraper"
	"feedsift/internal/infra/secrets"
	"feedsift/internal/repository"
	"feedsift/internal/usecase/ai"
	"feedsift/internal/usecase/article"
	"feedsift/internal/usecase/fetch"
	"feedsift/internal/usecase/notify"
	"feedsift/internal/utils/text"
)

// Options tunes Build.
type Options struct {
	// SourcesPath overrides FEEDSIFT_SOURCES.
	SourcesPath string

	// DisableNotifications skips channel setup even when channels are enabled.
	DisableNotifications bool

	Logger *slog.Logger
}

// App is a fully wired pipeline plus the resources it owns.
type App struct {
	Pipeline       *fetch.Service
	Classifier     *ai.Classifier
	Summarizer     *ai.Summarizer
	Repo           repository.NewsRepository
	Notify         *notify.Service
	Sources        *config.SourcesFile
	SourcesPath    string
	PipelineConfig config.PipelineConfig

	db *sql.DB
}

// Build loads every configuration block, opens the store and wires the
// pipeline. The caller must Close the returned App.
func Build(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := opts.SourcesPath
	if path == "" {
		path = config.SourcesPath()
	}
	sources, err := config.LoadSources(path)
	if err != nil {
		return nil, err
	}

	pipelineCfg, err := config.LoadPipelineConfig()
	if err != nil {
		return nil, err
	}
	storeCfg, err := config.LoadStoreConfig()
	if err != nil {
		return nil, err
	}
	aiCfg, err := config.LoadAIConfig()
	if err != nil {
		return nil, err
	}

	classifier, summarizer, err := BuildOracles(aiCfg, logger)
	if err != nil {
		return nil, err
	}

	repo, database, err := OpenStore(ctx, storeCfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Classifier:     classifier,
		Summarizer:     summarizer,
		Repo:           repo,
		Sources:        sources,
		SourcesPath:    path,
		PipelineConfig: *pipelineCfg,
		db:             database,
	}

	var recordNotifier fetch.RecordNotifier
	if !opts.DisableNotifications {
		notifyCfg, err := config.LoadNotifyConfig()
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.Notify = BuildNotifier(notifyCfg)
		recordNotifier = a.Notify
	}

	a.Pipeline = fetch.NewService(
		sources,
		BuildFetcher(logger),
		BuildResolver(pipelineCfg, logger),
		classifier,
		fetch.NewLengthGate(pipelineCfg.MinContentLength, pipelineCfg.MaxContentLength, summarizer),
		article.NewService(repo, string(storeCfg.Type)),
		recordNotifier,
		*pipelineCfg,
	)

	logger.Info("pipeline assembled",
		slog.String("sources_file", path),
		slog.Int("sources", len(sources.Sources)),
		slog.Int("groups", len(sources.Groups)),
		slog.String("store", string(storeCfg.Type)),
		slog.String("classifier", string(aiCfg.Classifier.Provider)),
		slog.String("summarizer", string(aiCfg.Summarizer.Provider)))
	return a, nil
}

// BuildFetcher creates the feed fetcher from FEED_FETCH_* settings.
func BuildFetcher(logger *slog.Logger) fetch.FeedFetcher {
	feedCfg, err := scraper.LoadFeedFetchConfigFromEnv()
	if err != nil {
		logger.Warn("invalid feed fetch configuration, using defaults", slog.Any("error", err))
	}
	return scraper.NewRSSFetcher(feedCfg)
}

// BuildResolver creates the content resolver: detail-page extraction from
// DETAIL_PAGE_* settings plus footer scrubbing from cfg.
func BuildResolver(cfg *config.PipelineConfig, logger *slog.Logger) *fetch.ContentResolver {
	detailCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid detail page configuration, using defaults", slog.Any("error", err))
		detailCfg = fetcher.DefaultConfig()
	}
	return fetch.NewContentResolver(
		fetcher.NewDetailPageExtractor(detailCfg),
		text.NewFooterScrubber(cfg.FooterWindow, cfg.FooterMargin).WithMarkers(cfg.FooterMarkers...),
	)
}

// BuildOracles creates the classifier and summarizer from cfg. Credentials
// are resolved on every call, so a missing key only fails the calls that
// need it.
func BuildOracles(cfg *config.AIConfig, logger *slog.Logger) (*ai.Classifier, *ai.Summarizer, error) {
	creds, err := secrets.Open(cfg.SecretsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open credential store: %w", err)
	}

	optsFor := func(p config.Provider) llm.Options {
		o := llm.Options{Logger: logger}
		if p == config.ProviderOpenAI {
			o.BaseURL = cfg.OpenAIBaseURL
		}
		return o
	}

	classifierOracle, err := llm.New("classifier", cfg.Classifier, creds, optsFor(cfg.Classifier.Provider))
	if err != nil {
		return nil, nil, fmt.Errorf("classifier oracle: %w", err)
	}
	summarizerOracle, err := llm.New("summarizer", cfg.Summarizer, creds, optsFor(cfg.Summarizer.Provider))
	if err != nil {
		return nil, nil, fmt.Errorf("summarizer oracle: %w", err)
	}

	return ai.NewClassifier(classifierOracle, cfg.Classifier.Model),
		ai.NewSummarizer(summarizerOracle, cfg.Summarizer.Model, cfg.SummaryCharLimit),
		nil
}

// OpenStore opens the record store selected by cfg. The returned *sql.DB is
// nil for the file store.
func OpenStore(ctx context.Context, cfg *config.StoreConfig) (repository.NewsRepository, *sql.DB, error) {
	switch cfg.Type {
	case config.StoreFile:
		return file.NewNewsRepo(cfg.Path), nil, nil

	case config.StoreSQLite:
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "feedsift.db")
		}
		database, err := db.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.MigrateUp(ctx, database); err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		return sqlite.NewNewsRepo(database), database, nil

	case config.StorePostgres:
		database, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.MigrateUp(ctx, database); err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		return postgres.NewNewsRepo(database), database, nil
	}
	return nil, nil, fmt.Errorf("unknown store type %q", cfg.Type)
}

// BuildNotifier creates the notification service for every configured channel.
func BuildNotifier(cfg *config.NotifyConfig) *notify.Service {
	channels := []notify.Channel{
		notify.NewDiscordChannel(notifier.DiscordConfig{
			Enabled:    cfg.DiscordEnabled,
			WebhookURL: cfg.DiscordWebhookURL,
			Timeout:    cfg.Timeout,
		}),
		notify.NewSlackChannel(notifier.SlackConfig{
			Enabled:    cfg.SlackEnabled,
			WebhookURL: cfg.SlackWebhookURL,
			Timeout:    cfg.Timeout,
		}),
		notify.NewTelegramChannel(notifier.TelegramConfig{
			Enabled:  cfg.TelegramEnabled,
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Timeout:  cfg.Timeout,
		}),
	}
	return notify.NewService(channels, cfg.MaxConcurrent)
}

// Ping checks the SQL store when there is one.
func (a *App) Ping(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.PingContext(ctx)
}

// Close drains notifications and closes the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Notify != nil {
		if err := a.Notify.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("notification shutdown: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
