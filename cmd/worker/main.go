package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"feedsift/internal/app"
	"feedsift/internal/config"
	"feedsift/internal/infra/worker"
	"feedsift/internal/observability/logging"
	"feedsift/internal/observability/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitFromEnv(ctx, "feedsift-worker")
	if err != nil {
		logger.Warn("tracing disabled", slog.Any("error", err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	workerMetrics := worker.NewWorkerMetrics()
	workerConfig := worker.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("group_timeout", workerConfig.GroupTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort),
		slog.Bool("run_on_start", workerConfig.RunOnStart))

	healthServer := worker.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	serverCtx, stopServers := context.WithCancel(context.Background())
	defer stopServers()
	go func() {
		if err := healthServer.Start(serverCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	a, err := app.Build(ctx, app.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	healthServer.AddCheck("store", a.Ping)

	metricsServer := startMetricsServer(serverCtx, logger, workerConfig.MetricsPort, a.Notify)

	scheduler, err := worker.NewScheduler(a.Pipeline, *workerConfig, workerMetrics, logger)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if err := scheduler.Sync(a.Sources.Groups); err != nil {
		return fmt.Errorf("schedule groups: %w", err)
	}
	if len(scheduler.Scheduled()) == 0 {
		logger.Warn("no group declares a schedule, worker will stay idle until the sources file changes")
	}

	watcher := worker.NewSourcesWatcher(a.SourcesPath, func(sf *config.SourcesFile) {
		a.Pipeline.SetSources(sf)
		if err := scheduler.Sync(sf.Groups); err != nil {
			logger.Error("reschedule after reload failed", slog.Any("error", err))
		}
	}, workerMetrics, logger)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Error("sources watcher stopped", slog.Any("error", err))
		}
	}()

	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started", slog.Any("schedules", scheduler.Scheduled()))

	if workerConfig.RunOnStart {
		for group := range scheduler.Scheduled() {
			go scheduler.RunGroup(group)
		}
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), workerConfig.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := scheduler.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("stop metrics server: %w", err))
	}
	stopServers()
	if err := shutdownTracing(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("flush traces: %w", err))
	}

	logger.Info("worker stopped")
	return errors.Join(errs...)
}
