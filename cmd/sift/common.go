package main

import (
	"log/slog"
	"os"

	"feedsift/internal/config"
	"feedsift/internal/observability/logging"
)

func (o *rootOptions) logger() *slog.Logger {
	logger := logging.New(os.Stderr, !o.jsonLogs)
	slog.SetDefault(logger)
	return logger
}

func (o *rootOptions) path() string {
	if o.sourcesPath != "" {
		return o.sourcesPath
	}
	return config.SourcesPath()
}
