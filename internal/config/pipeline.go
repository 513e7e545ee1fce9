package config

import (
	"fmt"

	envconfig "feedsift/pkg/config"
)

// PipelineConfig holds the tunables of the ingestion pipeline.
type PipelineConfig struct {
	// MinContentLength discards kept items whose final body is shorter.
	// Default: 30
	MinContentLength int

	// MaxContentLength routes longer bodies through the summarizer.
	// Default: 500
	MaxContentLength int

	// DefaultItemLimit caps items per feed when the source sets no limit.
	// Overridden by the sources file defaults block. Default: 10
	DefaultItemLimit int

	// Collection is the target collection records are written into.
	// Default: "news"
	Collection string

	// FeedParallelism is the number of feeds of one group processed
	// concurrently. 1 keeps configuration order. Default: 1
	FeedParallelism int

	// FooterWindow is the number of trailing lines the footer scrubber inspects.
	// Default: 10
	FooterWindow int

	// FooterMargin is the number of lines above the window that are never altered.
	// Default: 1
	FooterMargin int

	// FooterMarkers are extra byline or disclaimer fragments, appended to the
	// built-in vocabulary. Comma separated in PIPELINE_FOOTER_MARKERS.
	FooterMarkers []string
}

// DefaultPipelineConfig returns the reference defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MinContentLength: 30,
		MaxContentLength: 500,
		DefaultItemLimit: DefaultItemLimit,
		Collection:       "news",
		FeedParallelism:  1,
		FooterWindow:     10,
		FooterMargin:     1,
	}
}

// LoadPipelineConfig reads PIPELINE_* variables over the defaults.
func LoadPipelineConfig() (*PipelineConfig, error) {
	def := DefaultPipelineConfig()
	cfg := &PipelineConfig{
		MinContentLength: envconfig.GetEnvInt("PIPELINE_MIN_CONTENT_LENGTH", def.MinContentLength),
		MaxContentLength: envconfig.GetEnvInt("PIPELINE_MAX_CONTENT_LENGTH", def.MaxContentLength),
		DefaultItemLimit: envconfig.GetEnvInt("PIPELINE_DEFAULT_ITEM_LIMIT", def.DefaultItemLimit),
		Collection:       envconfig.GetEnvString("PIPELINE_COLLECTION", def.Collection),
		FeedParallelism:  envconfig.GetEnvInt("PIPELINE_FEED_PARALLELISM", def.FeedParallelism),
		FooterWindow:     envconfig.GetEnvInt("PIPELINE_FOOTER_WINDOW", def.FooterWindow),
		FooterMargin:     envconfig.GetEnvInt("PIPELINE_FOOTER_MARGIN", def.FooterMargin),
		FooterMarkers:    envconfig.GetEnvStringList("PIPELINE_FOOTER_MARKERS", def.FooterMarkers),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *PipelineConfig) Validate() error {
	if c.MinContentLength < 0 {
		return fmt.Errorf("PIPELINE_MIN_CONTENT_LENGTH must not be negative")
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("PIPELINE_MAX_CONTENT_LENGTH must be positive")
	}
	if c.MinContentLength > c.MaxContentLength {
		return fmt.Errorf("PIPELINE_MIN_CONTENT_LENGTH (%d) cannot exceed PIPELINE_MAX_CONTENT_LENGTH (%d)",
			c.MinContentLength, c.MaxContentLength)
	}
	if c.DefaultItemLimit <= 0 {
		return fmt.Errorf("PIPELINE_DEFAULT_ITEM_LIMIT must be positive")
	}
	if c.Collection == "" {
		return fmt.Errorf("PIPELINE_COLLECTION cannot be empty")
	}
	if c.FeedParallelism < 1 || c.FeedParallelism > 32 {
		return fmt.Errorf("PIPELINE_FEED_PARALLELISM must be between 1 and 32")
	}
	if c.FooterWindow < 0 || c.FooterMargin < 0 {
		return fmt.Errorf("PIPELINE_FOOTER_WINDOW and PIPELINE_FOOTER_MARGIN must not be negative")
	}
	return nil
}

// StoreType selects the collection store backend.
type StoreType string

const (
	StoreFile     StoreType = "file"
	StoreSQLite   StoreType = "sqlite"
	StorePostgres StoreType = "postgres"
)

// StoreConfig selects and locates the collection store.
type StoreConfig struct {
	// Type is one of file, sqlite, postgres. Default: file
	Type StoreType
	// Path is the root directory (file) or database file (sqlite).
	// Default: "data"
	Path string
	// DatabaseURL is the postgres DSN.
	DatabaseURL string
}

// LoadStoreConfig reads STORE_TYPE, STORE_PATH and DATABASE_URL.
func LoadStoreConfig() (*StoreConfig, error) {
	cfg := &StoreConfig{
		Type:        StoreType(envconfig.GetEnvString("STORE_TYPE", string(StoreFile))),
		Path:        envconfig.GetEnvString("STORE_PATH", "data"),
		DatabaseURL: envconfig.GetEnvString("DATABASE_URL", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *StoreConfig) Validate() error {
	switch c.Type {
	case StoreFile, StoreSQLite:
		if c.Path == "" {
			return fmt.Errorf("STORE_PATH cannot be empty for %s store", c.Type)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_TYPE %q (must be file, sqlite or postgres)", c.Type)
	}
	return nil
}
