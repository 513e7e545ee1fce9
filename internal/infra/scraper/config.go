package scraper

import (
	"fmt"
	"time"

	"feedsift/pkg/config"
)

// FeedFetchConfig bounds feed transport.
type FeedFetchConfig struct {
	// Timeout bounds one feed request including redirects.
	// Default: 30s
	Timeout time.Duration

	// MaxRedirects is the number of redirects followed before giving up.
	// Default: 5
	MaxRedirects int

	// MaxBodySize caps the feed document size in bytes.
	// Default: 10MB
	MaxBodySize int64

	// UserAgent identifies the crawler.
	UserAgent string
}

// DefaultFeedFetchConfig returns the default feed transport bounds.
func DefaultFeedFetchConfig() FeedFetchConfig {
	return FeedFetchConfig{
		Timeout:      30 * time.Second,
		MaxRedirects: 5,
		MaxBodySize:  10 * 1024 * 1024,
		UserAgent:    "FeedSiftBot/1.0",
	}
}

// LoadFeedFetchConfigFromEnv reads FEED_FETCH_* variables over the defaults.
func LoadFeedFetchConfigFromEnv() (FeedFetchConfig, error) {
	def := DefaultFeedFetchConfig()
	cfg := FeedFetchConfig{
		Timeout:      config.GetEnvDuration("FEED_FETCH_TIMEOUT", def.Timeout),
		MaxRedirects: config.GetEnvInt("FEED_FETCH_MAX_REDIRECTS", def.MaxRedirects),
		MaxBodySize:  int64(config.GetEnvInt("FEED_FETCH_MAX_BODY_SIZE", int(def.MaxBodySize))),
		UserAgent:    config.GetEnvString("FEED_FETCH_USER_AGENT", def.UserAgent),
	}
	if err := cfg.Validate(); err != nil {
		return def, err
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c FeedFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("FEED_FETCH_TIMEOUT must be positive, got %v", c.Timeout)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 20 {
		return fmt.Errorf("FEED_FETCH_MAX_REDIRECTS must be between 0 and 20, got %d", c.MaxRedirects)
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("FEED_FETCH_MAX_BODY_SIZE must be positive, got %d", c.MaxBodySize)
	}
	return nil
}
