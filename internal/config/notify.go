package config

import (
	"fmt"
	"strconv"
	"time"

	envconfig "feedsift/pkg/config"
)

// NotifyConfig configures the notification channels.
// A channel enabled without its credentials is a configuration error.
type NotifyConfig struct {
	DiscordEnabled    bool
	DiscordWebhookURL string

	SlackEnabled    bool
	SlackWebhookURL string

	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   int64

	// Timeout bounds one outbound request. Default: 10s
	Timeout time.Duration

	// MaxConcurrent bounds deliveries in flight. Default: 10
	MaxConcurrent int
}

// LoadNotifyConfig reads DISCORD_*, SLACK_*, TELEGRAM_* and NOTIFY_* variables.
func LoadNotifyConfig() (*NotifyConfig, error) {
	cfg := &NotifyConfig{
		DiscordEnabled:    envconfig.GetEnvBool("DISCORD_ENABLED", false),
		DiscordWebhookURL: envconfig.GetEnvString("DISCORD_WEBHOOK_URL", ""),
		SlackEnabled:      envconfig.GetEnvBool("SLACK_ENABLED", false),
		SlackWebhookURL:   envconfig.GetEnvString("SLACK_WEBHOOK_URL", ""),
		TelegramEnabled:   envconfig.GetEnvBool("TELEGRAM_ENABLED", false),
		TelegramBotToken:  envconfig.GetEnvString("TELEGRAM_BOT_TOKEN", ""),
		Timeout:           envconfig.GetEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		MaxConcurrent:     envconfig.GetEnvInt("NOTIFY_MAX_CONCURRENT", 10),
	}

	if raw := envconfig.GetEnvString("TELEGRAM_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid notification configuration: TELEGRAM_CHAT_ID %q is not an integer", raw)
		}
		cfg.TelegramChatID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid notification configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *NotifyConfig) Validate() error {
	if c.DiscordEnabled && c.DiscordWebhookURL == "" {
		return fmt.Errorf("DISCORD_WEBHOOK_URL is required when DISCORD_ENABLED=true")
	}
	if c.SlackEnabled && c.SlackWebhookURL == "" {
		return fmt.Errorf("SLACK_WEBHOOK_URL is required when SLACK_ENABLED=true")
	}
	if c.TelegramEnabled && (c.TelegramBotToken == "" || c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when TELEGRAM_ENABLED=true")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive")
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("NOTIFY_MAX_CONCURRENT must be positive")
	}
	return nil
}
