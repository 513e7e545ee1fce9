// Package notify fans persisted news records out to chat channels.
// Delivery is fire-and-forget: the pipeline never waits on a channel and a
// failing channel never affects run counters.
package notify

import (
	"context"

	"feedsift/internal/domain/entity"
	"feedsift/internal/infra/notifier"
)

// Channel represents one notification destination.
// Implementations must be safe for concurrent use and must respect ctx.
type Channel interface {
	// Name is the lowercase identifier used in logs, metrics and health output.
	Name() string

	// IsEnabled reports whether the channel is configured to receive records.
	IsEnabled() bool

	// Send delivers record once. Errors are returned, not retried.
	Send(ctx context.Context, record *entity.NewsRecord) error
}

// notifierChannel adapts an infra notifier to Channel.
type notifierChannel struct {
	name     string
	enabled  bool
	notifier notifier.Notifier
}

func (c *notifierChannel) Name() string    { return c.name }
func (c *notifierChannel) IsEnabled() bool { return c.enabled }

func (c *notifierChannel) Send(ctx context.Context, record *entity.NewsRecord) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if record == nil || record.Title == "" {
		return ErrInvalidRecord
	}
	return c.notifier.NotifyRecord(ctx, record)
}

func newChannel(name string, enabled bool, build func() notifier.Notifier) Channel {
	n := notifier.Discard
	if enabled {
		n = build()
	}
	return &notifierChannel{name: name, enabled: enabled, notifier: n}
}

// NewDiscordChannel creates the Discord webhook channel.
func NewDiscordChannel(config notifier.DiscordConfig) Channel {
	return newChannel("discord", config.Enabled, func() notifier.Notifier {
		return notifier.NewDiscordNotifier(config)
	})
}

// NewSlackChannel creates the Slack webhook channel.
func NewSlackChannel(config notifier.SlackConfig) Channel {
	return newChannel("slack", config.Enabled, func() notifier.Notifier {
		return notifier.NewSlackNotifier(config)
	})
}

// NewTelegramChannel creates the Telegram bot channel.
func NewTelegramChannel(config notifier.TelegramConfig) Channel {
	return newChannel("telegram", config.Enabled, func() notifier.Notifier {
		return notifier.NewTelegramNotifier(config)
	})
}
