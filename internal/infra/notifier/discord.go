package notifier

import (
	"context"
	"net/http"
	"time"

	"feedsift/internal/domain/entity"
)

// DiscordConfig configures the Discord webhook channel. The webhook URL
// embeds its token and must not be logged.
type DiscordConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// Discord embed limits and colours.
const (
	embedTitleMax = 256
	embedDescMax  = 4096

	colorRecord    = 0x5865F2
	colorCondensed = 0xF1C40F
)

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       int           `json:"color"`
	Footer      discordFooter `json:"footer"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// DiscordNotifier posts each record as a single embed.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
	limiter    *RateLimiter
}

// NewDiscordNotifier allows a burst of 3 and one message every two seconds,
// inside Discord's 30 per minute webhook budget.
func NewDiscordNotifier(cfg DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    NewRateLimiter(0.5, 3),
	}
}

// embed renders record; condensed bodies get a distinct colour.
func embed(record *entity.NewsRecord) discordMessage {
	e := discordEmbed{
		Title:       truncate(record.Title, embedTitleMax, ""),
		Description: truncate(record.Body, embedDescMax, truncationSuffix),
		Color:       colorRecord,
		Footer:      discordFooter{Text: footerLine(record.SourceName, string(record.Category))},
	}
	if record.IsCondensed {
		e.Color = colorCondensed
	}
	return discordMessage{Embeds: []discordEmbed{e}}
}

func (d *DiscordNotifier) NotifyRecord(ctx context.Context, record *entity.NewsRecord) error {
	return deliver(ctx, "discord", d.limiter, record, func(ctx context.Context) error {
		return postJSON(ctx, d.client, d.webhookURL, "Discord", embed(record))
	})
}
