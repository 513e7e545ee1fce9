package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedsift/internal/domain/entity"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// Enabled indicates whether Slack notifications are enabled
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackNotifier sends records to Slack via Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackNotifier creates a SlackNotifier limited to 1 message per second.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Block Kit limits
const (
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150
)

func (s *SlackNotifier) buildBlockKitPayload(record *entity.NewsRecord) SlackWebhookPayload {
	fallback := truncate(fmt.Sprintf("%s - %s", record.Title, record.SourceName), maxFallbackLength, truncationSuffix)
	section := truncate(fmt.Sprintf("*%s*\n\n%s", record.Title, record.Body), maxSectionTextLength, truncationSuffix)

	meta := footerLine(record.SourceName, string(record.Category))
	if record.IsCondensed {
		meta += " • condensed"
	}

	return SlackWebhookPayload{
		Text: fallback,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: truncate(meta, maxContextTextLength, truncationSuffix)}}},
		},
	}
}

// NotifyRecord posts one Block Kit message for record.
func (s *SlackNotifier) NotifyRecord(ctx context.Context, record *entity.NewsRecord) error {
	return deliver(ctx, "slack", s.rateLimiter, record, func(ctx context.Context) error {
		return postJSON(ctx, s.httpClient, s.config.WebhookURL, "Slack", s.buildBlockKitPayload(record))
	})
}
