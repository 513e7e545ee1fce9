package notifier

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"sync"
	"time"

	"feedsift/internal/domain/entity"
	"feedsift/internal/utils/text"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramConfig contains configuration for Telegram bot notifications.
type TelegramConfig struct {
	// Enabled indicates whether Telegram notifications are enabled
	Enabled bool

	// BotToken authenticates the bot against the Bot API
	BotToken string

	// ChatID is the chat, group or channel that receives messages
	ChatID int64

	// APIEndpoint overrides the Bot API URL format (token, method).
	// Empty uses tgbotapi.APIEndpoint.
	APIEndpoint string

	// Timeout is the HTTP request timeout for Bot API calls
	Timeout time.Duration
}

// TelegramNotifier sends records through the Telegram Bot API.
// The bot client is created on first use because construction calls getMe.
type TelegramNotifier struct {
	config      TelegramConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

const (
	// maxTelegramMessageLength is the Bot API limit for sendMessage text.
	maxTelegramMessageLength = 4096
	telegramTitleMax         = 256
)

// NewTelegramNotifier creates a TelegramNotifier limited to 1 message per
// second (the per-chat limit of the Bot API).
func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	if config.APIEndpoint == "" {
		config.APIEndpoint = tgbotapi.APIEndpoint
	}
	return &TelegramNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

func (t *TelegramNotifier) client() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.config.BotToken, t.config.APIEndpoint, t.httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", mapTelegramError(err))
	}
	t.bot = bot
	return bot, nil
}

func (t *TelegramNotifier) buildMessage(record *entity.NewsRecord) tgbotapi.MessageConfig {
	// the limit applies to the rendered text, so markup is not counted
	title := truncate(record.Title, telegramTitleMax, "")
	footer := footerLine(record.SourceName, string(record.Category))
	room := maxTelegramMessageLength - text.CountRunes(title) - text.CountRunes(footer) - 4
	body := truncate(record.Body, max(room, 0), truncationSuffix)

	msg := tgbotapi.NewMessage(t.config.ChatID,
		"<b>"+html.EscapeString(title)+"</b>\n\n"+html.EscapeString(body)+"\n\n<i>"+html.EscapeString(footer)+"</i>")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	return msg
}

// NotifyRecord sends one HTML formatted message for record.
func (t *TelegramNotifier) NotifyRecord(ctx context.Context, record *entity.NewsRecord) error {
	return deliver(ctx, "telegram", t.rateLimiter, record, func(ctx context.Context) error {
		bot, err := t.client()
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := bot.Send(t.buildMessage(record)); err != nil {
			return mapTelegramError(err)
		}
		return nil
	})
}

// mapTelegramError converts Bot API errors onto the shared error types.
func mapTelegramError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("telegram request: %w", err)
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		retryAfter := time.Duration(apiErr.RetryAfter) * time.Second
		if retryAfter <= 0 {
			retryAfter = defaultRetryAfter
		}
		return &RateLimitError{Message: "Telegram rate limit exceeded", RetryAfter: retryAfter}
	case apiErr.Code >= 500:
		return &ServerError{StatusCode: apiErr.Code, Message: "Telegram API server error: " + apiErr.Message}
	default:
		return &ClientError{StatusCode: apiErr.Code, Message: "Telegram API client error: " + apiErr.Message}
	}
}
