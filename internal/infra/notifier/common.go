package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/logging"
	"feedsift/internal/utils/text"
)

// defaultRetryAfter is used when a 429 response carries no usable hint.
const defaultRetryAfter = 5 * time.Second

// RateLimitError represents a 429 answer or an active pause.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// IsRateLimited reports whether err is a rate limit rejection.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// postJSON sends payload to endpoint and maps the response status onto the
// error types above. The response body is capped for error messages.
func postJSON(ctx context.Context, client *http.Client, endpoint, service string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		// the endpoint carries the webhook token and must not leak into logs
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("%s request: %w", service, uerr.Err)
		}
		return fmt.Errorf("%s request failed", service)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    service + " rate limit exceeded",
			RetryAfter: extractRetryAfter(resp.Header, body),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", service, string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", service, string(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// extractRetryAfter reads retry_after (seconds) from a JSON body, then the
// Retry-After header, then falls back to defaultRetryAfter.
func extractRetryAfter(header http.Header, body []byte) time.Duration {
	var hint struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &hint); err == nil && hint.RetryAfter > 0 {
		return time.Duration(hint.RetryAfter * float64(time.Second))
	}
	if v := header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}

// truncationSuffix marks a body shortened to fit a channel limit.
const truncationSuffix = "..."

// truncate caps s at limit runes, ending with suffix when shortened.
func truncate(s string, limit int, suffix string) string {
	if text.CountRunes(s) <= limit {
		return s
	}
	keep := limit - text.CountRunes(suffix)
	if keep < 0 {
		keep = 0
	}
	return text.TruncateRunes(s, keep) + suffix
}

// footerLine renders the attribution shown under every notification.
func footerLine(sourceName, category string) string {
	if category == "" {
		return sourceName
	}
	return sourceName + " • " + category
}

// deliver runs one rate limited attempt of send and logs the outcome.
// A 429 answer pauses the limiter for the hinted duration.
func deliver(ctx context.Context, service string, limiter *RateLimiter, record *entity.NewsRecord, send func(context.Context) error) error {
	logger := logging.FromContext(ctx).With(
		slog.String("notifier", service),
		slog.String("title", record.Title))

	if err := limiter.Allow(ctx); err != nil {
		logger.Warn("notification rate limited", slog.Any("error", err))
		return fmt.Errorf("%s rate limiter: %w", service, err)
	}

	start := time.Now()
	err := send(ctx)
	if err != nil {
		var rl *RateLimitError
		if errors.As(err, &rl) {
			limiter.Pause(rl.RetryAfter)
		}
		logger.Warn("notification failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return err
	}

	logger.Debug("notification sent", slog.Duration("duration", time.Since(start)))
	return nil
}
