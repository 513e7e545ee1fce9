// Package llm adapts hosted language models to a single prompt-in, text-out
// oracle used by the classifier and the summarizer.
//
// Every call looks up its credential by name, runs behind a per-oracle
// circuit breaker and is bounded by the configured timeout. Calls are never
// retried; callers decide how to degrade.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"feedsift/internal/config"
	"feedsift/internal/observability/metrics"
	"feedsift/internal/resilience/circuitbreaker"
)

var (
	// ErrCredentialUnavailable is returned when the credential lookup fails.
	ErrCredentialUnavailable = errors.New("oracle credential unavailable")

	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("oracle returned empty response")

	// ErrUnavailable is returned while the oracle's circuit breaker is open.
	ErrUnavailable = errors.New("oracle unavailable: circuit breaker open")

	// ErrUnknownProvider is returned by New for an unsupported provider.
	ErrUnknownProvider = errors.New("unknown oracle provider")
)

// Oracle answers a prompt with text. An empty model selects the oracle's
// configured model.
type Oracle interface {
	Ask(ctx context.Context, prompt, model string) (string, error)
}

// CredentialStore resolves a secret by name.
type CredentialStore interface {
	Lookup(name string) (string, error)
}

// Options carries settings shared by the network-backed oracles.
type Options struct {
	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string
	Logger  *slog.Logger
}

// New builds the oracle described by cfg. name labels logs, metrics and
// the circuit breaker (e.g. "classifier").
func New(name string, cfg config.OracleConfig, creds CredentialStore, opts Options) (Oracle, error) {
	switch cfg.Provider {
	case config.ProviderClaude:
		return NewClaude(name, cfg, creds, opts), nil
	case config.ProviderOpenAI:
		return NewOpenAI(name, cfg, creds, opts), nil
	case config.ProviderStatic:
		return Static{Response: cfg.StaticResponse}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// sendFunc performs one provider request with a resolved key and model.
type sendFunc func(ctx context.Context, key, model, prompt string) (string, error)

// caller holds what every network-backed oracle does around the request.
type caller struct {
	name           string
	cfg            config.OracleConfig
	defaultModel   string
	creds          CredentialStore
	circuitBreaker *circuitbreaker.CircuitBreaker
	logger         *slog.Logger
}

func newCaller(name string, cfg config.OracleConfig, defaultModel string, creds CredentialStore, logger *slog.Logger) caller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model != "" {
		defaultModel = cfg.Model
	}
	return caller{
		name:           name,
		cfg:            cfg,
		defaultModel:   defaultModel,
		creds:          creds,
		circuitBreaker: circuitbreaker.New(circuitbreaker.OracleConfig(name)),
		logger:         logger,
	}
}

func (c caller) ask(ctx context.Context, prompt, model string, send sendFunc) (string, error) {
	requestID := uuid.New().String()
	if model == "" {
		model = c.defaultModel
	}
	provider := string(c.cfg.Provider)

	key, err := c.creds.Lookup(c.cfg.Credential)
	if err != nil {
		metrics.RecordOracleRequest(c.name, provider, err, 0)
		c.logger.WarnContext(ctx, "oracle credential lookup failed",
			slog.String("oracle", c.name),
			slog.String("credential", c.cfg.Credential),
			slog.Any("error", err))
		return "", fmt.Errorf("%w: %s: %v", ErrCredentialUnavailable, c.cfg.Credential, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	result, err := circuitbreaker.Call(c.circuitBreaker, func() (string, error) {
		return send(ctx, key, model, prompt)
	})
	duration := time.Since(start)
	metrics.RecordOracleRequest(c.name, provider, err, duration)

	if err != nil {
		if circuitbreaker.IsRejected(err) {
			c.logger.WarnContext(ctx, "oracle circuit breaker open, request rejected",
				slog.String("request_id", requestID),
				slog.String("oracle", c.name),
				slog.String("state", c.circuitBreaker.State().String()))
			return "", fmt.Errorf("%s: %w", c.name, ErrUnavailable)
		}
		c.logger.ErrorContext(ctx, "oracle request failed",
			slog.String("request_id", requestID),
			slog.String("oracle", c.name),
			slog.String("provider", provider),
			slog.String("model", model),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return "", fmt.Errorf("%s %s request: %w", c.name, provider, err)
	}

	text := strings.TrimSpace(result)
	c.logger.DebugContext(ctx, "oracle request completed",
		slog.String("request_id", requestID),
		slog.String("oracle", c.name),
		slog.String("model", model),
		slog.Int("response_length", len(text)),
		slog.Duration("duration", duration))
	return text, nil
}

// Static answers every prompt with Response, or fails with Err when set.
type Static struct {
	Response string
	Err      error
}

// Ask implements Oracle.
func (s Static) Ask(_ context.Context, _, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}
