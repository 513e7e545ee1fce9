package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"feedsift/internal/config"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude is an Oracle backed by Anthropic's Messages API.
type Claude struct {
	caller
	baseURL string
}

// NewClaude creates a Claude oracle. The API key is resolved from creds on
// every call.
func NewClaude(name string, cfg config.OracleConfig, creds CredentialStore, opts Options) *Claude {
	return &Claude{
		caller:  newCaller(name, cfg, DefaultClaudeModel, creds, opts.Logger),
		baseURL: opts.BaseURL,
	}
}

// Ask implements Oracle.
func (c *Claude) Ask(ctx context.Context, prompt, model string) (string, error) {
	return c.ask(ctx, prompt, model, c.send)
}

func (c *Claude) send(ctx context.Context, key, model, prompt string) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := anthropic.NewClient(opts...)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
