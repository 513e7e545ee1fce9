package llm

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"feedsift/internal/config"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI is an Oracle backed by the chat completions API or any compatible
// endpoint.
type OpenAI struct {
	caller
	baseURL string
}

// NewOpenAI creates an OpenAI oracle. The API key is resolved from creds on
// every call.
func NewOpenAI(name string, cfg config.OracleConfig, creds CredentialStore, opts Options) *OpenAI {
	return &OpenAI{
		caller:  newCaller(name, cfg, DefaultOpenAIModel, creds, opts.Logger),
		baseURL: opts.BaseURL,
	}
}

// Ask implements Oracle.
func (o *OpenAI) Ask(ctx context.Context, prompt, model string) (string, error) {
	return o.ask(ctx, prompt, model, o.send)
}

func (o *OpenAI) send(ctx context.Context, key, model, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(key)
	if o.baseURL != "" {
		clientConfig.BaseURL = o.baseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: o.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
