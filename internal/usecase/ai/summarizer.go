package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feedsift/internal/observability/metrics"
	"feedsift/internal/utils/text"
)

// summaryPromptTemplate takes the character budget.
const summaryPromptTemplate = `Condense the following news article to at most %d characters.
Rules:
- Keep the facts, names, numbers and dates. Do not add anything that is not in the article.
- Write the condensed article directly. No introduction, no headings, no commentary about the task.
- Do not mention reporters, editors, authors, photographers or the news agency.
- Keep the language of the original article.

Article:
`

// Summarizer condenses over-length bodies. On any failure it returns the
// input unchanged so the pipeline is never blocked.
type Summarizer struct {
	oracle    Oracle
	model     string
	charLimit int
	logger    *slog.Logger

	// observe is told about every produced summary.
	observe func(runes, limit int, took time.Duration)
}

// NewSummarizer creates a summarizer that asks for at most charLimit characters.
func NewSummarizer(oracle Oracle, model string, charLimit int) *Summarizer {
	return &Summarizer{
		oracle:    oracle,
		model:     model,
		charLimit: charLimit,
		logger:    slog.Default(),
		observe:   metrics.RecordSummary,
	}
}

// Prompt returns the full prompt sent for content.
func (s *Summarizer) Prompt(content string) string {
	return fmt.Sprintf(summaryPromptTemplate, s.charLimit) + content
}

// Summarize returns the condensed content, or content itself when the
// oracle fails or answers with nothing usable.
func (s *Summarizer) Summarize(ctx context.Context, content string) string {
	start := time.Now()
	summary, err := s.summarize(ctx, content)
	if err != nil {
		metrics.RecordSummarization(false)
		s.logger.WarnContext(ctx, "summarization failed, keeping original content",
			slog.Int("input_length", text.CountRunes(content)),
			slog.Any("error", err))
		return content
	}

	length := text.CountRunes(summary)
	s.observe(length, s.charLimit, time.Since(start))
	if length > s.charLimit {
		s.logger.WarnContext(ctx, "summary exceeds character limit",
			slog.Int("summary_length", length),
			slog.Int("character_limit", s.charLimit))
	}
	metrics.RecordSummarization(true)
	return summary
}

func (s *Summarizer) summarize(ctx context.Context, content string) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary, err = "", fmt.Errorf("summarizer panic: %v", r)
		}
	}()

	response, err := s.oracle.Ask(ctx, s.Prompt(content), s.model)
	if err != nil {
		return "", fmt.Errorf("ask summarizer: %w", err)
	}
	summary = StripReasoning(response)
	if summary == "" {
		return "", fmt.Errorf("summarizer returned only reasoning or whitespace")
	}
	return summary, nil
}
