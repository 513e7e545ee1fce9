package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type observed struct {
	lengths  []int
	exceeded int
}

func newTestSummarizer(o Oracle, limit int) (*Summarizer, *observed) {
	s := NewSummarizer(o, "", limit)
	m := &observed{}
	s.observe = func(runes, limit int, _ time.Duration) {
		m.lengths = append(m.lengths, runes)
		if runes > limit {
			m.exceeded++
		}
	}
	return s, m
}

func TestSummarizer_Summarize(t *testing.T) {
	var gotPrompt string
	oracle := oracleFunc(func(_ context.Context, prompt, _ string) (string, error) {
		gotPrompt = prompt
		return "<think>plan</think> Rates were cut by 0.25 points. ", nil
	})
	s, m := newTestSummarizer(oracle, 300)

	got := s.Summarize(context.Background(), "long article body")

	assert.Equal(t, "Rates were cut by 0.25 points.", got)
	assert.Contains(t, gotPrompt, "at most 300 characters")
	assert.True(t, strings.HasSuffix(gotPrompt, "long article body"))
	assert.Equal(t, []int{30}, m.lengths)
	assert.Zero(t, m.exceeded)
}

func TestSummarizer_PassThroughOnFailure(t *testing.T) {
	content := strings.Repeat("original ", 80)
	tests := []struct {
		name   string
		oracle Oracle
	}{
		{"oracle error", oracleFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("network down")
		})},
		{"empty answer", fixed("   ")},
		{"reasoning only", fixed("<think>just thoughts</think>")},
		{"panic", oracleFunc(func(context.Context, string, string) (string, error) {
			panic("boom")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestSummarizer(tt.oracle, 300)
			assert.Equal(t, content, s.Summarize(context.Background(), content))
			assert.Empty(t, m.lengths)
		})
	}
}

func TestSummarizer_LimitExceededIsStillReturned(t *testing.T) {
	long := strings.Repeat("あ", 20)
	s, m := newTestSummarizer(fixed(long), 10)

	assert.Equal(t, long, s.Summarize(context.Background(), "input"))
	assert.Equal(t, 1, m.exceeded)
	assert.Equal(t, []int{20}, m.lengths)
}
