package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsift/internal/domain/entity"
)

type oracleFunc func(ctx context.Context, prompt, model string) (string, error)

func (f oracleFunc) Ask(ctx context.Context, prompt, model string) (string, error) {
	return f(ctx, prompt, model)
}

func fixed(response string) Oracle {
	return oracleFunc(func(context.Context, string, string) (string, error) { return response, nil })
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     entity.Classification
		wantErr  bool
	}{
		{name: "keep finance", response: "1,finance", want: entity.Classification{Keep: true, Category: "finance"}},
		{name: "discard sports", response: "0,sports", want: entity.Classification{Keep: false, Category: "sports"}},
		{name: "surrounding whitespace", response: "  1, tech \n", want: entity.Classification{Keep: true, Category: "tech"}},
		{name: "category with commas", response: "1,society, culture, misc", want: entity.Classification{Keep: true, Category: "society, culture, misc"}},
		{name: "no comma", response: "maybe", want: entity.FailedClassification(), wantErr: true},
		{name: "flag out of range", response: "2,finance", want: entity.FailedClassification(), wantErr: true},
		{name: "word flag", response: "yes,finance", want: entity.FailedClassification(), wantErr: true},
		{name: "empty category", response: "1,", want: entity.FailedClassification(), wantErr: true},
		{name: "empty", response: "", want: entity.FailedClassification(), wantErr: true},
		{name: "kept with failure category", response: "1,classification failed", want: entity.FailedClassification(), wantErr: true},
		{name: "discarded with failure category", response: "0, classification failed", want: entity.FailedClassification()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClassification(tt.response)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedClassification)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	var gotPrompt, gotModel string
	oracle := oracleFunc(func(_ context.Context, prompt, model string) (string, error) {
		gotPrompt, gotModel = prompt, model
		return "<think>rates are economic news</think>\n1,finance", nil
	})

	c := NewClassifier(oracle, "small-model")
	got := c.Classify(context.Background(), "Central bank cuts rates")

	assert.Equal(t, entity.Classification{Keep: true, Category: entity.CategoryFinance}, got)
	assert.True(t, strings.HasPrefix(gotPrompt, ClassificationPrompt))
	assert.True(t, strings.HasSuffix(gotPrompt, "Central bank cuts rates"))
	assert.Equal(t, "small-model", gotModel)
}

func TestClassifier_FailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		oracle Oracle
	}{
		{"oracle error", oracleFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("quota exceeded")
		})},
		{"malformed", fixed("I think this is finance news")},
		{"only reasoning", fixed("<thinking>1,finance</thinking>")},
		{"panic", oracleFunc(func(context.Context, string, string) (string, error) {
			panic("boom")
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClassifier(tt.oracle, "").Classify(context.Background(), "title")
			assert.Equal(t, entity.FailedClassification(), got)
		})
	}
}

func TestClassificationPrompt_DecisionContract(t *testing.T) {
	for _, c := range entity.Categories {
		assert.Contains(t, ClassificationPrompt, string(c))
	}
	require.Contains(t, ClassificationPrompt, "sports, military or entertainment")
	assert.Contains(t, ClassificationPrompt, "Japan, Korea or Taiwan")
	assert.Contains(t, ClassificationPrompt, "single consumer product or software release")
	assert.Contains(t, ClassificationPrompt, "flag,category")
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "finance", categoryLabel(entity.CategoryFinance))
	assert.Equal(t, "classification failed", categoryLabel(entity.CategoryFailed))
	assert.Equal(t, "unrecognized", categoryLabel("crypto"))
}
