package article_test

import (
	"strings"
	"unicode/utf8"
	"testing"

	"github.com/stretchr/testify/assert"

	"feedsift/internal/domain/entity"
	"feedsift/internal/usecase/article"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Central bank cuts rates", "Central bank cuts rates"},
		{"illegal characters", `Q&A: "What's next?" <live> a/b\c|d*`, "Q&A What's next live abcd"},
		{"whitespace runs", "  Rates\t\tcut \n today  ", "Rates cut today"},
		{"control characters", "Rates\x00cut\x07", "Ratescut"},
		{"leading dots", "...and more", "and more"},
		{"trailing dots", "The end...", "The end"},
		{"cjk and fullwidth punctuation kept", "央行降息：市场反应", "央行降息：市场反应"},
		{"empty", "", article.UntitledKey},
		{"only illegal", `?:*`, article.UntitledKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, article.DeriveKey(tt.title))
		})
	}
}

func TestDeriveKey_CapsLength(t *testing.T) {
	key := article.DeriveKey(strings.Repeat("x", 150))
	assert.Equal(t, article.MaxKeyLength, len([]rune(key)))

	key = article.DeriveKey(strings.Repeat("経", 150))
	assert.Equal(t, 80, len([]rune(key)), "three-byte runes hit the byte cap first")
	assert.LessOrEqual(t, len(key), article.MaxKeyBytes)
	assert.True(t, utf8.ValidString(key))

	key = article.DeriveKey("a" + strings.Repeat("経", 96))
	assert.LessOrEqual(t, len(key), article.MaxKeyBytes)
	assert.True(t, utf8.ValidString(key))
}

func TestDeriveKey_SameTitleSameKey(t *testing.T) {
	assert.Equal(t, article.DeriveKey("Rates: cut"), article.DeriveKey("Rates cut"))
}

func TestFormatRecord(t *testing.T) {
	rec := &entity.NewsRecord{
		SourceName: "Wire",
		Category:   entity.CategoryFinance,
		Title:      "Central bank cuts rates",
		Body:       "The bank cut rates.",
	}

	assert.Equal(t, "Source: Wire\nCategory: finance\n\nTitle: Central bank cuts rates\n\noriginal: The bank cut rates.\n", article.FormatRecord(rec))

	rec.IsCondensed = true
	assert.Equal(t, "Source: Wire\nCategory: finance\n\nTitle: Central bank cuts rates\n\nAI-summarized: The bank cut rates.\n", article.FormatRecord(rec))
}
