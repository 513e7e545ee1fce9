package article

import (
	"strings"
	"unicode"

	"feedsift/internal/domain/entity"
	"feedsift/internal/utils/text"
)

// Key caps. The byte cap keeps "<key>.txt" within the 255-byte file name
// limit of common file systems once CJK titles take three bytes per rune.
const (
	MaxKeyLength = 100
	MaxKeyBytes  = 240
)

// UntitledKey is used when a title has no usable characters.
const UntitledKey = "untitled"

// Body prefixes marking whether the body was condensed.
const (
	CondensedPrefix = "AI-summarized:"
	OriginalPrefix  = "original:"
)

const illegalKeyChars = `\/:*?"<>|`

// DeriveKey turns a title into a key that is safe as a file name or row key.
// Illegal and control characters are dropped, whitespace runs collapse to one
// space, leading dots are trimmed and the result is capped at MaxKeyLength
// runes and MaxKeyBytes bytes.
func DeriveKey(title string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range title {
		switch {
		case strings.ContainsRune(illegalKeyChars, r), unicode.IsControl(r) && !unicode.IsSpace(r):
			continue
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	key := strings.TrimLeft(strings.TrimSpace(b.String()), ".")
	key = strings.TrimSpace(text.TruncateBytes(text.TruncateRunes(key, MaxKeyLength), MaxKeyBytes))
	key = strings.TrimRight(key, ". ")
	if key == "" {
		return UntitledKey
	}
	return key
}

// FormatRecord renders the canonical record layout:
//
//	Source: <source>
//	Category: <category>
//
//	Title: <title>
//
//	<prefix> <body>
func FormatRecord(r *entity.NewsRecord) string {
	prefix := OriginalPrefix
	if r.IsCondensed {
		prefix = CondensedPrefix
	}

	var b strings.Builder
	b.WriteString("Source: ")
	b.WriteString(r.SourceName)
	b.WriteString("\nCategory: ")
	b.WriteString(string(r.Category))
	b.WriteString("\n\nTitle: ")
	b.WriteString(r.Title)
	b.WriteString("\n\n")
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(r.Body)
	b.WriteString("\n")
	return b.String()
}
