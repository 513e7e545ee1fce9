// Package text provides utilities for text processing.
// It includes rune-aware length helpers, HTML-to-text cleaning and footer
// scrubbing used by the content pipeline.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// All content-length policy in the pipeline (length gate, fragment acceptance,
// summary budgets) is measured with this function so that CJK and Latin text
// are treated alike.
//
// Examples:
//
//	CountRunes("hello")     // 5
//	CountRunes("央行降息")    // 4
//	CountRunes("")          // 0
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes returns at most limit runes of text.
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}

// TruncateBytes returns the longest prefix of text that fits in limit bytes
// without splitting a rune.
func TruncateBytes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	end := 0
	for i, r := range text {
		if i+utf8.RuneLen(r) > limit {
			break
		}
		end = i + utf8.RuneLen(r)
	}
	return text[:end]
}
