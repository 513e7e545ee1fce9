package ai

import (
	"regexp"
	"strings"
)

// reasoningTags are the paired tags models use for visible reasoning.
var reasoningTags = []string{"think", "thinking", "reasoning", "reflection", "thought"}

var reasoningBlocks = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(reasoningTags))
	for _, tag := range reasoningTags {
		res = append(res, regexp.MustCompile(`(?is)<`+tag+`(?:\s[^>]*)?>.*?</`+tag+`\s*>`))
	}
	return res
}()

// StripReasoning removes paired reasoning blocks such as <think>...</think>
// and trims the remainder. Unpaired tags are left alone.
func StripReasoning(s string) string {
	for _, re := range reasoningBlocks {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
