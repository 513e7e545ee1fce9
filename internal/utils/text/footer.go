package text

import "strings"

// Footer scrub defaults. Both are empirical and tuned for wire-service news.
const (
	DefaultFooterWindow = 10
	DefaultFooterMargin = 1
)

// DefaultFooterMarkers are byline, credit and disclaimer fragments. A line in
// the scrub window containing any of them is dropped.
var DefaultFooterMarkers = []string{
	"記者", "记者", "編輯", "编辑", "責任編輯", "责任编辑", "製作", "制作",
	"攝影", "摄影", "作者：", "作者:", "來源：", "来源：",
	"僅供參考", "仅供参考", "版權所有", "版权所有", "不得轉載", "不得转载",
	"reporter:", "editor:", "producer:", "written by", "reporting by", "editing by",
	"for reference only", "all rights reserved",
}

// DefaultEndTokens mark the end of an article. They are stripped from their
// line without dropping the rest of it.
var DefaultEndTokens = []string{"（完）", "(完)", "【完】", "(END)", "(end)", "-30-"}

// FooterScrubber removes boilerplate from the tail of an article.
// Only the last Window lines are inspected; the first Margin lines of the text
// are never touched, which keeps very short articles intact.
type FooterScrubber struct {
	Window    int
	Margin    int
	Markers   []string
	EndTokens []string
}

// NewFooterScrubber returns a scrubber with the default marker vocabulary.
// Non-positive window or negative margin fall back to the defaults.
func NewFooterScrubber(window, margin int) FooterScrubber {
	if window <= 0 {
		window = DefaultFooterWindow
	}
	if margin < 0 {
		margin = DefaultFooterMargin
	}
	return FooterScrubber{
		Window:    window,
		Margin:    margin,
		Markers:   DefaultFooterMarkers,
		EndTokens: DefaultEndTokens,
	}
}

// WithMarkers returns a copy of f that also drops lines containing any of
// extra. f itself is left unchanged.
func (f FooterScrubber) WithMarkers(extra ...string) FooterScrubber {
	if len(extra) == 0 {
		return f
	}
	markers := make([]string, 0, len(f.Markers)+len(extra))
	markers = append(markers, f.Markers...)
	f.Markers = append(markers, extra...)
	return f
}

// ScrubFooter scrubs text with the default configuration.
func ScrubFooter(text string) string {
	return NewFooterScrubber(DefaultFooterWindow, DefaultFooterMargin).Scrub(text)
}

// Scrub returns text with footer lines removed from the trailing window.
func (f FooterScrubber) Scrub(text string) string {
	lines := strings.Split(text, "\n")

	start := len(lines) - f.Window
	if start < f.Margin {
		start = f.Margin
	}
	if start >= len(lines) {
		return strings.TrimSpace(text)
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:start]...)
	for _, line := range lines[start:] {
		if f.hasMarker(line) {
			continue
		}
		out = append(out, f.stripEndTokens(line))
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func (f FooterScrubber) hasMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range f.Markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func (f FooterScrubber) stripEndTokens(line string) string {
	for _, tok := range f.EndTokens {
		if strings.Contains(line, tok) {
			line = strings.TrimRight(strings.ReplaceAll(line, tok, ""), " \t")
		}
	}
	return line
}
