package text

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanOptions controls HTML-to-text conversion.
type CleanOptions struct {
	// KeepParagraphs emits a line break at every block boundary. When false the
	// output is a single line.
	KeepParagraphs bool

	// RemoveImages drops img/picture/svg/figure nodes (and their captions).
	RemoveImages bool
}

// DefaultCleanOptions is what the pipeline uses for feed and detail-page content.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{KeepParagraphs: true, RemoveImages: true}
}

var (
	noiseSelector = "head, script, style, noscript, iframe, template, form, button"
	imageSelector = "img, picture, svg, figure, video, audio"

	blockElements = map[string]bool{
		"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"section": true, "article": true, "blockquote": true, "tr": true,
		"table": true, "header": true, "footer": true, "pre": true, "hr": true,
		"main": true, "aside": true, "figcaption": true, "dd": true, "dt": true,
	}

	spaceRun = regexp.MustCompile(`[ \t\f\r\v\x{00a0}\x{3000}]+`)
)

// Clean converts an HTML fragment into plain text.
// Entities are decoded by the HTML parser; script/style noise is removed and
// block elements become line breaks when KeepParagraphs is set. Blank lines
// are dropped and each remaining line is trimmed.
func Clean(html string, opts CleanOptions) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return SelectionText(doc.Selection, opts), nil
}

// SelectionText renders an already-parsed selection as plain text using the
// same rules as Clean. The selection is modified in place.
func SelectionText(sel *goquery.Selection, opts CleanOptions) string {
	sel.Find(noiseSelector).Remove()
	if opts.RemoveImages {
		sel.Find(imageSelector).Remove()
	}

	var b strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		writeText(&b, s, opts.KeepParagraphs)
	})

	return normalizeLines(b.String(), opts.KeepParagraphs)
}

func writeText(b *strings.Builder, s *goquery.Selection, keepParagraphs bool) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch name {
		case "#text":
			b.WriteString(c.Text())
		case "#comment":
		default:
			block := blockElements[name]
			if block {
				writeBreak(b, keepParagraphs)
			}
			writeText(b, c, keepParagraphs)
			if block {
				writeBreak(b, keepParagraphs)
			}
		}
	})
}

func writeBreak(b *strings.Builder, keepParagraphs bool) {
	if keepParagraphs {
		b.WriteByte('\n')
		return
	}
	b.WriteByte(' ')
}

func normalizeLines(s string, keepParagraphs bool) string {
	if !keepParagraphs {
		s = strings.ReplaceAll(s, "\n", " ")
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
