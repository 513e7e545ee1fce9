package entity

import (
	"strings"
	"time"
)

// FeedFormat is the wire format a feed source is declared with.
type FeedFormat string

const (
	FormatRSS  FeedFormat = "rss"
	FormatAtom FeedFormat = "atom"
)

// FeedSource represents one configured syndication feed.
// Sources are loaded from static configuration and are immutable for the
// duration of a run.
type FeedSource struct {
	Name       string            `yaml:"name"`
	URL        string            `yaml:"url"`
	Format     FeedFormat        `yaml:"format"`
	Groups     []string          `yaml:"groups"`
	ItemLimit  int               `yaml:"item_limit,omitempty"`
	DetailPage *DetailPageConfig `yaml:"detail_page,omitempty"`
}

// DetailPageConfig controls how full article bodies are scraped from the
// page an item links to.
//
// Selectors are tried in order; the first match whose text exceeds the
// extractor's minimum fragment length wins. Exclude selectors are removed from
// the accepted fragment before cleaning.
type DetailPageConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Selectors   []string      `yaml:"selectors,omitempty"`
	Exclude     []string      `yaml:"exclude,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Readability bool          `yaml:"readability,omitempty"`
}

// DetailPageEnabled reports whether detail-page scraping is configured and on.
func (s *FeedSource) DetailPageEnabled() bool {
	return s.DetailPage != nil && s.DetailPage.Enabled
}

// InGroup reports whether the source belongs to the named processing group.
func (s *FeedSource) InGroup(group string) bool {
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Limit returns the per-source item cap, or fallback when none is configured.
func (s *FeedSource) Limit(fallback int) int {
	if s.ItemLimit > 0 {
		return s.ItemLimit
	}
	return fallback
}

// Validate validates the FeedSource fields.
// An empty format is normalised to rss.
func (s *FeedSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Invalid("name", "is required")
	}
	if err := checkFeedURL(s.URL); err != nil {
		return err
	}

	if s.Format == "" {
		s.Format = FormatRSS
	}
	s.Format = FeedFormat(strings.ToLower(string(s.Format)))
	if s.Format != FormatRSS && s.Format != FormatAtom {
		return Invalid("format", "%q is neither rss nor atom", s.Format)
	}

	if s.ItemLimit < 0 {
		return Invalid("item_limit", "must not be negative")
	}

	if s.DetailPage != nil {
		if s.DetailPage.Timeout < 0 {
			return Invalid("detail_page.timeout", "must not be negative")
		}
		for _, sel := range s.DetailPage.Selectors {
			if strings.TrimSpace(sel) == "" {
				return Invalid("detail_page.selectors", "blank selector")
			}
		}
	}

	return nil
}
