// Package entity defines the core domain entities and validation logic for the application.
// It contains feed sources, classification results, resolved content and the
// persisted news record, along with their validation rules and domain-specific errors.
package entity

import "strings"

// Category is a label from the closed classification vocabulary.
type Category string

const (
	CategoryPolitics      Category = "politics"
	CategoryFinance       Category = "finance"
	CategoryMilitary      Category = "military"
	CategoryTech          Category = "tech"
	CategorySociety       Category = "society"
	CategoryEntertainment Category = "entertainment"
	CategorySports        Category = "sports"
	CategoryWeather       Category = "weather"
	CategoryOther         Category = "other"

	// CategoryFailed is attached to every fail-closed classification.
	CategoryFailed Category = "classification failed"
)

// Categories lists the closed vocabulary in prompt order.
var Categories = []Category{
	CategoryPolitics,
	CategoryFinance,
	CategoryMilitary,
	CategoryTech,
	CategorySociety,
	CategoryEntertainment,
	CategorySports,
	CategoryWeather,
	CategoryOther,
}

// Known reports whether c belongs to the closed vocabulary.
func (c Category) Known() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Classification is the keep/discard decision for a single item.
// Keep is never true together with CategoryFailed.
type Classification struct {
	Keep     bool
	Category Category
}

// FailedClassification is the fail-closed result.
func FailedClassification() Classification {
	return Classification{Keep: false, Category: CategoryFailed}
}

// ContentSource tags where a resolved body came from.
type ContentSource string

const (
	SourceDetailPage ContentSource = "detail_page"
	SourceRSS        ContentSource = "rss"
	SourceFailed     ContentSource = "failed"
)

// Sentinel bodies used when no real content could be produced.
const (
	ContentExtractionFailed = "[content extraction failed]"
	ContentCleaningFailed   = "[content cleaning failed]"
	ContentEmpty            = "[content empty]"
)

// ResolvedContent is the article body chosen by content resolution.
// Body is always non-empty: either cleaned text or one of the sentinels.
type ResolvedContent struct {
	Body   string
	Source ContentSource
}

// IsSentinel reports whether the body is a failure sentinel rather than text.
func (r ResolvedContent) IsSentinel() bool {
	switch r.Body {
	case ContentExtractionFailed, ContentCleaningFailed, ContentEmpty:
		return true
	}
	return false
}

// NewsRecord is the unit persisted for every kept item.
type NewsRecord struct {
	SourceName  string
	Category    Category
	Title       string
	Body        string
	IsCondensed bool
}

// Validate checks the record before it is written.
func (r *NewsRecord) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return Invalid("title", "is required")
	}
	if r.Category == CategoryFailed {
		return Invalid("category", "%q records are never persisted", CategoryFailed)
	}
	return nil
}

// RunSummary aggregates counters for one group execution.
type RunSummary struct {
	Group       string
	Feeds       int
	FeedsFailed int64
	Seen        int64
	Saved       int64
	Skipped     int64
	Errored     int64
}
