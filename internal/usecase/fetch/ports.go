package fetch

import (
	"context"
	"time"

	"feedsift/internal/domain/entity"
)

// FeedItem is one entry of a parsed feed. Absent optional elements are empty
// strings (or the zero time), never nil.
//
// The raw content fields keep the format's distinctions so the resolver can
// apply its priority order: EncodedContent (RSS content:encoded), Content
// (Atom content), Description (RSS description), Summary (Atom summary or
// iTunes summary).
type FeedItem struct {
	Title          string
	Link           string
	EncodedContent string
	Content        string
	Description    string
	Summary        string
	PublishedAt    time.Time
	GUID           string
}

// RawContent returns the first non-empty raw content field in resolution
// priority order.
func (it FeedItem) RawContent() string {
	for _, c := range []string{it.EncodedContent, it.Content, it.Description, it.Summary} {
		if c != "" {
			return c
		}
	}
	return ""
}

// FeedFetcher fetches and parses one feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string, format entity.FeedFormat) ([]FeedItem, error)
}

// DetailExtractor scrapes an article body from the page an item links to.
// It never fails: any problem yields "".
type DetailExtractor interface {
	Extract(ctx context.Context, url string, cfg *entity.DetailPageConfig) string
}

// Classifier decides whether an item is kept. Implementations fail closed.
type Classifier interface {
	Classify(ctx context.Context, title string) entity.Classification
}

// Summarizer condenses long content. Implementations return the input
// unchanged on failure.
type Summarizer interface {
	Summarize(ctx context.Context, content string) string
}

// RecordSaver persists a kept record and reports success.
type RecordSaver interface {
	Save(ctx context.Context, collection string, record *entity.NewsRecord) bool
}

// RecordNotifier is told about every persisted record. It must not block.
type RecordNotifier interface {
	NotifyRecord(ctx context.Context, record *entity.NewsRecord)
}
