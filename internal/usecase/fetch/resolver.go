package fetch

import (
	"context"
	"log/slog"
	"strings"

	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/logging"
	"feedsift/internal/observability/metrics"
	"feedsift/internal/utils/text"
)

// CleanFunc converts raw HTML into plain text.
type CleanFunc func(html string, opts text.CleanOptions) (string, error)

// ContentResolver picks the best available body for an item: the scraped
// detail page when the source enables it, otherwise the feed's own content
// fields in priority order.
type ContentResolver struct {
	extractor DetailExtractor
	clean     CleanFunc
	options   text.CleanOptions
	scrubber  text.FooterScrubber
}

// NewContentResolver creates a resolver. extractor may be nil when no source
// uses detail pages.
func NewContentResolver(extractor DetailExtractor, scrubber text.FooterScrubber) *ContentResolver {
	return &ContentResolver{
		extractor: extractor,
		clean:     text.Clean,
		options:   text.DefaultCleanOptions(),
		scrubber:  scrubber,
	}
}

// WithCleaner replaces the HTML cleaner.
func (r *ContentResolver) WithCleaner(clean CleanFunc) *ContentResolver {
	r.clean = clean
	return r
}

// Resolve returns the item's body. It never fails: when nothing usable is
// found the body is one of the entity sentinels and Source is SourceFailed.
// Feed fields are only consulted once the detail page has yielded nothing,
// so there is no detail text left to fall back on.
func (r *ContentResolver) Resolve(ctx context.Context, item FeedItem, src *entity.FeedSource) entity.ResolvedContent {
	logger := logging.FromContext(ctx)

	if src.DetailPageEnabled() && item.Link != "" && r.extractor != nil {
		if detail := strings.TrimSpace(r.extractor.Extract(ctx, item.Link, src.DetailPage)); detail != "" {
			return r.finish(detail, entity.SourceDetailPage)
		}
		logger.DebugContext(ctx, "detail page yielded no content, using feed fields",
			slog.String("source", src.Name),
			slog.String("link", item.Link))
	}

	raw := item.RawContent()
	if raw == "" {
		return failed(entity.ContentExtractionFailed)
	}

	cleaned, err := r.clean(raw, r.options)
	if err != nil {
		logger.WarnContext(ctx, "content cleaning failed",
			slog.String("source", src.Name),
			slog.String("title", item.Title),
			slog.Any("error", err))
		return failed(entity.ContentCleaningFailed)
	}

	return r.finish(cleaned, entity.SourceRSS)
}

func (r *ContentResolver) finish(body string, source entity.ContentSource) entity.ResolvedContent {
	body = r.scrubber.Scrub(body)
	if strings.TrimSpace(body) == "" {
		return failed(entity.ContentEmpty)
	}
	metrics.RecordContentResolved(string(source))
	return entity.ResolvedContent{Body: body, Source: source}
}

func failed(sentinel string) entity.ResolvedContent {
	metrics.RecordContentResolved(string(entity.SourceFailed))
	return entity.ResolvedContent{Body: sentinel, Source: entity.SourceFailed}
}
