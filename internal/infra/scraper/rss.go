// Package scraper fetches RSS and Atom feeds and maps their entries to
// pipeline feed items.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"

	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/metrics"
	"feedsift/internal/resilience/circuitbreaker"
	"feedsift/internal/usecase/fetch"
)

// RSSFetcher implements fetch.FeedFetcher for RSS 2.0 and Atom 1.0.
//
// It parses with the format-specific gofeed parsers rather than the
// universal one so that content:encoded, description, Atom content and
// Atom summary stay distinct. Atom is preferred whenever the document root
// says so, regardless of the configured format.
type RSSFetcher struct {
	client   *http.Client
	breakers *circuitbreaker.Set
	config   FeedFetchConfig
}

// NewRSSFetcher creates a fetcher with one circuit breaker per feed host.
//
// Parameters:
//   - cfg: request timeout, redirect cap, body size cap and User-Agent
//
// Returns:
//   - *RSSFetcher: safe for concurrent use by the feed workers of a group run
func NewRSSFetcher(cfg FeedFetchConfig) *RSSFetcher {
	f := &RSSFetcher{
		breakers: circuitbreaker.NewSet(circuitbreaker.FeedFetchConfig()),
		config:   cfg,
	}
	f.client = &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", fetch.ErrTooManyRedirects, len(via))
			}
			return nil
		},
	}
	return f
}

// Fetch retrieves and parses the feed at feedURL.
// Returned errors wrap fetch.ErrFeedFetchFailed or fetch.ErrInvalidFeedFormat.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string, format entity.FeedFormat) ([]fetch.FeedItem, error) {
	cb := f.breakers.ForURL(feedURL)
	resp, err := circuitbreaker.Call(cb, func() (*feedResponse, error) {
		return f.download(ctx, feedURL)
	})
	if err == nil {
		err = resp.err()
	}
	if err != nil {
		if circuitbreaker.IsRejected(err) {
			slog.Warn("feed fetch circuit breaker open, request rejected",
				slog.String("circuit", cb.Name()),
				slog.String("url", feedURL),
				slog.String("state", cb.State().String()))
		}
		metrics.RecordFeedFetch("error")
		return nil, fmt.Errorf("%w: %s: %w", fetch.ErrFeedFetchFailed, feedURL, err)
	}

	items, err := Parse(resp.body, format)
	if err != nil {
		metrics.RecordFeedFetch("parse_error")
		return nil, fmt.Errorf("%s: %w", feedURL, err)
	}
	metrics.RecordFeedFetch("success")
	return items, nil
}

// FetchAndParse is Fetch with errors folded into an empty result. The
// failure is logged; callers treat "no items" and "fetch failed" alike.
func (f *RSSFetcher) FetchAndParse(ctx context.Context, feedURL string, format entity.FeedFormat) []fetch.FeedItem {
	items, err := f.Fetch(ctx, feedURL, format)
	if err != nil {
		slog.Warn("feed dropped",
			slog.String("url", feedURL),
			slog.String("format", string(format)),
			slog.Any("error", err))
		return []fetch.FeedItem{}
	}
	return items
}

// feedResponse is what the host answered. A host that answers at all is
// healthy as far as its breaker is concerned, so a 404 or an oversized
// document fails only the feed, after the breaker has recorded a success.
type feedResponse struct {
	status   int
	body     []byte
	oversize int64
}

func (r *feedResponse) err() error {
	switch {
	case r.status != http.StatusOK:
		return fmt.Errorf("%w: %d", fetch.ErrUnexpectedStatus, r.status)
	case r.oversize > 0:
		return fmt.Errorf("%w: exceeds %d bytes", fetch.ErrBodyTooLarge, r.oversize)
	}
	return nil
}

func (f *RSSFetcher) download(ctx context.Context, feedURL string) (*feedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	out := &feedResponse{status: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		out.oversize = f.config.MaxBodySize
		return out, nil
	}
	out.body = body
	return out, nil
}

// Parse decodes a feed document. The document's own root element decides
// between RSS and Atom; format is only consulted when detection is
// inconclusive.
func Parse(data []byte, format entity.FeedFormat) ([]fetch.FeedItem, error) {
	useAtom := format == entity.FormatAtom
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeAtom:
		useAtom = true
	case gofeed.FeedTypeRSS:
		useAtom = false
	}

	if useAtom {
		feed, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: atom: %v", fetch.ErrInvalidFeedFormat, err)
		}
		return atomItems(feed), nil
	}

	feed, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: rss: %v", fetch.ErrInvalidFeedFormat, err)
	}
	return rssItems(feed), nil
}

func rssItems(feed *rss.Feed) []fetch.FeedItem {
	items := make([]fetch.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		item := fetch.FeedItem{
			Title:          strings.TrimSpace(it.Title),
			Link:           strings.TrimSpace(it.Link),
			EncodedContent: it.Content,
			Description:    it.Description,
		}
		if it.ITunesExt != nil {
			item.Summary = it.ITunesExt.Summary
		}
		if it.GUID != nil {
			item.GUID = it.GUID.Value
		}
		if it.PubDateParsed != nil {
			item.PublishedAt = *it.PubDateParsed
		}
		items = append(items, item)
	}
	return items
}

func atomItems(feed *atom.Feed) []fetch.FeedItem {
	items := make([]fetch.FeedItem, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e == nil {
			continue
		}
		item := fetch.FeedItem{
			Title:   strings.TrimSpace(e.Title),
			Link:    atomLink(e.Links),
			Summary: e.Summary,
			GUID:    e.ID,
		}
		if e.Content != nil {
			item.Content = e.Content.Value
		}
		switch {
		case e.PublishedParsed != nil:
			item.PublishedAt = *e.PublishedParsed
		case e.UpdatedParsed != nil:
			item.PublishedAt = *e.UpdatedParsed
		}
		items = append(items, item)
	}
	return items
}

// atomLink picks the alternate link, falling back to the first href.
func atomLink(links []*atom.Link) string {
	first := ""
	for _, l := range links {
		if l == nil || l.Href == "" {
			continue
		}
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
		if first == "" {
			first = strings.TrimSpace(l.Href)
		}
	}
	return first
}
