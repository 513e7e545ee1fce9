// Package fetch drives syndicated items through the ingestion pipeline:
// feed reading, content resolution, classification, length gating,
// summarization and persistence, with failure isolation per item and per feed.
package fetch

import "errors"

// Feed Reader failures. Either one drops the whole feed for the run.
var (
	ErrFeedFetchFailed   = errors.New("feed fetch failed")
	ErrInvalidFeedFormat = errors.New("feed is neither rss nor atom")
)

// Detail-page URL checks. A rejected page never drops its item: the
// resolver falls back to the feed's own content.
var (
	// ErrInvalidURL covers unparsable links and schemes other than http(s).
	ErrInvalidURL = errors.New("unusable url")

	// ErrPrivateIP is returned when the host, or a redirect hop, resolves
	// to an internal address.
	ErrPrivateIP = errors.New("host resolves to an internal address")
)

// Transport failures shared by feed and page downloads.
var (
	ErrTooManyRedirects = errors.New("redirect limit exceeded")
	ErrBodyTooLarge     = errors.New("response exceeds size limit")
	ErrTimeout          = errors.New("request timed out")
	ErrUnexpectedStatus = errors.New("non-200 status")
)
