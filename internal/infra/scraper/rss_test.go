package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsift/internal/domain/entity"
	"feedsift/internal/infra/scraper"
	"feedsift/internal/usecase/fetch"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>Description 1</description>
      <content:encoded><![CDATA[<p>Full body 1</p>]]></content:encoded>
      <guid>urn:article:1</guid>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
    </item>
    <item>
      <title>  Article 2 </title>
      <description>Description 2</description>
    </item>
    <item>
      <link>https://example.com/untitled</link>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <id>urn:feed</id>
  <entry>
    <title>Atom Article 1</title>
    <link rel="enclosure" href="https://example.com/atom1.mp3"/>
    <link rel="alternate" href="https://example.com/atom1"/>
    <id>urn:atom:1</id>
    <updated>2024-01-02T00:00:00Z</updated>
    <summary>Short summary</summary>
    <content type="html">&lt;p&gt;Atom body&lt;/p&gt;</content>
  </entry>
  <entry>
    <title>Atom Article 2</title>
    <link rel="related" href="https://example.com/related"/>
    <id>urn:atom:2</id>
    <updated>2024-01-03T00:00:00Z</updated>
  </entry>
</feed>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParse_RSS(t *testing.T) {
	items, err := scraper.Parse([]byte(rssDoc), entity.FormatRSS)
	require.NoError(t, err)
	require.Len(t, items, 3)

	want := fetch.FeedItem{
		Title:          "Article 1",
		Link:           "https://example.com/article1",
		EncodedContent: "<p>Full body 1</p>",
		Description:    "Description 1",
		GUID:           "urn:article:1",
		PublishedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, items[0], cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("item mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Article 2", items[1].Title)
	assert.Empty(t, items[1].Link)
	assert.Empty(t, items[1].EncodedContent)
	assert.True(t, items[1].PublishedAt.IsZero())

	assert.Empty(t, items[2].Title, "missing title maps to empty string")
}

func TestParse_Atom(t *testing.T) {
	items, err := scraper.Parse([]byte(atomDoc), entity.FormatAtom)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "https://example.com/atom1", items[0].Link, "alternate link preferred")
	assert.Contains(t, items[0].Content, "Atom body")
	assert.Equal(t, "Short summary", items[0].Summary)
	assert.Empty(t, items[0].EncodedContent)
	assert.Equal(t, "urn:atom:1", items[0].GUID)
	assert.True(t, items[0].PublishedAt.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, "https://example.com/related", items[1].Link, "first href when no alternate")
	assert.Empty(t, items[1].Content)
}

func TestParse_PrefersDetectedAtom(t *testing.T) {
	items, err := scraper.Parse([]byte(atomDoc), entity.FormatRSS)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Atom Article 1", items[0].Title)
}

func TestParse_DetectedRSSOverridesAtomConfig(t *testing.T) {
	items, err := scraper.Parse([]byte(rssDoc), entity.FormatAtom)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestParse_Invalid(t *testing.T) {
	_, err := scraper.Parse([]byte("this is not xml"), entity.FormatRSS)
	assert.True(t, errors.Is(err, fetch.ErrInvalidFeedFormat))
}

func TestRSSItem_RawContentPriority(t *testing.T) {
	items, err := scraper.Parse([]byte(rssDoc), entity.FormatRSS)
	require.NoError(t, err)

	assert.Equal(t, "<p>Full body 1</p>", items[0].RawContent())
	assert.Equal(t, "Description 2", items[1].RawContent())
	assert.Empty(t, items[2].RawContent())
}

func TestRSSFetcher_Fetch_Success(t *testing.T) {
	srv := serve(t, http.StatusOK, rssDoc)
	fetcher := scraper.NewRSSFetcher(scraper.DefaultFeedFetchConfig())

	items, err := fetcher.Fetch(context.Background(), srv.URL, entity.FormatRSS)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRSSFetcher_Fetch_HTTPError(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, "boom")
	fetcher := scraper.NewRSSFetcher(scraper.DefaultFeedFetchConfig())

	_, err := fetcher.Fetch(context.Background(), srv.URL, entity.FormatRSS)
	assert.True(t, errors.Is(err, fetch.ErrFeedFetchFailed))
}

func TestRSSFetcher_Fetch_DeadFeedsDoNotBlockHealthyOnes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good.xml" {
			_, _ = w.Write([]byte(rssDoc))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	fetcher := scraper.NewRSSFetcher(scraper.DefaultFeedFetchConfig())

	for i := 0; i < 15; i++ {
		_, err := fetcher.Fetch(context.Background(), fmt.Sprintf("%s/dead%d.xml", srv.URL, i), entity.FormatRSS)
		require.ErrorIs(t, err, fetch.ErrFeedFetchFailed)
		assert.ErrorIs(t, err, fetch.ErrUnexpectedStatus)
	}

	items, err := fetcher.Fetch(context.Background(), srv.URL+"/good.xml", entity.FormatRSS)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRSSFetcher_Fetch_UnreachableHostIsIsolated(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	healthy := serve(t, http.StatusOK, rssDoc)
	fetcher := scraper.NewRSSFetcher(scraper.DefaultFeedFetchConfig())

	var err error
	for i := 0; i < 15; i++ {
		_, err = fetcher.Fetch(context.Background(), downURL+"/feed.xml", entity.FormatRSS)
		require.ErrorIs(t, err, fetch.ErrFeedFetchFailed)
	}
	assert.Contains(t, err.Error(), "circuit breaker is open")

	items, err := fetcher.Fetch(context.Background(), healthy.URL, entity.FormatRSS)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestRSSFetcher_Fetch_BodyTooLarge(t *testing.T) {
	srv := serve(t, http.StatusOK, rssDoc)
	cfg := scraper.DefaultFeedFetchConfig()
	cfg.MaxBodySize = 64
	fetcher := scraper.NewRSSFetcher(cfg)

	_, err := fetcher.Fetch(context.Background(), srv.URL, entity.FormatRSS)
	assert.ErrorIs(t, err, fetch.ErrBodyTooLarge)
}

func TestRSSFetcher_Fetch_TooManyRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/again", http.StatusFound)
	}))
	defer srv.Close()

	cfg := scraper.DefaultFeedFetchConfig()
	cfg.MaxRedirects = 2
	fetcher := scraper.NewRSSFetcher(cfg)

	_, err := fetcher.Fetch(context.Background(), srv.URL, entity.FormatRSS)
	assert.True(t, errors.Is(err, fetch.ErrFeedFetchFailed))
}

func TestRSSFetcher_FetchAndParse_FoldsErrors(t *testing.T) {
	fetcher := scraper.NewRSSFetcher(scraper.DefaultFeedFetchConfig())

	bad := serve(t, http.StatusOK, "<html>not a feed</html>")
	items := fetcher.FetchAndParse(context.Background(), bad.URL, entity.FormatRSS)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items = fetcher.FetchAndParse(context.Background(), "http://127.0.0.1:1/unreachable", entity.FormatRSS)
	assert.Empty(t, items)
}

func TestRSSFetcher_Fetch_ContextCanceled(t *testing.T) {
	srv := serve(t, http.StatusOK, rssDoc)
	fetcher := scraper.NewRSSFetcher(scraper.DefaultFeedFetchConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fetcher.Fetch(ctx, srv.URL, entity.FormatRSS)
	assert.Error(t, err)
}

func TestFeedFetchConfig_Validate(t *testing.T) {
	assert.NoError(t, scraper.DefaultFeedFetchConfig().Validate())

	cfg := scraper.DefaultFeedFetchConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = scraper.DefaultFeedFetchConfig()
	cfg.MaxRedirects = -1
	assert.Error(t, cfg.Validate())

	t.Setenv("FEED_FETCH_TIMEOUT", "5s")
	loaded, err := scraper.LoadFeedFetchConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, loaded.Timeout)
}
