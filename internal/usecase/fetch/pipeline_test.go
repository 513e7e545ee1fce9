package fetch_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsift/internal/config"
	"feedsift/internal/domain/entity"
	"feedsift/internal/infra/fetcher"
	"feedsift/internal/infra/llm"
	"feedsift/internal/infra/scraper"
	"feedsift/internal/usecase/ai"
	"feedsift/internal/usecase/fetch"
	"feedsift/internal/utils/text"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Wire</title>
  <item>
    <title>%s</title>
    <link>%s</link>
    <description>Teaser only.</description>
  </item>
</channel>
</rss>`

// newsSite serves a feed at /feed.xml whose single item links to /article.
func newsSite(t *testing.T, title, article string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = fmt.Fprintf(w, feedTemplate, title, srv.URL+"/article")
		case "/article":
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprintf(w, `<html><body><nav>Home | World</nav><article class="story"><p>%s</p></article></body></html>`, article)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(t *testing.T, srv *httptest.Server, classifierReply, summaryReply string) (*fetch.Service, *memSaver, *config.SourcesFile) {
	t.Helper()
	detailCfg := fetcher.DefaultConfig()
	detailCfg.DenyPrivateIPs = false

	sources := &config.SourcesFile{Sources: []entity.FeedSource{{
		Name:   "Wire",
		URL:    srv.URL + "/feed.xml",
		Format: entity.FormatRSS,
		Groups: []string{"morning"},
		DetailPage: &entity.DetailPageConfig{
			Enabled:   true,
			Selectors: []string{"article.story"},
		},
	}}}
	require.NoError(t, sources.Validate())

	cfg := config.DefaultPipelineConfig()
	saver := &memSaver{fail: map[string]bool{}}
	svc := fetch.NewService(
		sources,
		scraper.NewRSSFetcher(scraper.DefaultFeedFetchConfig()),
		fetch.NewContentResolver(fetcher.NewDetailPageExtractor(detailCfg), text.NewFooterScrubber(cfg.FooterWindow, cfg.FooterMargin)),
		ai.NewClassifier(llm.Static{Response: classifierReply}, ""),
		fetch.NewLengthGate(cfg.MinContentLength, cfg.MaxContentLength, ai.NewSummarizer(llm.Static{Response: summaryReply}, "", 300)),
		saver,
		nil,
		cfg,
	)
	return svc, saver, sources
}

func TestPipeline_CentralBankScenario(t *testing.T) {
	article := "The central bank cut its policy rate by a quarter point. " + strings.Repeat("Markets rallied on the news. ", 20)
	article = text.TruncateRunes(article, 600)
	require.Equal(t, 600, text.CountRunes(article))

	summary := "The central bank cut its policy rate by a quarter point and markets rallied."
	srv := newsSite(t, "Central bank cuts rates", article)
	svc, saver, _ := newPipeline(t, srv, "<think>monetary policy</think>1,finance", summary)

	sum := svc.RunGroup(context.Background(), "morning")

	assert.Equal(t, int64(1), sum.Seen)
	assert.Equal(t, int64(1), sum.Saved)
	require.Len(t, saver.records, 1)
	rec := saver.records[0]
	assert.Equal(t, "Wire", rec.SourceName)
	assert.Equal(t, entity.CategoryFinance, rec.Category)
	assert.Equal(t, "Central bank cuts rates", rec.Title)
	assert.True(t, rec.IsCondensed)
	assert.Equal(t, summary, rec.Body)
	assert.LessOrEqual(t, text.CountRunes(rec.Body), 300)
}

func TestPipeline_ClassifierOutageDiscardsEverything(t *testing.T) {
	srv := newsSite(t, "Central bank cuts rates", strings.Repeat("Body text. ", 30))
	svc, saver, _ := newPipeline(t, srv, "maybe", "unused")

	sum := svc.RunGroup(context.Background(), "morning")

	assert.Equal(t, int64(1), sum.Skipped)
	assert.Empty(t, saver.records)
}

func TestPipeline_SummarizerOutagePassesThrough(t *testing.T) {
	article := strings.Repeat("Long body sentence. ", 40)
	srv := newsSite(t, "Budget passes", article)
	svc, saver, _ := newPipeline(t, srv, "1,politics", "")

	svc.RunGroup(context.Background(), "morning")

	require.Len(t, saver.records, 1)
	assert.True(t, saver.records[0].IsCondensed)
	assert.Equal(t, strings.TrimSpace(article), saver.records[0].Body)
}

func TestPipeline_EmptyTitle(t *testing.T) {
	srv := newsSite(t, "", strings.Repeat("Body text. ", 30))
	svc, saver, _ := newPipeline(t, srv, "1,finance", "unused")

	sum := svc.RunGroup(context.Background(), "morning")

	assert.Zero(t, sum.Seen)
	assert.Zero(t, sum.Errored)
	assert.Empty(t, saver.records)
}

func TestPipeline_DeadFeed(t *testing.T) {
	srv := newsSite(t, "x", "y")
	svc, saver, sources := newPipeline(t, srv, "1,finance", "unused")
	sources.Sources[0].URL = srv.URL + "/missing.xml"

	sum := svc.RunGroup(context.Background(), "morning")

	assert.Equal(t, int64(1), sum.FeedsFailed)
	assert.Zero(t, sum.Seen)
	assert.Empty(t, saver.records)
}
