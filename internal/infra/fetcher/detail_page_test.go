package fetcher_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsift/internal/domain/entity"
	"feedsift/internal/infra/fetcher"
	"feedsift/internal/utils/text"
)

func testConfig() fetcher.DetailPageConfig {
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false // httptest listens on 127.0.0.1
	cfg.Timeout = 2 * time.Second
	return cfg
}

func servePage(t *testing.T, status int, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sentence(n int) string {
	return strings.Repeat("x", n)
}

func TestExtract_SelectorFallsThroughShortMatch(t *testing.T) {
	short := "Posted by the newsroom"
	long := "The central bank lowered its benchmark rate " + sentence(120)
	html := fmt.Sprintf(`<html><body>
		<div class="meta">%s</div>
		<article class="story">%s</article>
	</body></html>`, short, long)
	srv := servePage(t, http.StatusOK, html)

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:   true,
		Selectors: []string{".meta", "article.story"},
	})

	assert.Equal(t, long, got)
}

func TestExtract_ExactlyMinimumIsRejected(t *testing.T) {
	exact := sentence(100)
	longer := "y" + sentence(100)
	html := fmt.Sprintf(`<html><body><p id="a">%s</p><p id="b">%s</p></body></html>`, exact, longer)
	srv := servePage(t, http.StatusOK, html)

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:   true,
		Selectors: []string{"#a", "#b"},
	})

	assert.Equal(t, longer, got)
}

func TestExtract_NestedSameTagContainer(t *testing.T) {
	html := `<html><body>
		<div id="content">
			<div class="lead">` + sentence(60) + `</div>
			<div class="body"><div>` + strings.Repeat("y", 60) + `</div></div>
			<div class="tail">closing line</div>
		</div>
		<div id="sidebar">not part of the article</div>
	</body></html>`
	srv := servePage(t, http.StatusOK, html)

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:   true,
		Selectors: []string{"#content"},
	})

	assert.Equal(t, sentence(60)+"\n"+strings.Repeat("y", 60)+"\nclosing line", got)
	assert.NotContains(t, got, "sidebar")
}

func TestExtract_ExcludeSelectors(t *testing.T) {
	html := `<html><body><article>
		<p>` + sentence(150) + `</p>
		<div class="related">Read more: other story</div>
		<aside class="ad">Buy now</aside>
	</article></body></html>`
	srv := servePage(t, http.StatusOK, html)

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:   true,
		Selectors: []string{"article"},
		Exclude:   []string{".related", ".ad"},
	})

	assert.Equal(t, sentence(150), got)
}

func TestExtract_FallsBackToBody(t *testing.T) {
	html := `<html><head><title>Page title</title><script>var x = 1;</script></head>
	<body><nav class="menu">Menu</nav><p>Short body.</p></body></html>`
	srv := servePage(t, http.StatusOK, html)

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:   true,
		Selectors: []string{"#missing"},
		Exclude:   []string{".menu"},
	})

	assert.Equal(t, "Short body.", got)
}

func TestExtract_ReadabilityFallback(t *testing.T) {
	para := "Officials said the new policy would take effect next month, according to a statement released on Tuesday. "
	html := `<html><head><title>Story</title></head><body>
		<div class="nav"><a href="/">Home</a> <a href="/world">World</a></div>
		<div class="article-body"><p>` + strings.Repeat(para, 4) + `</p><p>` + strings.Repeat(para, 4) + `</p></div>
		<div class="footer">Contact us</div>
	</body></html>`
	srv := servePage(t, http.StatusOK, html)

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:     true,
		Readability: true,
	})

	assert.Contains(t, got, "Officials said the new policy")
	assert.NotContains(t, got, "Contact us")
}

func TestExtract_NonOKYieldsEmpty(t *testing.T) {
	srv := servePage(t, http.StatusNotFound, "<html><body>"+sentence(500)+"</body></html>")

	e := fetcher.NewDetailPageExtractor(testConfig())
	assert.Empty(t, e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{Enabled: true}))
}

func TestExtract_NetworkErrorYieldsEmpty(t *testing.T) {
	e := fetcher.NewDetailPageExtractor(testConfig())
	assert.Empty(t, e.Extract(context.Background(), "http://127.0.0.1:1/article", nil))
}

func TestExtract_TimeoutYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled: true,
		Timeout: 50 * time.Millisecond,
	})
	assert.Empty(t, got)
}

func TestExtract_FailingHostDoesNotBlockOthers(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	healthy := servePage(t, http.StatusOK, "<html><body><p>Healthy article body.</p></body></html>")

	e := fetcher.NewDetailPageExtractor(testConfig())
	cfg := &entity.DetailPageConfig{Enabled: true}
	for i := 0; i < 15; i++ {
		assert.Empty(t, e.Extract(context.Background(), fmt.Sprintf("%s/a%d", downURL, i), cfg))
	}

	assert.Equal(t, "Healthy article body.", e.Extract(context.Background(), healthy.URL+"/story", cfg))
}

func TestExtract_MissingPagesDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/story" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<html><body><p>Still reachable.</p></body></html>"))
	}))
	defer srv.Close()

	e := fetcher.NewDetailPageExtractor(testConfig())
	cfg := &entity.DetailPageConfig{Enabled: true}
	for i := 0; i < 15; i++ {
		assert.Empty(t, e.Extract(context.Background(), fmt.Sprintf("%s/gone%d", srv.URL, i), cfg))
	}

	assert.Equal(t, "Still reachable.", e.Extract(context.Background(), srv.URL+"/story", cfg))
}

func TestExtract_RefusesPrivateAddresses(t *testing.T) {
	srv := servePage(t, http.StatusOK, "<html><body>"+sentence(500)+"</body></html>")

	e := fetcher.NewDetailPageExtractor(fetcher.DefaultConfig())
	assert.Empty(t, e.Extract(context.Background(), srv.URL, nil))
}

func TestExtract_RejectsBadScheme(t *testing.T) {
	e := fetcher.NewDetailPageExtractor(testConfig())
	assert.Empty(t, e.Extract(context.Background(), "file:///etc/passwd", nil))
}

func TestExtract_BodyTooLarge(t *testing.T) {
	srv := servePage(t, http.StatusOK, "<html><body>"+sentence(4096)+"</body></html>")
	cfg := testConfig()
	cfg.MaxBodySize = 1024

	e := fetcher.NewDetailPageExtractor(cfg)
	assert.Empty(t, e.Extract(context.Background(), srv.URL, nil))
}

func TestExtract_InvalidSelectorIsSkipped(t *testing.T) {
	srv := servePage(t, http.StatusOK, "<html><body><main>"+sentence(150)+"</main></body></html>")

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:   true,
		Selectors: []string{"[[[", "main"},
	})
	assert.Equal(t, sentence(150), got)
}

func TestExtract_LengthMeasuredInCharacters(t *testing.T) {
	// 60 CJK characters are 180 bytes but stay below the 100 character gate.
	cjk := strings.Repeat("経", 60)
	srv := servePage(t, http.StatusOK, `<html><body><div id="a">`+cjk+`</div><div id="b">`+strings.Repeat("済", 101)+`</div></body></html>`)

	e := fetcher.NewDetailPageExtractor(testConfig())
	got := e.Extract(context.Background(), srv.URL, &entity.DetailPageConfig{
		Enabled:   true,
		Selectors: []string{"#a", "#b"},
	})
	assert.Equal(t, 101, text.CountRunes(got))
}

func TestDetailPageConfig_Validate(t *testing.T) {
	cfg := fetcher.DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Timeout = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxRedirects = 11
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxBodySize = 10
	assert.Error(t, bad.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DETAIL_PAGE_MIN_FRAGMENT", "250")
	t.Setenv("DETAIL_PAGE_DENY_PRIVATE_IPS", "false")

	cfg, err := fetcher.LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.MinFragmentLength)
	assert.False(t, cfg.DenyPrivateIPs)

	t.Setenv("DETAIL_PAGE_MAX_REDIRECTS", "99")
	cfg, err = fetcher.LoadConfigFromEnv()
	assert.Error(t, err)
	assert.Equal(t, fetcher.DefaultConfig(), cfg)
}
