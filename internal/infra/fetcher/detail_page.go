package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/metrics"
	"feedsift/internal/resilience/circuitbreaker"
	"feedsift/internal/usecase/fetch"
	"feedsift/internal/utils/text"
)

// Extraction results reported to metrics.
const (
	resultSelector    = "selector"
	resultReadability = "readability"
	resultBody        = "body"
	resultDocument    = "document"
	resultEmpty       = "empty"
	resultError       = "error"
)

// DetailPageExtractor implements fetch.DetailExtractor.
//
// Configured selectors are tried in order and the first match whose cleaned
// text is longer than MinFragmentLength wins. Matching is done on a parsed
// DOM, so a container holding nested elements of its own tag is extracted
// whole. When no selector qualifies the extractor falls back to Mozilla
// Readability (if the source opts in), then to the document body, then to
// the whole document. Exclusion selectors are removed from whatever
// fragment is chosen.
//
// Extract never returns an error: transport failures, non-200 responses,
// refused URLs and parse failures all yield "".
//
// Thread safety: DetailPageExtractor is safe for concurrent use.
type DetailPageExtractor struct {
	client   *http.Client
	breakers *circuitbreaker.Set
	config   DetailPageConfig
	clean    text.CleanOptions
}

// NewDetailPageExtractor creates an extractor with the given configuration.
// Every redirect hop is re-validated against the SSRF policy.
func NewDetailPageExtractor(config DetailPageConfig) *DetailPageExtractor {
	e := &DetailPageExtractor{
		breakers: circuitbreaker.NewSet(circuitbreaker.DetailPageConfig()),
		config:   config,
		clean:    text.DefaultCleanOptions(),
	}

	e.client = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > e.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", fetch.ErrTooManyRedirects, len(via))
			}
			if err := checkTarget(req.Context(), req.URL.String(), e.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect: %w", err)
			}
			return nil
		},
	}

	return e
}

// page is a downloaded document.
type page struct {
	status   int
	body     []byte
	url      *url.URL
	oversize bool
}

// Extract returns the cleaned article text of pageURL, or "".
func (e *DetailPageExtractor) Extract(ctx context.Context, pageURL string, cfg *entity.DetailPageConfig) string {
	start := time.Now()
	if cfg == nil {
		cfg = &entity.DetailPageConfig{Enabled: true}
	}

	body, result, err := e.extract(ctx, pageURL, cfg)
	if err != nil {
		slog.Warn("detail page extraction failed",
			slog.String("url", pageURL),
			slog.Any("error", err))
		metrics.RecordDetailPage(resultError, time.Since(start))
		return ""
	}

	metrics.RecordDetailPage(result, time.Since(start))
	slog.Debug("detail page extracted",
		slog.String("url", pageURL),
		slog.String("result", result),
		slog.Int("length", text.CountRunes(body)))
	return body
}

func (e *DetailPageExtractor) extract(ctx context.Context, pageURL string, cfg *entity.DetailPageConfig) (string, string, error) {
	if err := checkTarget(ctx, pageURL, e.config.DenyPrivateIPs); err != nil {
		return "", "", err
	}

	timeout := e.config.Timeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cb := e.breakers.ForURL(pageURL)
	p, err := circuitbreaker.Call(cb, func() (*page, error) {
		return e.download(reqCtx, pageURL)
	})
	if err != nil {
		if circuitbreaker.IsRejected(err) {
			slog.Warn("detail page circuit breaker open, request rejected",
				slog.String("circuit", cb.Name()),
				slog.String("url", pageURL))
		}
		if reqCtx.Err() == context.DeadlineExceeded {
			return "", "", fmt.Errorf("%w: request exceeded %v", fetch.ErrTimeout, timeout)
		}
		return "", "", err
	}

	if p.status != http.StatusOK {
		return "", resultEmpty, nil
	}
	if p.oversize {
		return "", "", fmt.Errorf("%w: response size exceeds limit %d bytes", fetch.ErrBodyTooLarge, e.config.MaxBodySize)
	}

	body, how, err := e.selectContent(p, cfg)
	if err != nil {
		return "", "", err
	}
	if body == "" {
		how = resultEmpty
	}
	return body, how, nil
}

// download fetches the page. Any HTTP response, whatever its status or
// size, is a success as far as the host's circuit breaker is concerned.
func (e *DetailPageExtractor) download(ctx context.Context, pageURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", fetch.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	p := &page{status: resp.StatusCode, url: resp.Request.URL}
	if resp.StatusCode != http.StatusOK {
		return p, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > e.config.MaxBodySize {
		p.oversize = true
		return p, nil
	}
	p.body = data
	return p, nil
}

// selectContent applies the selector cascade to a downloaded page.
func (e *DetailPageExtractor) selectContent(p *page, cfg *entity.DetailPageConfig) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
	if err != nil {
		return "", "", fmt.Errorf("parse detail page: %w", err)
	}

	for _, selector := range cfg.Selectors {
		var accepted string
		doc.Find(selector).EachWithBreak(func(_ int, match *goquery.Selection) bool {
			fragment := e.fragmentText(match, cfg.Exclude)
			if text.CountRunes(fragment) > e.config.MinFragmentLength {
				accepted = fragment
				return false
			}
			return true
		})
		if accepted != "" {
			return accepted, resultSelector, nil
		}
	}

	if cfg.Readability {
		if article, err := readability.FromReader(bytes.NewReader(p.body), p.url); err == nil {
			if body := e.cleanText(article.TextContent); body != "" {
				return body, resultReadability, nil
			}
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		if fragment := e.fragmentText(body, cfg.Exclude); fragment != "" {
			return fragment, resultBody, nil
		}
	}

	return e.fragmentText(doc.Selection, cfg.Exclude), resultDocument, nil
}

// fragmentText removes excluded sub-fragments and renders the rest as text.
func (e *DetailPageExtractor) fragmentText(sel *goquery.Selection, exclude []string) string {
	for _, ex := range exclude {
		sel.Find(ex).Remove()
	}
	return text.SelectionText(sel, e.clean)
}

// cleanText normalises readability output the same way selector output is.
func (e *DetailPageExtractor) cleanText(s string) string {
	out, err := text.Clean(s, e.clean)
	if err != nil {
		return ""
	}
	return out
}
