package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"linkbrief/internal/apperror"
	"linkbrief/internal/cache"
	"linkbrief/internal/domain"
	"linkbrief/internal/scraper"
	"linkbrief/internal/service"
	"linkbrief/internal/summarizer"
)

const articleURL = "https://example.com/article"

type stubScraper struct {
	mu    sync.Mutex
	calls int
	page  domain.Page
	err   error
}

func (s *stubScraper) Scrape(_ context.Context, _ string) (domain.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	return s.page, s.err
}

func (s *stubScraper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

type stubSummarizer struct {
	mu      sync.Mutex
	calls   int
	inputs  []string
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.inputs = append(s.inputs, text)

	return s.summary, s.err
}

func (s *stubSummarizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

type failingCache struct {
	cache.Cache
}

func (failingCache) Exists(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func TestSummarizeURLCachesAndServesFromCache(t *testing.T) {
	ctx := context.Background()
	sc := &stubScraper{page: domain.Page{Title: "T", Body: "A. B."}}
	sum := &stubSummarizer{summary: "This is a summary"}
	c := cache.NewMemoryCache(8)
	svc := service.New(sc, sum, c, slog.Default())

	for i := range 2 {
		got, err := svc.SummarizeURL(ctx, articleURL)
		if err != nil {
			t.Fatalf("call %d: SummarizeURL() error = %v", i, err)
		}

		if got != "This is a summary" {
			t.Fatalf("call %d: unexpected summary %q", i, got)
		}
	}

	if sc.Calls() != 1 || sum.Calls() != 1 {
		t.Fatalf("expected one scrape and one summarize, got %d and %d", sc.Calls(), sum.Calls())
	}

	if sum.inputs[0] != "A. B." {
		t.Fatalf("expected page body as provider input, got %q", sum.inputs[0])
	}
}

func TestSummarizeURLWithoutCache(t *testing.T) {
	sc := &stubScraper{page: domain.Page{Body: "text"}}
	sum := &stubSummarizer{summary: "s"}
	svc := service.New(sc, sum, nil, slog.Default())

	for range 2 {
		if _, err := svc.SummarizeURL(context.Background(), articleURL); err != nil {
			t.Fatalf("SummarizeURL() error = %v", err)
		}
	}

	if sc.Calls() != 2 || sum.Calls() != 2 {
		t.Fatalf("expected every call to scrape and summarize, got %d and %d", sc.Calls(), sum.Calls())
	}
}

func TestSummarizeURLDoesNotCacheFailures(t *testing.T) {
	tests := []struct {
		name    string
		scraper *stubScraper
		sum     *stubSummarizer
		kind    apperror.Kind
	}{
		{
			name:    "scrape failure",
			scraper: &stubScraper{err: apperror.New(apperror.KindInvalidURL, "Invalid URL: ftp://x")},
			sum:     &stubSummarizer{summary: "unused"},
			kind:    apperror.KindInvalidURL,
		},
		{
			name:    "provider failure",
			scraper: &stubScraper{page: domain.Page{Body: "text"}},
			sum:     &stubSummarizer{err: apperror.New(apperror.KindRateLimit, "Too many requests")},
			kind:    apperror.KindRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := cache.NewMemoryCache(8)
			svc := service.New(tt.scraper, tt.sum, c, slog.Default())

			_, err := svc.SummarizeURL(ctx, articleURL)
			if got := apperror.KindOf(err); got != tt.kind {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}

			if c.Len() != 0 {
				t.Fatalf("expected nothing cached after failure")
			}
		})
	}
}

func TestSummarizeURLToleratesCacheFailures(t *testing.T) {
	sc := &stubScraper{page: domain.Page{Body: "text"}}
	sum := &stubSummarizer{summary: "s"}
	svc := service.New(sc, sum, failingCache{}, slog.Default())

	got, err := svc.SummarizeURL(context.Background(), articleURL)
	if err != nil {
		t.Fatalf("SummarizeURL() error = %v", err)
	}

	if got != "s" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestNewDefault(t *testing.T) {
	if _, err := service.NewDefault(service.Options{}, slog.Default()); err == nil {
		t.Fatalf("expected error without API keys or summarizer")
	}

	svc, err := service.NewDefault(service.Options{AnthropicAPIKey: "test_key_123"}, slog.Default())
	if err != nil || svc == nil {
		t.Fatalf("NewDefault() = (%v, %v)", svc, err)
	}

	sum := &stubSummarizer{summary: "s"}
	svc, err = service.NewDefault(service.Options{Summarizer: sum}, slog.Default())
	if err != nil || svc == nil {
		t.Fatalf("NewDefault() with override = (%v, %v)", svc, err)
	}
}

// siteTransport answers every request from handler, so pages can live at
// their real URLs.
type siteTransport struct {
	handler http.Handler
}

func (t siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)

	return rec.Result(), nil
}

type recordingScraper struct {
	inner *scraper.Scraper
	mu    sync.Mutex
	pages []domain.Page
}

func (s *recordingScraper) Scrape(ctx context.Context, rawURL string) (domain.Page, error) {
	page, err := s.inner.Scrape(ctx, rawURL)
	if err == nil {
		s.mu.Lock()
		s.pages = append(s.pages, page)
		s.mu.Unlock()
	}

	return page, err
}

type e2e struct {
	svc           *service.Service
	cache         *cache.MemoryCache
	scraper       *recordingScraper
	providerMu    sync.Mutex
	providerCalls int
}

func newE2E(t *testing.T, page string, providerStatus int, providerBody string) *e2e {
	t.Helper()

	env := &e2e{cache: cache.NewMemoryCache(8)}

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)

		env.providerMu.Lock()
		env.providerCalls++
		env.providerMu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(providerStatus)
		_, _ = io.WriteString(w, providerBody)
	}))
	t.Cleanup(provider.Close)

	site := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.String() != articleURL {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	})

	env.scraper = &recordingScraper{
		inner: scraper.New(&http.Client{Transport: siteTransport{handler: site}}, slog.Default()),
	}

	sum, err := summarizer.NewAnthropicSummarizer(summarizer.Config{
		APIKey:  "test_key_123",
		BaseURL: provider.URL + "/",
	})
	if err != nil {
		t.Fatalf("NewAnthropicSummarizer() error = %v", err)
	}

	env.svc = service.New(env.scraper, sum, env.cache, slog.Default())

	return env
}

func (e *e2e) ProviderCalls() int {
	e.providerMu.Lock()
	defer e.providerMu.Unlock()

	return e.providerCalls
}

const articlePage = `<html><body><article><h1>T</h1><p>A.</p><p>B.</p></article></body></html>`

func TestEndToEndSummarizesArticle(t *testing.T) {
	ctx := context.Background()
	env := newE2E(t, articlePage, http.StatusOK, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [{"type": "text", "text": "This is a summary"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 4}
	}`)

	got, err := env.svc.SummarizeURL(ctx, articleURL)
	if err != nil {
		t.Fatalf("SummarizeURL() error = %v", err)
	}

	if got != "This is a summary" {
		t.Fatalf("unexpected summary %q", got)
	}

	if len(env.scraper.pages) != 1 || env.scraper.pages[0].Title != "T" {
		t.Fatalf("expected title T, got %+v", env.scraper.pages)
	}

	cached, ok, err := env.cache.Get(ctx, articleURL)
	if err != nil || !ok || cached != "This is a summary" {
		t.Fatalf("cache Get() = (%q, %v, %v), want summary", cached, ok, err)
	}
}

func TestEndToEndAuthenticationFailure(t *testing.T) {
	ctx := context.Background()
	env := newE2E(t, articlePage, http.StatusUnauthorized,
		`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)

	_, err := env.svc.SummarizeURL(ctx, articleURL)
	if !errors.Is(err, apperror.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}

	if ok, _ := env.cache.Exists(ctx, articleURL); ok {
		t.Fatalf("expected nothing cached for %s", articleURL)
	}
}

func TestEndToEndNavigationOnlyPage(t *testing.T) {
	env := newE2E(t, `<html><body><nav>Navigation only</nav></body></html>`, http.StatusOK, `{}`)

	_, err := env.svc.SummarizeURL(context.Background(), articleURL)
	if !errors.Is(err, apperror.ErrEmptyContent) {
		t.Fatalf("expected empty content error, got %v", err)
	}

	if !strings.Contains(err.Error(), articleURL) {
		t.Fatalf("expected URL in error message, got %q", err.Error())
	}

	if env.ProviderCalls() != 0 {
		t.Fatalf("expected no provider call, got %d", env.ProviderCalls())
	}
}
