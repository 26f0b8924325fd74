package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"linkbrief/internal/apperror"
	"linkbrief/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	acceptHeader = "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml;q=0.9,*/*;q=0.8"

	DefaultFetchTimeout = 20 * time.Second
	maxBodyBytes        = 5 << 20
)

// Scraper fetches a URL and extracts its readable content.
type Scraper struct {
	client *http.Client
	log    *slog.Logger
}

// New builds a scraper. A nil client gets a default one with
// DefaultFetchTimeout.
func New(client *http.Client, log *slog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	return &Scraper{client: client, log: log}
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidURL, err, fmt.Sprintf("Malformed URL: %s", rawURL))
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperror.Newf(apperror.KindInvalidURL, "Invalid URL: %s", rawURL)
	}

	return u, nil
}

// Scrape fetches rawURL and extracts the page. Feed documents are read as
// feeds, everything else as HTML.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (domain.Page, error) {
	body, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return domain.Page{}, err
	}

	page, err := s.extract(ctx, rawURL, body)
	if err != nil {
		return domain.Page{}, err
	}

	s.log.DebugContext(ctx, "Page is scraped",
		"url", rawURL,
		"title", page.Title,
		"bodyChars", len(page.Body),
		"imageCount", len(page.ImageDescriptions))

	return page, nil
}

// Fetch performs the GET. Every failure, including non-2xx statuses, is
// reported as apperror.KindInvalidURL, except a done ctx whose error is
// returned as is.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidURL, err, fmt.Sprintf("Malformed URL: %s", rawURL))
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := s.client.Do(req) //nolint:gosec // URL is validated above
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, apperror.Wrap(apperror.KindInvalidURL, err, "Cannot reach URL")
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "Fetch")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperror.Newf(apperror.KindInvalidURL, "Failed to fetch URL: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidURL, err, "Cannot read URL")
	}

	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]

		s.log.WarnContext(ctx, "Response body is truncated",
			"url", rawURL,
			"limitBytes", maxBodyBytes)
	}

	return body, nil
}

func (s *Scraper) extract(ctx context.Context, rawURL string, body []byte) (domain.Page, error) {
	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		// gofeed parsers keep per-parse state, so one per call.
		feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
		if err == nil {
			return ExtractFeed(rawURL, feed)
		}

		s.log.WarnContext(ctx, "Failed to parse detected feed, reading it as HTML",
			"error", err,
			"url", rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.Page{}, apperror.Wrap(apperror.KindEmptyContent, err,
			fmt.Sprintf("No content found at %s", rawURL))
	}

	return extractDocument(rawURL, doc)
}
