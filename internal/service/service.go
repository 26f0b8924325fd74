// Package service turns a URL into a cached summary: scrape the page, ask the
// provider chain for a summary, remember it for a day.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"linkbrief/internal/cache"
	"linkbrief/internal/domain"
	"linkbrief/internal/scraper"
	"linkbrief/internal/summarizer"
)

const SummaryTTL = 24 * time.Hour

// Scraper fetches a URL and extracts the page behind it.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (domain.Page, error)
}

type Service struct {
	scraper    Scraper
	summarizer summarizer.Summarizer
	cache      cache.Cache
	log        *slog.Logger
}

// New wires a service. c may be nil, in which case nothing is cached.
func New(s Scraper, sum summarizer.Summarizer, c cache.Cache, log *slog.Logger) *Service {
	return &Service{
		scraper:    s,
		summarizer: sum,
		cache:      c,
		log:        log,
	}
}

// Options tunes NewDefault. Summarizer, when set, replaces the provider
// chain built from the API keys.
type Options struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	Summarizer      summarizer.Summarizer
	Cache           cache.Cache
}

// NewDefault builds a service with the stock scraper and a provider chain
// derived from the keys in opts.
func NewDefault(opts Options, log *slog.Logger) (*Service, error) {
	sum := opts.Summarizer
	if sum == nil {
		var err error

		sum, err = summarizer.NewDefault(
			summarizer.Config{APIKey: opts.AnthropicAPIKey},
			summarizer.Config{APIKey: opts.OpenAIAPIKey},
			log,
		)
		if err != nil {
			return nil, fmt.Errorf("create summarizer: %w", err)
		}
	}

	return New(scraper.New(nil, log), sum, opts.Cache, log), nil
}

// Cache returns the configured cache, or nil.
func (s *Service) Cache() cache.Cache {
	return s.cache
}

// SummarizeURL returns the summary for rawURL, from the cache when present.
// Errors from scraping and summarizing are returned as is and leave the cache
// untouched.
func (s *Service) SummarizeURL(ctx context.Context, rawURL string) (string, error) {
	if summary, ok := s.cached(ctx, rawURL); ok {
		s.log.DebugContext(ctx, "Summary is served from cache",
			"url", rawURL)

		return summary, nil
	}

	page, err := s.scraper.Scrape(ctx, rawURL)
	if err != nil {
		return "", err
	}

	summary, err := s.summarizer.Summarize(ctx, page.Body)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err = s.cache.Set(ctx, rawURL, summary, SummaryTTL); err != nil {
			s.log.ErrorContext(ctx, "Failed to cache summary",
				"error", err,
				"url", rawURL)
		} else {
			s.log.DebugContext(ctx, "Summary is cached",
				"url", rawURL)
		}
	}

	s.log.InfoContext(ctx, "URL is summarized",
		"url", rawURL,
		"title", page.Title)

	return summary, nil
}

func (s *Service) cached(ctx context.Context, rawURL string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	exists, err := s.cache.Exists(ctx, rawURL)
	if err == nil && exists {
		var summary string

		summary, exists, err = s.cache.Get(ctx, rawURL)
		if err == nil && exists {
			return summary, true
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.WarnContext(ctx, "Failed to read summary cache",
			"error", err,
			"url", rawURL)
	}

	return "", false
}
