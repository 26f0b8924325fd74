package summarizer_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"linkbrief/internal/apperror"
	"linkbrief/internal/summarizer"
)

const text = "Long text to summarize"

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

	if s.err != nil {
		return "", s.err
	}

	return s.summary, nil
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &stubSummarizer{summary: "This is a summary"}
	secondary := &stubSummarizer{summary: "secondary summary"}

	got, err := summarizer.NewFallback(primary, secondary, slog.Default()).Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if got != "This is a summary" {
		t.Fatalf("unexpected summary: %q", got)
	}

	if secondary.callCount() != 0 {
		t.Fatalf("expected secondary not to be called")
	}
}

func TestFallbackFailsOverOnQualifyingErrors(t *testing.T) {
	for _, primaryErr := range []*apperror.Error{
		apperror.New(apperror.KindServer, "Claude API server error (500)"),
		apperror.New(apperror.KindAuthentication, "Invalid API key"),
		apperror.New(apperror.KindAPI, "Unexpected response: 404"),
	} {
		t.Run(primaryErr.Kind.String(), func(t *testing.T) {
			primary := &stubSummarizer{err: primaryErr}
			secondary := &stubSummarizer{summary: "This is a summary"}

			got, err := summarizer.NewFallback(primary, secondary, slog.Default()).Summarize(context.Background(), text)
			if err != nil {
				t.Fatalf("Summarize() error = %v", err)
			}

			if got != "This is a summary" {
				t.Fatalf("unexpected summary: %q", got)
			}

			if primary.callCount() != 1 || secondary.callCount() != 1 {
				t.Fatalf("expected one call each, got primary=%d secondary=%d",
					primary.callCount(), secondary.callCount())
			}

			if secondary.inputs[0] != text {
				t.Fatalf("expected secondary to receive the same text, got %q", secondary.inputs[0])
			}
		})
	}
}

// A rate-limited primary does not fail over. This mirrors the established
// behavior even though rate limits are arguably the best reason to switch
// vendors; change it deliberately, not by accident.
func TestFallbackDoesNotFailOverOnPrimaryRateLimit(t *testing.T) {
	primary := &stubSummarizer{err: apperror.New(apperror.KindRateLimit, "Too many requests")}
	secondary := &stubSummarizer{summary: "This is a summary"}

	_, err := summarizer.NewFallback(primary, secondary, slog.Default()).Summarize(context.Background(), text)
	if !errors.Is(err, apperror.ErrRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	if secondary.callCount() != 0 {
		t.Fatalf("expected secondary never to be called, got %d calls", secondary.callCount())
	}
}

func TestFallbackReturnsSecondaryErrorWhenBothFail(t *testing.T) {
	tests := []struct {
		name         string
		secondaryErr *apperror.Error
	}{
		{"server then server", apperror.New(apperror.KindServer, "Open AI API server error (502)")},
		{"server then rate limit", apperror.New(apperror.KindRateLimit, "Too many requests")},
		{"server then authentication", apperror.New(apperror.KindAuthentication, "Invalid API key")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			primary := &stubSummarizer{err: apperror.New(apperror.KindServer, "Claude API server error (500)")}
			secondary := &stubSummarizer{err: test.secondaryErr}

			_, err := summarizer.NewFallback(primary, secondary, slog.Default()).Summarize(context.Background(), text)

			var got *apperror.Error
			if !errors.As(err, &got) || got != test.secondaryErr {
				t.Fatalf("expected the secondary error %v unmodified, got %v", test.secondaryErr, err)
			}
		})
	}
}

func TestFallbackPropagatesContextErrors(t *testing.T) {
	primary := &stubSummarizer{err: context.Canceled}
	secondary := &stubSummarizer{summary: "This is a summary"}

	_, err := summarizer.NewFallback(primary, secondary, slog.Default()).Summarize(context.Background(), text)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if secondary.callCount() != 0 {
		t.Fatalf("expected secondary not to be called")
	}
}

func TestNewDefault(t *testing.T) {
	anthropicCfg := summarizer.Config{APIKey: "anthropic-key"}
	openAICfg := summarizer.Config{APIKey: "openai-key"}

	tests := []struct {
		name      string
		anthropic summarizer.Config
		openAI    summarizer.Config
		check     func(summarizer.Summarizer) bool
		wantErr   bool
	}{
		{
			"Both keys give a fallback chain",
			anthropicCfg, openAICfg,
			func(s summarizer.Summarizer) bool { _, ok := s.(*summarizer.Fallback); return ok },
			false,
		},
		{
			"Anthropic only",
			anthropicCfg, summarizer.Config{},
			func(s summarizer.Summarizer) bool { _, ok := s.(*summarizer.AnthropicSummarizer); return ok },
			false,
		},
		{
			"OpenAI only",
			summarizer.Config{}, openAICfg,
			func(s summarizer.Summarizer) bool { _, ok := s.(*summarizer.OpenAISummarizer); return ok },
			false,
		},
		{
			"No keys",
			summarizer.Config{}, summarizer.Config{},
			nil,
			true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := summarizer.NewDefault(test.anthropic, test.openAI, slog.Default())
			if (err != nil) != test.wantErr {
				t.Fatalf("NewDefault() error = %v, wantErr %v", err, test.wantErr)
			}

			if test.check != nil && !test.check(s) {
				t.Fatalf("unexpected summarizer type %T", s)
			}
		})
	}
}
