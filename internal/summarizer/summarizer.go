package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"linkbrief/internal/apperror"
)

const (
	maxOutputTokens int64 = 1024
	promptPrefix          = "Summarize this: "
)

// Summarizer turns text into a summary. Implementations fail only with
// *apperror.Error values, or with a context error when ctx is done.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Config carries the connection settings shared by both vendors.
type Config struct {
	APIKey string
	// BaseURL overrides the vendor endpoint, mostly for tests and proxies.
	BaseURL    string
	HTTPClient *http.Client
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("API key is empty")
	}

	return nil
}

// NewDefault builds the provider chain from whichever keys are present:
// Anthropic alone, OpenAI alone, or Anthropic falling back to OpenAI.
func NewDefault(anthropicCfg Config, openAICfg Config, log *slog.Logger) (Summarizer, error) {
	var primary, secondary Summarizer

	if anthropicCfg.APIKey != "" {
		s, err := NewAnthropicSummarizer(anthropicCfg)
		if err != nil {
			return nil, fmt.Errorf("create Anthropic summarizer: %w", err)
		}
		primary = s
	}

	if openAICfg.APIKey != "" {
		s, err := NewOpenAISummarizer(openAICfg)
		if err != nil {
			return nil, fmt.Errorf("create OpenAI summarizer: %w", err)
		}
		secondary = s
	}

	switch {
	case primary != nil && secondary != nil:
		return NewFallback(primary, secondary, log), nil
	case primary != nil:
		return primary, nil
	case secondary != nil:
		return secondary, nil
	default:
		return nil, errors.New("no API key is configured")
	}
}

func userPrompt(text string) string {
	return promptPrefix + text
}

// statusError maps a non-200 vendor status to the shared taxonomy.
func statusError(vendor string, status int, cause error) error {
	kind, _ := apperror.FromStatus(status)

	var message string
	switch kind {
	case apperror.KindAuthentication:
		message = "Invalid API key"
	case apperror.KindRateLimit:
		message = "Too many requests"
	case apperror.KindServer:
		message = fmt.Sprintf("%s API server error (%d)", vendor, status)
	default:
		message = fmt.Sprintf("Unexpected response: %d", status)
	}

	return apperror.Wrap(kind, cause, message)
}

// requestError handles failures that carry no HTTP status.
func requestError(ctx context.Context, vendor string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return apperror.Wrap(apperror.KindAPI, err, fmt.Sprintf("%s API request failed", vendor))
}
