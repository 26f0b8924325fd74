package summarizer

import (
	"context"
	"errors"
	"net/http"

	"linkbrief/internal/apperror"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	AnthropicModel = anthropic.Model("claude-sonnet-4-20250514")

	anthropicVendor = "Claude"
)

// AnthropicSummarizer calls the Anthropic Messages API. It is the primary
// provider when both keys are configured.
type AnthropicSummarizer struct {
	client anthropic.Client
}

func NewAnthropicSummarizer(cfg Config) (*AnthropicSummarizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &AnthropicSummarizer{
		client: anthropic.NewClient(opts...),
	}, nil
}

// Summarize sends a single request; the summary is the first content block.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	var httpResp *http.Response

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     AnthropicModel,
		MaxTokens: maxOutputTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(text))),
		},
	}, option.WithResponseInto(&httpResp))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", statusError(anthropicVendor, apiErr.StatusCode, err)
		}

		return "", requestError(ctx, anthropicVendor, err)
	}

	if httpResp != nil && httpResp.StatusCode != http.StatusOK {
		return "", statusError(anthropicVendor, httpResp.StatusCode, nil)
	}

	if len(msg.Content) == 0 {
		return "", apperror.New(apperror.KindAPI, "Unexpected response: content is empty")
	}

	return msg.Content[0].Text, nil
}
