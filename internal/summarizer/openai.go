package summarizer

import (
	"context"
	"errors"
	"net/http"

	"linkbrief/internal/apperror"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIModel = openai.ChatModelGPT4oMini

	openAIVendor = "Open AI"
)

// OpenAISummarizer calls OpenAI's Chat Completions API.
type OpenAISummarizer struct {
	client openai.Client
}

func NewOpenAISummarizer(cfg Config) (*OpenAISummarizer, error) {
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

	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
	}, nil
}

// Summarize sends a single request; the summary is the first choice.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	var httpResp *http.Response

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     OpenAIModel,
		MaxTokens: openai.Int(maxOutputTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(userPrompt(text)),
		},
	}, option.WithResponseInto(&httpResp))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", statusError(openAIVendor, apiErr.StatusCode, err)
		}

		return "", requestError(ctx, openAIVendor, err)
	}

	if httpResp != nil && httpResp.StatusCode != http.StatusOK {
		return "", statusError(openAIVendor, httpResp.StatusCode, nil)
	}

	if len(resp.Choices) == 0 {
		return "", apperror.New(apperror.KindAPI, "Unexpected response: choices are empty")
	}

	return resp.Choices[0].Message.Content, nil
}
