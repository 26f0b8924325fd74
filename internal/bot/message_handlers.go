package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"linkbrief/internal/apperror"

	"github.com/go-telegram/bot/models"
	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, safe for concurrent use.
var urlPattern = xurls.Strict()

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	text := strings.TrimSpace(message.Text)
	chatID := message.Chat.ID

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.handleStartCommand(ctx, chatID)
	default:
		return b.handleRandomText(ctx, text, message)
	}
}

func (b *Bot) handleRandomText(ctx context.Context, text string, message *models.Message) error {
	chatID := message.Chat.ID

	pageURL, ok := firstWebURL(text)
	if !ok {
		return b.sendText(ctx, chatID, message.ID, noURLText)
	}

	if allowed, wait := b.rateLimiter.Allow(chatID); !allowed {
		b.log.DebugContext(ctx, "Summarize request is throttled",
			"chatID", chatID,
			"wait", wait)

		return b.sendText(ctx, chatID, message.ID, slowDownText(wait))
	}

	var summary string

	err := b.withSpinner(ctx, chatID, func() error {
		var err error
		summary, err = b.summarizer.SummarizeURL(ctx, pageURL)

		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("summarize URL: %w", err)
		}

		b.log.WarnContext(ctx, "Failed to summarize URL",
			"error", err,
			"url", pageURL,
			"kind", apperror.KindOf(err).String(),
			"chatID", chatID)

		return b.sendText(ctx, chatID, message.ID, errorText(err))
	}

	return b.sendText(ctx, chatID, message.ID, escapeMarkdownV2(summary, maxMessageLength))
}

// firstWebURL returns the first http or https URL in text.
func firstWebURL(text string) (string, bool) {
	for _, match := range urlPattern.FindAllString(text, -1) {
		lower := strings.ToLower(match)
		if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
			return match, true
		}
	}

	return "", false
}

func errorText(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindInvalidURL:
		return "❌ Cannot open this link\\."
	case apperror.KindEmptyContent:
		return "📭 Nothing to summarize on this page\\."
	case apperror.KindRateLimit:
		return "⏳ Summarizer is busy, try again in a minute\\."
	case apperror.KindAuthentication, apperror.KindServer, apperror.KindAPI:
		return "⚠️ Summarizer is unavailable right now\\."
	default:
		return "❌ Failed\\."
	}
}

func slowDownText(wait time.Duration) string {
	seconds := max(int(wait.Round(time.Second)/time.Second), 1)

	return fmt.Sprintf("🐢 Slow down, try again in %d s\\.", seconds)
}
