package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"linkbrief/internal/ratelimiter"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const updateProcessingTimeout = 90 * time.Second

// Summarizer produces a summary for a page URL.
type Summarizer interface {
	SummarizeURL(ctx context.Context, rawURL string) (string, error)
}

// sender is the part of the Telegram API the handlers talk to.
type sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
}

type Bot struct {
	api          *tgbot.Bot
	sender       sender
	summarizer   Summarizer
	rateLimiter  *ratelimiter.RateLimiter
	allowedUsers []int64
	log          *slog.Logger
}

func New(
	token string,
	summarizer Summarizer,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(nil, summarizer, allowedUsers, log)

	api, err := tgbot.New(strings.TrimSpace(token), tgbot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	b.api = api
	b.sender = api

	return b, nil
}

func newBot(s sender, summarizer Summarizer, allowedUsers []int64, log *slog.Logger) *Bot {
	return &Bot{
		sender:       s,
		summarizer:   summarizer,
		rateLimiter:  ratelimiter.New(),
		allowedUsers: allowedUsers,
		log:          log,
	}
}

// Start long-polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Bot is polling for updates")

	b.api.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	message := update.Message
	userID := message.From.ID

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", message.Chat.ID,
			"username", message.From.Username,
			"chatType", message.Chat.Type)

		return
	}

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", message.Chat.ID,
			"userID", userID,
			"chatType", message.Chat.Type,
			"messageID", message.ID)
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}
