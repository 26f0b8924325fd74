package bot

import (
	"context"
)

const welcomeText = `🤖 *Welcome to Linkbrief\!*

Send me a link and I will reply with a short summary of the page\.

– One link per message, the first one found is used
– Articles, blog posts and RSS / Atom / JSON feeds are supported
– Summaries are remembered for 24 hours
– /help shows this message again`

const noURLText = "🔗 Send me an http or https link to summarize\\."

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendText(ctx, chatID, 0, welcomeText)
}
