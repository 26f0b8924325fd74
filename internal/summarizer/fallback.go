package summarizer

import (
	"context"
	"log/slog"

	"linkbrief/internal/apperror"
)

// Fallback asks secondary when primary fails with a server, authentication
// or unclassified API error. A rate-limited primary is reported as is.
// There is exactly one hop: no retries and no backoff.
type Fallback struct {
	primary   Summarizer
	secondary Summarizer
	log       *slog.Logger
}

func NewFallback(primary Summarizer, secondary Summarizer, log *slog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		log:       log,
	}
}

func (f *Fallback) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := f.primary.Summarize(ctx, text)
	if err == nil {
		return summary, nil
	}

	if !failsOver(err) {
		return "", err
	}

	f.log.WarnContext(ctx, "Primary summarizer failed so secondary will be used",
		"error", err,
		"kind", apperror.KindOf(err).String())

	return f.secondary.Summarize(ctx, text)
}

func failsOver(err error) bool {
	switch apperror.KindOf(err) {
	case apperror.KindServer, apperror.KindAuthentication, apperror.KindAPI:
		return true
	default:
		return false
	}
}
