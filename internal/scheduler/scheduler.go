package scheduler

import (
	"context"
	"log/slog"
	"time"

	"linkbrief/internal/cache"

	"github.com/robfig/cron/v3"
)

const (
	HourlyPurgeSpec       = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	purgeTimeout          = 5 * time.Minute
)

// Scheduler periodically drops expired summaries from backends that keep
// them around until asked.
type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	purger cache.Purger
	log    *slog.Logger
}

func New(ctx context.Context, purger cache.Purger, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:    ctx,
		cron:   c,
		purger: purger,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(HourlyPurgeSpec, s.purgeExpired); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop halts the cron and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) purgeExpired() {
	ctx, cancel := context.WithTimeout(s.ctx, purgeTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	start := time.Now()

	purged, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to purge expired summaries",
			"error", err)
		return
	}

	s.log.InfoContext(ctx, "Expired summaries are purged",
		"purged", purged,
		"duration", time.Since(start))
}
