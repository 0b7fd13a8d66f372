package tasks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/config"
	"github.com/slipstream/posterd/internal/posterqueue"
	"github.com/slipstream/posterd/internal/release"
	"github.com/slipstream/posterd/internal/scheduler"
)

const RetroFetchTaskID = "retro-fetch"

// MissingPosterLister finds releases that still need a poster.
type MissingPosterLister interface {
	ListMissingPosters(ctx context.Context, attemptedBefore time.Time, limit int) ([]*release.Record, error)
}

// Enqueuer accepts background poster jobs.
type Enqueuer interface {
	Enqueue(job posterqueue.FetchJob) bool
}

// RetroFetch queues every release missing a poster, logging failures of
// the run to a fresh retro CSV file.
type RetroFetch struct {
	releases MissingPosterLister
	queue    Enqueuer
	activity posterqueue.ActivityLogger
	cfg      config.RetroConfig
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// NewRetroFetch creates the retro-fetch task.
func NewRetroFetch(releases MissingPosterLister, queue Enqueuer, activityLog posterqueue.ActivityLogger, cfg config.RetroConfig, clock clockwork.Clock, logger *zerolog.Logger) *RetroFetch {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RetroFetch{
		releases: releases,
		queue:    queue,
		activity: activityLog,
		cfg:      cfg,
		clock:    clock,
		logger:   logger.With().Str("component", "retro-fetch").Logger(),
	}
}

// Run enqueues one batch of releases without a poster.
func (r *RetroFetch) Run(ctx context.Context) error {
	now := r.clock.Now()
	records, err := r.releases.ListMissingPosters(ctx, now, r.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		r.logger.Debug().Msg("No releases missing posters")
		return nil
	}

	path, err := posterqueue.NewRetroLogFile(r.cfg.Dir, now)
	if err != nil {
		return err
	}

	queued, rejected := 0, 0
	for _, rec := range records {
		if r.queue.Enqueue(posterqueue.JobFor(rec, false, path)) {
			queued++
		} else {
			rejected++
		}
	}
	if queued == 0 {
		_ = os.Remove(path)
	}

	r.logger.Info().
		Int("queued", queued).
		Int("rejected", rejected).
		Str("retroLog", path).
		Msg("Retro fetch queued releases")
	r.activity.Add(ctx, 0, activity.LevelInfo, activity.EventTypeRetroStarted,
		fmt.Sprintf("Retro fetch queued %d releases", queued),
		map[string]any{"queued": queued, "rejected": rejected, "retroLog": path})
	return nil
}

// RegisterRetroFetchTask registers the retro-fetch task when enabled.
func RegisterRetroFetchTask(sched *scheduler.Scheduler, task *RetroFetch) error {
	if !task.cfg.Enabled {
		return nil
	}
	return sched.RegisterTask(&scheduler.TaskConfig{
		ID:          RetroFetchTaskID,
		Name:        "Retro Fetch",
		Description: "Queues releases that are still missing a poster",
		Cron:        task.cfg.Cron,
		Func:        task.Run,
	})
}
