package posterqueue

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/config"
	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/metrics"
	"github.com/slipstream/posterd/internal/poster"
	"github.com/slipstream/posterd/internal/release"
)

const (
	reasonTimeout        = "timeout"
	reasonBudgetExceeded = "time budget exceeded"
	reasonUnknown        = "unknown"
)

// Fetcher resolves a poster for one release.
type Fetcher interface {
	FetchPoster(ctx context.Context, releaseID int64, opts poster.FetchOptions) (poster.FetchResult, error)
}

// ReleaseReader loads releases for the freshness check and failure rows.
type ReleaseReader interface {
	GetForPoster(ctx context.Context, id int64) (*release.Record, error)
}

// FileChecker reports whether a stored poster file is still on disk.
type FileChecker interface {
	Exists(name string) bool
}

// ActivityLogger records user-visible events.
type ActivityLogger interface {
	Add(ctx context.Context, sourceID int64, level activity.Level, eventType activity.EventType, message string, data any)
}

// Config is the retry and pacing policy of the worker.
type Config struct {
	MaxAttempts      int
	MinInterval      time.Duration
	AttemptTimeout   time.Duration
	JobBudget        time.Duration
	PosterTTL        time.Duration
	Backoff          []time.Duration
	JitterMin        time.Duration
	JitterMax        time.Duration
	FailureReasonMax int
}

// DefaultConfig returns the production policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:      3,
		MinInterval:      250 * time.Millisecond,
		AttemptTimeout:   60 * time.Second,
		JobBudget:        60 * time.Second,
		PosterTTL:        30 * 24 * time.Hour,
		Backoff:          []time.Duration{2 * time.Second, 5 * time.Second, 15 * time.Second},
		JitterMin:        200 * time.Millisecond,
		JitterMax:        800 * time.Millisecond,
		FailureReasonMax: 200,
	}
}

// NewConfig converts the configuration file section, keeping defaults for
// unset values.
func NewConfig(c config.WorkerConfig) Config {
	cfg := DefaultConfig()
	if c.MaxAttempts > 0 {
		cfg.MaxAttempts = c.MaxAttempts
	}
	if c.MinIntervalMs > 0 {
		cfg.MinInterval = time.Duration(c.MinIntervalMs) * time.Millisecond
	}
	if c.AttemptTimeout > 0 {
		cfg.AttemptTimeout = time.Duration(c.AttemptTimeout) * time.Second
	}
	if c.JobBudget > 0 {
		cfg.JobBudget = time.Duration(c.JobBudget) * time.Second
	}
	if c.PosterTTLDays > 0 {
		cfg.PosterTTL = time.Duration(c.PosterTTLDays) * 24 * time.Hour
	}
	if len(c.BackoffSeconds) > 0 {
		cfg.Backoff = make([]time.Duration, len(c.BackoffSeconds))
		for i, s := range c.BackoffSeconds {
			cfg.Backoff[i] = time.Duration(s) * time.Second
		}
	}
	if c.JitterMinMs >= 0 && c.JitterMaxMs >= c.JitterMinMs && c.JitterMaxMs > 0 {
		cfg.JitterMin = time.Duration(c.JitterMinMs) * time.Millisecond
		cfg.JitterMax = time.Duration(c.JitterMaxMs) * time.Millisecond
	}
	if c.FailureReasonMax > 0 {
		cfg.FailureReasonMax = c.FailureReasonMax
	}
	return cfg
}

// Outcome is how a job ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

type state int

const (
	stateAttempt state = iota
	stateRetry
	stateSuccess
	stateTerminalFailure
	stateCancelled
)

// attemptResult is what one attempt left behind.
type attemptResult struct {
	ok        bool
	cancelled bool
	status    int
	provider  string
	reason    string
}

// Worker drains the queue one job at a time.
type Worker struct {
	queue    *Queue
	fetcher  Fetcher
	releases ReleaseReader
	files    FileChecker
	activity ActivityLogger
	limiter  *rate.Limiter
	clock    clockwork.Clock
	cfg      Config
	logger   zerolog.Logger
}

// NewWorker creates a worker for queue.
func NewWorker(
	queue *Queue,
	fetcher Fetcher,
	releases ReleaseReader,
	files FileChecker,
	activityLog ActivityLogger,
	cfg Config,
	clock clockwork.Clock,
	logger *zerolog.Logger,
) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Worker{
		queue:    queue,
		fetcher:  fetcher,
		releases: releases,
		files:    files,
		activity: activityLog,
		limiter:  rate.NewLimiter(limit, 1),
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With().Str("component", "poster-worker").Logger(),
	}
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Msg("Poster worker started")
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.logger.Info().Msg("Poster worker stopped")
			return
		}
		w.Process(ctx, job)
	}
}

// Process runs one job to completion. ctx is the shutdown context: its
// cancellation ends the job as cancelled, never as a failure.
func (w *Worker) Process(ctx context.Context, job FetchJob) Outcome {
	start := w.clock.Now()
	log := w.logger.With().Int64("releaseId", job.ItemID).Str("title", job.Title).Logger()

	if !job.ForceRefresh && w.fresh(ctx, job) {
		log.Debug().Msg("Poster is recent, skipping")
		metrics.ObserveJob(string(OutcomeSkipped))
		w.activity.Add(ctx, job.ItemID, activity.LevelInfo, activity.EventTypePosterSkipped,
			fmt.Sprintf("Poster for %q is recent, skipped", job.Title), nil)
		return OutcomeSkipped
	}

	attempt := job.AttemptCount
	var last attemptResult
	st := stateAttempt

	for {
		switch st {
		case stateAttempt:
			attempt++
			if err := w.limiter.Wait(ctx); err != nil {
				st = stateCancelled
				continue
			}
			last = w.attempt(ctx, job, w.cfg.JobBudget-w.clock.Since(start))
			switch {
			case last.cancelled:
				st = stateCancelled
			case last.ok:
				st = stateSuccess
			case !Retryable(last.status) || attempt >= w.cfg.MaxAttempts:
				st = stateTerminalFailure
			default:
				st = stateRetry
			}

		case stateRetry:
			if w.clock.Since(start) >= w.cfg.JobBudget {
				last.reason = reasonBudgetExceeded
				st = stateTerminalFailure
				continue
			}
			delay := w.backoff(attempt)
			log.Debug().
				Int("attempt", attempt).
				Int("status", last.status).
				Str("reason", last.reason).
				Dur("delay", delay).
				Msg("Retrying poster fetch after delay")
			select {
			case <-ctx.Done():
				st = stateCancelled
			case <-w.clock.After(delay):
				st = stateAttempt
				if w.clock.Since(start) >= w.cfg.JobBudget {
					last.reason = reasonBudgetExceeded
					st = stateTerminalFailure
				}
			}

		case stateSuccess:
			log.Debug().Int("attempt", attempt).Msg("Poster job done")
			metrics.ObserveJob(string(OutcomeSuccess))
			return OutcomeSuccess

		case stateTerminalFailure:
			w.fail(ctx, job, attempt, last)
			return OutcomeFailed

		case stateCancelled:
			log.Debug().Int("attempt", attempt).Msg("Poster job cancelled by shutdown")
			metrics.ObserveJob(string(OutcomeCancelled))
			return OutcomeCancelled
		}
	}
}

// fresh reports whether the release already has a poster on disk from an
// attempt within the TTL.
func (w *Worker) fresh(ctx context.Context, job FetchJob) bool {
	rec, err := w.releases.GetForPoster(ctx, job.ItemID)
	if err != nil || rec == nil {
		return false
	}
	if rec.PosterFile == "" || rec.PosterAttemptAt.IsZero() {
		return false
	}
	if !w.files.Exists(rec.PosterFile) {
		return false
	}
	return w.clock.Since(rec.PosterAttemptAt) < w.cfg.PosterTTL
}

// attempt runs one fetch. Its timeout never exceeds the remaining job budget.
func (w *Worker) attempt(ctx context.Context, job FetchJob, remaining time.Duration) attemptResult {
	metrics.ObserveAttempt()

	attemptCtx, cancel := context.WithTimeout(ctx, min(w.cfg.AttemptTimeout, remaining))
	defer cancel()

	res, err := w.fetcher.FetchPoster(attemptCtx, job.ItemID, poster.FetchOptions{})
	switch {
	case ctx.Err() != nil:
		return attemptResult{cancelled: true}
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded)):
		return attemptResult{status: 0, reason: reasonTimeout}
	case err != nil:
		return attemptResult{status: 0, reason: poster.Truncate(err.Error(), w.cfg.FailureReasonMax)}
	case res.OK:
		return attemptResult{ok: true, status: res.StatusCode, provider: res.Body.Provider}
	default:
		return attemptResult{
			status:   res.StatusCode,
			provider: res.Body.Provider,
			reason:   poster.Truncate(res.Body.Error, w.cfg.FailureReasonMax),
		}
	}
}

// Retryable reports whether a failed attempt with status may succeed later.
// Status 0 is a transport failure.
func Retryable(status int) bool {
	switch {
	case status == 0:
		return true
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500 && status <= 599:
		return true
	default:
		return false
	}
}

// backoff returns the delay before the attempt after attempt.
func (w *Worker) backoff(attempt int) time.Duration {
	var d time.Duration
	if n := len(w.cfg.Backoff); n > 0 {
		i := min(max(attempt-1, 0), n-1)
		d = w.cfg.Backoff[i]
	}
	jitter := w.cfg.JitterMin
	if span := w.cfg.JitterMax - w.cfg.JitterMin; span > 0 {
		jitter += rand.N(span + 1)
	}
	return d + jitter
}

func (w *Worker) fail(ctx context.Context, job FetchJob, attempts int, last attemptResult) {
	metrics.ObserveJob(string(OutcomeFailed))

	rec, err := w.releases.GetForPoster(ctx, job.ItemID)
	if err != nil {
		w.logger.Warn().Err(err).Int64("releaseId", job.ItemID).Msg("Failed to load release for failure report")
	}

	reason := last.reason
	if reason == "" && rec != nil {
		reason = rec.PosterLastError
	}
	if reason == "" {
		reason = reasonUnknown
	}

	w.logger.Warn().
		Int64("releaseId", job.ItemID).
		Int64("entityId", job.EntityID).
		Str("title", job.Title).
		Int("attempts", attempts).
		Int("status", last.status).
		Str("provider", last.provider).
		Str("reason", reason).
		Msg("Poster job failed")

	w.activity.Add(ctx, job.ItemID, activity.LevelError, activity.EventTypeJobFailed,
		fmt.Sprintf("Poster job for %q failed: %s", job.Title, reason),
		map[string]any{"attempts": attempts, "status": last.status, "provider": last.provider, "reason": reason})

	if job.RetroLogFile == "" {
		return
	}
	row := FailureRow{
		Category:  string(job.Category),
		MediaType: string(media.MediaTypeFor(job.Category, 0)),
		Provider:  last.provider,
		Query:     job.Title,
		Reason:    reason,
	}
	if rec != nil {
		row.MediaType = string(rec.MediaType)
	}
	if err := AppendFailure(job.RetroLogFile, row); err != nil {
		w.logger.Warn().Err(err).Str("file", job.RetroLogFile).Msg("Failed to append retro log")
	}
}
