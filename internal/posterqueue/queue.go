// Package posterqueue runs poster fetches in the background: a bounded,
// deduplicating job queue and the single worker that drains it.
package posterqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/slipstream/posterd/internal/media"
	"github.com/slipstream/posterd/internal/metrics"
	"github.com/slipstream/posterd/internal/release"
)

// DefaultCapacity is the pending job ceiling.
const DefaultCapacity = 2000

var ErrQueueFull = errors.New("poster queue is full")

// FetchJob asks the worker to resolve a poster for one release. Jobs are
// never re-enqueued; the worker retries internally.
type FetchJob struct {
	ItemID       int64          `json:"itemId"`
	Title        string         `json:"title"`
	Year         int            `json:"year,omitempty"`
	Category     media.Category `json:"category"`
	ForceRefresh bool           `json:"forceRefresh,omitempty"`
	AttemptCount int            `json:"attemptCount,omitempty"`
	EntityID     int64          `json:"entityId,omitempty"`
	RetroLogFile string         `json:"retroLogFile,omitempty"`
}

// JobFor builds the job for a stored release.
func JobFor(rec *release.Record, force bool, retroLogFile string) FetchJob {
	title := rec.TitleClean
	if title == "" {
		title = rec.Title
	}
	return FetchJob{
		ItemID:       rec.ID,
		Title:        title,
		Year:         rec.Year,
		Category:     rec.Category,
		ForceRefresh: force,
		RetroLogFile: retroLogFile,
	}
}

// Queue is a multi-producer, single-consumer FIFO of fetch jobs keyed by
// release id. An id is pending from Enqueue until Dequeue hands it out.
type Queue struct {
	jobs     chan FetchJob
	pending  sync.Map // int64 -> struct{}
	count    atomic.Int64
	capacity int64
}

// NewQueue creates a queue holding at most capacity pending jobs.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		jobs:     make(chan FetchJob, capacity),
		capacity: int64(capacity),
	}
}

// Enqueue adds job unless its id is already pending. It reports false when
// the id is invalid or the queue is full; a duplicate is accepted without
// being added twice.
func (q *Queue) Enqueue(job FetchJob) bool {
	if job.ItemID <= 0 {
		return false
	}
	if _, loaded := q.pending.LoadOrStore(job.ItemID, struct{}{}); loaded {
		return true
	}

	if q.count.Add(1) > q.capacity {
		q.count.Add(-1)
		q.pending.Delete(job.ItemID)
		return false
	}

	select {
	case q.jobs <- job:
		metrics.SetQueueDepth(q.Count())
		return true
	default:
		q.count.Add(-1)
		q.pending.Delete(job.ItemID)
		return false
	}
}

// Dequeue blocks until a job is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (FetchJob, error) {
	select {
	case <-ctx.Done():
		return FetchJob{}, ctx.Err()
	case job := <-q.jobs:
		q.release(job.ItemID)
		return job, nil
	}
}

// ClearPending drops every queued job and returns how many were dropped.
// A job already handed to the worker is not affected.
func (q *Queue) ClearPending() int {
	n := 0
	for {
		select {
		case job := <-q.jobs:
			q.release(job.ItemID)
			n++
		default:
			return n
		}
	}
}

// Count returns the number of pending jobs.
func (q *Queue) Count() int {
	return int(q.count.Load())
}

// IsPending reports whether id is waiting in the queue.
func (q *Queue) IsPending(id int64) bool {
	_, ok := q.pending.Load(id)
	return ok
}

func (q *Queue) release(id int64) {
	q.pending.Delete(id)
	q.count.Add(-1)
	metrics.SetQueueDepth(q.Count())
}
