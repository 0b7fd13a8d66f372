package posterqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/posterd/internal/media"
)

func TestQueue_EnqueueDedupByItemID(t *testing.T) {
	q := NewQueue(10)

	assert.True(t, q.Enqueue(FetchJob{ItemID: 1, Title: "Heat"}))
	assert.True(t, q.Enqueue(FetchJob{ItemID: 1, Title: "Heat again"}))
	assert.True(t, q.Enqueue(FetchJob{ItemID: 2, Title: "Ronin"}))
	assert.Equal(t, 2, q.Count())
	assert.True(t, q.IsPending(1))

	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Heat", job.Title)
	assert.False(t, q.IsPending(1))
	assert.Equal(t, 1, q.Count())

	// Once handed out the id can be queued again.
	assert.True(t, q.Enqueue(FetchJob{ItemID: 1}))
	assert.Equal(t, 2, q.Count())
}

func TestQueue_RejectsInvalidIDs(t *testing.T) {
	q := NewQueue(10)
	assert.False(t, q.Enqueue(FetchJob{ItemID: 0}))
	assert.False(t, q.Enqueue(FetchJob{ItemID: -4}))
	assert.Zero(t, q.Count())
}

func TestQueue_Capacity(t *testing.T) {
	q := NewQueue(3)
	for id := int64(1); id <= 3; id++ {
		require.True(t, q.Enqueue(FetchJob{ItemID: id}))
	}

	assert.False(t, q.Enqueue(FetchJob{ItemID: 4}))
	assert.False(t, q.IsPending(4))
	assert.True(t, q.Enqueue(FetchJob{ItemID: 2}), "duplicates are still accepted when full")
	assert.Equal(t, 3, q.Count())

	_, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.True(t, q.Enqueue(FetchJob{ItemID: 4}))
}

func TestQueue_DefaultCapacity(t *testing.T) {
	q := NewQueue(0)
	for id := int64(1); id <= DefaultCapacity; id++ {
		require.True(t, q.Enqueue(FetchJob{ItemID: id}))
	}
	assert.False(t, q.Enqueue(FetchJob{ItemID: DefaultCapacity + 1}))
}

func TestQueue_DequeueHonorsContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_ClearPending(t *testing.T) {
	q := NewQueue(10)
	for id := int64(1); id <= 4; id++ {
		q.Enqueue(FetchJob{ItemID: id})
	}

	assert.Equal(t, 4, q.ClearPending())
	assert.Zero(t, q.Count())
	assert.False(t, q.IsPending(3))
	assert.Zero(t, q.ClearPending())
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue(100)

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := int64(1); id <= 50; id++ {
				q.Enqueue(FetchJob{ItemID: id, Category: media.CategoryFilm})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, q.Count())
	assert.Equal(t, 50, len(q.jobs))
}
