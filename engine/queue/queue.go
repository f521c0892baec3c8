// package queue implements the keyed task queue the tile pipelines feed
// their load work through. Entries are deduplicated by tile key and tagged
// with the zoom level and camera revision they were generated for, so stale
// work can be dropped wholesale before it runs.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/tile"
)

// Task is the unit of work queued for a tile.
type Task func(ctx context.Context) error

// Item is a queued task tagged with the identity it was generated under.
type Item struct {
	// Key is the tile key the task loads. At most one queued item exists
	// per key.
	Key tile.Key
	// Zoom is the zoom level the task was generated for.
	Zoom int
	// Revision is the camera revision the task was generated under.
	Revision int
	// Run performs the load.
	Run Task
}

// TaskQueue is an idempotent, key-deduplicated task queue. Process drains it
// in bounded parallel batches on a reusable worker pool; ProcessSerial
// drains it one task at a time under a time budget. Only one drain runs at a
// time; a second call returns immediately.
type TaskQueue interface {
	// Enqueue adds an item unless its key is already queued.
	//
	// Parameters:
	//   - item: the item to queue
	//
	// Returns:
	//   - bool: true if the item was added, false if the key was already queued
	Enqueue(item Item) bool

	// Len returns the number of queued items.
	Len() int

	// Busy reports whether a drain is in progress.
	Busy() bool

	// Clear drops every queued item. In-flight tasks are unaffected.
	Clear()

	// Prune drops every queued item the predicate matches.
	//
	// Parameters:
	//   - pred: returns true for items to drop
	Prune(pred func(item Item) bool)

	// FilterZoomRevision keeps only items matching the given zoom and
	// revision, dropping everything else.
	//
	// Parameters:
	//   - zoom: zoom level to keep
	//   - revision: revision to keep
	FilterZoomRevision(zoom, revision int)

	// Process drains the queue in parallel batches on the worker pool,
	// yielding between batches. Task errors are logged and do not stop the
	// drain. Returns early with the context's error when ctx is done.
	//
	// Parameters:
	//   - ctx: cancels the drain between batches and is passed to tasks
	//
	// Returns:
	//   - error: ctx.Err() if the drain was cancelled, nil otherwise
	Process(ctx context.Context) error

	// ProcessLimited drains like Process but caps each batch at the given
	// parallelism instead of the queue-wide maximum. Limits above the
	// queue-wide maximum are clamped down to it.
	//
	// Parameters:
	//   - ctx: cancels the drain between batches and is passed to tasks
	//   - maxParallel: batch size ceiling for this drain
	//
	// Returns:
	//   - error: ctx.Err() if the drain was cancelled, nil otherwise
	ProcessLimited(ctx context.Context, maxParallel int) error

	// ProcessSerial drains the queue one task at a time, yielding whenever
	// the elapsed time since the last yield exceeds the budget. Task errors
	// are logged and do not stop the drain.
	//
	// Parameters:
	//   - ctx: cancels the drain between tasks and is passed to tasks
	//   - budget: time slice between yields
	//
	// Returns:
	//   - error: ctx.Err() if the drain was cancelled, nil otherwise
	ProcessSerial(ctx context.Context, budget time.Duration) error
}

type taskQueue struct {
	mu          *sync.Mutex
	items       []Item
	queued      map[tile.Key]struct{}
	executing   map[tile.Key]struct{}
	busy        bool
	maxParallel int
	yield       func()
	pool        worker.DynamicWorkerPool
	log         *logrus.Logger
}

var _ TaskQueue = &taskQueue{}

// NewTaskQueue builds a task queue backed by a dynamic worker pool. The
// default parallelism is 6 tasks per batch.
//
// Parameters:
//   - options: optional configuration, see the With* builder functions
//
// Returns:
//   - TaskQueue: the assembled queue
func NewTaskQueue(options ...TaskQueueBuilderOption) TaskQueue {
	q := &taskQueue{
		mu:          &sync.Mutex{},
		queued:      make(map[tile.Key]struct{}),
		executing:   make(map[tile.Key]struct{}),
		maxParallel: 6,
	}
	for _, opt := range options {
		opt(q)
	}
	if q.log == nil {
		q.log = logrus.StandardLogger()
	}
	q.pool = worker.NewDynamicWorkerPool(q.maxParallel, 256, 1*time.Second)
	return q
}

func (q *taskQueue) Enqueue(item Item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queued[item.Key]; ok {
		return false
	}
	q.queued[item.Key] = struct{}{}
	q.items = append(q.items, item)
	return true
}

func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *taskQueue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

func (q *taskQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
	clear(q.queued)
}

func (q *taskQueue) Prune(pred func(item Item) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	for _, item := range q.items {
		if pred(item) {
			delete(q.queued, item.Key)
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
}

func (q *taskQueue) FilterZoomRevision(zoom, revision int) {
	q.Prune(func(item Item) bool {
		return item.Zoom != zoom || item.Revision != revision
	})
}

// acquire marks the queue busy. Returns false when a drain is already
// running.
func (q *taskQueue) acquire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.busy {
		return false
	}
	q.busy = true
	return true
}

func (q *taskQueue) release() {
	q.mu.Lock()
	q.busy = false
	q.mu.Unlock()
}

// nextBatch pops up to n items whose keys are not currently executing and
// marks them executing. Items with executing keys stay queued for a later
// batch.
func (q *taskQueue) nextBatch(n int) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := make([]Item, 0, n)
	kept := q.items[:0]
	for _, item := range q.items {
		if len(batch) < n {
			if _, running := q.executing[item.Key]; !running {
				delete(q.queued, item.Key)
				q.executing[item.Key] = struct{}{}
				batch = append(batch, item)
				continue
			}
		}
		kept = append(kept, item)
	}
	q.items = kept
	return batch
}

func (q *taskQueue) finish(key tile.Key) {
	q.mu.Lock()
	delete(q.executing, key)
	q.mu.Unlock()
}

func (q *taskQueue) Process(ctx context.Context) error {
	return q.ProcessLimited(ctx, q.maxParallel)
}

func (q *taskQueue) ProcessLimited(ctx context.Context, maxParallel int) error {
	if maxParallel < 1 || maxParallel > q.maxParallel {
		maxParallel = q.maxParallel
	}
	if !q.acquire() {
		return nil
	}
	defer q.release()

	var taskID int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := q.nextBatch(maxParallel)
		if len(batch) == 0 {
			if q.Len() == 0 {
				return nil
			}
			// Remaining items share keys with in-flight tasks from this
			// drain; nothing can run yet.
			q.doYield()
			continue
		}

		var wg sync.WaitGroup
		for _, item := range batch {
			wg.Add(1)
			it := item
			id := taskID
			taskID++
			q.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					defer q.finish(it.Key)
					if err := it.Run(ctx); err != nil {
						q.log.WithFields(logrus.Fields{
							"key":  it.Key,
							"zoom": it.Zoom,
						}).WithError(err).Warn("tile task failed")
					}
					return nil, nil
				},
			})
		}
		wg.Wait()
		q.doYield()
	}
}

func (q *taskQueue) ProcessSerial(ctx context.Context, budget time.Duration) error {
	if !q.acquire() {
		return nil
	}
	defer q.release()

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := q.nextBatch(1)
		if len(batch) == 0 {
			return nil
		}

		item := batch[0]
		if err := item.Run(ctx); err != nil {
			q.log.WithFields(logrus.Fields{
				"key":  item.Key,
				"zoom": item.Zoom,
			}).WithError(err).Warn("tile task failed")
		}
		q.finish(item.Key)

		if time.Since(start) > budget {
			q.doYield()
			start = time.Now()
		}
	}
}

func (q *taskQueue) doYield() {
	if q.yield != nil {
		q.yield()
	}
}
