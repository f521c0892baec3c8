package queue

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tellus-gl/tellus-go/engine/tile"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func noopTask(ctx context.Context) error { return nil }

func TestEnqueueIdempotent(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()))
	k := tile.NewKey(6, 1, 1)

	if !q.Enqueue(Item{Key: k, Zoom: 6, Revision: 1, Run: noopTask}) {
		t.Fatal("first Enqueue returned false")
	}
	if q.Enqueue(Item{Key: k, Zoom: 6, Revision: 1, Run: noopTask}) {
		t.Error("duplicate Enqueue returned true")
	}
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}
}

func TestFilterZoomRevision(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()))
	q.Enqueue(Item{Key: tile.NewKey(6, 0, 0), Zoom: 6, Revision: 1, Run: noopTask})
	q.Enqueue(Item{Key: tile.NewKey(6, 1, 0), Zoom: 6, Revision: 2, Run: noopTask})
	q.Enqueue(Item{Key: tile.NewKey(7, 0, 0), Zoom: 7, Revision: 2, Run: noopTask})

	q.FilterZoomRevision(6, 2)
	if q.Len() != 1 {
		t.Fatalf("Len = %d after filter, want 1", q.Len())
	}

	// The dropped keys must be enqueueable again.
	if !q.Enqueue(Item{Key: tile.NewKey(6, 0, 0), Zoom: 6, Revision: 2, Run: noopTask}) {
		t.Error("dropped key rejected on re-enqueue")
	}
}

func TestFilterToEmpty(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()))
	for i := 0; i < 5; i++ {
		q.Enqueue(Item{Key: tile.NewKey(6, i, 0), Zoom: 6, Revision: 1, Run: noopTask})
	}
	q.FilterZoomRevision(6, 2)
	if q.Len() != 0 {
		t.Errorf("Len = %d after revision bump, want 0", q.Len())
	}
}

func TestPrune(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()))
	q.Enqueue(Item{Key: tile.NewKey(6, 0, 0), Zoom: 6, Revision: 1, Run: noopTask})
	q.Enqueue(Item{Key: tile.NewKey(7, 0, 0), Zoom: 7, Revision: 1, Run: noopTask})

	q.Prune(func(item Item) bool { return item.Zoom == 7 })
	if q.Len() != 1 {
		t.Errorf("Len = %d after prune, want 1", q.Len())
	}
}

func TestProcessDrainsAll(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()), WithMaxParallel(3))
	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		q.Enqueue(Item{
			Key:      tile.NewKey(6, i, 0),
			Zoom:     6,
			Revision: 1,
			Run: func(ctx context.Context) error {
				ran.Add(1)
				return nil
			},
		})
	}

	if err := q.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := ran.Load(); got != 10 {
		t.Errorf("ran %d tasks, want 10", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d after drain", q.Len())
	}
	if q.Busy() {
		t.Error("Busy after drain")
	}
}

func TestProcessBoundsConcurrency(t *testing.T) {
	const limit = 2
	q := NewTaskQueue(WithLogger(quietLogger()), WithMaxParallel(limit))
	var current, peak atomic.Int32
	for i := 0; i < 8; i++ {
		q.Enqueue(Item{
			Key:      tile.NewKey(6, i, 0),
			Zoom:     6,
			Revision: 1,
			Run: func(ctx context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			},
		})
	}

	if err := q.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if p := peak.Load(); p > limit {
		t.Errorf("peak concurrency %d exceeds limit %d", p, limit)
	}
}

func TestProcessLimitedBoundsConcurrency(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()), WithMaxParallel(6))
	var current, peak atomic.Int32
	var ran atomic.Int32
	for i := 0; i < 8; i++ {
		q.Enqueue(Item{
			Key:      tile.NewKey(12, i, 0),
			Zoom:     12,
			Revision: 1,
			Run: func(ctx context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				ran.Add(1)
				return nil
			},
		})
	}

	if err := q.ProcessLimited(context.Background(), 2); err != nil {
		t.Fatalf("ProcessLimited: %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency %d exceeds limit 2", p)
	}
	if ran.Load() != 8 {
		t.Errorf("ran %d tasks, want 8", ran.Load())
	}
}

func TestProcessLimitedClampsToQueueMax(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()), WithMaxParallel(2))
	var current, peak atomic.Int32
	for i := 0; i < 6; i++ {
		q.Enqueue(Item{
			Key:      tile.NewKey(4, i, 0),
			Zoom:     4,
			Revision: 1,
			Run: func(ctx context.Context) error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			},
		})
	}

	if err := q.ProcessLimited(context.Background(), 64); err != nil {
		t.Fatalf("ProcessLimited: %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency %d exceeds queue max 2", p)
	}
}

func TestProcessContinuesAfterFailure(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()), WithMaxParallel(1))
	var ran atomic.Int32
	q.Enqueue(Item{
		Key: tile.NewKey(6, 0, 0), Zoom: 6, Revision: 1,
		Run: func(ctx context.Context) error { return errors.New("boom") },
	})
	q.Enqueue(Item{
		Key: tile.NewKey(6, 1, 0), Zoom: 6, Revision: 1,
		Run: func(ctx context.Context) error { ran.Add(1); return nil },
	})

	if err := q.Process(context.Background()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if ran.Load() != 1 {
		t.Error("task after failure did not run")
	}
}

func TestProcessCancelled(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q.Enqueue(Item{Key: tile.NewKey(6, 0, 0), Zoom: 6, Revision: 1, Run: noopTask})

	if err := q.Process(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Process = %v, want context.Canceled", err)
	}
	if q.Len() != 1 {
		t.Errorf("cancelled drain consumed items, Len = %d", q.Len())
	}
}

func TestProcessSerialDrainsUnderBudget(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()))
	var ran int
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		q.Enqueue(Item{
			Key:      tile.NewKey(6, i, 0),
			Zoom:     6,
			Revision: 1,
			Run: func(ctx context.Context) error {
				mu.Lock()
				ran++
				mu.Unlock()
				return nil
			},
		})
	}

	if err := q.ProcessSerial(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("ProcessSerial: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if ran != 5 {
		t.Errorf("ran %d tasks, want 5", ran)
	}
}

func TestProcessSerialYieldsOverBudget(t *testing.T) {
	var yields atomic.Int32
	q := NewTaskQueue(
		WithLogger(quietLogger()),
		WithYield(func() { yields.Add(1) }),
	)
	for i := 0; i < 3; i++ {
		q.Enqueue(Item{
			Key:      tile.NewKey(6, i, 0),
			Zoom:     6,
			Revision: 1,
			Run: func(ctx context.Context) error {
				time.Sleep(2 * time.Millisecond)
				return nil
			},
		})
	}

	if err := q.ProcessSerial(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("ProcessSerial: %v", err)
	}
	if yields.Load() == 0 {
		t.Error("drain over budget never yielded")
	}
}

func TestReenqueueWhileExecuting(t *testing.T) {
	q := NewTaskQueue(WithLogger(quietLogger()), WithMaxParallel(2))
	k := tile.NewKey(6, 0, 0)
	var firstRunning, release sync.WaitGroup
	firstRunning.Add(1)
	release.Add(1)
	var runs atomic.Int32

	q.Enqueue(Item{
		Key: k, Zoom: 6, Revision: 1,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			firstRunning.Done()
			release.Wait()
			return nil
		},
	})

	done := make(chan error, 1)
	go func() { done <- q.Process(context.Background()) }()

	firstRunning.Wait()
	// The key is executing; re-enqueueing it must be accepted and must run
	// after the first instance finishes, never alongside it.
	if !q.Enqueue(Item{
		Key: k, Zoom: 6, Revision: 2,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}) {
		t.Error("re-enqueue of executing key rejected")
	}
	release.Done()

	if err := <-done; err != nil {
		t.Fatalf("Process: %v", err)
	}
	if runs.Load() != 2 {
		t.Errorf("runs = %d, want 2", runs.Load())
	}
}
