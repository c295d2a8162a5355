package osrv

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// backgroundTasks is the waitUntil registry spec.md §3/§4.1 describes: a
// set of in-flight fire-and-forget tasks that close(force=false) awaits up
// to a single overall timeout.
//
// Grounded on golang.org/x/sync/errgroup per SPEC_FULL.md §A (z5labs-bedrock
// uses errgroup.Group to race a runtime goroutine against cancellation) and
// on shockwave/pkg/shockwave/server/server.go's Shutdown, whose
// wg.Wait()-in-a-goroutine-raced-against-ctx.Done() shape is reproduced
// here as waitWithTimeout.
type backgroundTasks struct {
	mu     sync.Mutex
	group  *errgroup.Group
	count  int
	logger *zap.Logger
}

func newBackgroundTasks(logger *zap.Logger) *backgroundTasks {
	return &backgroundTasks{group: &errgroup.Group{}, logger: logger}
}

// add registers task and starts it immediately in its own goroutine
// (spec.md: "registered during dispatch; deregistered on completion").
func (b *backgroundTasks) add(ctx context.Context, task func(context.Context) error) {
	b.mu.Lock()
	b.count++
	b.mu.Unlock()

	b.group.Go(func() error {
		defer func() {
			b.mu.Lock()
			b.count--
			b.mu.Unlock()
		}()
		if err := task(ctx); err != nil {
			b.logger.Warn("background task failed", zap.Error(err))
		}
		// Always return nil: waitUntil tasks are fire-and-forget, so one
		// task's error must never cancel siblings or short-circuit Wait.
		return nil
	})
}

// outstanding returns the number of tasks currently registered.
func (b *backgroundTasks) outstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// waitWithTimeout blocks until every registered task completes or timeout
// elapses, whichever comes first. It returns true if the set drained
// cleanly.
func (b *backgroundTasks) waitWithTimeout(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		_ = b.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
