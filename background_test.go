package osrv

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBackgroundTasksDrainsCleanlyBeforeTimeout(t *testing.T) {
	bg := newBackgroundTasks(zap.NewNop())
	var ran atomic.Bool

	bg.add(context.Background(), func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	drained := bg.waitWithTimeout(time.Second)
	assert.True(t, drained)
	assert.True(t, ran.Load())
	assert.Equal(t, 0, bg.outstanding())
}

func TestBackgroundTasksTimesOutOnSlowTask(t *testing.T) {
	bg := newBackgroundTasks(zap.NewNop())
	release := make(chan struct{})

	bg.add(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	drained := bg.waitWithTimeout(20 * time.Millisecond)
	assert.False(t, drained)

	close(release)
}

func TestBackgroundTasksOneFailureDoesNotCancelSiblings(t *testing.T) {
	bg := newBackgroundTasks(zap.NewNop())
	var siblingRan atomic.Bool

	bg.add(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})
	bg.add(context.Background(), func(ctx context.Context) error {
		siblingRan.Store(true)
		return nil
	})

	drained := bg.waitWithTimeout(time.Second)
	assert.True(t, drained)
	assert.True(t, siblingRan.Load())
}

func TestLifecycleStateStringCoversEveryState(t *testing.T) {
	cases := map[State]string{
		StateConstructed: "constructed",
		StateRegistering: "registering",
		StateStarting:    "starting",
		StateServing:     "serving",
		StateDraining:    "draining",
		StateClosed:      "closed",
		StateFailed:      "failed",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}
