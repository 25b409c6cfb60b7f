package startup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestWorkerGroup_WaitsForCancelledLoops(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	var finished atomic.Int32
	var workers workerGroup
	for i := 0; i < 3; i++ {
		workers.Go(func() {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			finished.Add(1)
		})
	}

	cancel()
	assert.NoError(t, workers.Wait(context.Background()))
	assert.Equal(t, int32(3), finished.Load())
}

func TestWorkerGroup_WaitGivesUpAtDeadline(t *testing.T) {
	release := make(chan struct{})
	var workers workerGroup
	workers.Go(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, workers.Wait(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, workers.Wait(context.Background()))
}
