package startup

import (
	"context"
	"sync"
)

// workerGroup tracks the background loops so shutdown can wait for them
// before the cache and remote store are closed.
type workerGroup struct {
	wg sync.WaitGroup
}

func (w *workerGroup) Go(fn func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		fn()
	}()
}

// Wait blocks until every worker has returned or ctx is done.
func (w *workerGroup) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
