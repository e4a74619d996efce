package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrWorkerStopped reports a worker that exited while the pool was still meant to run.
var ErrWorkerStopped = errors.New("worker stopped unexpectedly")

// RunFunc runs one worker until ctx is cancelled.
type RunFunc func(ctx context.Context, id int) error

// RunPool starts count workers and blocks until parent is cancelled or any worker exits.
// An early exit cancels the remaining workers and is returned as ErrWorkerStopped.
func RunPool(parent context.Context, count int, run RunFunc) error {
	if count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", count)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	stopped := make(chan error, count)
	var wg sync.WaitGroup
	for i := 1; i <= count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := run(ctx, id)
			if parent.Err() != nil {
				return
			}
			if err != nil {
				stopped <- fmt.Errorf("worker %d: %w: %w", id, ErrWorkerStopped, err)
				return
			}
			stopped <- fmt.Errorf("worker %d: %w", id, ErrWorkerStopped)
		}(i)
	}

	var err error
	select {
	case <-parent.Done():
	case err = <-stopped:
		cancel()
	}
	wg.Wait()
	return err
}
