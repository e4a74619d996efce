package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context, id int) error {
	<-ctx.Done()
	return nil
}

func TestRunPool_ReturnsNilOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var started atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- RunPool(ctx, 3, func(ctx context.Context, id int) error {
			started.Add(1)
			return blockUntilDone(ctx, id)
		})
	}()

	require.Eventually(t, func() bool { return started.Load() == 3 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after cancellation")
	}
}

func TestRunPool_WorkerExitStopsPool(t *testing.T) {
	tests := []struct {
		name    string
		exitErr error
	}{
		{name: "Delivery channel closed", exitErr: nil},
		{name: "Consume failed", exitErr: errors.New("channel/connection is not open")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cancelled atomic.Int32

			err := RunPool(context.Background(), 3, func(ctx context.Context, id int) error {
				if id == 2 {
					return tt.exitErr
				}
				<-ctx.Done()
				cancelled.Add(1)
				return nil
			})

			assert.ErrorIs(t, err, ErrWorkerStopped)
			assert.Contains(t, err.Error(), "worker 2")
			if tt.exitErr != nil {
				assert.ErrorIs(t, err, tt.exitErr)
			}
			assert.Equal(t, int32(2), cancelled.Load())
		})
	}
}

func TestRunPool_RejectsEmptyPool(t *testing.T) {
	err := RunPool(context.Background(), 0, blockUntilDone)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrWorkerStopped)
}
