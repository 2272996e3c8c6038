package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func startWorker(t *testing.T, concurrency, queue int) Worker {
	t.Helper()
	w := NewWorker(concurrency, queue, zaptest.NewLogger(t))
	w.Start(context.Background())
	t.Cleanup(w.Stop)
	return w
}

func TestRunBatchKeepsOrderAndIsolatesFailures(t *testing.T) {
	w := startWorker(t, 3, 10)

	values, errs := RunBatch(context.Background(), w, 5, func(ctx context.Context, i int) (string, error) {
		// finish out of order
		time.Sleep(time.Duration(5-i) * time.Millisecond)
		if i == 2 {
			return "", errors.New("boom")
		}
		return fmt.Sprintf("item-%d", i), nil
	})

	assert.Equal(t, []string{"item-0", "item-1", "", "item-3", "item-4"}, values)
	for i, err := range errs {
		if i == 2 {
			assert.EqualError(t, err, "boom")
			continue
		}
		assert.NoError(t, err)
	}
}

func TestRunBatchBoundsConcurrency(t *testing.T) {
	w := startWorker(t, 2, 10)

	var running, peak atomic.Int32
	_, errs := RunBatch(context.Background(), w, 8, func(ctx context.Context, i int) (int, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return i, nil
	})

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunBatchRecoversPanics(t *testing.T) {
	w := startWorker(t, 1, 4)

	values, errs := RunBatch(context.Background(), w, 2, func(ctx context.Context, i int) (int, error) {
		if i == 0 {
			panic("bad input")
		}
		return 7, nil
	})

	assert.ErrorContains(t, errs[0], "job panicked")
	assert.NoError(t, errs[1])
	assert.Equal(t, 7, values[1])
}

func TestRunBatchContextCancelled(t *testing.T) {
	w := startWorker(t, 1, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	_, errs := RunBatch(ctx, w, 2, func(ctx context.Context, i int) (int, error) {
		<-release
		return i, nil
	})

	for _, err := range errs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	w := NewWorker(1, 1, zaptest.NewLogger(t))
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	_, errs := RunBatch(context.Background(), w, 1, func(ctx context.Context, i int) (int, error) {
		return i, nil
	})
	assert.ErrorIs(t, errs[0], ErrWorkerStopped)
}
