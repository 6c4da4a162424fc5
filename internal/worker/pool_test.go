package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecuteKeepsOrder(t *testing.T) {
	var running, peak atomic.Int32
	pool := NewPool[int, int]("square", 3, func(ctx context.Context, n int) (int, error) {
		cur := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		if n == 4 {
			return 0, errors.New("four")
		}
		return n * n, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3, 4, 5, 6, 7})
	require.Len(t, tasks, 7)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Input)
		if task.Input == 4 {
			assert.EqualError(t, task.Err, "four")
			continue
		}
		require.NoError(t, task.Err)
		assert.Equal(t, task.Input*task.Input, task.Result)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestPoolExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool[int, int]("noop", 2, func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})
	tasks := pool.Execute(ctx, []int{1, 2, 3})
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		if task.Err != nil {
			assert.ErrorIs(t, task.Err, context.Canceled)
		}
	}
}

func TestPoolExecuteEmpty(t *testing.T) {
	pool := NewPool[int, int]("empty", 4, func(ctx context.Context, n int) (int, error) { return n, nil })
	assert.Empty(t, pool.Execute(context.Background(), nil))
}

func TestBatch(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}, {2}}, Batch([]int{1, 2}, 0))
	assert.Nil(t, Batch([]int{}, 3))
}
