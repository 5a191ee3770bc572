package worker

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecutePreservesOrder(t *testing.T) {
	pool := NewPool(3, func(ctx context.Context, s string) (string, error) {
		return strings.ToUpper(s), nil
	})

	inputs := []string{"a", "b", "c", "d", "e"}
	tasks := pool.Execute(context.Background(), inputs)

	require.Len(t, tasks, len(inputs))
	for i, task := range tasks {
		assert.Equal(t, inputs[i], task.Input)
		assert.Equal(t, strings.ToUpper(inputs[i]), task.Result)
		assert.NoError(t, task.Err)
	}
}

func TestPool_ExecuteReportsErrors(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		if n%2 == 0 {
			return 0, boom
		}
		return n * 10, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3, 4})

	assert.Equal(t, 10, tasks[0].Result)
	assert.ErrorIs(t, tasks[1].Err, boom)
	assert.Equal(t, 30, tasks[2].Result)
	assert.ErrorIs(t, tasks[3].Err, boom)
}

func TestPool_ExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(0, func(ctx context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	tasks := pool.Execute(ctx, []int{1, 2, 3})

	require.Len(t, tasks, 3)
	failed := 0
	for _, task := range tasks {
		if task.Err != nil {
			assert.ErrorIs(t, task.Err, context.Canceled)
			failed++
		}
	}
	assert.Equal(t, 3, failed+int(calls.Load()))
}

func TestPool_ExecuteEmpty(t *testing.T) {
	pool := NewPool(4, func(ctx context.Context, n int) (int, error) { return n, nil })
	assert.Empty(t, pool.Execute(context.Background(), nil))
}
