package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_ProcessesAll(t *testing.T) {
	tests := []struct {
		name    string
		workers int
	}{
		{"serial", -1},
		{"auto", 0},
		{"fixed", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var mu sync.Mutex
			seen := map[string]bool{}
			var progressCalls atomic.Int32
			p := NewProcessor(
				WithWorkers(tt.workers),
				WithProgress(func(string, ProcessStats) { progressCalls.Add(1) }),
			)
			paths := []string{"a", "b", "c", "d", "e"}
			stats, err := p.Process(context.Background(), paths, func(_ context.Context, path string) (int64, error) {
				mu.Lock()
				seen[path] = true
				mu.Unlock()
				return 10, nil
			})
			require.NoError(t, err)
			assert.Equal(t, 5, stats.Processed)
			assert.Equal(t, uint64(50), stats.TotalBytes)
			assert.Len(t, seen, 5)
			assert.Equal(t, int32(5), progressCalls.Load())
		})
	}
}

func TestProcessor_StopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	p := NewProcessor(WithWorkers(-1))
	var calls int
	_, err := p.Process(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, path string) (int64, error) {
		calls++
		if path == "b" {
			return 0, boom
		}
		return 1, nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestProcessor_Empty(t *testing.T) {
	t.Parallel()

	stats, err := NewProcessor().Process(context.Background(), nil, func(context.Context, string) (int64, error) {
		t.Fatal("unexpected call")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Zero(t, stats.Processed)
}

func TestProcessor_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProcessor().Process(ctx, []string{"a"}, func(context.Context, string) (int64, error) {
		return 0, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NewProcessor(WithWorkers(8)).workerCount(1))
	assert.Equal(t, 1, NewProcessor(WithWorkers(-1)).workerCount(10))
	assert.Equal(t, 4, NewProcessor(WithWorkers(4)).workerCount(10))
	assert.Equal(t, 3, NewProcessor(WithWorkers(8)).workerCount(3))
}
