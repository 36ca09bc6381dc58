package memoslot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
concurrency_test.go stress-tests Cache under parallel callers.

Run with:

    go test -race

The assertions hold for any interleaving; the race detector checks that
no access to the cache state escapes the lock.
*/

func TestConcurrent_RequestsCountedExactly(t *testing.T) {
	t.Parallel()

	const (
		workers = 32
		calls   = 500
	)

	var computes atomic.Int64
	c := MustNew(func(_ context.Context, in int) (int, error) {
		computes.Add(1)
		return in * in, nil
	})

	ctx := context.Background()
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < calls; i++ {
				in := (w + i/10) % 4
				out, err := c.GetOrCompute(ctx, in)
				if err != nil {
					t.Errorf("GetOrCompute(%d): %v", in, err)
					return
				}
				if out != in*in {
					t.Errorf("GetOrCompute(%d) = %d, want %d", in, out, in*in)
					return
				}
			}
		}(w)
	}

	wg.Wait()

	s := c.Stats()
	assert.Equal(t, uint64(workers*calls), s.Requests)
	assert.Equal(t, uint64(workers*calls), c.TotalRequests())
	assert.LessOrEqual(t, s.Hits, s.Requests)
	// Without coalescing every miss computes exactly once.
	assert.Equal(t, s.Requests, s.Hits+s.Computes)
	assert.Equal(t, uint64(computes.Load()), s.Computes)
	assert.Equal(t, s.Computes, s.Replacements)
	assert.Zero(t, s.Failures)
}

func TestConcurrent_HitsNeverExceedRequests(t *testing.T) {
	t.Parallel()

	c := MustNew(func(_ context.Context, in int) (int, error) {
		return in, nil
	})

	ctx := context.Background()
	var (
		wg   sync.WaitGroup
		done atomic.Bool
	)

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				_, _ = c.GetOrCompute(ctx, (i/50+w)%3)
			}
		}(w)
	}

	observer := make(chan error, 1)
	go func() {
		for !done.Load() {
			s := c.Stats()
			if s.Hits > s.Requests {
				observer <- fmt.Errorf("hits %d > requests %d", s.Hits, s.Requests)
				return
			}
			if s.Computes > s.Misses() || s.Replacements+s.Failures > s.Misses() {
				observer <- fmt.Errorf("counters exceed misses: %+v", s)
				return
			}
			if r := s.HitRatio(); r < 0 || r > 1 {
				observer <- fmt.Errorf("hit ratio %f out of range", r)
				return
			}
		}
		observer <- nil
	}()

	wg.Wait()
	done.Store(true)
	require.NoError(t, <-observer)
}

// TestConcurrent_SlotNeverObservedMismatched replaces the slot with a slow
// compute while readers poll it; every observed pair must belong together.
func TestConcurrent_SlotNeverObservedMismatched(t *testing.T) {
	t.Parallel()

	render := func(in int) string { return fmt.Sprintf("out-%d", in) }

	c := MustNew(func(_ context.Context, in int) (string, error) {
		time.Sleep(50 * time.Microsecond)
		return render(in), nil
	})

	ctx := context.Background()
	var (
		writers sync.WaitGroup
		readers sync.WaitGroup
		done    atomic.Bool
		seen    atomic.Int64
	)

	for w := 0; w < 4; w++ {
		writers.Add(1)
		go func(w int) {
			defer writers.Done()
			for i := 0; i < 300; i++ {
				_, _ = c.GetOrCompute(ctx, w*1000+i)
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for !done.Load() {
				in, out, ok := c.Peek()
				if !ok {
					continue
				}
				seen.Add(1)
				if out != render(in) {
					t.Errorf("mismatched slot: input %d paired with %q", in, out)
					return
				}
			}
		}()
	}

	writers.Wait()
	done.Store(true)
	readers.Wait()

	assert.Positive(t, seen.Load())

	in, out, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, render(in), out)
}

// TestConcurrent_ComputeCountedBeforeComputeRuns checks that a running
// compute is already visible in Stats and that the lock is free while it
// runs.
func TestConcurrent_ComputeCountedBeforeComputeRuns(t *testing.T) {
	t.Parallel()

	var c *Cache[int, int]
	lockFree := make(chan bool, 1)
	release := make(chan struct{})

	c = MustNew(func(_ context.Context, in int) (int, error) {
		free := c.mu.TryLock()
		if free {
			c.mu.Unlock()
		}
		lockFree <- free
		<-release
		return in, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(context.Background(), 1)
		done <- err
	}()

	require.True(t, <-lockFree, "lock held while compute runs")

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Requests)
	assert.Equal(t, uint64(1), s.Computes)
	assert.Zero(t, s.Replacements)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, uint64(1), c.Stats().Replacements)
}

// TestConcurrent_ComputeRunsOutsideLock blocks one compute indefinitely and
// checks that other callers still make progress.
func TestConcurrent_ComputeRunsOutsideLock(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})

	c := MustNew(func(_ context.Context, in int) (int, error) {
		if in == 0 {
			close(started)
			<-release
		}
		return in, nil
	})

	ctx := context.Background()
	slow := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctx, 0)
		slow <- err
	}()

	<-started

	for i := 1; i <= 10; i++ {
		out, err := c.GetOrCompute(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, i, out)
	}
	_ = c.Stats()
	_, _, _ = c.Peek()

	close(release)
	require.NoError(t, <-slow)

	// The slow compute finished last, so it owns the slot.
	in, out, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, in)
	assert.Equal(t, 0, out)
}
