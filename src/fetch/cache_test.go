package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() (*Cache, *MemoryStore) {
	store := NewMemoryStore()
	return New(store, zerolog.Nop()), store
}

func TestDoServesFromCacheWithinTTL(t *testing.T) {
	c, _ := newTestCache()
	var calls atomic.Int64
	op := func(context.Context) (any, error) {
		calls.Add(1)
		return "sessions", nil
	}

	v1, err := c.Do(context.Background(), "sessions", time.Minute, op)
	require.NoError(t, err)
	v2, err := c.Do(context.Background(), "sessions", time.Minute, op)
	require.NoError(t, err)

	assert.Equal(t, "sessions", v1)
	assert.Equal(t, "sessions", v2)
	assert.EqualValues(t, 1, calls.Load(), "second call within TTL must not invoke the operation")
}

func TestDoRefetchesAfterTTLElapses(t *testing.T) {
	c, store := newTestCache()
	now := time.Now()
	store.now = func() time.Time { return now }

	var calls atomic.Int64
	op := func(context.Context) (any, error) {
		calls.Add(1)
		return calls.Load(), nil
	}

	_, err := c.Do(context.Background(), "k", 50*time.Millisecond, op)
	require.NoError(t, err)

	now = now.Add(51 * time.Millisecond)
	v, err := c.Do(context.Background(), "k", 50*time.Millisecond, op)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 2, v)
}

func TestConcurrentCallersShareOneFlight(t *testing.T) {
	c, _ := newTestCache()

	release := make(chan struct{})
	var calls atomic.Int64
	op := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "result", nil
	}

	const callers = 5
	var wg sync.WaitGroup
	results := make([]any, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Do(context.Background(), "shared", 0, op)
		}(i)
	}

	// Let every caller reach the in-flight registration.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load(), "operation must resolve exactly once for all callers")
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "result", results[i])
	}
}

func TestSharedFlightPropagatesError(t *testing.T) {
	c, _ := newTestCache()
	opErr := errors.New("backend down")

	release := make(chan struct{})
	op := func(context.Context) (any, error) {
		<-release
		return nil, opErr
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Do(context.Background(), "k", 0, op)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.ErrorIs(t, errs[0], opErr)
	assert.ErrorIs(t, errs[1], opErr)
}

func TestErrorDoesNotBlockRetry(t *testing.T) {
	c, _ := newTestCache()
	var calls atomic.Int64
	op := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}

	_, err := c.Do(context.Background(), "k", time.Minute, op)
	require.Error(t, err)

	// The failed flight is deregistered, so a retry runs immediately and
	// its success is cached.
	v, err := c.Do(context.Background(), "k", time.Minute, op)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.EqualValues(t, 2, calls.Load())
}

func TestEmptyKeyBypassesCacheAndDedup(t *testing.T) {
	c, _ := newTestCache()
	var calls atomic.Int64
	op := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, nil
	}

	_, _ = c.Do(context.Background(), "", time.Minute, op)
	_, _ = c.Do(context.Background(), "", time.Minute, op)
	assert.EqualValues(t, 2, calls.Load())
}

func TestClearInvalidatesKey(t *testing.T) {
	c, _ := newTestCache()
	var calls atomic.Int64
	op := func(context.Context) (any, error) {
		calls.Add(1)
		return "v", nil
	}

	ctx := context.Background()
	_, _ = c.Do(ctx, "k", time.Minute, op)
	c.Clear(ctx, "k")
	_, _ = c.Do(ctx, "k", time.Minute, op)
	assert.EqualValues(t, 2, calls.Load())
}

func TestPollImmediateAndInterval(t *testing.T) {
	c, _ := newTestCache()
	var calls atomic.Int64
	var results atomic.Int64

	var badResults atomic.Int64
	p := c.Poll("poll-key", 0, 10*time.Millisecond, true,
		func(context.Context) (any, error) {
			calls.Add(1)
			return "snapshot", nil
		},
		func(v any, err error) {
			if err != nil || v != "snapshot" {
				badResults.Add(1)
				return
			}
			results.Add(1)
		})
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for results.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, results.Load(), int64(3))
	assert.GreaterOrEqual(t, calls.Load(), int64(3))
	assert.Zero(t, badResults.Load())
}

func TestPollerStopSuppressesInFlightResult(t *testing.T) {
	c, _ := newTestCache()

	release := make(chan struct{})
	var delivered atomic.Int64
	p := c.Poll("slow", 0, 0, true,
		func(context.Context) (any, error) {
			<-release
			return "late", nil
		},
		func(any, error) { delivered.Add(1) })

	// Stop while the operation is still in flight; its eventual result
	// must be absorbed silently.
	time.Sleep(10 * time.Millisecond)
	p.Stop()
	close(release)
	time.Sleep(30 * time.Millisecond)

	assert.Zero(t, delivered.Load())
}

func TestPollerStopIsIdempotent(t *testing.T) {
	c, _ := newTestCache()
	p := c.Poll("k", 0, time.Hour, false,
		func(context.Context) (any, error) { return nil, nil },
		nil)
	p.Stop()
	p.Stop()
}
