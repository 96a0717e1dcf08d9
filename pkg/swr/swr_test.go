package swr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_FetchesOnceAndCaches(t *testing.T) {
	t.Parallel()

	var calls int32
	r := NewResource(func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	})

	v, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGet_DeduplicatesConcurrentFetches(t *testing.T) {
	t.Parallel()

	var calls int32
	release := make(chan struct{})
	r := NewResource(func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 7, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestMutate_OptimisticValueVisibleDuringCommit(t *testing.T) {
	t.Parallel()

	r := NewResource(func(ctx context.Context) ([]string, error) {
		return []string{"a"}, nil
	})

	_, err := r.Mutate(context.Background(),
		func(v []string) []string { return append(append([]string{}, v...), "b") },
		func(ctx context.Context) error {
			v, err := r.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, v)
			return nil
		})
	require.NoError(t, err)
}

func TestMutate_RollbackRestoresExactSnapshot(t *testing.T) {
	t.Parallel()

	r := NewResource(func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	_, err := r.Get(context.Background())
	require.NoError(t, err)

	commitErr := errors.New("server rejected")
	v, err := r.Mutate(context.Background(),
		func(v []string) []string { return append(append([]string{}, v...), "c") },
		func(ctx context.Context) error { return commitErr })

	assert.ErrorIs(t, err, commitErr)
	assert.Equal(t, []string{"a", "b"}, v)

	got, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMutate_SerializesConcurrentMutations(t *testing.T) {
	t.Parallel()

	var server int64
	r := NewResource(func(ctx context.Context) (int, error) {
		return int(atomic.LoadInt64(&server)), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Mutate(context.Background(),
				func(v int) int { return v + 1 },
				func(ctx context.Context) error {
					atomic.AddInt64(&server, 1)
					return nil
				})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Mutations are serialized, so every increment sees its predecessor's
	// committed state and none are lost.
	v, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, 25, v)
	assert.EqualValues(t, 25, atomic.LoadInt64(&server))
}

func TestMutate_CounterNeverNegativeAfterFailedDecrement(t *testing.T) {
	t.Parallel()

	r := NewResource(func(ctx context.Context) (int, error) { return 0, nil })
	_, err := r.Get(context.Background())
	require.NoError(t, err)

	v, err := r.Mutate(context.Background(),
		func(v int) int {
			if v <= 0 {
				return 0
			}
			return v - 1
		},
		func(ctx context.Context) error { return errors.New("boom") })

	assert.Error(t, err)
	assert.Equal(t, 0, v)
}

func TestUpdate_PatchesCachedValue(t *testing.T) {
	t.Parallel()

	r := NewResource(func(ctx context.Context) (int, error) { return 10, nil })
	_, err := r.Get(context.Background())
	require.NoError(t, err)

	r.Update(func(v int) int { return v + 100 })

	v, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, 110, v)
}

func TestUpdate_PatchAppliedDuringCommitSurvives(t *testing.T) {
	t.Parallel()

	// The fetcher reflects the confirmed value so revalidation after the
	// commit does not mask what was confirmed.
	r := NewResource[int](nil)
	r.fetch = func(ctx context.Context) (int, error) {
		v, _ := r.Peek()
		return v, nil
	}
	r.Set(10)

	v, err := r.Mutate(context.Background(),
		func(v int) int { return v + 1 },
		func(ctx context.Context) error {
			r.Update(func(v int) int { return v + 100 })
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 111, v)
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	t.Parallel()

	var calls int32
	r := NewResource(func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})

	v, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	r.Invalidate()
	v, err = r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_PatchOnlyTouchesFetchedKeys(t *testing.T) {
	t.Parallel()

	var fetches int32
	c := NewCache(func(ctx context.Context, key string) ([]string, error) {
		atomic.AddInt32(&fetches, 1)
		return []string{key}, nil
	})

	_, err := c.Get(context.Background(), "1")
	require.NoError(t, err)

	c.Patch("1", func(v []string) []string { return append(v, "patched") })
	c.Patch("2", func(v []string) []string { return append(v, "patched") })

	v, err := c.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "patched"}, v)

	// Patching an unfetched key must not create or fetch it.
	assert.EqualValues(t, 1, atomic.LoadInt32(&fetches))
}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		var calls int
		fn := Retry(3, time.Millisecond, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, fn(context.Background()))
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		lastErr := errors.New("still broken")
		fn := Retry(3, time.Millisecond, func(ctx context.Context) error {
			return lastErr
		})
		assert.ErrorIs(t, fn(context.Background()), lastErr)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var calls int
		fn := Retry(5, time.Minute, func(ctx context.Context) error {
			calls++
			return errors.New("transient")
		})
		assert.ErrorIs(t, fn(ctx), context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
