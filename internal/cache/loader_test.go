package cache

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

func TestLoader_CachesWithinTTL(t *testing.T) {
	l := NewLoader[string, int]("loader-ttl", 4, time.Minute)
	var calls atomic.Int32
	load := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	v, err := l.Get(context.Background(), "cap", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = l.Get(context.Background(), "cap", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int32(1), calls.Load())

	l.Invalidate("cap")
	v, err = l.Get(context.Background(), "cap", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLoader_DoesNotCacheErrors(t *testing.T) {
	l := NewLoader[string, int]("loader-errors", 4, time.Minute)
	boom := errors.New("boom")

	_, err := l.Get(context.Background(), "cap", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := l.Get(context.Background(), "cap", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestLoader_DisabledStillLoads(t *testing.T) {
	l := NewLoader[string, int]("loader-disabled", 4, 0)
	var calls atomic.Int32
	load := func(context.Context) (int, error) { return int(calls.Add(1)), nil }

	_, _ = l.Get(context.Background(), "k", load)
	_, _ = l.Get(context.Background(), "k", load)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoader_CoalescesConcurrentMisses(t *testing.T) {
	l := NewLoader[string, int]("loader-coalesce", 4, time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := l.Get(context.Background(), "k", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestLoader_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	l := NewLoader[string, int]("loader-cancel", 4, time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 42, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Get(firstCtx, "cap", load)
		firstErr <- err
	}()
	<-started

	second := make(chan int, 1)
	go func() {
		v, err := l.Get(context.Background(), "cap", load)
		assert.NoError(t, err)
		second <- v
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	// Give the second caller time to join the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(release)

	select {
	case v := <-second:
		assert.Equal(t, 42, v)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not receive the shared value")
	}
}
