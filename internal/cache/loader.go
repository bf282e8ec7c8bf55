package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches the value for a key on a cache miss.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Loader is a read-through cache. Concurrent misses for the same key share a
// single load; failed loads are not cached. A non-positive ttl disables caching
// but still coalesces concurrent loads.
type Loader[K comparable, V any] struct {
	lru     *LRU[K, V]
	enabled bool
	group   singleflight.Group
}

func NewLoader[K comparable, V any](name string, capacity int, ttl time.Duration) *Loader[K, V] {
	return &Loader[K, V]{
		lru:     NewLRU[K, V](name, capacity, ttl),
		enabled: ttl > 0,
	}
}

// Get returns the cached value for key, calling load on a miss. The shared
// load runs detached from ctx cancellation so one caller giving up does not
// fail the others; a cancelled caller returns ctx.Err().
func (l *Loader[K, V]) Get(ctx context.Context, key K, load LoadFunc[V]) (V, error) {
	var zero V
	if l.enabled {
		if v, ok := l.lru.Get(key); ok {
			return v, nil
		}
	}

	detached := context.WithoutCancel(ctx)
	ch := l.group.DoChan(fmt.Sprint(key), func() (any, error) {
		v, err := load(detached)
		if err != nil {
			return v, err
		}
		if l.enabled {
			l.lru.Put(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Invalidate forces the next Get for key to reload.
func (l *Loader[K, V]) Invalidate(key K) {
	l.lru.Invalidate(key)
}
