package singleton

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory constructs the value for key. Once it has succeeded for a key it
// is not called again for that key until Clear, even when many callers
// request the same key concurrently; a failed call is retried by the next
// Get.
type Factory[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Map is a concurrent, key-keyed factory cache: at most one construction
// per key runs, and concurrent callers for the same key block on the first
// caller's result (success or failure). A failed construction does not
// poison the key -- the next Get retries.
//
// Map is built on top of golang.org/x/sync/singleflight, which already
// gives exactly this "first caller constructs, the rest wait and share the
// result" behavior and forgets in-flight calls once they complete, so a
// later retry after a failure is never blocked by the earlier one.
type Map[K comparable, V any] struct {
	factory Factory[K, V]

	group singleflight.Group

	mu     sync.RWMutex
	values map[K]V
}

// New creates a Map whose values are produced by factory.
func New[K comparable, V any](factory Factory[K, V]) *Map[K, V] {
	return &Map[K, V]{
		factory: factory,
		values:  make(map[K]V),
	}
}

// Get returns the value for key, constructing it via the factory if this
// is the first request for key. Concurrent calls for the same key share a
// single factory invocation.
func (m *Map[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := m.lookup(key); ok {
		return v, nil
	}

	groupKey := fmt.Sprintf("%v", key)
	result, err, _ := m.group.Do(groupKey, func() (any, error) {
		// Another caller may have completed construction between our
		// initial lookup and winning the singleflight race.
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		v, err := m.factory(ctx, key)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.values[key] = v
		m.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

func (m *Map[K, V]) lookup(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Values returns every successfully constructed value currently held by
// the map, in no particular order.
func (m *Map[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]V, 0, len(m.values))
	for _, v := range m.values {
		out = append(out, v)
	}
	return out
}

// Clear discards every cached value. It is the caller's responsibility to
// have already drained anything depending on those values -- Clear does
// not close or otherwise dispose of them.
func (m *Map[K, V]) Clear() {
	m.mu.Lock()
	m.values = make(map[K]V)
	m.mu.Unlock()
}
