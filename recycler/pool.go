// Package recycler implements the LIFO pool of reusable, expensive
// resources (inflaters, module readers) described by the nested archive
// handler: acquire returns a pooled instance or builds a fresh one,
// release pushes it back, and forceClose drains and disposes everything.
package recycler

import (
	"sync"

	"github.com/archscan/classpathfs/classpatherr"
)

// Pool recycles instances of T whose construction may fail.
type Pool[T any] struct {
	factory func() (T, error)
	dispose func(T)

	mu     sync.Mutex
	items  []T
	closed bool
}

// New creates a Pool whose instances are built by factory and released by
// dispose when the pool is force-closed. dispose may be nil if T needs no
// cleanup.
func New[T any](factory func() (T, error), dispose func(T)) *Pool[T] {
	return &Pool[T]{factory: factory, dispose: dispose}
}

// Acquire returns a pooled instance, or a freshly constructed one if the
// pool is empty. It fails if the pool has been force-closed.
func (p *Pool[T]) Acquire() (T, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		var zero T
		return zero, classpatherr.New(classpatherr.CodeClosed, "recycler.Acquire", "", "pool is closed")
	}
	if n := len(p.items); n > 0 {
		v := p.items[n-1]
		p.items = p.items[:n-1]
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()
	return p.factory()
}

// Release returns v to the pool for reuse. Release on a closed pool
// disposes of v immediately instead of caching it.
func (p *Pool[T]) Release(v T) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if p.dispose != nil {
			p.dispose(v)
		}
		return
	}
	p.items = append(p.items, v)
	p.mu.Unlock()
}

// Borrow acquires an instance and returns it along with a release closure,
// so callers can `defer release()` on every exit path rather than having to
// remember to call Release manually.
func (p *Pool[T]) Borrow() (T, func(), error) {
	v, err := p.Acquire()
	if err != nil {
		var zero T
		return zero, func() {}, err
	}
	return v, func() { p.Release(v) }, nil
}

// ForceClose drains and disposes of every pooled instance. Subsequent
// Acquire calls fail with CodeClosed. ForceClose is idempotent.
func (p *Pool[T]) ForceClose() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	items := p.items
	p.items = nil
	p.mu.Unlock()

	if p.dispose != nil {
		for _, v := range items {
			p.dispose(v)
		}
	}
}
