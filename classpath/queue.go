package classpath

import (
	"container/heap"
	"sync"
	"sync/atomic"
)

// elementHeap is a container/heap.Interface over elements ordered by
// OrderKey ascending, so the smallest-precedence element is always at the
// root.
type elementHeap []*OrderedElement

func (h elementHeap) Len() int            { return len(h) }
func (h elementHeap) Less(i, j int) bool  { return h[i].OrderKey < h[j].OrderKey }
func (h elementHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *elementHeap) Push(x any)         { *h = append(*h, x.(*OrderedElement)) }
func (h *elementHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// elementQueue is the shared priority queue workers poll: a min-heap
// guarded by a mutex, with a sync.Cond so waiting workers block instead
// of busy-waiting, woken on every push and on remaining reaching zero.
type elementQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	heap elementHeap
}

func newElementQueue() *elementQueue {
	q := &elementQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push adds el and wakes every waiting worker.
func (q *elementQueue) push(el *OrderedElement) {
	q.mu.Lock()
	heap.Push(&q.heap, el)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// wake broadcasts without pushing anything, used to rouse waiters after
// remaining or killAll changes so they can re-check their exit condition.
// It broadcasts under the queue lock so that a waiter which checked the
// old value but has not yet entered Wait cannot miss the signal.
func (q *elementQueue) wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// popWait blocks until an element is available, or until remaining is
// zero or killAll is set (in which case it returns ok=false: the caller's
// work is done). remaining and killAll are checked under the queue's own
// lock via the cond, so a push racing with a check is never missed.
func (q *elementQueue) popWait(remaining *atomic.Int64, killAll *atomic.Bool) (*OrderedElement, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.heap) == 0 {
		if remaining.Load() == 0 || killAll.Load() {
			return nil, false
		}
		q.cond.Wait()
	}
	return heap.Pop(&q.heap).(*OrderedElement), true
}
