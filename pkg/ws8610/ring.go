package ws8610

import "sync/atomic"

// Ring is a single-producer/single-consumer ring buffer which never blocks
// the producer: when the consumer falls behind, the oldest unread entries are
// dropped and counted as overruns.
//
// Indices are free-running 64-bit sequence numbers. The producer fills the slot
// returned by Next and makes it visible with Publish. One spare slot is kept
// so the slot being filled is never one the consumer may still read.
type Ring[T any] struct {
	slots []T
	cap   uint64

	head atomic.Uint64 // written by producer only

	tail     uint64 // consumer only
	overruns uint64 // consumer only
}

// NewRing creates a Ring retaining up to capacity entries.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		slots: make([]T, capacity+1),
		cap:   uint64(capacity),
	}
}

// Cap returns the number of entries retained.
func (r *Ring[T]) Cap() int {
	return int(r.cap)
}

// Next returns the slot to be filled by the producer.
func (r *Ring[T]) Next() *T {
	return &r.slots[r.index(r.head.Load())]
}

// Publish makes the slot returned by Next visible to the consumer.
func (r *Ring[T]) Publish() {
	r.head.Add(1)
}

// Published returns the total number of entries published.
func (r *Ring[T]) Published() uint64 {
	return r.head.Load()
}

// Len returns the number of unread entries.
func (r *Ring[T]) Len() int {
	n := r.head.Load() - r.tail
	if n > r.cap {
		n = r.cap
	}
	return int(n)
}

// Pop copies the oldest unread entry into dst.
func (r *Ring[T]) Pop(dst *T) bool {
	for {
		head := r.head.Load()
		if n := head - r.tail; n > r.cap {
			r.overruns += n - r.cap
			r.tail = head - r.cap
		}
		if r.tail == head {
			return false
		}
		*dst = r.slots[r.index(r.tail)]
		// the producer lapped the slot while it was copied.
		if r.head.Load()-r.tail > r.cap {
			continue
		}
		r.tail++
		return true
	}
}

// Overruns returns the number of entries dropped unread.
func (r *Ring[T]) Overruns() uint64 {
	return r.overruns
}

// Reset empties the ring. Neither side may be active.
func (r *Ring[T]) Reset() {
	r.head.Store(0)
	r.tail, r.overruns = 0, 0
}

func (r *Ring[T]) index(seq uint64) uint64 {
	return seq % uint64(len(r.slots))
}
