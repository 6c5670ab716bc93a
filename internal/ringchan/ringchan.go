// Package ringchan provides a bounded channel with drop-oldest semantics,
// used to decouple notification delivery from slow consumers: a burst of
// characteristic updates never blocks the delivery path, at the cost of
// losing the oldest unconsumed values.
package ringchan

import "sync/atomic"

// RingChannel wraps a buffered channel so producers never block: when the
// buffer is full, the oldest element is discarded to make room.
type RingChannel[T any] struct {
	ch          chan T
	written     atomic.Int64
	overwritten atomic.Int64
}

// New creates a RingChannel with the given capacity. Panics if capacity <= 0.
func New[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel. Consumers can range over it
// until Close.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// Send inserts an item, discarding the oldest buffered item if full. It never
// blocks indefinitely.
func (rc *RingChannel[T]) Send(v T) {
	select {
	case rc.ch <- v:
	default:
		select {
		case <-rc.ch: // drop oldest
			rc.overwritten.Add(1)
		default:
		}
		rc.ch <- v
	}
	rc.written.Add(1)
}

// TryReceive attempts a non-blocking receive.
func (rc *RingChannel[T]) TryReceive() (v T, ok bool) {
	select {
	case v, ok = <-rc.ch:
		return
	default:
		var zero T
		return zero, false
	}
}

// Len returns the number of buffered elements.
func (rc *RingChannel[T]) Len() int {
	return len(rc.ch)
}

// Dropped returns how many values were discarded to make room.
func (rc *RingChannel[T]) Dropped() int64 {
	return rc.overwritten.Load()
}

// Written returns how many values were accepted.
func (rc *RingChannel[T]) Written() int64 {
	return rc.written.Load()
}

// Close closes the underlying channel. Sends after Close panic.
func (rc *RingChannel[T]) Close() {
	close(rc.ch)
}
