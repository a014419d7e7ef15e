package core

import "sync/atomic"

// Snapshot publishes an immutable value of T from control goroutines to a
// single audio goroutine. Writers swap in a fresh copy with one atomic
// pointer store; the reader latches it at a block boundary with [Reader].
//
// Writers may allocate. Readers never do.
type Snapshot[T any] struct {
	p atomic.Pointer[T]
}

// NewSnapshot returns a Snapshot holding v.
func NewSnapshot[T any](v T) *Snapshot[T] {
	s := &Snapshot[T]{}
	s.Store(v)
	return s
}

// Store publishes a copy of v.
func (s *Snapshot[T]) Store(v T) {
	s.p.Store(&v)
}

// Load returns a copy of the most recently published value.
func (s *Snapshot[T]) Load() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Update applies fn to a copy of the current value and publishes the result.
// Concurrent updates are retried so none is lost.
func (s *Snapshot[T]) Update(fn func(*T)) {
	for {
		old := s.p.Load()
		var next T
		if old != nil {
			next = *old
		}
		fn(&next)
		if s.p.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Reader is the audio-goroutine side of a Snapshot. Value holds the latched
// copy and is only touched by the reading goroutine.
type Reader[T any] struct {
	src   *Snapshot[T]
	seen  *T
	Value T
}

// NewReader returns a Reader bound to src. The current value is latched
// immediately.
func NewReader[T any](src *Snapshot[T]) *Reader[T] {
	r := &Reader[T]{src: src}
	r.Latch()
	return r
}

// Latch copies the newest published value into Value. It reports whether a
// new value was observed since the previous latch.
func (r *Reader[T]) Latch() bool {
	if r.src == nil {
		return false
	}
	p := r.src.p.Load()
	if p == nil || p == r.seen {
		return false
	}
	r.seen = p
	r.Value = *p
	return true
}
