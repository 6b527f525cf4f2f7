package model

import (
	"go.uber.org/atomic"
)

// Lazy memoizes a value decoded on first access. Concurrent first accesses may
// each run the decoder; the first result stored wins and the others are
// discarded. Failed decodes are not cached.
//
// A Lazy must not be copied after first use.
type Lazy[T any] struct {
	v atomic.Pointer[T]
}

// NewLazyValue returns a Lazy that already holds v.
func NewLazyValue[T any](v T) *Lazy[T] {
	l := &Lazy[T]{}
	l.v.Store(&v)

	return l
}

// Get returns the memoized value, running decode if nothing is stored yet.
func (l *Lazy[T]) Get(decode func() (T, error)) (T, error) {
	if p := l.v.Load(); p != nil {
		return *p, nil
	}

	val, err := decode()
	if err != nil {
		var zero T
		return zero, err
	}

	if l.v.CompareAndSwap(nil, &val) {
		return val, nil
	}

	return *l.v.Load(), nil
}

// MustGet is Get for decoders that cannot fail.
func (l *Lazy[T]) MustGet(compute func() T) T {
	v, _ := l.Get(func() (T, error) {
		return compute(), nil
	})

	return v
}

// Peek returns the stored value without decoding.
func (l *Lazy[T]) Peek() (T, bool) {
	if p := l.v.Load(); p != nil {
		return *p, true
	}

	var zero T

	return zero, false
}

// IsComputed reports whether a value is stored.
func (l *Lazy[T]) IsComputed() bool {
	return l.v.Load() != nil
}

// seed stores v when nothing is stored yet.
func (l *Lazy[T]) seed(v T) {
	l.v.CompareAndSwap(nil, &v)
}
