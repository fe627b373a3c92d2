package sequence

import (
	"iter"
	"slices"
)

// Iterator wraps an iter.Seq so helpers can be chained. It holds no state of
// its own: every terminal call walks the underlying sequence again.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From iterates over a slice.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{seq: slices.Values(data)}
}

func FromSeq[T any](seq iter.Seq[T]) *Iterator[T] {
	return &Iterator[T]{seq: seq}
}

// FromList iterates over the records of l, front to back. Mutating l during
// the walk is not supported; use a Cursor for that.
func FromList[T any](l *List[T]) *Iterator[T] {
	return &Iterator[T]{seq: l.All()}
}

func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Pull converts the iterator into a next/stop pair. stop must be called.
func (i *Iterator[T]) Pull() (next func() (T, bool), stop func()) {
	return iter.Pull(i.seq)
}

func (i *Iterator[T]) Collect() []T {
	return slices.Collect(i.seq)
}

func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{seq: func(yield func(T) bool) {
		for v := range i.seq {
			if pred(v) && !yield(v) {
				return
			}
		}
	}}
}

// Any stops at the first match.
func (i *Iterator[T]) Any(pred func(T) bool) bool {
	for v := range i.seq {
		if pred(v) {
			return true
		}
	}
	return false
}

func (i *Iterator[T]) First() (T, bool) {
	for v := range i.seq {
		return v, true
	}
	var zero T
	return zero, false
}

func (i *Iterator[T]) Count() int {
	n := 0
	for range i.seq {
		n++
	}
	return n
}
