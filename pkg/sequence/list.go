package sequence

import "iter"

// node is a single list cell. Nodes are owned by exactly one List.
type node[T any] struct {
	value T
	next  *node[T]
}

// List is a singly linked sequence with stable front and back pointers.
// The zero value is an empty list ready to use.
type List[T any] struct {
	front *node[T]
	back  *node[T]
	size  int
}

// NewList creates an empty list.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// Len returns the number of records in the list.
func (l *List[T]) Len() int {
	return l.size
}

// IsEmpty reports whether the list holds no records.
func (l *List[T]) IsEmpty() bool {
	return l.size == 0
}

// PushFront prepends value.
func (l *List[T]) PushFront(value T) {
	n := &node[T]{value: value, next: l.front}
	l.front = n
	if l.back == nil {
		l.back = n
	}
	l.size++
}

// PushBack appends value.
func (l *List[T]) PushBack(value T) {
	n := &node[T]{value: value}
	if l.back == nil {
		l.front = n
	} else {
		l.back.next = n
	}
	l.back = n
	l.size++
}

// PopFront removes and returns the first record.
func (l *List[T]) PopFront() (T, bool) {
	if l.front == nil {
		var zero T
		return zero, false
	}
	n := l.front
	l.front = n.next
	if l.front == nil {
		l.back = nil
	}
	n.next = nil
	l.size--
	return n.value, true
}

// Front returns the first record without removing it.
func (l *List[T]) Front() (T, bool) {
	if l.front == nil {
		var zero T
		return zero, false
	}
	return l.front.value, true
}

// Back returns the last record without removing it.
func (l *List[T]) Back() (T, bool) {
	if l.back == nil {
		var zero T
		return zero, false
	}
	return l.back.value, true
}

// Clear releases every node.
func (l *List[T]) Clear() {
	for n := l.front; n != nil; {
		next := n.next
		n.next = nil
		n = next
	}
	l.front = nil
	l.back = nil
	l.size = 0
}

// Cursor returns a cursor positioned at the first record.
func (l *List[T]) Cursor() *Cursor[T] {
	return &Cursor[T]{current: l.front}
}

// Remove unlinks the node under the cursor. The cursor stays valid and points
// at the record that followed the removed one. Removing at the end is a no-op.
func (l *List[T]) Remove(c *Cursor[T]) {
	if c.current == nil {
		return
	}
	removed := c.current
	next := removed.next
	if c.prev == nil {
		l.front = next
	} else {
		c.prev.next = next
	}
	if l.back == removed {
		l.back = c.prev
	}
	removed.next = nil
	c.current = next
	l.size--
}

// Insert links value in front of the cursor's record. The cursor keeps
// pointing at the same record; inserting at the end appends.
func (l *List[T]) Insert(c *Cursor[T], value T) {
	n := &node[T]{value: value, next: c.current}
	if c.prev == nil {
		l.front = n
	} else {
		c.prev.next = n
	}
	if c.current == nil {
		l.back = n
	}
	c.prev = n
	l.size++
}

// RemoveFirst removes the first record for which match returns true.
func (l *List[T]) RemoveFirst(match func(T) bool) bool {
	for c := l.Cursor(); !c.AtEnd(); c.Next() {
		if match(c.Value()) {
			l.Remove(c)
			return true
		}
	}
	return false
}

// All yields every record front to back.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.front; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Cursor walks a List while remembering the previous node, which is what
// makes removal during iteration O(1).
type Cursor[T any] struct {
	prev    *node[T]
	current *node[T]
}

// AtEnd reports whether the cursor has moved past the last record.
func (c *Cursor[T]) AtEnd() bool {
	return c.current == nil
}

// Next advances the cursor by one record.
func (c *Cursor[T]) Next() {
	if c.current == nil {
		return
	}
	c.prev = c.current
	c.current = c.current.next
}

// Value returns the record under the cursor, or the zero value at the end.
func (c *Cursor[T]) Value() T {
	if c.current == nil {
		var zero T
		return zero
	}
	return c.current.value
}

// Ptr returns a pointer to the record stored in the node, or nil at the end.
func (c *Cursor[T]) Ptr() *T {
	if c.current == nil {
		return nil
	}
	return &c.current.value
}
