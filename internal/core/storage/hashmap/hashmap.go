package hashmap

import (
	"iter"

	"github.com/zeusync/zecs/pkg/sequence"
)

// DefaultBucketCount is used when a map is created with a non-positive bucket count.
const DefaultBucketCount = 64

type entry[K, V any] struct {
	key   K
	value V
}

// Map is an open-hashing map whose buckets are linked lists of key/value
// records. Key equality is decided by the comparison function (zero means
// equal), not by the hash.
//
// Pointers returned by Get and ValuePtr stay valid only until the next
// mutation of the same key.
type Map[K, V any] struct {
	buckets []sequence.List[entry[K, V]]
	hash    Hasher[K]
	compare func(a, b K) int
	size    int
}

// New creates a map with bucketCount buckets.
func New[K, V any](bucketCount int, hash Hasher[K], compare func(a, b K) int) *Map[K, V] {
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}
	return &Map[K, V]{
		buckets: make([]sequence.List[entry[K, V]], bucketCount),
		hash:    hash,
		compare: compare,
	}
}

func (m *Map[K, V]) bucket(key K) *sequence.List[entry[K, V]] {
	return &m.buckets[m.hash(key)%uint64(len(m.buckets))]
}

// Len returns the number of records, duplicates from Push included.
func (m *Map[K, V]) Len() int {
	return m.size
}

// BucketCount returns the fixed number of buckets.
func (m *Map[K, V]) BucketCount() int {
	return len(m.buckets)
}

// Push stores the record without checking for an existing key.
// Callers use it only when they know the key is absent.
func (m *Map[K, V]) Push(key K, value V) {
	m.bucket(key).PushFront(entry[K, V]{key: key, value: value})
	m.size++
}

// Insert replaces every record with an equal key by the new one.
func (m *Map[K, V]) Insert(key K, value V) {
	m.Delete(key)
	m.Push(key, value)
}

// Get returns a pointer to the value of the first record matching key.
func (m *Map[K, V]) Get(key K) (*V, bool) {
	b := m.bucket(key)
	for c := b.Cursor(); !c.AtEnd(); c.Next() {
		e := c.Ptr()
		if m.compare(e.key, key) == 0 {
			return &e.value, true
		}
	}
	return nil, false
}

// Has reports whether a record with key exists.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// PopKey removes only the first record matching key and returns its value.
func (m *Map[K, V]) PopKey(key K) (V, bool) {
	b := m.bucket(key)
	for c := b.Cursor(); !c.AtEnd(); c.Next() {
		e := c.Value()
		if m.compare(e.key, key) == 0 {
			b.Remove(c)
			m.size--
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Delete removes all records matching key and returns how many were removed.
func (m *Map[K, V]) Delete(key K) int {
	b := m.bucket(key)
	removed := 0
	for c := b.Cursor(); !c.AtEnd(); {
		if m.compare(c.Ptr().key, key) == 0 {
			b.Remove(c)
			removed++
			continue
		}
		c.Next()
	}
	m.size -= removed
	return removed
}

// Scan calls fn for every record whose key compares equal to key.
func (m *Map[K, V]) Scan(key K, fn func(value *V) bool) {
	b := m.bucket(key)
	for c := b.Cursor(); !c.AtEnd(); c.Next() {
		e := c.Ptr()
		if m.compare(e.key, key) == 0 && !fn(&e.value) {
			return
		}
	}
}

// Clear drops every record, keeping the bucket array.
func (m *Map[K, V]) Clear() {
	for i := range m.buckets {
		m.buckets[i].Clear()
	}
	m.size = 0
}

// Iter returns an iterator positioned before the first record.
func (m *Map[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{m: m, bucket: -1}
}

// All yields every key/value pair in bucket order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for it := m.Iter(); it.Next(); {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}

// Keys returns a snapshot of every key, safe to use while mutating the map.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.size)
	for it := m.Iter(); it.Next(); {
		keys = append(keys, it.Key())
	}
	return keys
}

// Iterator walks buckets 0..n-1 and each bucket front to back, skipping
// empty buckets.
type Iterator[K, V any] struct {
	m      *Map[K, V]
	bucket int
	cursor *sequence.Cursor[entry[K, V]]
}

// Next advances to the next record and reports whether one exists.
func (it *Iterator[K, V]) Next() bool {
	if it.cursor != nil {
		it.cursor.Next()
		if !it.cursor.AtEnd() {
			return true
		}
	}
	for it.bucket+1 < len(it.m.buckets) {
		it.bucket++
		b := &it.m.buckets[it.bucket]
		if b.IsEmpty() {
			continue
		}
		it.cursor = b.Cursor()
		return true
	}
	it.cursor = nil
	return false
}

// Key returns the key of the current record.
func (it *Iterator[K, V]) Key() K {
	return it.cursor.Ptr().key
}

// Value returns the value of the current record.
func (it *Iterator[K, V]) Value() V {
	return it.cursor.Ptr().value
}

// ValuePtr returns a pointer to the value of the current record.
func (it *Iterator[K, V]) ValuePtr() *V {
	return &it.cursor.Ptr().value
}
