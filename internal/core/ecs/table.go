package ecs

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/zeusync/zecs/internal/core/models"
	"github.com/zeusync/zecs/internal/core/storage/hashmap"
)

// Table is the type-erased view of a component table that the Scene keeps in
// its registry.
type Table interface {
	ComponentType() models.UUID
	Name() string

	Has(entity models.UUID) bool
	Remove(entity models.UUID) bool
	Len() int
	Capacity() int
	Size() uintptr
	Clear()

	// EachID visits occupied slots in slot order until fn returns false.
	EachID(fn func(entity models.UUID) bool)
	CheckConsistency() error
}

// TableOptions tunes the id→slot index of a table.
type TableOptions struct {
	IndexBuckets int
	Hasher       hashmap.Algorithm
}

type slot[T any] struct {
	id   models.UUID
	data T
}

var _ Table = (*ComponentDataTable[struct{}])(nil)

// ComponentDataTable stores every component of one type in a fixed-capacity
// slot array. A slot whose id is models.Nil is empty. The index maps entity
// ids to slot positions and always agrees with the slot array.
type ComponentDataTable[T any] struct {
	componentType models.UUID
	name          string
	slots         []slot[T]
	index         *hashmap.Map[models.UUID, int]
	count         int
}

// NewComponentDataTable allocates a table with room for exactly capacity
// components. The capacity is never grown.
func NewComponentDataTable[T any](componentType models.UUID, capacity int, opts TableOptions) *ComponentDataTable[T] {
	if capacity < 0 {
		capacity = 0
	}
	buckets := opts.IndexBuckets
	if buckets <= 0 {
		buckets = min(max(capacity, 1), hashmap.DefaultBucketCount*4)
	}
	return &ComponentDataTable[T]{
		componentType: componentType,
		slots:         make([]slot[T], capacity),
		index:         hashmap.New[models.UUID, int](buckets, hashmap.UUIDHasher(opts.Hasher), hashmap.CompareUUID),
	}
}

func (t *ComponentDataTable[T]) ComponentType() models.UUID {
	return t.componentType
}

// Name is the human-readable type name, empty when the table was registered by raw id.
func (t *ComponentDataTable[T]) Name() string {
	return t.name
}

func (t *ComponentDataTable[T]) Len() int {
	return t.count
}

func (t *ComponentDataTable[T]) Capacity() int {
	return len(t.slots)
}

// Size is the byte size of one component.
func (t *ComponentDataTable[T]) Size() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// Insert stores value for entity. An entity that already owns a slot gets its
// component overwritten in place. A new entity takes the first empty slot
// scanning from index 0; when there is none the table is left untouched and
// ErrTableFull is returned.
func (t *ComponentDataTable[T]) Insert(entity models.UUID, value T) error {
	if entity.IsNil() {
		return ErrNilEntity
	}
	if idx, ok := t.index.Get(entity); ok {
		t.slots[*idx].data = value
		return nil
	}

	free := -1
	for i := range t.slots {
		if t.slots[i].id.IsNil() {
			free = i
			break
		}
	}
	if free < 0 {
		return ErrTableFull
	}

	t.index.Push(entity, free)
	t.slots[free] = slot[T]{id: entity, data: value}
	t.count++
	return nil
}

// Remove empties the entity's slot. Removing an absent entity is a no-op.
func (t *ComponentDataTable[T]) Remove(entity models.UUID) bool {
	idx, ok := t.index.PopKey(entity)
	if !ok {
		return false
	}
	t.slots[idx] = slot[T]{}
	t.count--
	return true
}

// Get returns a pointer to the entity's component. The pointer is valid until
// the next Insert or Remove on this table.
func (t *ComponentDataTable[T]) Get(entity models.UUID) (*T, bool) {
	idx, ok := t.index.Get(entity)
	if !ok {
		return nil, false
	}
	return &t.slots[*idx].data, true
}

func (t *ComponentDataTable[T]) Has(entity models.UUID) bool {
	return t.index.Has(entity)
}

// Clear empties every slot and the index.
func (t *ComponentDataTable[T]) Clear() {
	clear(t.slots)
	t.index.Clear()
	t.count = 0
}

func (t *ComponentDataTable[T]) EachID(fn func(entity models.UUID) bool) {
	for i := range t.slots {
		if t.slots[i].id.IsNil() {
			continue
		}
		if !fn(t.slots[i].id) {
			return
		}
	}
}

// All yields occupied slots in slot order. Order is not insertion order and
// changes as removed slots are reused.
func (t *ComponentDataTable[T]) All() iter.Seq2[models.UUID, *T] {
	return func(yield func(models.UUID, *T) bool) {
		for it := t.Iter(); it.Next(); {
			if !yield(it.ID(), it.Component()) {
				return
			}
		}
	}
}

// Iter returns a cursor positioned before the first occupied slot.
func (t *ComponentDataTable[T]) Iter() *TableIterator[T] {
	return &TableIterator[T]{t: t, pos: -1}
}

// CheckConsistency verifies that the slot array and the index describe the
// same set of entities.
func (t *ComponentDataTable[T]) CheckConsistency() error {
	occupied := 0
	for i := range t.slots {
		id := t.slots[i].id
		if id.IsNil() {
			continue
		}
		occupied++
		idx, ok := t.index.Get(id)
		if !ok {
			return fmt.Errorf("%w: slot %d holds %s with no index entry", ErrInconsistentState, i, id)
		}
		if *idx != i {
			return fmt.Errorf("%w: %s indexed at %d but stored at %d", ErrInconsistentState, id, *idx, i)
		}
	}
	if occupied != t.index.Len() || occupied != t.count {
		return fmt.Errorf("%w: %d occupied slots, %d index entries, count %d",
			ErrInconsistentState, occupied, t.index.Len(), t.count)
	}
	return nil
}

// TableIterator walks the occupied slots of a table.
type TableIterator[T any] struct {
	t   *ComponentDataTable[T]
	pos int
}

// Next moves to the next occupied slot.
func (it *TableIterator[T]) Next() bool {
	for it.pos+1 < len(it.t.slots) {
		it.pos++
		if !it.t.slots[it.pos].id.IsNil() {
			return true
		}
	}
	it.pos = len(it.t.slots)
	return false
}

// ID returns the entity stored in the current slot.
func (it *TableIterator[T]) ID() models.UUID {
	return it.t.slots[it.pos].id
}

// Component returns the component stored in the current slot.
func (it *TableIterator[T]) Component() *T {
	return &it.t.slots[it.pos].data
}

// Slot returns the current slot index.
func (it *TableIterator[T]) Slot() int {
	return it.pos
}
