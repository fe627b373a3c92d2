package ecs

import (
	"errors"
	"fmt"

	"github.com/zeusync/zecs/internal/core/models"
	"github.com/zeusync/zecs/internal/core/observability/log"
)

// ComponentType binds a Go type to the identity derived from its name.
// Two packages declaring NewComponentType[Transform]("transform") address the
// same table without sharing a variable.
type ComponentType[T any] struct {
	id   models.UUID
	name string
}

// NewComponentType derives the component-type identity from name.
func NewComponentType[T any](name string) ComponentType[T] {
	return ComponentType[T]{id: models.IDFromName(name), name: name}
}

func (c ComponentType[T]) ID() models.UUID { return c.id }
func (c ComponentType[T]) Name() string    { return c.name }

// AddComponentType registers a table for id with room for maxComponents
// components. The capacity is fixed for the table's lifetime.
func AddComponentType[T any](s *Scene, id models.UUID, maxComponents int) error {
	return addComponentType[T](s, id, "", maxComponents)
}

// Register is AddComponentType for a named component type.
func Register[T any](s *Scene, ct ComponentType[T], maxComponents int) error {
	return addComponentType[T](s, ct.id, ct.name, maxComponents)
}

func addComponentType[T any](s *Scene, id models.UUID, name string, maxComponents int) error {
	if id.IsNil() {
		return fmt.Errorf("register component type: %w", ErrNilEntity)
	}
	if maxComponents <= 0 {
		return fmt.Errorf("register component type %s: %w", displayName(id, name), ErrInvalidCapacity)
	}
	if s.componentTypes.Has(id) {
		return fmt.Errorf("register component type %s: %w", displayName(id, name), ErrComponentTypeExists)
	}

	table := NewComponentDataTable[T](id, maxComponents, TableOptions{
		IndexBuckets: s.options.IndexBuckets,
		Hasher:       s.options.Hasher,
	})
	table.name = name
	s.componentTypes.Push(id, table)

	s.logger.Debug("Component type registered",
		log.String("type", displayName(id, name)),
		log.Int("capacity", maxComponents),
		log.Uint64("component_size", uint64(table.Size())),
	)
	return nil
}

// TableOf returns the typed table registered under id.
func TableOf[T any](s *Scene, id models.UUID) (*ComponentDataTable[T], error) {
	t, ok := s.componentTypes.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentTypeNotRegistered, id)
	}
	table, ok := (*t).(*ComponentDataTable[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrComponentTypeMismatch, displayName(id, (*t).Name()), *t)
	}
	return table, nil
}

// AddComponentToEntity stores value in the entity's slot of the typeID table
// and records the type in the entity's component list. Adding a type the
// entity already has updates the component.
func AddComponentToEntity[T any](s *Scene, entity, typeID models.UUID, value T) error {
	types, ok := s.entities.Get(entity)
	if !ok {
		return fmt.Errorf("add component to %s: %w", entity, ErrEntityNotFound)
	}
	table, err := TableOf[T](s, typeID)
	if err != nil {
		return fmt.Errorf("add component to %s: %w", entity, err)
	}

	if err = table.Insert(entity, value); err != nil {
		if errors.Is(err, ErrTableFull) {
			s.logger.Warn("Component table full, insert dropped",
				log.String("type", displayName(typeID, table.name)),
				log.Stringer("entity", entity),
				log.Int("capacity", table.Capacity()),
			)
		}
		return fmt.Errorf("add component %s to %s: %w", displayName(typeID, table.name), entity, err)
	}

	if !listContains(*types, typeID) {
		(*types).PushFront(typeID)
	}
	return nil
}

// GetComponentFromEntity returns the entity's component of type typeID, or
// false when either the type or the entity's slot is absent.
func GetComponentFromEntity[T any](s *Scene, entity, typeID models.UUID) (*T, bool) {
	table, err := TableOf[T](s, typeID)
	if err != nil {
		return nil, false
	}
	return table.Get(entity)
}

// Add is AddComponentToEntity for a named component type.
func Add[T any](s *Scene, entity models.UUID, ct ComponentType[T], value T) error {
	return AddComponentToEntity(s, entity, ct.id, value)
}

// Get is GetComponentFromEntity for a named component type.
func Get[T any](s *Scene, entity models.UUID, ct ComponentType[T]) (*T, bool) {
	return GetComponentFromEntity[T](s, entity, ct.id)
}

func displayName(id models.UUID, name string) string {
	if name != "" {
		return name
	}
	return id.String()
}
