package ecs

import "errors"

// Table and scene errors
var (
	ErrTableFull                  = errors.New("component table is full")
	ErrNilEntity                  = errors.New("nil entity id")
	ErrEntityNotFound             = errors.New("entity not found")
	ErrInvalidCapacity            = errors.New("component capacity must be positive")
	ErrComponentTypeExists        = errors.New("component type already registered")
	ErrComponentTypeNotRegistered = errors.New("component type not registered")
	ErrComponentTypeMismatch      = errors.New("component type registered with a different Go type")
	ErrInconsistentState          = errors.New("component table and index disagree")
)

// System errors
var (
	// ErrRequiredComponentMissing is a configuration error: a registered
	// system requires a component type the scene never registered.
	ErrRequiredComponentMissing = errors.New("required component type not registered on scene")
)
