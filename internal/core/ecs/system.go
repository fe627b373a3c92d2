package ecs

import (
	"slices"
	"time"

	"github.com/zeusync/zecs/internal/core/models"
)

// Callback signatures of the five system phases. dt is in seconds.
type (
	InitFunc     func(s *Scene) error
	FrameFunc    func(s *Scene, dt float64) error
	RunFunc      func(s *Scene, entity models.UUID, dt float64) error
	ShutdownFunc func(s *Scene) error
)

// System is a named set of required component types plus optional phase
// callbacks. The first required type drives iteration, so order matters:
// put the smallest or most selective table first.
//
// Name, required types and callbacks are fixed at construction. Stats
// accumulate on every Run, so a System belongs to a single scene and must
// not be registered on scenes driven from different goroutines.
type System struct {
	name     string
	required []models.UUID

	init     InitFunc
	begin    FrameFunc
	run      RunFunc
	end      FrameFunc
	shutdown ShutdownFunc

	stats Stats
}

// Stats describes the work a system has done so far.
type Stats struct {
	Frames            uint64
	EntitiesProcessed uint64
	LastEntities      int
	LastDuration      time.Duration
	TotalDuration     time.Duration
}

// SystemOption sets a phase callback.
type SystemOption func(*System)

func OnInit(fn InitFunc) SystemOption         { return func(s *System) { s.init = fn } }
func OnBegin(fn FrameFunc) SystemOption       { return func(s *System) { s.begin = fn } }
func OnRun(fn RunFunc) SystemOption           { return func(s *System) { s.run = fn } }
func OnEnd(fn FrameFunc) SystemOption         { return func(s *System) { s.end = fn } }
func OnShutdown(fn ShutdownFunc) SystemOption { return func(s *System) { s.shutdown = fn } }

// NewSystem builds a system requiring the given component types. Any phase
// left unset is skipped.
func NewSystem(name string, required []models.UUID, opts ...SystemOption) *System {
	sys := &System{
		name:     name,
		required: slices.Clone(required),
	}
	for _, opt := range opts {
		opt(sys)
	}
	return sys
}

// Phase interfaces accepted by FromHandler. A handler implements any subset.
type (
	Initializer interface {
		Init(s *Scene) error
	}
	Beginner interface {
		Begin(s *Scene, dt float64) error
	}
	Runner interface {
		Run(s *Scene, entity models.UUID, dt float64) error
	}
	Ender interface {
		End(s *Scene, dt float64) error
	}
	Shutdowner interface {
		Shutdown(s *Scene) error
	}
)

// FromHandler builds a system whose phases are the methods h implements.
func FromHandler(name string, required []models.UUID, h any) *System {
	var opts []SystemOption
	if v, ok := h.(Initializer); ok {
		opts = append(opts, OnInit(v.Init))
	}
	if v, ok := h.(Beginner); ok {
		opts = append(opts, OnBegin(v.Begin))
	}
	if v, ok := h.(Runner); ok {
		opts = append(opts, OnRun(v.Run))
	}
	if v, ok := h.(Ender); ok {
		opts = append(opts, OnEnd(v.End))
	}
	if v, ok := h.(Shutdowner); ok {
		opts = append(opts, OnShutdown(v.Shutdown))
	}
	return NewSystem(name, required, opts...)
}

func (sys *System) Name() string {
	return sys.name
}

// Required returns a copy of the ordered required component types.
func (sys *System) Required() []models.UUID {
	return slices.Clone(sys.required)
}

func (sys *System) Stats() Stats {
	return sys.stats
}
