package generic

import "sync"

// Pool recycles values of one type. Every value handed to Put is passed
// through reset first, so Get never returns stale state.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// NewPool builds a pool that allocates with generate. reset may be nil when
// values need no cleanup.
func NewPool[T any](generate func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		pool:  sync.Pool{New: func() any { return generate() }},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
